package hostingprovision

import (
	"time"
)

// Lifecycle request types
const (
	RequestActivate   = "Activate"
	RequestReactivate = "Reactivate"
	RequestDeactivate = "Deactivate"
	RequestTerminate  = "Terminate"
)

type ProvisionRequest struct {
	RequestID    string // a UUID for this request
	ServiceID    string // The billing service instance this web hosting account belongs to
	AccountCode  string // The account code of the customer
	CustomerName string // A name for the customer - fullname is best.  Defaults to the account login
	Email        string // The account login / contact email of the customer
	Hostname     string // The domain the subscription is created for.  Defaults to <ServiceID>.server.com
	Username     string // The desired panel and FTP login
	Password     string // The desired panel password
	Server       string // The panel server this service is hosted on (optional, informational)
	RequestType  string // Valid requests are Activate, Reactivate, Deactivate, Terminate
	RequestUser  string // The user to notify if something went wrong (optional)
}

type ProvisionResult struct {
	RequestID      string    // Match up this with the request
	ServiceID      string    // The service instance that was provisioned
	RequestType    string    // The lifecycle request this answers
	Success        bool      // Was it successful
	State          string    // Final workflow state - Provisioned, Failed etc.
	AccountID      int64     // Panel customer id, 0 if none was created
	SubscriptionID int64     // Panel subscription id, 0 if none was created
	Username       string    // The customer login that was actually used after any remediation
	FTPLogin       string    // The FTP login of the subscription, differs from Username after an FTP collision
	Password       string    // Only set when the panel forced a new password
	Time           time.Time // Time that provisioning completed
	Result         string    // Human readable text about what the outcome was
}

type ProvisionException struct {
	RequestID string    // Match up this with the request
	ServiceID string    // The service instance that had the problem
	Time      time.Time // Time that the problem occurred
	System    string    // The provisioning sub-system that had the issue
	Tag       string    // A simple tag to define what sort of problem this is
	Alert     bool      // Get someones attention immediately
	Error     string    // Human readable text about what the outcome was
}

/*
{"RequestID": "08923546y","ServiceID": "1042","AccountCode": "ACCT0160","CustomerName": "Acme Widgets","Email": "ops@acme.example","Hostname": "acme.example","Username": "acme1","Password": "Xx#12345","RequestType": "Activate","RequestUser": "tstpierre"}
*/
