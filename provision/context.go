package provision

import (
	"strings"

	"bitbucket.org/telmaxdc/webhosting-provision/linkdb"
	"bitbucket.org/telmaxdc/webhosting-provision/plesk"
	hostingprovision "bitbucket.org/telmaxdc/webhosting-provision/structs"
)

// Context is the state of one lifecycle run for one service.  It is created per run, threaded
// through every step and never shared between runs.
type Context struct {
	ServiceID    string
	Hostname     string
	CustomerName string
	Username     string // panel customer login
	Password     string
	FTPLogin     string // FTP login of the subscription, starts as the customer login
	FTPPassword  string
	IP           string
	PlanID       int64

	State           State
	Linkage         linkdb.Linkage // last confirmed remote state
	PasswordChanged bool
	FollowUp        *FollowUp

	attempts map[string]int // remediation attempts by step and class
}

// NewContext starts a run from a lifecycle request.
func NewContext(request hostingprovision.ProvisionRequest) *Context {
	request.ApplyDefaults()
	return &Context{
		ServiceID:    request.ServiceID,
		Hostname:     request.Hostname,
		CustomerName: request.CustomerName,
		Username:     request.Username,
		Password:     request.Password,
		State:        Init,
		Linkage:      linkdb.Linkage{ServiceID: request.ServiceID},
	}
}

// AccountID is the confirmed panel customer id, 0 until step one succeeds.
func (c *Context) AccountID() int64 {
	return c.Linkage.AccountID
}

// SubscriptionID is the confirmed panel subscription id, 0 until step two succeeds.
func (c *Context) SubscriptionID() int64 {
	return c.Linkage.SubscriptionID
}

func (c *Context) customerParams() plesk.Params {
	return plesk.Params{
		"name":     c.CustomerName,
		"username": c.Username,
		"password": c.Password,
	}
}

func (c *Context) subscriptionParams() plesk.Params {
	return plesk.Params{
		"domain":       c.Hostname,
		"owner_id":     c.AccountID(),
		"htype":        plesk.HostingVirtual,
		"ftp_login":    c.FTPLogin,
		"ftp_password": c.FTPPassword,
		"ip":           c.IP,
		"status":       int(plesk.StatusActive),
		"plan_id":      c.PlanID,
	}
}

// FollowUp is panel state a run left behind that an operator has to settle.
type FollowUp struct {
	Tag    string
	Detail string
}

// Follow-up tags.
const (
	RollbackFailed        = "rollback-failed"
	UnknownSubscriptionID = "unknown-subscription-id"
)

func (c *Context) flag(tag, detail string) {
	c.FollowUp = &FollowUp{Tag: tag, Detail: detail}
}

// generatedPassword returns a password free of '&', which the panel's property parser splits on.
// Every credential the workflow generates goes through here.
func generatedPassword(length, lower, upper, digits, special int) string {
	for {
		password := plesk.GeneratePassword(length, lower, upper, digits, special)
		if !strings.Contains(password, "&") {
			return password
		}
	}
}

func newFTPPassword() string {
	return generatedPassword(10, 2, 1, 1, 1)
}
