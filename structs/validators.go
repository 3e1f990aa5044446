package hostingprovision

import (
	"errors"
	"strings"
)

func (request *ProvisionRequest) CheckValid() error {
	var err error
	switch request.RequestType {
	case "":
		err = errors.New("RequestType is required")
	case RequestActivate, RequestReactivate, RequestDeactivate, RequestTerminate:
		if strings.TrimSpace(request.ServiceID) == "" {
			err = errors.New("ServiceID is required")
		} else if request.RequestType == RequestActivate && request.Username == "" {
			err = errors.New("Username is required to activate")
		}
	default:
		err = errors.New("unknown RequestType " + request.RequestType)
	}
	return err
}

// ApplyDefaults fills in the hostname and customer name the way the billing side expects when they
// were left empty.
func (request *ProvisionRequest) ApplyDefaults() {
	if request.Hostname == "" {
		request.Hostname = request.ServiceID + ".server.com"
	}
	if request.CustomerName == "" {
		request.CustomerName = strings.ReplaceAll(request.Email, "@", " ")
	}
}
