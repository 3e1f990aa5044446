package plesk

// Documented panel error codes.
const (
	CodeAuthFailed          = 1001
	CodeUserExists          = 1002
	CodeAgentInitFailed     = 1003
	CodeSetupIncomplete     = 1004
	CodeVersionUnsupported  = 1005
	CodePermissionDenied    = 1006
	CodeAlreadyExists       = 1007
	CodeMultipleAccess      = 1008
	CodeInvalidVirtuozzoKey = 1009
	CodePanelAccessDenied   = 1010
	CodeAccountDisabled     = 1011
	CodeLockedLogin         = 1012
	CodeObjectNotFound      = 1013
	CodeParsingError        = 1014
	CodeOwnerNotFound       = 1015
	CodeFeatureUnsupported  = 1017
	CodeIPNotFound          = 1018
	CodeInvalidValue        = 1019
	CodeOperationFailed     = 1023
	CodeLimitReached        = 1024
	CodeWrongStatus         = 1025
	CodeComponentMissing    = 1026
	CodeIPOperationFailed   = 1027
	CodeUnknownAuthMethod   = 1029
	CodeLicenseExpired      = 1030
	CodeComponentNotReady   = 1031
	CodeWrongInterface      = 1032
	CodeAccountIncomplete   = 1033
	CodeWebmailMissing      = 1050
	CodeSecretKeyInvalid    = 11003
	CodeWrongDBServerType   = 14008
	CodeDBServerNotReady    = 14009
)

// ErrorCodes maps each documented code to the panel's own description.
var ErrorCodes = map[int]string{
	CodeAuthFailed:          "Authentication failed - wrong password.",
	CodeUserExists:          "User account already exists.",
	CodeAgentInitFailed:     "Agent initialization failed.",
	CodeSetupIncomplete:     "Plesk initial setup not completed.",
	CodeVersionUnsupported:  "API RPC version not supported.",
	CodePermissionDenied:    "Permission denied.",
	CodeAlreadyExists:       "Inserted data already exists.",
	CodeMultipleAccess:      "Multiple access denied.",
	CodeInvalidVirtuozzoKey: "Invalid Virtuozzo key.",
	CodePanelAccessDenied:   "Access to Plesk Panel denied.",
	CodeAccountDisabled:     "Account disabled.",
	CodeLockedLogin:         "Locked login.",
	CodeObjectNotFound:      "Object does not exist/Unknown service.",
	CodeParsingError:        "Parsing error: wrong format of XML request.",
	CodeOwnerNotFound:       "Object owner not found.",
	CodeFeatureUnsupported:  "Feature not supported by the current version of API RPC.",
	CodeIPNotFound:          "IP address not found.",
	CodeInvalidValue:        "Invalid value.",
	CodeOperationFailed:     "Operation failed.",
	CodeLimitReached:        "Limit reached.",
	CodeWrongStatus:         "Wrong status value.",
	CodeComponentMissing:    "Component not installed.",
	CodeIPOperationFailed:   "IP operation failed.",
	CodeUnknownAuthMethod:   "Unknown authentication method.",
	CodeLicenseExpired:      "License expired.",
	CodeComponentNotReady:   "Component not configured.",
	CodeWrongInterface:      "Wrong network interface.",
	CodeAccountIncomplete:   "Client account is incomplete (important fields are empty).",
	CodeWebmailMissing:      "Webmail not installed.",
	CodeSecretKeyInvalid:    "Secret key validation failed.",
	CodeWrongDBServerType:   "Wrong database server type.",
	CodeDBServerNotReady:    "Database server not configured.",
}

// ObjectStatus is the status value of customers, subscriptions and sites.
type ObjectStatus int

const (
	StatusActive             ObjectStatus = 0
	StatusUnderBackup        ObjectStatus = 4
	StatusDisabledByAdmin    ObjectStatus = 16
	StatusDisabledByReseller ObjectStatus = 32
	StatusDisabledByCustomer ObjectStatus = 64
	StatusExpired            ObjectStatus = 256
)

var objectStatusNames = map[ObjectStatus]string{
	StatusActive:             "active",
	StatusUnderBackup:        "under backup/restore",
	StatusDisabledByAdmin:    "disabled by admin",
	StatusDisabledByReseller: "disabled by reseller",
	StatusDisabledByCustomer: "disabled by customer",
	StatusExpired:            "expired",
}

func (s ObjectStatus) String() string {
	if name, ok := objectStatusNames[s]; ok {
		return name
	}
	return "unknown"
}

// Hosting types accepted in gen_setup/htype.
const (
	HostingVirtual         = "vrt_hst"
	HostingStdForwarding   = "std_fwd"
	HostingFrameForwarding = "frm_fwd"
	HostingNone            = "none"
)

// HostingTypes lists the hosting types in panel order.
var HostingTypes = []string{HostingVirtual, HostingStdForwarding, HostingFrameForwarding, HostingNone}

// ServerInfoTypes are the selectors understood by server/get.
var ServerInfoTypes = map[string]string{
	"key":                   "Plesk license key.",
	"gen_info":              "General server information (server name).",
	"components":            "Software components installed on the server and managed by Plesk.",
	"stat":                  "Plesk and OS versions, resource usage and object statistics.",
	"admin":                 "Administrator personal information and settings.",
	"interfaces":            "Network interfaces supported by the server.",
	"services_state":        "Current state of the server services.",
	"prefs":                 "Server preferences such as traffic statistics and apache restart interval.",
	"shells":                "Shells available for physical hosting.",
	"session_setup":         "Session idle time.",
	"site-isolation-config": "Server wide site isolation settings.",
	"updates":               "Installed and available Plesk updates and the update policy.",
	"admin-domain-list":     "Domains, addon domains, subdomains and aliases on administrator subscriptions.",
	"certificates":          "SSL/TLS certificates securing Plesk and the mail server.",
}

var serverInfoOrder = []string{
	"key", "gen_info", "components", "stat", "admin", "interfaces", "services_state", "prefs", "shells",
	"session_setup", "site-isolation-config", "updates", "admin-domain-list", "certificates",
}

// RequestableServerInfoTypes is every server info type in panel order except certificates, which
// older panels reject inside a combined request.
func RequestableServerInfoTypes() []string {
	return without(serverInfoOrder, "certificates")
}
