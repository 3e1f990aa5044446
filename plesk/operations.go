package plesk

import (
	"sort"
)

// Operation names one catalogued panel call: the entity and verb it addresses and the field table
// that shapes its request.
type Operation struct {
	Name   string // catalogue name, e.g. create_client
	Entity string // customer, webspace, site, server, ip ...
	Verb   string // get, add, set, del, create_session, get-local ...
	Table  FieldTable
}

func (op *Operation) String() string {
	return op.Name + " (" + op.Entity + "/" + op.Verb + ")"
}

var (
	customerGenInfo = []string{"cname", "pname", "login", "passwd", "status", "phone", "fax", "email", "address", "city", "state", "pcode", "country"}
	customerFilters = []string{"id", "login", "guid", "external-id"}
	customerAliases = map[string]string{
		"company":  "cname",
		"name":     "pname",
		"username": "login",
		"password": "passwd",
		"zip":      "pcode",
	}

	subscriptionFilters  = []string{"id", "owner-id", "name", "owner-login", "guid", "owner-guid", "external-id", "owner-external-id"}
	subscriptionDatasets = []string{"gen_info", "hosting", "limits", "stat", "prefs", "disk_usage", "performance", "subscriptions", "permissions", "plan-items", "php-settings", "resource-usage", "mail"}
	subscriptionGenSetup = []string{"name", "ip_address", "owner-id", "owner-login", "owner-guid", "owner-external-id", "htype", "status", "external-id"}
	subscriptionAliases  = map[string]string{
		"domain":      "name",
		"owner_id":    "owner-id",
		"owner_login": "owner-login",
		"ip":          "ip_address",
		"plan_id":     "plan-id",
		"plan_name":   "plan-name",
	}

	siteFilters  = []string{"id", "parent-id", "parent-site-id", "name", "parent-name", "parent-site-name", "guid", "parent-guid", "parent-site-guid"}
	siteDatasets = []string{"gen_info", "hosting", "stat", "prefs", "disk_usage"}
	siteGenSetup = []string{"name", "htype", "status", "webspace-name", "webspace-id", "webspace-guid", "parent-site-id", "parent-site-name", "parent-site-guid"}
	sitePrefs    = []string{"www", "stat_ttl", "outgoing-messages-domain-limit"}

	hostingProperties = []string{"ftp_login", "ftp_password"}
	planExtras        = []string{"plan-id", "plan-name", "plan-guid", "plan-external-id"}
)

// Customer accounts

var CreateClient = &Operation{
	Name:   "create_client",
	Entity: "customer",
	Verb:   "add",
	Table: FieldTable{
		Required: []string{"pname", "login", "passwd"},
		Aliases:  customerAliases,
		Defaults: map[string]string{"status": "0"},
		Sections: []Section{
			{Category: CategorySetup, Path: []string{"gen_info"}, Fields: customerGenInfo, Eager: true},
		},
	},
}

var UpdateClient = &Operation{
	Name:   "update_client",
	Entity: "customer",
	Verb:   "set",
	Table: FieldTable{
		Required: []string{"login"},
		Aliases:  customerAliases,
		Sections: []Section{
			{Category: CategoryFilter, Path: []string{"filter"}, Fields: []string{"login"}, Eager: true},
			{Category: CategorySetup, Path: []string{"values", "gen_info"}, Fields: without(customerGenInfo, "login"), Eager: true},
		},
	},
}

var DeleteClient = &Operation{
	Name:   "delete_client",
	Entity: "customer",
	Verb:   "del",
	Table: FieldTable{
		RequireOneOf: customerFilters,
		Aliases:      customerAliases,
		Sections: []Section{
			{Category: CategoryFilter, Path: []string{"filter"}, Fields: customerFilters, Eager: true},
		},
	},
}

var GetClient = &Operation{
	Name:   "get_client",
	Entity: "customer",
	Verb:   "get",
	Table: FieldTable{
		RequireOneOf: customerFilters,
		Aliases:      customerAliases,
		Sections: []Section{
			{Category: CategoryFilter, Path: []string{"filter"}, Fields: customerFilters, Eager: true},
			{Category: CategoryDataset, Path: []string{"dataset"}, Static: []string{"gen_info", "stat"}, Eager: true},
		},
	},
}

var ListClients = &Operation{
	Name:   "list_clients",
	Entity: "customer",
	Verb:   "get",
	Table: FieldTable{
		Sections: []Section{
			{Category: CategoryFilter, Path: []string{"filter"}, Eager: true},
			{Category: CategoryDataset, Path: []string{"dataset"}, Static: []string{"gen_info", "stat"}, Eager: true},
		},
	},
}

// Subscriptions (webspaces)

var CreateSubscription = &Operation{
	Name:   "create_subscription",
	Entity: "webspace",
	Verb:   "add",
	Table: FieldTable{
		Required: []string{"name", "ip_address"},
		Aliases:  subscriptionAliases,
		Sections: []Section{
			{Category: CategorySetup, Path: []string{"gen_setup"}, Fields: subscriptionGenSetup, Eager: true},
			{Category: CategoryProperty, Path: []string{"hosting", "vrt_hst"}, Placement: Property, Fields: hostingProperties, Triggers: []string{"htype"}},
			{Category: CategorySetup, Path: []string{"hosting", "vrt_hst"}, Fields: []string{"ip_address"}},
			{Category: CategoryExtra, Fields: planExtras},
		},
	},
}

var UpdateSubscription = &Operation{
	Name:   "update_subscription",
	Entity: "webspace",
	Verb:   "set",
	Table: FieldTable{
		RequireOneOf: subscriptionFilters,
		Aliases:      subscriptionAliases,
		Sections: []Section{
			{Category: CategoryFilter, Path: []string{"filter"}, Fields: subscriptionFilters, Eager: true},
			{Category: CategorySetup, Path: []string{"values", "gen_setup"}, Fields: []string{"status", "external-id"}},
		},
	},
}

var DeleteSubscription = &Operation{
	Name:   "delete_subscription",
	Entity: "webspace",
	Verb:   "del",
	Table: FieldTable{
		RequireOneOf: subscriptionFilters,
		Aliases:      subscriptionAliases,
		Sections: []Section{
			{Category: CategoryFilter, Path: []string{"filter"}, Fields: subscriptionFilters, Eager: true},
		},
	},
}

var ListSubscriptions = &Operation{
	Name:   "list_subscriptions",
	Entity: "webspace",
	Verb:   "get",
	Table: FieldTable{
		Aliases: subscriptionAliases,
		Sections: []Section{
			{Category: CategoryFilter, Path: []string{"filter"}, Fields: subscriptionFilters, Eager: true},
			{Category: CategoryDataset, Path: []string{"dataset"}, Static: subscriptionDatasets, Eager: true},
		},
	},
}

// Sites

var GetSites = &Operation{
	Name:   "get_sites",
	Entity: "site",
	Verb:   "get",
	Table: FieldTable{
		Aliases: map[string]string{"subscription_id": "parent-id"},
		Sections: []Section{
			{Category: CategoryFilter, Path: []string{"filter"}, Fields: siteFilters, Eager: true},
			{Category: CategoryDataset, Path: []string{"dataset"}, Static: siteDatasets, Eager: true},
		},
	},
}

var CreateSite = &Operation{
	Name:   "create_site",
	Entity: "site",
	Verb:   "add",
	Table: FieldTable{
		Required: []string{"name"},
		Aliases: map[string]string{
			"domain":          "name",
			"subscription_id": "webspace-id",
			"plan_id":         "plan-id",
		},
		Sections: []Section{
			{Category: CategorySetup, Path: []string{"gen_setup"}, Fields: siteGenSetup, Eager: true},
			{Category: CategoryProperty, Path: []string{"hosting", "vrt_hst"}, Placement: Property, Fields: hostingProperties, Triggers: []string{"htype"}},
			{Category: CategorySetup, Path: []string{"hosting", "vrt_hst"}, Fields: []string{"ip_address"}},
			{Category: CategorySetup, Path: []string{"prefs"}, Fields: sitePrefs},
			{Category: CategoryExtra, Fields: planExtras},
		},
	},
}

var UpdateSite = &Operation{
	Name:   "update_site",
	Entity: "site",
	Verb:   "set",
	Table: FieldTable{
		Required: []string{"id"},
		Aliases:  map[string]string{"domain": "name"},
		Sections: []Section{
			{Category: CategoryFilter, Path: []string{"filter"}, Fields: []string{"id"}, Eager: true},
			{Category: CategorySetup, Path: []string{"values"}, Eager: true},
			{Category: CategorySetup, Path: []string{"values", "gen_setup"}, Fields: siteGenSetup},
		},
	},
}

var DeleteSite = &Operation{
	Name:   "delete_site",
	Entity: "site",
	Verb:   "del",
	Table: FieldTable{
		RequireOneOf: siteFilters,
		Aliases:      map[string]string{"subscription_id": "parent-id"},
		Sections: []Section{
			{Category: CategoryFilter, Path: []string{"filter"}, Fields: siteFilters, Eager: true},
		},
	},
}

// Server level reads

var ListIPAddresses = &Operation{
	Name:   "list_ip_addresses",
	Entity: "ip",
	Verb:   "get",
}

var ListServicePlans = &Operation{
	Name:   "list_service_plans",
	Entity: "service-plan",
	Verb:   "get",
	Table: FieldTable{
		Aliases: map[string]string{"plan_name": "name"},
		Sections: []Section{
			{Category: CategoryFilter, Path: []string{"filter"}, Fields: []string{"id", "name", "guid", "external-id"}, Eager: true},
		},
	},
}

var GetServerInfo = &Operation{
	Name:   "get_server_info",
	Entity: "server",
	Verb:   "get",
	Table: FieldTable{
		Sections: []Section{
			{Category: CategoryDataset, Static: RequestableServerInfoTypes(), Eager: true},
		},
	},
}

var CreateSession = &Operation{
	Name:   "create_session",
	Entity: "server",
	Verb:   "create_session",
	Table: FieldTable{
		Required: []string{"login"},
		Aliases:  map[string]string{"username": "login"},
		Sections: []Section{
			{Category: CategorySetup, Fields: []string{"login"}},
			{Category: CategorySetup, Path: []string{"data"}, Fields: []string{"user_ip", "source_server"}, Eager: true, Base64: true},
		},
	},
}

var ListDatabaseServers = &Operation{
	Name:   "list_database_servers",
	Entity: "db_server",
	Verb:   "get-local",
	Table: FieldTable{
		Sections: []Section{
			{Category: CategoryFilter, Path: []string{"filter"}, Eager: true},
		},
	},
}

var ListUsers = &Operation{
	Name:   "list_users",
	Entity: "user",
	Verb:   "get",
	Table: FieldTable{
		Sections: []Section{
			{Category: CategoryFilter, Path: []string{"filter"}, Static: []string{"all"}, Eager: true},
			{Category: CategoryDataset, Path: []string{"dataset"}, Static: []string{"gen-info", "roles"}, Eager: true},
		},
	},
}

var catalogue = map[string]*Operation{}

func init() {
	for _, op := range []*Operation{
		CreateClient, UpdateClient, DeleteClient, GetClient, ListClients,
		CreateSubscription, UpdateSubscription, DeleteSubscription, ListSubscriptions,
		GetSites, CreateSite, UpdateSite, DeleteSite,
		ListIPAddresses, ListServicePlans, GetServerInfo, CreateSession, ListDatabaseServers, ListUsers,
	} {
		catalogue[op.Name] = op
	}
	catalogue["list_sites"] = GetSites
	catalogue["get_subscription"] = ListSubscriptions
}

// Lookup finds a catalogued operation by name.
func Lookup(name string) (*Operation, bool) {
	op, ok := catalogue[name]
	return op, ok
}

// OperationNames lists the catalogue, sorted.
func OperationNames() []string {
	names := make([]string, 0, len(catalogue))
	for name := range catalogue {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func without(list []string, drop string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != drop {
			out = append(out, v)
		}
	}
	return out
}
