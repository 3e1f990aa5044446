/*
	Client adapter for the Plesk XML API.

	Every call follows the same path: the operation's field table builds a command document, the
	transport posts it, the response packet is parsed and normalized, the result for the addressed
	entity/operation is selected and classified.  Typed helpers below only pick the operation and
	shape the result.
*/
package plesk

import (
	"context"
	"errors"
	"strings"

	"github.com/davecgh/go-spew/spew"
	log "github.com/sirupsen/logrus"
)

type Client struct {
	Transport Transport
	Debug     bool
}

// NewClient connects a client to the panel described by c.
func NewClient(c Config) *Client {
	return &Client{
		Transport: NewHTTPTransport(c),
		Debug:     c.Debug,
	}
}

// Call runs one catalogued operation.  Any failure is returned as an *OperationError carrying the
// operation and entity, wrapping one of the typed errors of this package.
func (c *Client) Call(ctx context.Context, op *Operation, params Params) (Outcome, error) {
	doc, err := Build(op, params)
	if err != nil {
		return Outcome{}, c.wrap(op, err)
	}
	request, err := doc.Bytes()
	if err != nil {
		return Outcome{}, c.wrap(op, err)
	}
	if c.Debug {
		log.WithFields(log.Fields{"operation": op.Name, "entity": op.Entity}).Debugf("Calling panel\n%s", request)
	}
	raw, err := c.Transport.Send(ctx, request)
	if err != nil {
		var te *TransportError
		if !errors.As(err, &te) {
			err = &TransportError{Err: err}
		}
		return Outcome{}, c.wrap(op, err)
	}
	tree, err := ParseResponse(raw)
	if err != nil {
		return Outcome{}, c.wrap(op, err)
	}
	normalized := Normalize(tree).(map[string]interface{})
	outcome, err := Extract(normalized, op.Entity, op.Verb)
	if err != nil {
		var pe *ProtocolParseError
		if errors.As(err, &pe) {
			pe.Raw = raw
		}
		return Outcome{}, c.wrap(op, err)
	}
	if c.Debug {
		log.Debugf("%s returned %s", op.Name, spew.Sdump(outcome.Results()))
	}
	outcome, err = Classify(outcome)
	if err != nil {
		return outcome, c.wrap(op, err)
	}
	return outcome, nil
}

func (c *Client) wrap(op *Operation, err error) error {
	return &OperationError{Operation: op.Name, Entity: op.Entity, Verb: op.Verb, Err: err}
}

func (c *Client) single(ctx context.Context, op *Operation, params Params) (Result, error) {
	outcome, err := c.Call(ctx, op, params)
	if err != nil {
		return nil, err
	}
	return outcome.Result(), nil
}

func (c *Client) many(ctx context.Context, op *Operation, params Params) ([]Result, error) {
	outcome, err := c.Call(ctx, op, params)
	if err != nil {
		return nil, err
	}
	return outcome.Results(), nil
}

// Customers

func (c *Client) CreateClient(ctx context.Context, params Params) (Result, error) {
	return c.single(ctx, CreateClient, params)
}

func (c *Client) UpdateClient(ctx context.Context, params Params) (Result, error) {
	return c.single(ctx, UpdateClient, params)
}

func (c *Client) DeleteClient(ctx context.Context, params Params) (Result, error) {
	return c.single(ctx, DeleteClient, params)
}

func (c *Client) GetClient(ctx context.Context, params Params) (Result, error) {
	return c.single(ctx, GetClient, params)
}

func (c *Client) ListClients(ctx context.Context) ([]Result, error) {
	return c.many(ctx, ListClients, nil)
}

// Subscriptions

func (c *Client) CreateSubscription(ctx context.Context, params Params) (Result, error) {
	return c.single(ctx, CreateSubscription, params)
}

func (c *Client) UpdateSubscription(ctx context.Context, params Params) (Result, error) {
	return c.single(ctx, UpdateSubscription, params)
}

func (c *Client) DeleteSubscription(ctx context.Context, params Params) (Result, error) {
	return c.single(ctx, DeleteSubscription, params)
}

func (c *Client) ListSubscriptions(ctx context.Context, params Params) ([]Result, error) {
	return c.many(ctx, ListSubscriptions, params)
}

// Sites

func (c *Client) GetSites(ctx context.Context, params Params) ([]Result, error) {
	return c.many(ctx, GetSites, params)
}

func (c *Client) CreateSite(ctx context.Context, params Params) (Result, error) {
	return c.single(ctx, CreateSite, params)
}

func (c *Client) UpdateSite(ctx context.Context, params Params) (Result, error) {
	return c.single(ctx, UpdateSite, params)
}

func (c *Client) DeleteSite(ctx context.Context, params Params) ([]Result, error) {
	return c.many(ctx, DeleteSite, params)
}

// Server

// IPAddress is one entry of the server's IP pool.
type IPAddress struct {
	Address   string
	Netmask   string
	Type      string // shared or exclusive
	Interface string
	Default   bool
}

// ListIPAddresses returns the server IP pool from result/addresses/ip_info.
func (c *Client) ListIPAddresses(ctx context.Context) ([]IPAddress, error) {
	r, err := c.single(ctx, ListIPAddresses, nil)
	if err != nil {
		return nil, err
	}
	var entries []Result
	switch info := r.Get("addresses", "ip_info").(type) {
	case map[string]interface{}:
		entries = append(entries, Result(info))
	case []interface{}:
		for _, e := range info {
			if m, ok := e.(map[string]interface{}); ok {
				entries = append(entries, Result(m))
			}
		}
	}
	ips := make([]IPAddress, 0, len(entries))
	for _, e := range entries {
		_, hasDefault := e["default"]
		isDefault := e.String("is_default")
		ips = append(ips, IPAddress{
			Address:   e.String("ip_address"),
			Netmask:   e.String("netmask"),
			Type:      strings.TrimSpace(e.String("type")),
			Interface: e.String("interface"),
			Default:   hasDefault || (isDefault != "" && isDefault != "false" && isDefault != "0"),
		})
	}
	return ips, nil
}

// SharedIP picks the address new subscriptions are hosted on: the only address when the pool has
// one, otherwise a shared address, preferring the default one.
func SharedIP(ips []IPAddress) (string, bool) {
	if len(ips) == 1 && ips[0].Address != "" {
		return ips[0].Address, true
	}
	shared := ""
	for _, ip := range ips {
		if ip.Type != "shared" || ip.Address == "" {
			continue
		}
		if ip.Default {
			return ip.Address, true
		}
		if shared == "" {
			shared = ip.Address
		}
	}
	return shared, shared != ""
}

func (c *Client) ListServicePlans(ctx context.Context) ([]Result, error) {
	return c.many(ctx, ListServicePlans, nil)
}

// FindServicePlan returns the id of the plan called name.
func (c *Client) FindServicePlan(ctx context.Context, name string) (int64, error) {
	plans, err := c.ListServicePlans(ctx)
	if err != nil {
		return 0, err
	}
	for _, plan := range plans {
		if plan.String("name") == name {
			if id, ok := plan.ID(); ok {
				return id, nil
			}
		}
	}
	return 0, &OperationError{
		Operation: ListServicePlans.Name,
		Entity:    ListServicePlans.Entity,
		Verb:      ListServicePlans.Verb,
		Err:       errors.New("no service plan named " + name),
	}
}

func (c *Client) GetServerInfo(ctx context.Context) (Result, error) {
	return c.single(ctx, GetServerInfo, nil)
}

// CreateSession opens a panel session for login and returns its id.
func (c *Client) CreateSession(ctx context.Context, login, userIP, sourceServer string) (string, error) {
	r, err := c.single(ctx, CreateSession, Params{"login": login, "user_ip": userIP, "source_server": sourceServer})
	if err != nil {
		return "", err
	}
	return r.String("id"), nil
}

func (c *Client) ListDatabaseServers(ctx context.Context) ([]Result, error) {
	return c.many(ctx, ListDatabaseServers, nil)
}

func (c *Client) ListUsers(ctx context.Context) ([]Result, error) {
	return c.many(ctx, ListUsers, nil)
}
