package plesk_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bitbucket.org/telmaxdc/webhosting-provision/plesk"
	"bitbucket.org/telmaxdc/webhosting-provision/plesk/plesktest"
)

func newClient(stub *plesktest.Stub) *plesk.Client {
	return &plesk.Client{Transport: stub}
}

func TestClientCreateClient(t *testing.T) {
	stub := plesktest.New().On("customer", "add", plesktest.OK("customer", "add", map[string]string{"id": "501", "guid": "6a1f"}))
	r, err := newClient(stub).CreateClient(context.Background(), plesk.Params{"name": "Acme", "username": "acme1", "password": "Xx#12345"})
	require.NoError(t, err)
	id, ok := r.ID()
	assert.True(t, ok)
	assert.Equal(t, int64(501), id)

	calls := stub.CallsTo("customer", "add")
	require.Len(t, calls, 1)
	assert.Equal(t, "acme1", calls[0].Param("gen_info", "login"))
	assert.Equal(t, "0", calls[0].Param("gen_info", "status"))
}

func TestClientRemoteErrorCarriesStep(t *testing.T) {
	stub := plesktest.New().On("webspace", "add", plesktest.RemoteError("webspace", "add", plesk.CodeInvalidValue, "Invalid value."))
	_, err := newClient(stub).CreateSubscription(context.Background(), plesk.Params{"domain": "example.com", "ip": "10.0.0.5"})
	require.Error(t, err)

	var oe *plesk.OperationError
	require.True(t, errors.As(err, &oe))
	assert.Equal(t, "create_subscription", oe.Operation)
	assert.Equal(t, "webspace", oe.Entity)

	re, ok := plesk.AsRemote(err)
	require.True(t, ok)
	assert.Equal(t, plesk.CodeInvalidValue, re.Code)
	assert.True(t, errors.Is(err, plesk.ErrRemote))
	assert.False(t, errors.Is(err, plesk.ErrTransport))
}

func TestClientValidationSendsNothing(t *testing.T) {
	stub := plesktest.New()
	_, err := newClient(stub).CreateClient(context.Background(), plesk.Params{"username": "acme1"})
	assert.True(t, errors.Is(err, plesk.ErrValidation))
	assert.Empty(t, stub.Calls())
}

func TestClientTransportAndParseFailures(t *testing.T) {
	stub := plesktest.New().
		On("customer", "del", plesktest.Failure(errors.New("connection refused"))).
		On("customer", "get", plesktest.Raw("<html>maintenance</html>"))
	client := newClient(stub)

	_, err := client.DeleteClient(context.Background(), plesk.Params{"id": 503})
	assert.True(t, errors.Is(err, plesk.ErrTransport))

	_, err = client.GetClient(context.Background(), plesk.Params{"login": "acme1"})
	assert.True(t, errors.Is(err, plesk.ErrParse))
	var pe *plesk.ProtocolParseError
	require.True(t, errors.As(err, &pe))
	assert.Contains(t, string(pe.Raw), "maintenance")
}

func TestClientBulkDeleteReportsFirstFailure(t *testing.T) {
	body := plesktest.Packet("site", "del",
		plesktest.ResultXML(map[string]string{"status": "ok", "id": "1"})+
			plesktest.ResultXML(map[string]string{"status": "error", "errcode": "1013", "errtext": "Object does not exist"})+
			plesktest.ResultXML(map[string]string{"status": "error", "errcode": "1006", "errtext": "Permission denied."}))
	stub := plesktest.New().On("site", "del", plesktest.Raw(body))
	_, err := newClient(stub).DeleteSite(context.Background(), plesk.Params{"parent-id": 9001})
	re, ok := plesk.AsRemote(err)
	require.True(t, ok)
	assert.Equal(t, plesk.CodeObjectNotFound, re.Code)
}

const ipPool = `<result><status>ok</status><addresses>
<ip_info><ip_address>10.0.0.4</ip_address><netmask>255.255.255.0</netmask><type>exclusive</type><interface>eth0</interface></ip_info>
<ip_info><ip_address>10.0.0.5</ip_address><netmask>255.255.255.0</netmask><type>shared</type><interface>eth0</interface></ip_info>
<ip_info><ip_address>10.0.0.6</ip_address><netmask>255.255.255.0</netmask><type>shared</type><interface>eth0</interface><default/></ip_info>
</addresses></result>`

func TestClientListIPAddresses(t *testing.T) {
	stub := plesktest.New().On("ip", "get", plesktest.Raw(plesktest.Packet("ip", "get", ipPool)))
	ips, err := newClient(stub).ListIPAddresses(context.Background())
	require.NoError(t, err)
	require.Len(t, ips, 3)
	assert.Equal(t, "exclusive", ips[0].Type)
	assert.True(t, ips[2].Default)

	ip, ok := plesk.SharedIP(ips)
	assert.True(t, ok)
	assert.Equal(t, "10.0.0.6", ip)
}

func TestSharedIP(t *testing.T) {
	ip, ok := plesk.SharedIP([]plesk.IPAddress{{Address: "10.0.0.9", Type: "exclusive"}})
	assert.True(t, ok)
	assert.Equal(t, "10.0.0.9", ip, "a lone address is used whatever its type")

	ip, ok = plesk.SharedIP([]plesk.IPAddress{{Address: "10.0.0.4", Type: "exclusive"}, {Address: "10.0.0.5", Type: "shared"}})
	assert.True(t, ok)
	assert.Equal(t, "10.0.0.5", ip)

	_, ok = plesk.SharedIP([]plesk.IPAddress{{Address: "10.0.0.4", Type: "exclusive"}, {Address: "10.0.0.7", Type: "exclusive"}})
	assert.False(t, ok)

	_, ok = plesk.SharedIP(nil)
	assert.False(t, ok)
}

func TestClientFindServicePlan(t *testing.T) {
	body := plesktest.Packet("service-plan", "get",
		plesktest.ResultXML(map[string]string{"status": "ok", "id": "3", "name": "Default Domain"})+
			plesktest.ResultXML(map[string]string{"status": "ok", "id": "7", "name": "ASP.NET plan"}))
	stub := plesktest.New().On("service-plan", "get", plesktest.Raw(body))
	client := newClient(stub)

	id, err := client.FindServicePlan(context.Background(), "ASP.NET plan")
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.True(t, stub.CallsTo("service-plan", "get")[0].Has("filter"))

	_, err = client.FindServicePlan(context.Background(), "Unlimited")
	var oe *plesk.OperationError
	require.True(t, errors.As(err, &oe))
	assert.Equal(t, "list_service_plans", oe.Operation)
}

func TestClientCreateSession(t *testing.T) {
	stub := plesktest.New().On("server", "create_session", plesktest.OK("server", "create_session", map[string]string{"id": "8e6a2f"}))
	id, err := newClient(stub).CreateSession(context.Background(), "acme1", "192.0.2.1", "my.example.com")
	require.NoError(t, err)
	assert.Equal(t, "8e6a2f", id)
	assert.Equal(t, "acme1", stub.Calls()[0].Param("login"))
}

func TestClientTypedHelpersAddressTheirOperation(t *testing.T) {
	ctx := context.Background()
	ok := func(entity, verb string) plesktest.Reply {
		return plesktest.OK(entity, verb, map[string]string{"id": "1"})
	}
	for _, tc := range []struct {
		entity, verb string
		call         func(*plesk.Client) error
		check        func(plesktest.Call)
	}{
		{"customer", "get", func(c *plesk.Client) error { _, err := c.ListClients(ctx); return err }, nil},
		{"webspace", "set", func(c *plesk.Client) error {
			_, err := c.UpdateSubscription(ctx, plesk.Params{"id": 9001, "status": 16})
			return err
		}, func(call plesktest.Call) {
			assert.Equal(t, "9001", call.Param("filter", "id"))
			assert.Equal(t, "16", call.Param("values", "gen_setup", "status"))
		}},
		{"webspace", "get", func(c *plesk.Client) error {
			_, err := c.ListSubscriptions(ctx, plesk.Params{"owner_id": 501})
			return err
		}, func(call plesktest.Call) { assert.Equal(t, "501", call.Param("filter", "owner-id")) }},
		{"site", "get", func(c *plesk.Client) error {
			_, err := c.GetSites(ctx, plesk.Params{"subscription_id": 9001})
			return err
		}, func(call plesktest.Call) { assert.Equal(t, "9001", call.Param("filter", "parent-id")) }},
		{"site", "add", func(c *plesk.Client) error {
			_, err := c.CreateSite(ctx, plesk.Params{"domain": "shop.example.com", "subscription_id": 9001})
			return err
		}, func(call plesktest.Call) { assert.Equal(t, "9001", call.Param("gen_setup", "webspace-id")) }},
		{"site", "set", func(c *plesk.Client) error {
			_, err := c.UpdateSite(ctx, plesk.Params{"id": 4, "status": 16})
			return err
		}, func(call plesktest.Call) { assert.Equal(t, "4", call.Param("filter", "id")) }},
		{"db_server", "get-local", func(c *plesk.Client) error { _, err := c.ListDatabaseServers(ctx); return err }, nil},
		{"user", "get", func(c *plesk.Client) error { _, err := c.ListUsers(ctx); return err }, nil},
	} {
		t.Run(tc.entity+"/"+tc.verb, func(t *testing.T) {
			stub := plesktest.New().On(tc.entity, tc.verb, ok(tc.entity, tc.verb))
			require.NoError(t, tc.call(newClient(stub)))
			calls := stub.Calls()
			require.Len(t, calls, 1)
			assert.Equal(t, tc.entity, calls[0].Entity)
			assert.Equal(t, tc.verb, calls[0].Verb)
			if tc.check != nil {
				tc.check(calls[0])
			}
		})
	}
}
