package plesk_test

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bitbucket.org/telmaxdc/webhosting-provision/plesk"
)

func TestBuildCreateClientDocument(t *testing.T) {
	doc, err := plesk.Build(plesk.CreateClient, plesk.Params{
		"name":     "Acme",
		"username": "acme1",
		"password": "Xx#12345",
	})
	require.NoError(t, err)

	want := `<?xml version="1.0" encoding="UTF-8"?>
<packet>
  <customer>
    <add>
      <gen_info>
        <pname>Acme</pname>
        <login>acme1</login>
        <passwd>Xx#12345</passwd>
        <status>0</status>
      </gen_info>
    </add>
  </customer>
</packet>
`
	assert.Equal(t, want, doc.String())
	assert.Equal(t, "customer", doc.Entity())
	assert.Equal(t, "add", doc.Operation().Name)
}

func TestBuildIsDeterministic(t *testing.T) {
	params := plesk.Params{
		"domain":       "example.com",
		"owner_id":     501,
		"htype":        plesk.HostingVirtual,
		"ftp_login":    "acme1",
		"ftp_password": "s3cret!",
		"ip":           "10.0.0.5",
		"status":       0,
		"plan_id":      7,
	}
	first, err := plesk.Build(plesk.CreateSubscription, params)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := plesk.Build(plesk.CreateSubscription, params)
		require.NoError(t, err)
		require.Equal(t, first.String(), again.String())
	}
}

func TestBuildCreateSubscriptionShape(t *testing.T) {
	doc, err := plesk.Build(plesk.CreateSubscription, plesk.Params{
		"domain":       "example.com",
		"owner_id":     501,
		"htype":        plesk.HostingVirtual,
		"ftp_login":    "acme1",
		"ftp_password": "s3cret!",
		"ip":           "10.0.0.5",
		"status":       0,
		"plan_id":      7,
		"favourite":    "blue",
	})
	require.NoError(t, err)

	assert.Equal(t, "example.com", doc.Find("gen_setup", "name").Text)
	assert.Equal(t, "501", doc.Find("gen_setup", "owner-id").Text)
	assert.Equal(t, "vrt_hst", doc.Find("gen_setup", "htype").Text)
	assert.Equal(t, "0", doc.Find("gen_setup", "status").Text)
	assert.Equal(t, "7", doc.Find("plan-id").Text, "plan id is written at operation level")

	// ip_address is a member of two sections
	assert.Equal(t, "10.0.0.5", doc.Find("gen_setup", "ip_address").Text)
	assert.Equal(t, "10.0.0.5", doc.Find("hosting", "vrt_hst", "ip_address").Text)

	vrt := doc.Find("hosting", "vrt_hst")
	require.NotNil(t, vrt)
	var props []string
	for _, c := range vrt.Children {
		if c.Name == "property" {
			props = append(props, c.Child("name").Text+"="+c.Child("value").Text)
		}
	}
	assert.Equal(t, []string{"ftp_login=acme1", "ftp_password=s3cret!"}, props)
	assert.Equal(t, "property", vrt.Children[0].Name, "properties precede the ip_address leaf")

	assert.NotContains(t, doc.String(), "favourite")
	assert.NotContains(t, doc.String(), "blue")
}

func TestBuildLazyHosting(t *testing.T) {
	doc, err := plesk.Build(plesk.CreateSite, plesk.Params{"domain": "shop.example.com", "subscription_id": 9001})
	require.NoError(t, err)
	assert.Nil(t, doc.Find("hosting"))
	assert.Nil(t, doc.Find("prefs"))
	assert.Equal(t, "9001", doc.Find("gen_setup", "webspace-id").Text)

	doc, err = plesk.Build(plesk.CreateSite, plesk.Params{"domain": "shop.example.com", "htype": plesk.HostingVirtual})
	require.NoError(t, err)
	require.NotNil(t, doc.Find("hosting", "vrt_hst"), "htype attaches the hosting block")
	assert.Empty(t, doc.Find("hosting", "vrt_hst").Children)

	doc, err = plesk.Build(plesk.CreateSite, plesk.Params{"domain": "shop.example.com", "www": "true"})
	require.NoError(t, err)
	assert.Equal(t, "true", doc.Find("prefs", "www").Text)
}

func TestBuildCanonicalNameWinsOverAlias(t *testing.T) {
	doc, err := plesk.Build(plesk.CreateSubscription, plesk.Params{
		"name":   "a.example.com",
		"domain": "b.example.com",
		"ip":     "10.0.0.5",
	})
	require.NoError(t, err)
	assert.Equal(t, "a.example.com", doc.Find("gen_setup", "name").Text)
	assert.Equal(t, 1, strings.Count(doc.String(), "example.com"))
}

func TestBuildUpdateClient(t *testing.T) {
	doc, err := plesk.Build(plesk.UpdateClient, plesk.Params{"username": "acme1", "status": 16})
	require.NoError(t, err)
	assert.Equal(t, "acme1", doc.Find("filter", "login").Text)
	assert.Equal(t, "16", doc.Find("values", "gen_info", "status").Text)
	assert.Nil(t, doc.Find("values", "gen_info", "login"))
}

func TestBuildUpdateSiteKeepsValuesNode(t *testing.T) {
	doc, err := plesk.Build(plesk.UpdateSite, plesk.Params{"id": 4})
	require.NoError(t, err)
	assert.Equal(t, "4", doc.Find("filter", "id").Text)
	require.NotNil(t, doc.Find("values"))
	assert.Nil(t, doc.Find("values", "gen_setup"))

	doc, err = plesk.Build(plesk.UpdateSite, plesk.Params{"id": 4, "status": 16})
	require.NoError(t, err)
	assert.Equal(t, "16", doc.Find("values", "gen_setup", "status").Text)
}

func TestBuildDatasetsAndStaticSelectors(t *testing.T) {
	doc, err := plesk.Build(plesk.ListSubscriptions, plesk.Params{"owner_id": 501})
	require.NoError(t, err)
	assert.Equal(t, "501", doc.Find("filter", "owner-id").Text)
	assert.Len(t, doc.Find("dataset").Children, 13)

	doc, err = plesk.Build(plesk.GetServerInfo, nil)
	require.NoError(t, err)
	assert.Len(t, doc.Operation().Children, 13)
	assert.Nil(t, doc.Find("certificates"))
	assert.NotNil(t, doc.Find("components"))

	doc, err = plesk.Build(plesk.ListUsers, nil)
	require.NoError(t, err)
	assert.NotNil(t, doc.Find("filter", "all"))
	assert.NotNil(t, doc.Find("dataset", "roles"))

	doc, err = plesk.Build(plesk.ListIPAddresses, nil)
	require.NoError(t, err)
	assert.Empty(t, doc.Operation().Children)
}

func TestBuildCreateSessionEncodesData(t *testing.T) {
	doc, err := plesk.Build(plesk.CreateSession, plesk.Params{"username": "acme1", "user_ip": "192.0.2.1", "source_server": "my.example.com"})
	require.NoError(t, err)
	assert.Equal(t, "acme1", doc.Find("login").Text)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("192.0.2.1")), doc.Find("data", "user_ip").Text)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("my.example.com")), doc.Find("data", "source_server").Text)
}

func TestBuildDestructiveCallsNeedAFilter(t *testing.T) {
	for _, op := range []*plesk.Operation{plesk.DeleteClient, plesk.DeleteSubscription, plesk.DeleteSite} {
		_, err := plesk.Build(op, plesk.Params{"unrelated": "x"})
		require.Error(t, err, op.Name)
		assert.True(t, errors.Is(err, plesk.ErrValidation), op.Name)
	}
	doc, err := plesk.Build(plesk.DeleteClient, plesk.Params{"id": 503})
	require.NoError(t, err)
	assert.Equal(t, "503", doc.Find("filter", "id").Text)
}

// Every required field must fail validation when absent and pass when supplied under its canonical
// name or any alias.
func TestRequiredFieldsAcrossCatalogue(t *testing.T) {
	for _, name := range plesk.OperationNames() {
		op, _ := plesk.Lookup(name)
		table := op.Table
		base := plesk.Params{}
		for _, req := range table.Required {
			base[req] = "v"
		}
		if len(table.RequireOneOf) > 0 {
			base[table.RequireOneOf[0]] = "1"
		}

		t.Run(name, func(t *testing.T) {
			_, err := plesk.Build(op, base)
			require.NoError(t, err)

			for _, req := range table.Required {
				without := plesk.Params{}
				for k, v := range base {
					if k != req {
						without[k] = v
					}
				}
				_, err := plesk.Build(op, without)
				var verr *plesk.ValidationError
				require.True(t, errors.As(err, &verr), "omitting %s", req)
				assert.Equal(t, req, verr.Field)
				assert.Equal(t, op.Name, verr.Operation)

				for _, alias := range table.AliasesOf(req) {
					viaAlias := plesk.Params{alias: "v"}
					for k, v := range without {
						viaAlias[k] = v
					}
					_, err := plesk.Build(op, viaAlias)
					assert.NoError(t, err, "%s supplied as %s", req, alias)
				}
			}
		})
	}
}

func TestBuildSkipsNilValues(t *testing.T) {
	_, err := plesk.Build(plesk.CreateSubscription, plesk.Params{"domain": "example.com", "ip": nil})
	var verr *plesk.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "ip_address", verr.Field)
}
