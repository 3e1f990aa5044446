package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bitbucket.org/telmaxdc/webhosting-provision/kafka"
	"bitbucket.org/telmaxdc/webhosting-provision/linkdb"
	"bitbucket.org/telmaxdc/webhosting-provision/plesk"
	"bitbucket.org/telmaxdc/webhosting-provision/plesk/plesktest"
	"bitbucket.org/telmaxdc/webhosting-provision/provision"
	hostingprovision "bitbucket.org/telmaxdc/webhosting-provision/structs"
)

type published struct {
	results    []hostingprovision.ProvisionResult
	exceptions []hostingprovision.ProvisionException
}

func (p *published) SubmitResult(result hostingprovision.ProvisionResult) error {
	p.results = append(p.results, result)
	return nil
}

func (p *published) SubmitException(exception hostingprovision.ProvisionException) error {
	p.exceptions = append(p.exceptions, exception)
	return nil
}

func newService(stub *plesktest.Stub) (*Service, *linkdb.MemoryStore, *published) {
	store := linkdb.NewMemoryStore()
	results := &published{}
	client := &plesk.Client{Transport: stub}
	return &Service{
		Orchestrator: provision.New(client, store, nil, ""),
		Panel:        client,
		Store:        store,
		Results:      results,
		APIKey:       "k",
	}, store, results
}

func activatingPanel() *plesktest.Stub {
	return plesktest.New().
		On("ip", "get", plesktest.Raw(plesktest.Packet("ip", "get", `<result><status>ok</status><addresses><ip_info><ip_address>10.0.0.5</ip_address><type>shared</type></ip_info></addresses></result>`))).
		On("service-plan", "get", plesktest.OK("service-plan", "get", map[string]string{"id": "7", "name": "ASP.NET plan"})).
		On("customer", "add", plesktest.OK("customer", "add", map[string]string{"id": "501"})).
		On("webspace", "add", plesktest.OK("webspace", "add", map[string]string{"id": "9001"}))
}

func do(t *testing.T, router http.Handler, method, path string, body interface{}, key string) (*httptest.ResponseRecorder, Response) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if key != "" {
		req.Header.Set("api-key", key)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	var response Response
	if rec.Code == http.StatusOK || rec.Code == http.StatusBadRequest {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	}
	return rec, response
}

func TestProvisionEndpoint(t *testing.T) {
	service, store, results := newService(activatingPanel())
	router := service.Router()

	request := hostingprovision.ProvisionRequest{ServiceID: "1042", Username: "acme1", Password: "Xx#12345", CustomerName: "Acme", RequestType: hostingprovision.RequestActivate}
	rec, response := do(t, router, "POST", "/provision", request, "k")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", response.Status)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	data := response.Data.(map[string]interface{})
	assert.Equal(t, "Provisioned", data["State"])
	assert.Equal(t, float64(9001), data["SubscriptionID"])
	assert.NotEmpty(t, data["RequestID"])

	l, err := store.ReadLinkage(context.Background(), "1042")
	require.NoError(t, err)
	assert.Equal(t, int64(501), l.AccountID)
	require.Len(t, results.results, 1)
	assert.True(t, results.results[0].Success)
	assert.Empty(t, results.exceptions)

	_, response = do(t, router, "GET", "/linkage/1042", nil, "k")
	assert.Equal(t, "ok", response.Status)
	assert.Equal(t, float64(9001), response.Data.(map[string]interface{})["subscription_id"])
}

func TestProvisionEndpointRejects(t *testing.T) {
	service, _, results := newService(plesktest.New())
	router := service.Router()

	rec, _ := do(t, router, "POST", "/provision", hostingprovision.ProvisionRequest{ServiceID: "1"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest("POST", "/provision", bytes.NewBufferString("{not json"))
	req.Header.Set("api-key", "k")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	_, response := do(t, router, "POST", "/provision", hostingprovision.ProvisionRequest{ServiceID: "1", RequestType: hostingprovision.RequestTerminate}, "k")
	assert.Equal(t, "error", response.Status)
	assert.Contains(t, response.Error, "no panel account on file")
	assert.Len(t, results.results, 1)
}

func TestPanelEndpoints(t *testing.T) {
	stub := plesktest.New().On("server", "get", plesktest.Raw(plesktest.Packet("server", "get",
		`<result><status>ok</status><gen_info><server_name>web01.example.com</server_name></gen_info></result>`)))
	service, _, _ := newService(stub)
	router := service.Router()

	_, response := do(t, router, "GET", "/panel/server", nil, "k")
	assert.Equal(t, "ok", response.Status)
	info := response.Data.(map[string]interface{})
	assert.Equal(t, "web01.example.com", info["gen_info"].(map[string]interface{})["server_name"])

	_, response = do(t, router, "GET", "/panel/operations", nil, "k")
	assert.Contains(t, response.Data, "create_subscription")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "webhosting_plesk_request_duration_seconds")
}

func TestMessageHandler(t *testing.T) {
	service, _, results := newService(plesktest.New().On("customer", "set", plesktest.OK("customer", "set", nil)))

	service.MessageHandler(kafka.RequestTopic, time.Now(), []byte("garbage"))
	assert.Empty(t, results.results)

	service.MessageHandler("othertopic", time.Now(), []byte(`{"ServiceID":"1042","RequestType":"Deactivate","Username":"acme1"}`))
	assert.Empty(t, results.results)

	service.MessageHandler(kafka.RequestTopic, time.Now(), []byte(`{"RequestID":"r9","ServiceID":"1042","RequestType":"Deactivate","Username":"acme1"}`))
	require.Len(t, results.results, 1)
	assert.Equal(t, "r9", results.results[0].RequestID)
	assert.True(t, results.results[0].Success)
}

func TestStrandedCustomerRaisesException(t *testing.T) {
	stub := activatingPanel().
		On("webspace", "add", plesktest.RemoteError("webspace", "add", 1019, "Invalid value.")).
		On("customer", "del", plesktest.Failure(errors.New("connection reset by peer")))
	service, _, results := newService(stub)

	result := service.HandleProvision(context.Background(), hostingprovision.ProvisionRequest{
		RequestID: "r7", ServiceID: "1042", Username: "acme1", Password: "Xx#12345", RequestType: hostingprovision.RequestActivate,
	})
	assert.False(t, result.Success)
	require.Len(t, results.results, 1)
	require.Len(t, results.exceptions, 1)
	exception := results.exceptions[0]
	assert.Equal(t, "r7", exception.RequestID)
	assert.Equal(t, "1042", exception.ServiceID)
	assert.Equal(t, provision.RollbackFailed, exception.Tag)
	assert.True(t, exception.Alert)
	assert.Contains(t, exception.Error, "customer 501")
}

func TestPanelListings(t *testing.T) {
	stub := plesktest.New().
		On("site", "get", plesktest.Raw(plesktest.Packet("site", "get",
			plesktest.ResultXML(map[string]string{"status": "ok", "id": "4"})+
				plesktest.ResultXML(map[string]string{"status": "ok", "id": "5"})))).
		On("user", "get", plesktest.OK("user", "get", map[string]string{"id": "1"}))
	service, _, _ := newService(stub)
	router := service.Router()

	_, response := do(t, router, "GET", "/panel/list/sites?subscription_id=9001", nil, "k")
	require.Equal(t, "ok", response.Status, response.Error)
	assert.Len(t, response.Data, 2)
	sites := stub.CallsTo("site", "get")
	require.Len(t, sites, 1)
	assert.Equal(t, "9001", sites[0].Param("filter", "parent-id"))

	_, response = do(t, router, "GET", "/panel/list/users", nil, "k")
	assert.Equal(t, "ok", response.Status)
	assert.Len(t, response.Data, 1)

	rec, _ := do(t, router, "GET", "/panel/list/invoices", nil, "k")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMessageHandlerKeepsPasswordsOutOfLogs(t *testing.T) {
	hook := logtest.NewGlobal()
	level := log.GetLevel()
	log.SetLevel(log.DebugLevel)
	t.Cleanup(func() { log.SetLevel(level) })

	service, _, results := newService(plesktest.New().On("customer", "set", plesktest.OK("customer", "set", nil)))
	service.MessageHandler(kafka.RequestTopic, time.Now(),
		[]byte(`{"RequestID":"r5","ServiceID":"1042","RequestType":"Deactivate","Username":"acme1","Password":"S3cret-pw"}`))
	require.Len(t, results.results, 1)

	require.NotEmpty(t, hook.AllEntries())
	for _, entry := range hook.AllEntries() {
		line, err := entry.String()
		require.NoError(t, err)
		assert.NotContains(t, line, "S3cret-pw")
	}
}
