package main

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"bitbucket.org/telmaxdc/webhosting-provision/plesk"
	hostingprovision "bitbucket.org/telmaxdc/webhosting-provision/structs"
)

// Consistent respons structure - error only exists if there is an error.  Status is always "ok" or "error"
type Response struct {
	Status string      `json:"status"`
	Error  string      `json:"error,omitempty"`
	Data   interface{} `json:"data,omitempty"`
}

func (s *Service) Router() *mux.Router {
	router := mux.NewRouter().StrictSlash(false)
	router.Methods("OPTIONS").HandlerFunc(HandleOptions)

	router.HandleFunc("/provision", s.HandleProvisionRequest).Methods("POST")
	router.HandleFunc("/linkage/{serviceid}", s.HandleLinkage).Methods("GET")
	router.HandleFunc("/panel/server", s.HandleServerInfo).Methods("GET")
	router.HandleFunc("/panel/operations", s.HandleOperations).Methods("GET")
	router.HandleFunc("/panel/list/{kind}", s.HandlePanelList).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	return router
}

// Run a lifecycle request synchronously, the result is also published like a queued one
func (s *Service) HandleProvisionRequest(w http.ResponseWriter, r *http.Request) {
	CORSHeaders(w, r)
	if !s.CheckAuth(w, r) {
		return
	}
	var response Response
	var request hostingprovision.ProvisionRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.Status = "error"
		response.Error = "bad request body: " + err.Error()
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(response)
		return
	}
	if request.RequestID == "" {
		request.RequestID = uuid.New().String()
	}
	result := s.HandleProvision(r.Context(), request)
	if result.Success {
		response.Status = "ok"
	} else {
		response.Status = "error"
		response.Error = result.Result
	}
	response.Data = result
	json.NewEncoder(w).Encode(response)
}

func (s *Service) HandleLinkage(w http.ResponseWriter, r *http.Request) {
	CORSHeaders(w, r)
	if !s.CheckAuth(w, r) {
		return
	}
	var response Response
	linkage, err := s.Store.ReadLinkage(r.Context(), mux.Vars(r)["serviceid"])
	if err != nil {
		response.Status = "error"
		response.Error = err.Error()
	} else {
		response.Status = "ok"
		response.Data = linkage
	}
	json.NewEncoder(w).Encode(response)
}

func (s *Service) HandleServerInfo(w http.ResponseWriter, r *http.Request) {
	CORSHeaders(w, r)
	if !s.CheckAuth(w, r) {
		return
	}
	var response Response
	info, err := s.Panel.GetServerInfo(r.Context())
	if err != nil {
		log.Errorf("Problem getting server info %v", err)
		response.Status = "error"
		response.Error = err.Error()
	} else {
		response.Status = "ok"
		response.Data = info
	}
	json.NewEncoder(w).Encode(response)
}

func (s *Service) HandleOperations(w http.ResponseWriter, r *http.Request) {
	CORSHeaders(w, r)
	if !s.CheckAuth(w, r) {
		return
	}
	json.NewEncoder(w).Encode(Response{Status: "ok", Data: plesk.OperationNames()})
}

type panelList func(ctx context.Context, params plesk.Params) ([]plesk.Result, error)

// listings are the read-only panel listings operators can query.
func (s *Service) listings() map[string]panelList {
	return map[string]panelList{
		"customers": func(ctx context.Context, _ plesk.Params) ([]plesk.Result, error) {
			return s.Panel.ListClients(ctx)
		},
		"subscriptions": s.Panel.ListSubscriptions,
		"sites":         s.Panel.GetSites,
		"dbservers": func(ctx context.Context, _ plesk.Params) ([]plesk.Result, error) {
			return s.Panel.ListDatabaseServers(ctx)
		},
		"users": func(ctx context.Context, _ plesk.Params) ([]plesk.Result, error) {
			return s.Panel.ListUsers(ctx)
		},
	}
}

// List panel objects, query parameters become the filter, e.g. /panel/list/sites?subscription_id=9001
func (s *Service) HandlePanelList(w http.ResponseWriter, r *http.Request) {
	CORSHeaders(w, r)
	if !s.CheckAuth(w, r) {
		return
	}
	var response Response
	kind := mux.Vars(r)["kind"]
	list, ok := s.listings()[kind]
	if !ok {
		response.Status = "error"
		response.Error = "unknown listing " + kind
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(response)
		return
	}
	params := plesk.Params{}
	for key, values := range r.URL.Query() {
		params[key] = values[0]
	}
	results, err := list(r.Context(), params)
	if err != nil {
		log.Errorf("Problem listing panel %s: %v", kind, err)
		response.Status = "error"
		response.Error = err.Error()
	} else {
		response.Status = "ok"
		response.Data = results
	}
	json.NewEncoder(w).Encode(response)
}

// Handle Options pre-flight requests
func HandleOptions(w http.ResponseWriter, r *http.Request) {
	CORSHeaders(w, r)
}

// Generate CORS headers for responses
func CORSHeaders(w http.ResponseWriter, r *http.Request) {
	headers := w.Header()
	headers.Add("Access-Control-Allow-Headers", "Content-Type, Origin, Accept, token, api-key")
	headers.Add("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	headers.Add("Access-Control-Allow-Origin", "*")
}

// Check API Key Authorization
func (s *Service) CheckAuth(w http.ResponseWriter, r *http.Request) bool {
	if s.APIKey != "" && r.Header.Get("api-key") == s.APIKey {
		return true
	}
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
	return false
}
