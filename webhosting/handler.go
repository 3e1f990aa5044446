package main

import (
	"context"
	"encoding/json"
	"time"

	log "github.com/sirupsen/logrus"

	"bitbucket.org/telmaxdc/webhosting-provision/kafka"
	"bitbucket.org/telmaxdc/webhosting-provision/linkdb"
	"bitbucket.org/telmaxdc/webhosting-provision/plesk"
	"bitbucket.org/telmaxdc/webhosting-provision/provision"
	hostingprovision "bitbucket.org/telmaxdc/webhosting-provision/structs"
)

// Publisher sends lifecycle results and operator alerts back to the billing side.
type Publisher interface {
	SubmitResult(result hostingprovision.ProvisionResult) error
	SubmitException(exception hostingprovision.ProvisionException) error
}

// Service holds everything a lifecycle request needs.
type Service struct {
	Orchestrator *provision.Orchestrator
	Panel        *plesk.Client
	Store        linkdb.Store
	Results      Publisher
	APIKey       string
}

func (s *Service) MessageHandler(topic string, timestamp time.Time, data []byte) {
	log.Debugf("Kafka message on %v at %v, %d bytes", topic, timestamp, len(data))
	switch topic {
	case kafka.RequestTopic:
		// Create an empty request object
		var request hostingprovision.ProvisionRequest

		err := json.Unmarshal(data, &request)
		if err != nil {
			log.Warnf("unmarshaling error: %v", err)
		} else {
			s.HandleProvision(context.Background(), request)
		}
	}
}

// HandleProvision runs one lifecycle request and publishes its result.
func (s *Service) HandleProvision(ctx context.Context, request hostingprovision.ProvisionRequest) hostingprovision.ProvisionResult {
	log.Infof("Got %s request %s for service %s", request.RequestType, request.RequestID, request.ServiceID)
	outcome := s.Orchestrator.Handle(ctx, request)
	result := outcome.Result(request)
	if outcome.Success {
		log.Infof("%s of service %s: %s", request.RequestType, request.ServiceID, outcome.Reason)
	} else {
		log.Errorf("%s of service %s failed in state %s: %s", request.RequestType, request.ServiceID, outcome.State, outcome.Reason)
	}
	if s.Results != nil {
		if err := s.Results.SubmitResult(result); err != nil {
			log.Errorf("Problem publishing result for %s: %v", request.RequestID, err)
		}
		if outcome.FollowUp != nil {
			s.raise(request, outcome.FollowUp)
		}
	}
	return result
}

// raise alerts an operator about panel state a run could not settle.
func (s *Service) raise(request hostingprovision.ProvisionRequest, followUp *provision.FollowUp) {
	log.Warnf("Service %s needs follow up (%s): %s", request.ServiceID, followUp.Tag, followUp.Detail)
	exception := hostingprovision.ProvisionException{
		RequestID: request.RequestID,
		ServiceID: request.ServiceID,
		Time:      time.Now(),
		System:    "webhosting",
		Tag:       followUp.Tag,
		Alert:     true,
		Error:     followUp.Detail,
	}
	if err := s.Results.SubmitException(exception); err != nil {
		log.Errorf("Problem publishing exception for %s: %v", request.RequestID, err)
	}
}
