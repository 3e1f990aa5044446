package main

/*
	Configured for testing - send a lifecycle request onto the queue and see what happens

*/

import (
	"flag"
	"strings"

	log "github.com/sirupsen/logrus"

	"bitbucket.org/telmaxdc/webhosting-provision/kafka"
	hostingprovision "bitbucket.org/telmaxdc/webhosting-provision/structs"
)

var (
	KafkaBrk    = flag.String("kafka.brokers", "localhost:9092", "Kafka brokers list separated by commas")
	RequestType = flag.String("type", hostingprovision.RequestActivate, "Activate, Reactivate, Deactivate or Terminate")
	ServiceID   = flag.String("service", "1042", "Billing service id")
	Username    = flag.String("username", "acme1", "Panel login")
	Iterations  = flag.Int("n", 1, "Number of copies to send")
)

func main() {
	flag.Parse()
	request := hostingprovision.ProvisionRequest{
		ServiceID:    *ServiceID,
		AccountCode:  "ACCT0001",
		CustomerName: "Test Account",
		Email:        "test@acme.example",
		Hostname:     "acme.example",
		Username:     *Username,
		Password:     "Xx#12345",
		RequestType:  *RequestType,
		RequestUser:  "tstpierre",
	}
	if err := request.CheckValid(); err != nil {
		log.Fatalf("Request is not valid: %v", err)
	}

	producer, err := kafka.StartProducer(strings.Split(*KafkaBrk, ","))
	if err != nil {
		log.Fatalf("Problem connecting to kafka %v", err)
	}
	defer producer.Shutdown()

	for i := *Iterations; i > 0; i-- {
		id, err := producer.SubmitRequest(request)
		if err != nil {
			log.Errorf("Problem submitting request %v", err)
			continue
		}
		log.Infof("Request id is %v", id)
	}
}
