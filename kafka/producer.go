package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Shopify/sarama"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	hostingprovision "bitbucket.org/telmaxdc/webhosting-provision/structs"
)

var (
	RequestTopic   = "webhostingrequest"
	ResultTopic    = "webhostingresult"
	WelcomeTopic   = "webhostingwelcome"
	ExceptionTopic = "provisionexception"
)

// WelcomeMessage asks the mailer to send the welcome email of a new web hosting service.
type WelcomeMessage struct {
	RequestID string    // a UUID for this message
	ServiceID string    // The service that was provisioned
	Time      time.Time // When provisioning completed
}

// Producer publishes lifecycle requests, results and welcome notifications.  Messages are keyed by
// service id so every service stays on one partition.
type Producer struct {
	producer sarama.SyncProducer
}

func StartProducer(brokers []string) (*Producer, error) {
	producer, err := NewProducer(brokers)
	if err != nil {
		return nil, err
	}
	log.Info("Connected to Kafka cluster!")
	return &Producer{producer: producer}, nil
}

// WrapProducer publishes through an existing sarama producer.
func WrapProducer(producer sarama.SyncProducer) *Producer {
	return &Producer{producer: producer}
}

func NewProducer(brokers []string) (sarama.SyncProducer, error) {
	config := sarama.NewConfig()
	log.Infof("brokers list is %v", brokers)
	config.Producer.Retry.Max = 10 // Retry up to 10 times to produce the message
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	return sarama.NewSyncProducer(brokers, config)
}

func (p *Producer) send(topic, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	message := sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(data),
	}
	partition, offset, err := p.producer.SendMessage(&message)
	if err != nil {
		log.Errorf("Kafka producer error %v", err)
		return err
	}
	log.Debugf("%s partition is %v and offset is %v", topic, partition, offset)
	return nil
}

// SubmitRequest stamps the request with a fresh id and queues it.
func (p *Producer) SubmitRequest(request hostingprovision.ProvisionRequest) (id string, err error) {
	request.RequestID = uuid.New().String()
	id = request.RequestID
	err = p.send(RequestTopic, request.ServiceID, request)
	return
}

func (p *Producer) SubmitResult(result hostingprovision.ProvisionResult) error {
	return p.send(ResultTopic, result.ServiceID, result)
}

func (p *Producer) SubmitException(exception hostingprovision.ProvisionException) error {
	return p.send(ExceptionTopic, exception.ServiceID, exception)
}

func (p *Producer) SendWelcome(ctx context.Context, serviceID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.send(WelcomeTopic, serviceID, WelcomeMessage{
		RequestID: uuid.New().String(),
		ServiceID: serviceID,
		Time:      time.Now(),
	})
}

func (p *Producer) Shutdown() {
	if err := p.producer.Close(); err != nil {
		log.Errorf("Error closing producer: %v", err)
	}
}
