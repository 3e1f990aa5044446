package kafka

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Shopify/sarama"
	log "github.com/sirupsen/logrus"
)

// Sarama configuration options
var (
	version  = "2.1.1"
	assignor = "roundrobin"
	oldest   = true
)

type HandlerFunc func(string, time.Time, []byte)

// Consumer reads lifecycle requests from a consumer group and hands every message to Handler.
type Consumer struct {
	Handler HandlerFunc

	client sarama.ConsumerGroup
	cancel context.CancelFunc
	wg     sync.WaitGroup
	ready  chan bool
	once   sync.Once
}

// StartConsumer joins group and consumes topics until StopConsumer is called.  It returns once
// the first session is set up.
func StartConsumer(brokers []string, topics []string, group string, handler HandlerFunc) (*Consumer, error) {
	log.Info("Starting a new Sarama consumer")
	kafkaversion, err := sarama.ParseKafkaVersion(version)
	if err != nil {
		return nil, err
	}

	config := sarama.NewConfig()
	config.Version = kafkaversion

	switch assignor {
	case "sticky":
		config.Consumer.Group.Rebalance.Strategy = sarama.BalanceStrategySticky
	case "roundrobin":
		config.Consumer.Group.Rebalance.Strategy = sarama.BalanceStrategyRoundRobin
	case "range":
		config.Consumer.Group.Rebalance.Strategy = sarama.BalanceStrategyRange
	default:
		return nil, errors.New("unrecognized consumer group partition assignor: " + assignor)
	}

	if oldest {
		config.Consumer.Offsets.Initial = sarama.OffsetOldest
	}

	client, err := sarama.NewConsumerGroup(brokers, group, config)
	if err != nil {
		return nil, err
	}
	consumer := &Consumer{
		Handler: handler,
		client:  client,
		ready:   make(chan bool),
	}

	ctx, cancel := context.WithCancel(context.Background())
	consumer.cancel = cancel
	stopped := make(chan error, 1)
	consumer.wg.Add(1)
	go func() {
		defer consumer.wg.Done()
		for {
			// Consume returns on every server-side rebalance and has to be called again to get
			// the new claims
			if err := client.Consume(ctx, topics, consumer); err != nil {
				log.Errorf("Error from consumer: %v", err)
				if errors.Is(err, sarama.ErrClosedConsumerGroup) {
					stopped <- err
					return
				}
				time.Sleep(time.Second)
			}
			if ctx.Err() != nil {
				stopped <- ctx.Err()
				return
			}
		}
	}()

	select {
	case <-consumer.ready:
		log.Info("Sarama consumer up and running!...")
		return consumer, nil
	case err := <-stopped:
		cancel()
		client.Close()
		return nil, err
	}
}

func (consumer *Consumer) StopConsumer() {
	log.Warn("Shutting down consumer")
	consumer.cancel()
	consumer.wg.Wait()
	if err := consumer.client.Close(); err != nil {
		log.Errorf("Error closing client: %v", err)
	}
}

// Setup is run at the beginning of a new session, before ConsumeClaim
func (consumer *Consumer) Setup(sarama.ConsumerGroupSession) error {
	consumer.once.Do(func() { close(consumer.ready) })
	return nil
}

// Cleanup is run at the end of a session, once all ConsumeClaim goroutines have exited
func (consumer *Consumer) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim must start a consumer loop of ConsumerGroupClaim's Messages().
func (consumer *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	// The `ConsumeClaim` itself is called within a goroutine, the handler runs inline so a service
	// only ever has one lifecycle run per partition in flight.
	for message := range claim.Messages() {
		log.Debugf("Message claimed: value = %s, timestamp = %v, topic = %s", string(message.Value), message.Timestamp, message.Topic)
		consumer.Handler(message.Topic, message.Timestamp, message.Value)
		session.MarkMessage(message, "")
	}
	return nil
}
