// Package events publishes ledger events written to the outbox.
package events

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/IBM/sarama"
	"github.com/nats-io/nats.go"

	"seedworks/internal/config"
)

// Publisher delivers one serialized event to a broker
type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload []byte) error
	Close() error
}

// New returns the publisher selected by EVENTS_PROVIDER
func New(cfg config.EventsConfig) (Publisher, error) {
	switch cfg.Provider {
	case "nats":
		return NewNATSPublisher(cfg.NATSURL)
	case "kafka":
		return NewKafkaPublisher(cfg.KafkaBrokers)
	case "none", "":
		return NewNoopPublisher(), nil
	}
	return nil, fmt.Errorf("unsupported events provider %q", cfg.Provider)
}

// NATSPublisher publishes on core NATS subjects
type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("seedworks"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	log.Printf("[Events] connected to NATS at %s", url)
	return &NATSPublisher{conn: conn}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, topic, key string, payload []byte) error {
	msg := nats.NewMsg(topic)
	msg.Data = payload
	if key != "" {
		msg.Header.Set("Seedworks-Key", key)
	}
	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("nats publish %s: %w", topic, err)
	}
	return nil
}

func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

// KafkaPublisher is a synchronous producer that waits for all replicas
type KafkaPublisher struct {
	producer sarama.SyncProducer
}

func NewKafkaPublisher(brokers []string) (*KafkaPublisher, error) {
	kafkaConfig := sarama.NewConfig()
	kafkaConfig.Producer.RequiredAcks = sarama.WaitForAll
	kafkaConfig.Producer.Retry.Max = 3
	kafkaConfig.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, kafkaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	log.Printf("[Events] kafka producer connected to %v", brokers)
	return &KafkaPublisher{producer: producer}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, topic, key string, payload []byte) error {
	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(payload),
	}
	if _, _, err := p.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("kafka publish %s: %w", topic, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// NoopPublisher drops events. Used when no broker is configured and in tests.
type NoopPublisher struct {
	mu        sync.Mutex
	Published []string
}

func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

func (p *NoopPublisher) Publish(ctx context.Context, topic, key string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Published = append(p.Published, topic)
	return nil
}

func (p *NoopPublisher) Close() error {
	return nil
}
