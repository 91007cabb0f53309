package kafka

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

type Config struct {
	Addrs []string `yaml:"addrs" envconfig:"KAFKA_ADDRS"`
	Topic string   `yaml:"topic" envconfig:"KAFKA_TOPIC" default:"library-events"`
}

const (
	EventBookCreated  = "book.created"
	EventBookDeleted  = "book.deleted"
	EventBookBorrowed = "book.borrowed"
	EventBookSynced   = "book.synced"
	EventUserCreated  = "user.created"
)

type Event struct {
	Service   string    `json:"service"`
	Type      string    `json:"type"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher emits domain events. Publishing never blocks the request that
// caused the event and its outcome never changes that request's response.
type Publisher interface {
	Publish(eventType string, payload any) error
	Close() error
}

func NewProducer(cfg Config) (sarama.AsyncProducer, error) {
	defaultCfg := sarama.NewConfig()

	defaultCfg.Producer.RequiredAcks = sarama.WaitForLocal
	defaultCfg.Producer.Return.Errors = true
	defaultCfg.Producer.Retry.Max = 0

	return sarama.NewAsyncProducer(cfg.Addrs, defaultCfg)
}

// NewPublisher returns a Kafka-backed publisher, or a no-op one when no
// brokers are configured.
func NewPublisher(cfg Config, service string, log *zap.Logger) (Publisher, error) {
	if len(cfg.Addrs) == 0 {
		return NopPublisher{}, nil
	}
	producer, err := NewProducer(cfg)
	if err != nil {
		return nil, err
	}
	return NewEventLog(producer, cfg.Topic, service, log), nil
}

var ErrClosed = errors.New("event log closed")

type EventLog struct {
	// mu keeps Close from closing Input while a Publish is sending on it.
	mu     sync.RWMutex
	closed bool

	producer sarama.AsyncProducer
	topic    string
	service  string
	log      *zap.Logger
	now      func() time.Time
	done     chan struct{}
}

func NewEventLog(producer sarama.AsyncProducer, topic, service string, log *zap.Logger) *EventLog {
	l := &EventLog{
		producer: producer,
		topic:    topic,
		service:  service,
		log:      log.Named("events"),
		now:      time.Now,
		done:     make(chan struct{}),
	}
	go l.drainErrors()
	return l
}

func (l *EventLog) drainErrors() {
	defer close(l.done)
	for err := range l.producer.Errors() {
		l.log.Warn("publish event", zap.String("topic", err.Msg.Topic), zap.Error(err.Err))
	}
}

func (l *EventLog) Publish(eventType string, payload any) error {
	data, err := json.Marshal(Event{
		Service:   l.service,
		Type:      eventType,
		Payload:   payload,
		Timestamp: l.now().UTC(),
	})
	if err != nil {
		return err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return ErrClosed
	}
	l.producer.Input() <- &sarama.ProducerMessage{
		Topic: l.topic,
		Key:   sarama.StringEncoder(eventType),
		Value: sarama.ByteEncoder(data),
	}
	return nil
}

// Close is safe to call while requests are still publishing; later Publish
// calls get ErrClosed.
func (l *EventLog) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.mu.Unlock()

	err := l.producer.Close()
	<-l.done
	return err
}

type NopPublisher struct{}

func (NopPublisher) Publish(string, any) error { return nil }
func (NopPublisher) Close() error              { return nil }
