// Package kafkahandler publishes fragments to a Kafka topic. All
// fragments of a domain share one key so they land on one partition in
// emission order.
package kafkahandler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/philipp01105/syslogconsole/core"
	"github.com/philipp01105/syslogconsole/handler"
)

// Header names attached to every message
const (
	HeaderSeverity = "severity"
	HeaderFacility = "facility"
)

// ErrNoBrokers is returned by New when Config.Brokers is empty
var ErrNoBrokers = errors.New("kafkahandler: at least one broker is required")

// Config holds configuration for the Kafka handler
type Config struct {
	Brokers []string
	Topic   string
	// Key is the message key, usually the logger domain
	Key      string
	Facility core.Facility
	// WriteTimeout bounds each Emit (default: 10s)
	WriteTimeout time.Duration
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaHandler writes each fragment as one Kafka message
type KafkaHandler struct {
	writer   messageWriter
	key      []byte
	facility []byte
	timeout  time.Duration
	now      func() time.Time
	stats    *handler.Stats
	mu       sync.RWMutex
	closed   bool
}

// New creates a synchronous writer with a hash balancer on Key
func New(cfg Config) (*KafkaHandler, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrNoBrokers
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
	return newWithWriter(cfg, w), nil
}

func newWithWriter(cfg Config, w messageWriter) *KafkaHandler {
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	return &KafkaHandler{
		writer:   w,
		key:      []byte(cfg.Key),
		facility: []byte(cfg.Facility.String()),
		timeout:  cfg.WriteTimeout,
		now:      time.Now,
		stats:    handler.NewStats(),
	}
}

// Emit publishes text and waits for the broker acknowledgement
func (h *KafkaHandler) Emit(severity core.Severity, text string) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return handler.ErrClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	err := h.writer.WriteMessages(ctx, kafka.Message{
		Key:   h.key,
		Value: []byte(text),
		Time:  h.now(),
		Headers: []kafka.Header{
			{Key: HeaderSeverity, Value: []byte(severity.String())},
			{Key: HeaderFacility, Value: h.facility},
		},
	})
	if err != nil {
		h.stats.IncrementFailed()
		return err
	}
	h.stats.IncrementProcessed()
	return nil
}

// Stats returns a snapshot of the current statistics
func (h *KafkaHandler) Stats() handler.Snapshot {
	return h.stats.GetSnapshot()
}

// Close flushes pending writes and closes the writer
func (h *KafkaHandler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	return h.writer.Close()
}
