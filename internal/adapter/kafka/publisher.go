package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/quake-feed-service/internal/config"
	"github.com/couchcryptid/quake-feed-service/internal/domain"
	"github.com/couchcryptid/quake-feed-service/internal/loader"
	"github.com/couchcryptid/quake-feed-service/internal/observability"
)

// DefaultQueueSize is the number of deliveries buffered for publishing.
const DefaultQueueSize = 16

// messageWriter is the subset of *kafkago.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher forwards accepted deliveries to a Kafka topic, one message per
// earthquake. It implements loader.Observer; callbacks only enqueue, and Run
// does the writing.
type Publisher struct {
	writer  messageWriter
	queue   chan loader.Delivery
	metrics *observability.Metrics
	logger  *slog.Logger

	mu         sync.Mutex
	generation uint64
}

// NewPublisher creates a Kafka producer for the configured topic.
func NewPublisher(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return newPublisher(w, DefaultQueueSize, metrics, logger)
}

func newPublisher(w messageWriter, queueSize int, metrics *observability.Metrics, logger *slog.Logger) *Publisher {
	return &Publisher{
		writer:  w,
		queue:   make(chan loader.Delivery, queueSize),
		metrics: metrics,
		logger:  logger,
	}
}

// OnDelivered queues a delivery from the current generation. Deliveries that
// would block the caller are dropped.
func (p *Publisher) OnDelivered(d loader.Delivery) {
	p.mu.Lock()
	current := p.generation
	p.mu.Unlock()

	if d.Generation != current || len(d.Earthquakes) == 0 {
		return
	}
	select {
	case p.queue <- d:
	default:
		p.metrics.PublishErrors.Inc()
		p.logger.Warn("publish queue full, dropping delivery", "cycle_id", d.CycleID)
	}
}

// OnInvalidated stops accepting deliveries from older generations.
func (p *Publisher) OnInvalidated(generation uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.generation = generation
}

// Run publishes queued deliveries until ctx is cancelled.
func (p *Publisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case d := <-p.queue:
			if err := p.publish(ctx, d); err != nil {
				p.metrics.PublishErrors.Inc()
				p.logger.Error("publish delivery failed", "error", err, "cycle_id", d.CycleID)
			}
		}
	}
}

func (p *Publisher) publish(ctx context.Context, d loader.Delivery) error {
	msgs := make([]kafkago.Message, len(d.Earthquakes))
	for i := range d.Earthquakes {
		msg, err := serializeToMessage(d, d.Earthquakes[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write messages: %w", err)
	}
	p.metrics.MessagesPublished.Add(float64(len(msgs)))
	p.logger.Debug("delivery published", "cycle_id", d.CycleID, "messages", len(msgs))
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals one earthquake of a delivery into a Kafka message.
func serializeToMessage(d loader.Delivery, q domain.Earthquake) (kafkago.Message, error) {
	data, err := json.Marshal(q)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize earthquake: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(q.DetailURL),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "cycle_id", Value: []byte(d.CycleID)},
			{Key: "generation", Value: []byte(strconv.FormatUint(d.Generation, 10))},
			{Key: "delivered_at", Value: []byte(d.CompletedAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}
