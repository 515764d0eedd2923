package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/servease/payout-service/internal/domain/repository"
)

// Publisher delivers user notifications and outbox events to a RabbitMQ
// topic exchange. It implements provider.Notifier.
type Publisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	logger   *zap.Logger
}

// NewPublisher connects to the broker and declares the topic exchange
func NewPublisher(url, exchange string, logger *zap.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &Publisher{conn: conn, ch: ch, exchange: exchange, logger: logger}, nil
}

// Notify publishes a best-effort user notification
func (p *Publisher) Notify(ctx context.Context, userID, templateKind string, notifyCtx map[string]interface{}) error {
	payload := map[string]interface{}{
		"user_id": userID,
		"kind":    templateKind,
		"context": notifyCtx,
		"sent_at": time.Now().UTC(),
	}
	return p.publishJSON(ctx, "notification."+templateKind, payload)
}

// publishJSON marshals v and publishes it under the routing key
func (p *Publisher) publishJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        b,
	})
}

// Close tears down the channel and connection
func (p *Publisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// OutboxFlusher drains unpublished outbox events to the broker on a
// fixed interval. Events are marked published only after the broker
// accepts them, so a crash re-delivers rather than drops: consumers get
// at-least-once.
type OutboxFlusher struct {
	outbox    repository.OutboxRepository
	publisher *Publisher
	interval  time.Duration
	batchSize int
	logger    *zap.Logger
}

// NewOutboxFlusher creates a flusher over the given outbox and publisher
func NewOutboxFlusher(outbox repository.OutboxRepository, publisher *Publisher, interval time.Duration, logger *zap.Logger) *OutboxFlusher {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &OutboxFlusher{
		outbox:    outbox,
		publisher: publisher,
		interval:  interval,
		batchSize: 100,
		logger:    logger,
	}
}

// Run flushes until ctx is cancelled
func (f *OutboxFlusher) Run(ctx context.Context) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	f.logger.Info("Outbox flusher started", zap.Duration("interval", f.interval))

	for {
		select {
		case <-ctx.Done():
			f.logger.Info("Outbox flusher stopped")
			return
		case <-ticker.C:
			if err := f.Flush(ctx); err != nil {
				f.logger.Warn("Outbox flush failed", zap.Error(err))
			}
		}
	}
}

// Flush publishes one batch of unpublished events
func (f *OutboxFlusher) Flush(ctx context.Context) error {
	events, err := f.outbox.ListUnpublished(ctx, f.batchSize)
	if err != nil {
		return err
	}

	for _, event := range events {
		if err := f.publisher.publishJSON(ctx, event.RoutingKey, event.Payload); err != nil {
			// Leave the event unpublished; the next tick retries it.
			return fmt.Errorf("publish outbox event %d: %w", event.ID, err)
		}
		if err := f.outbox.MarkPublished(ctx, event.ID); err != nil {
			// Already on the wire; the duplicate on restart is the
			// at-least-once contract, not a bug.
			return fmt.Errorf("mark outbox event %d published: %w", event.ID, err)
		}
	}

	if len(events) > 0 {
		f.logger.Debug("Flushed outbox events", zap.Int("count", len(events)))
	}

	return nil
}
