// Package audit emits structured events to the audit service over RabbitMQ.
// Delivery is fire-and-forget: publishing never blocks a request on broker
// acknowledgment and a publish failure is logged, not surfaced.
package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"docuvault/internal/domain/models"
	"docuvault/internal/httputil"
	"docuvault/internal/tenant"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher writes audit records to a durable queue. A Publisher built
// without a broker URL is disabled and drops events silently, which keeps
// local development runnable without RabbitMQ.
type Publisher struct {
	queue  string
	logger *slog.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewPublisher connects to the broker and declares the durable audit queue.
// An empty URL returns a disabled publisher and no error.
func NewPublisher(url, queue string, logger *slog.Logger) (*Publisher, error) {
	p := &Publisher{queue: queue, logger: logger}
	if url == "" {
		logger.Warn("audit publisher disabled: no broker url configured")
		return p, nil
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	p.conn = conn
	p.ch = ch
	logger.Info("audit publisher connected", "queue", queue)
	return p, nil
}

// Emit publishes an event built from the bound tenant context. Missing
// context (system paths before binding) produces no event rather than a
// record with no tenant. Never returns an error to the caller.
func (p *Publisher) Emit(ctx context.Context, eventCode, details string, metadata map[string]any) {
	if p == nil {
		return
	}
	tc, err := tenant.FromContext(ctx)
	if err != nil {
		p.logger.Debug("audit event without tenant context dropped", "event_code", eventCode)
		return
	}

	record := models.AuditRecord{
		EventID:    uuid.NewString(),
		TenantID:   tc.TenantID(),
		UserID:     tc.UserID(),
		EventCode:  eventCode,
		Details:    details,
		OccurredAt: time.Now().UTC(),
		Metadata:   metadata,
	}
	if info, ok := httputil.RequestInfoFromContext(ctx); ok {
		record.SourceIP = info.SourceIP
	}

	p.publish(ctx, record)
}

func (p *Publisher) publish(ctx context.Context, record models.AuditRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil {
		return
	}

	body, err := json.Marshal(record)
	if err != nil {
		p.logger.Error("audit record marshal failed", "event_code", record.EventCode, "error", err)
		return
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    record.EventID,
		Timestamp:    record.OccurredAt,
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		p.logger.Error("audit publish failed", "event_code", record.EventCode, "error", err)
	}
}

// Close releases the broker connection.
func (p *Publisher) Close() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}
