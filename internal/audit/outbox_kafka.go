package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
)

// streamRecord is the JSON structure published to the audit topic.
type streamRecord struct {
	ID         string `json:"id"`
	ActorID    string `json:"actor_id,omitempty"`
	Action     string `json:"action"`
	EntityType string `json:"entity_type,omitempty"`
	EntityID   string `json:"entity_id,omitempty"`
	Detail     string `json:"detail,omitempty"`
	ClientIP   string `json:"client_ip,omitempty"`
	UserAgent  string `json:"user_agent,omitempty"`
	Timestamp  string `json:"timestamp"`
}

// OutboxWorker drains unpublished audit entries to Kafka. It polls rather
// than listens so a broker outage only delays delivery; entries stay in the
// store until the produce is acknowledged. A crash between produce and
// MarkPublished re-sends the batch, so delivery is at-least-once and the
// record id is the dedup handle downstream.
type OutboxWorker struct {
	outbox    Outbox
	client    *kgo.Client
	topic     string
	batchSize int
	interval  time.Duration
	logger    *slog.Logger
}

func NewOutboxWorker(outbox Outbox, client *kgo.Client, topic string, logger *slog.Logger) *OutboxWorker {
	return &OutboxWorker{
		outbox:    outbox,
		client:    client,
		topic:     topic,
		batchSize: 100,
		interval:  time.Second,
		logger:    logger,
	}
}

// EnsureTopic creates the audit topic if it does not exist yet. Safe to call
// on every startup.
func EnsureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	adm := kadm.NewClient(client)
	_, err := adm.CreateTopic(ctx, 1, 1, nil, topic)
	if err != nil {
		details, derr := adm.ListTopics(ctx, topic)
		if derr == nil && details.Has(topic) {
			return nil
		}
		return fmt.Errorf("create audit topic %q: %w", topic, err)
	}
	return nil
}

func (w *OutboxWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.drain(ctx); err != nil {
				w.logger.ErrorContext(ctx, "audit outbox drain failed", "error", err)
			}
		}
	}
}

func (w *OutboxWorker) drain(ctx context.Context) error {
	for {
		entries, err := w.outbox.FetchUnpublished(ctx, w.batchSize)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}

		records := make([]*kgo.Record, 0, len(entries))
		ids := make([]uuid.UUID, 0, len(entries))
		for _, entry := range entries {
			payload, err := json.Marshal(streamRecord{
				ID:         entry.ID.String(),
				ActorID:    entry.ActorID.String(),
				Action:     string(entry.Action),
				EntityType: entry.EntityType,
				EntityID:   entry.EntityID,
				Detail:     entry.Detail,
				ClientIP:   entry.ClientIP,
				UserAgent:  entry.UserAgent,
				Timestamp:  entry.Timestamp.Format(time.RFC3339Nano),
			})
			if err != nil {
				return fmt.Errorf("marshal audit record: %w", err)
			}
			records = append(records, &kgo.Record{
				Topic: w.topic,
				Key:   []byte(entry.EntityID),
				Value: payload,
			})
			ids = append(ids, entry.ID)
		}

		if err := w.client.ProduceSync(ctx, records...).FirstErr(); err != nil {
			return fmt.Errorf("produce audit records: %w", err)
		}
		if err := w.outbox.MarkPublished(ctx, ids); err != nil {
			return err
		}
		if len(entries) < w.batchSize {
			return nil
		}
	}
}
