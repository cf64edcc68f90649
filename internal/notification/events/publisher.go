// Package events streams terminal delivery outcomes to Kafka.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"fantamorto/internal/notification/models"
	"fantamorto/internal/platform/config"
)

// Outcome is the wire form of a history entry. Message bodies stay out of
// the stream.
type Outcome struct {
	HistoryID  int64     `json:"history_id"`
	JobID      int64     `json:"job_id"`
	Channel    string    `json:"channel"`
	Address    string    `json:"address"`
	TeamName   string    `json:"team_name,omitempty"`
	PersonName string    `json:"person_name,omitempty"`
	Outcome    string    `json:"outcome"`
	Attempts   int       `json:"attempts"`
	Error      string    `json:"error,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// FromEntry converts a history entry.
func FromEntry(e models.HistoryEntry) Outcome {
	return Outcome{
		HistoryID:  e.ID,
		JobID:      e.JobID,
		Channel:    string(e.Channel),
		Address:    e.Address,
		TeamName:   e.TeamName,
		PersonName: e.PersonName,
		Outcome:    string(e.Outcome),
		Attempts:   e.Attempts,
		Error:      e.Error,
		RecordedAt: e.RecordedAt.UTC(),
	}
}

// Record encodes an entry keyed by job id.
func Record(e models.HistoryEntry) (*kgo.Record, error) {
	value, err := json.Marshal(FromEntry(e))
	if err != nil {
		return nil, fmt.Errorf("encode outcome %d: %w", e.JobID, err)
	}
	return &kgo.Record{
		Key:   []byte(strconv.FormatInt(e.JobID, 10)),
		Value: value,
	}, nil
}

// Publisher produces outcome records to one topic.
type Publisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// Option configures a Publisher.
type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPublisher connects lazily to the configured brokers.
func NewPublisher(cfg config.Kafka, opts ...Option) (*Publisher, error) {
	if !cfg.Enabled() {
		return nil, errors.New("kafka brokers and topic are required")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression(), kgo.NoCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	p := &Publisher{client: client, topic: cfg.Topic, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// EnsureTopic creates the topic with one partition when it does not exist.
func (p *Publisher) EnsureTopic(ctx context.Context) error {
	resp, err := kadm.NewClient(p.client).CreateTopics(ctx, 1, 1, nil, p.topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", p.topic, err)
	}
	for _, r := range resp {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}

// Publish produces one record per entry and waits for the acks.
func (p *Publisher) Publish(ctx context.Context, entries []models.HistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	records := make([]*kgo.Record, 0, len(entries))
	for _, e := range entries {
		r, err := Record(e)
		if err != nil {
			return err
		}
		records = append(records, r)
	}
	if err := p.client.ProduceSync(ctx, records...).FirstErr(); err != nil {
		return fmt.Errorf("produce outcomes: %w", err)
	}
	p.logger.DebugContext(ctx, "delivery outcomes published", "topic", p.topic, "count", len(records))
	return nil
}

// Close flushes and releases the client.
func (p *Publisher) Close() {
	p.client.Close()
}
