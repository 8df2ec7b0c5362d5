package sink

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"doc-splitter/internal/retry"
)

// Event is the message published for every chunk.
type Event struct {
	ID     uuid.UUID `json:"id"`
	Source string    `json:"source"`
	Name   string    `json:"name"`
	Index  int       `json:"index"`
	Total  int       `json:"total"`
	Lines  int       `json:"lines"`
	Text   string    `json:"text"`
}

type publisher interface {
	Publish(subject string, data []byte) error
}

// NATS publishes a JSON Event per chunk to a fixed subject.
type NATS struct {
	log      *slog.Logger
	pub      publisher
	subject  string
	attempts int
	base     time.Duration
	closeFn  func() error
}

// NewNATS constructs a NATS sink on an established connection. Close drains
// the connection.
func NewNATS(log *slog.Logger, nc *nats.Conn, subject string) *NATS {
	s := newNATS(log, nc, subject)
	s.closeFn = nc.Drain
	return s
}

func newNATS(log *slog.Logger, pub publisher, subject string) *NATS {
	return &NATS{
		log:      log,
		pub:      pub,
		subject:  subject,
		attempts: 3,
		base:     200 * time.Millisecond,
	}
}

var _ Sink = (*NATS)(nil)

func (s *NATS) Name() string { return "nats" }

func (s *NATS) Write(ctx context.Context, c Chunk) error {
	if s.subject == "" {
		return errors.New("subject required")
	}
	body, err := json.Marshal(Event{
		ID:     uuid.New(),
		Source: c.Source,
		Name:   c.Name,
		Index:  c.Index,
		Total:  c.Total,
		Lines:  c.Lines,
		Text:   c.Text,
	})
	if err != nil {
		return err
	}
	attempt := 0
	return retry.Do(ctx, s.attempts, s.base, func(context.Context) error {
		attempt++
		err := s.pub.Publish(s.subject, body)
		if err != nil && attempt < s.attempts {
			s.log.Warn("publish failed, retrying", "subject", s.subject, "name", c.Name, "attempt", attempt, "err", err)
		}
		return err
	})
}

func (s *NATS) Close() error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn()
}
