package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tuanvumaihuynh/catalog-admin/internal/storage/mq"
)

// Invalidator marks cached query results stale.
type Invalidator interface {
	Invalidate(key string)
}

// Service consumes product change events and invalidates the given cache keys for each one.
type Service struct {
	logger      *slog.Logger
	mqConsumer  mq.Consumer
	topic       string
	invalidator Invalidator
	keys        []string
}

// New creates a new event service.
func New(
	logger *slog.Logger,
	mqConsumer mq.Consumer,
	topic string,
	invalidator Invalidator,
	keys ...string,
) *Service {
	return &Service{
		logger:      logger.With(slog.String("service", "event")),
		mqConsumer:  mqConsumer,
		topic:       topic,
		invalidator: invalidator,
		keys:        keys,
	}
}

type CleanupFunc func()

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	if err := s.mqConsumer.RegisterHandler(s.topic, s.handleMessage); err != nil {
		return nil, fmt.Errorf("register product changed event handler: %w", err)
	}

	mqCleanup, err := s.mqConsumer.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("run mq consumer: %w", err)
	}

	cleanup := func() {
		mqCleanup()
	}

	return cleanup, nil
}

func (s *Service) handleMessage(ctx context.Context, _ string, payload []byte) error {
	var ev ProductChangedEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return fmt.Errorf("unmarshal product changed event: %w", err)
	}

	if err := s.handleProductChangedEvent(ctx, ev); err != nil {
		return fmt.Errorf("handle product changed event: %w", err)
	}

	return nil
}
