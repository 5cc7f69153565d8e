package event

import (
	"context"
	"log/slog"
)

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ProductChangedEvent is published after every successful product write.
type ProductChangedEvent struct {
	ProductID string `json:"product_id"`
	Action    string `json:"action"`
}

func (s *Service) handleProductChangedEvent(ctx context.Context, ev ProductChangedEvent) error {
	s.logger.InfoContext(ctx, "handling product changed event",
		slog.String("product_id", ev.ProductID),
		slog.String("action", ev.Action),
	)

	for _, key := range s.keys {
		s.invalidator.Invalidate(key)
	}
	return nil
}
