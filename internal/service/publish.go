package service

import (
	"context"
	"log/slog"

	"contractor-payments/internal/events"
)

// publishEvent runs after commit. A failed publish is logged and never undoes
// the committed operation.
func publishEvent(ctx context.Context, publisher events.Publisher, logger *slog.Logger, subject string, event interface{}) {
	if err := publisher.Publish(ctx, subject, event); err != nil {
		logger.Error("Failed to publish event", "subject", subject, "error", err)
	}
}
