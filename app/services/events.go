package services

import (
	"context"

	"github.com/ruizhu/shopapi/pkg/event"
	"github.com/ruizhu/shopapi/pkg/logger"
)

// Publisher receives domain events once the change that produced them
// has been committed.
type Publisher interface {
	Publish(ctx context.Context, e event.Event) error
}

func publish(ctx context.Context, p Publisher, name string, payload any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, event.Event{Name: name, Payload: payload}); err != nil {
		logger.WithCtx(ctx).Warn("event not published", "event", name, "error", err)
	}
}
