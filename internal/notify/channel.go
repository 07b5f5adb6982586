// Package notify delivers stored notifications outside the app, by email
// when SES is configured.
package notify

import (
	"context"
	"errors"

	"github.com/matheus3301/jobboard/internal/store"
	"go.uber.org/zap"
)

// ErrNoRecipient is returned by a Channel that has no address for the user.
var ErrNoRecipient = errors.New("recipient has no address")

// Recipient is who a notification is delivered to.
type Recipient struct {
	Name  string
	Email string
}

// Channel delivers one notification.
type Channel interface {
	Deliver(ctx context.Context, n store.Notification, to Recipient) error
}

// LogChannel writes notifications to the log. The daemon uses it when no
// email sender is configured.
type LogChannel struct {
	Logger *zap.Logger
}

func (c LogChannel) Deliver(_ context.Context, n store.Notification, to Recipient) error {
	if c.Logger != nil {
		c.Logger.Info("notification",
			zap.String("notification_id", n.ID),
			zap.String("user_id", n.UserID),
			zap.String("kind", n.Kind),
			zap.String("to", to.Email),
			zap.String("title", n.Title))
	}
	return nil
}
