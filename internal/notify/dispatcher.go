package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/matheus3301/jobboard/internal/metrics"
	"github.com/matheus3301/jobboard/internal/store"
	"go.uber.org/zap"
)

const batchSize = 20

// Users resolves a notification's recipient.
type Users interface {
	GetUser(ctx context.Context, id string) (*store.User, error)
}

// Dispatcher polls undelivered notifications and hands them to a Channel.
// A failed delivery is retried on later polls until it has used
// store.MaxDeliveryAttempts.
type Dispatcher struct {
	db       *store.DB
	users    Users
	channel  Channel
	interval time.Duration
	logger   *zap.Logger
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewDispatcher creates a dispatcher. users defaults to db.
func NewDispatcher(db *store.DB, users Users, ch Channel, interval time.Duration, logger *zap.Logger) *Dispatcher {
	if users == nil {
		users = db
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{db: db, users: users, channel: ch, interval: interval, logger: logger}
}

// Start begins polling.
func (d *Dispatcher) Start(ctx context.Context) {
	ctx, d.cancel = context.WithCancel(ctx)
	d.wg.Add(1)
	go d.loop(ctx)
}

// Stop stops polling and waits for the current batch.
func (d *Dispatcher) Stop() {
	if d.cancel != nil {
		d.cancel()
	}
	d.wg.Wait()
}

func (d *Dispatcher) loop(ctx context.Context) {
	defer d.wg.Done()
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.ProcessPending(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// ProcessPending delivers one batch and returns how many were delivered.
func (d *Dispatcher) ProcessPending(ctx context.Context) int {
	pending, err := d.db.PendingNotifications(ctx, batchSize)
	if err != nil {
		d.logger.Error("failed to read pending notifications", zap.Error(err))
		return 0
	}

	delivered := 0
	for _, n := range pending {
		if ctx.Err() != nil {
			return delivered
		}
		log := d.logger.With(zap.String("notification_id", n.ID), zap.String("user_id", n.UserID))

		to := Recipient{}
		u, err := d.users.GetUser(ctx, n.UserID)
		if err != nil {
			log.Warn("recipient lookup failed", zap.Error(err))
		}
		if u != nil {
			to = Recipient{Name: u.Name, Email: u.Email}
		}

		err = d.channel.Deliver(ctx, n, to)
		switch {
		case errors.Is(err, ErrNoRecipient):
			metrics.NotificationsDelivered.WithLabelValues("skipped").Inc()
			log.Debug("notification has no recipient address")
			if err := d.db.MarkNotificationDelivered(ctx, n.ID); err != nil {
				log.Error("failed to mark delivered", zap.Error(err))
			}
		case err != nil:
			metrics.NotificationsDelivered.WithLabelValues("failed").Inc()
			log.Error("notification delivery failed", zap.Int("attempt", n.Attempts+1), zap.Error(err))
			if err := d.db.MarkNotificationFailed(ctx, n.ID, err.Error()); err != nil {
				log.Error("failed to mark failed", zap.Error(err))
			}
		default:
			metrics.NotificationsDelivered.WithLabelValues("delivered").Inc()
			if err := d.db.MarkNotificationDelivered(ctx, n.ID); err != nil {
				log.Error("failed to mark delivered", zap.Error(err))
				continue
			}
			delivered++
		}
	}
	return delivered
}
