package api

import (
	"context"
	"time"

	"github.com/matheus3301/jobboard/internal/bus"
	"github.com/matheus3301/jobboard/internal/rpc"
	"github.com/matheus3301/jobboard/internal/status"
	"github.com/matheus3301/jobboard/internal/store"
	"go.uber.org/zap"
)

// Features describes which optional backends the daemon runs with.
type Features struct {
	Storage  string
	Cache    bool
	Matching string
	Email    bool
}

// DaemonService implements the DaemonService gRPC service.
type DaemonService struct {
	instance  string
	startedAt time.Time
	machine   *status.Machine
	bus       *bus.Bus
	db        *store.DB
	features  Features
	logger    *zap.Logger
}

// NewDaemonService creates a new daemon status service.
func NewDaemonService(instance string, machine *status.Machine, b *bus.Bus, db *store.DB, f Features, logger *zap.Logger) *DaemonService {
	return &DaemonService{
		instance:  instance,
		startedAt: time.Now(),
		machine:   machine,
		bus:       b,
		db:        db,
		features:  f,
		logger:    logger,
	}
}

func (s *DaemonService) GetStatus(ctx context.Context, _ *rpc.Empty) (*rpc.StatusResponse, error) {
	state, reason, since := s.machine.Snapshot()

	resp := &rpc.StatusResponse{
		Instance: s.instance,
		State:    string(state),
		Reason:   reason,
		SinceMs:  since.UnixMilli(),
		UptimeMs: time.Since(s.startedAt).Milliseconds(),
		Storage:  s.features.Storage,
		Cache:    s.features.Cache,
		Matching: s.features.Matching,
		Email:    s.features.Email,
	}
	if s.bus != nil {
		resp.Listeners = s.bus.Subscribers()
	}

	// Counts are best effort; status must answer even while migrating.
	if s.db != nil {
		if stats, err := s.db.Stats(ctx); err == nil {
			resp.Stats = *stats
		} else {
			s.logger.Debug("stats unavailable", zap.Error(err))
		}
	}

	return resp, nil
}
