package daemon

import (
	"context"
	"errors"
	"net/http"

	"github.com/matheus3301/jobboard/internal/api"
	"github.com/matheus3301/jobboard/internal/applications"
	"github.com/matheus3301/jobboard/internal/blob"
	"github.com/matheus3301/jobboard/internal/bus"
	"github.com/matheus3301/jobboard/internal/cache"
	"github.com/matheus3301/jobboard/internal/config"
	"github.com/matheus3301/jobboard/internal/directory"
	"github.com/matheus3301/jobboard/internal/instance"
	"github.com/matheus3301/jobboard/internal/lock"
	"github.com/matheus3301/jobboard/internal/logging"
	"github.com/matheus3301/jobboard/internal/matching"
	"github.com/matheus3301/jobboard/internal/messaging"
	"github.com/matheus3301/jobboard/internal/metrics"
	"github.com/matheus3301/jobboard/internal/notify"
	"github.com/matheus3301/jobboard/internal/status"
	"github.com/matheus3301/jobboard/internal/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds the resolved instance configuration passed to the fx module.
type Params struct {
	Instance   string
	SocketPath string // optional override for testing; empty = use default
	ConfigPath string // optional override; empty = instance.ConfigPath()
}

// Module returns the fx module for the daemon, composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("daemon",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideConfig,
			provideBus,
			provideStateMachine,
			provideLock,
			provideStore,
			provideBlobs,
			provideCache,
			provideDirectory,
			provideLocal,
			provideMatcher,
			provideApplications,
			provideMatchingEngine,
			provideChannel,
			provideDispatcher,
			provideMetricsServer,
			provideFeatures,
			provideDaemonService,
			api.NewConversationService,
			api.NewMessageService,
			api.NewDirectoryService,
			api.NewApplicationService,
			api.NewStorageService,
			NewServer,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	return logging.New(instance.LogPath(p.Instance), p.Instance)
}

func provideConfig(p Params, logger *zap.Logger) (*config.Config, error) {
	path := p.ConfigPath
	if path == "" {
		path = instance.ConfigPath()
	}
	cfg, err := config.LoadDaemon(path, instance.EnvPath())
	if err != nil {
		return nil, err
	}
	logger.Info("config loaded",
		zap.String("path", path),
		zap.String("storage", cfg.Storage.Backend),
		zap.Bool("cache", cfg.Cache.RedisAddr != ""),
		zap.Bool("remote_matching", cfg.Matching.URL != ""),
	)
	return cfg, nil
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideStateMachine(b *bus.Bus) *status.Machine {
	return status.NewMachine(b)
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if err := instance.EnsureDir(p.Instance); err != nil {
		return nil, err
	}
	logger.Info("acquiring instance lock", zap.String("instance", p.Instance))
	l, err := lock.Acquire(instance.Dir(p.Instance))
	if err != nil {
		return nil, err
	}
	logger.Info("instance lock acquired")
	return l, nil
}

// provideStore depends on the lock so two daemons never migrate the same file.
func provideStore(p Params, _ *lock.Lock, b *bus.Bus, machine *status.Machine, logger *zap.Logger) (*store.DB, error) {
	_ = machine.Transition(status.Migrating)

	dbPath := instance.DBPath(p.Instance)
	db, err := store.Open(dbPath)
	if err != nil {
		_ = machine.TransitionWithReason(status.Error, err.Error())
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		_ = machine.TransitionWithReason(status.Error, err.Error())
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	db.SetBus(b)
	logger.Info("store initialized", zap.String("path", dbPath))
	return db, nil
}

func provideBlobs(p Params, cfg *config.Config, logger *zap.Logger) (blob.Storage, error) {
	if cfg.Storage.Backend == "s3" {
		logger.Info("blob storage: s3", zap.String("bucket", cfg.Storage.Bucket), zap.String("region", cfg.Storage.Region))
		return blob.NewS3Store(context.Background(), cfg.Storage.Bucket, cfg.Storage.Region, cfg.Storage.PublicURL)
	}
	root := instance.BlobDir(p.Instance)
	logger.Info("blob storage: file", zap.String("root", root))
	return blob.NewFileStore(root, cfg.Storage.PublicURL)
}

func provideCache(cfg *config.Config) cache.Cache {
	if cfg.Cache.RedisAddr == "" {
		return cache.Nop{}
	}
	return cache.NewRedis(cache.Options{
		Addr:     cfg.Cache.RedisAddr,
		Password: cfg.Cache.RedisPassword,
		DB:       cfg.Cache.RedisDB,
		TTL:      cfg.Cache.TTL.Duration,
	})
}

func provideDirectory(db *store.DB, c cache.Cache, blobs blob.Storage, logger *zap.Logger) *directory.Directory {
	return directory.New(db, c, blobs, logger)
}

func provideLocal(db *store.DB, b *bus.Bus, blobs blob.Storage, dir *directory.Directory, logger *zap.Logger) *messaging.Local {
	return messaging.NewLocal(db, b, blobs, dir, logger)
}

func provideMatcher(cfg *config.Config) matching.Matcher {
	if cfg.Matching.URL == "" {
		return matching.LocalScorer{}
	}
	return matching.NewClient(cfg.Matching.URL, cfg.Matching.Timeout.Duration)
}

func provideApplications(db *store.DB, dir *directory.Directory, m matching.Matcher, logger *zap.Logger) *applications.Service {
	return applications.NewService(db, dir, m, logger)
}

func provideMatchingEngine(b *bus.Bus, apps *applications.Service, logger *zap.Logger) *matching.Engine {
	return matching.NewEngine(b, apps, logger)
}

func provideChannel(cfg *config.Config, logger *zap.Logger) (notify.Channel, error) {
	if cfg.Notify.Sender == "" {
		logger.Info("email delivery disabled, notifications are logged")
		return notify.LogChannel{Logger: logger}, nil
	}
	return notify.NewSESChannel(context.Background(), cfg.Notify.SESRegion, cfg.Notify.Sender, cfg.Notify.PublicURL)
}

func provideDispatcher(db *store.DB, dir *directory.Directory, ch notify.Channel, cfg *config.Config, logger *zap.Logger) *notify.Dispatcher {
	return notify.NewDispatcher(db, dir, ch, cfg.Notify.Interval.Duration, logger)
}

// provideMetricsServer returns nil when no metrics address is configured.
func provideMetricsServer(cfg *config.Config) *http.Server {
	if cfg.Metrics.Addr == "" {
		return nil
	}
	return metrics.NewServer(cfg.Metrics.Addr)
}

func provideFeatures(cfg *config.Config) api.Features {
	f := api.Features{
		Storage:  cfg.Storage.Backend,
		Cache:    cfg.Cache.RedisAddr != "",
		Matching: "local",
		Email:    cfg.Notify.Sender != "",
	}
	if cfg.Matching.URL != "" {
		f.Matching = "remote"
	}
	return f
}

func provideDaemonService(p Params, m *status.Machine, b *bus.Bus, db *store.DB, f api.Features, logger *zap.Logger) *api.DaemonService {
	return api.NewDaemonService(p.Instance, m, b, db, f, logger)
}

type lifecycleDeps struct {
	fx.In

	Server     *Server
	Lock       *lock.Lock
	DB         *store.DB
	Cache      cache.Cache
	Engine     *matching.Engine
	Dispatcher *notify.Dispatcher
	Metrics    *http.Server
	Machine    *status.Machine
	Logger     *zap.Logger
}

func registerLifecycle(lc fx.Lifecycle, d lifecycleDeps) {
	logger := d.Logger
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// Background workers outlive the start context.
			d.Engine.Start(context.Background())
			d.Dispatcher.Start(context.Background())

			if d.Metrics != nil {
				go func() {
					logger.Info("metrics server starting", zap.String("addr", d.Metrics.Addr))
					if err := d.Metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						logger.Error("metrics server error", zap.Error(err))
					}
				}()
			}

			go func() {
				if err := d.Server.Start(); err != nil {
					logger.Error("gRPC server error", zap.Error(err))
				}
			}()

			_ = d.Machine.Transition(status.Serving)

			// A cache outage only costs latency: serve degraded.
			if r, ok := d.Cache.(*cache.Redis); ok {
				if err := r.Ping(ctx); err != nil {
					logger.Warn("redis unreachable, serving without cache", zap.Error(err))
					_ = d.Machine.TransitionWithReason(status.Degraded, "cache unavailable: "+err.Error())
				}
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			_ = d.Machine.Transition(status.Stopping)
			d.Server.Stop(ctx)
			d.Dispatcher.Stop()
			d.Engine.Stop()
			if d.Metrics != nil {
				if err := d.Metrics.Shutdown(ctx); err != nil {
					logger.Warn("error stopping metrics server", zap.Error(err))
				}
			}
			if r, ok := d.Cache.(*cache.Redis); ok {
				_ = r.Close()
			}
			if err := d.DB.Close(); err != nil {
				logger.Warn("error closing store", zap.Error(err))
			}
			if err := d.Lock.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("daemon stopped")
			return nil
		},
	})
}
