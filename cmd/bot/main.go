package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"leadrunner/internal/availability"
	"leadrunner/internal/bot"
	"leadrunner/internal/events"
	"leadrunner/internal/gcal"
	"leadrunner/internal/ledger"
	"leadrunner/internal/marketplace"
	"leadrunner/internal/notification"
	"leadrunner/internal/ops"
	"leadrunner/internal/oracle"
	"leadrunner/internal/router"
	"leadrunner/internal/scheduler"
	"leadrunner/platform/config"
	"leadrunner/platform/db"
	"leadrunner/platform/logger"
	"leadrunner/platform/validator"
)

func main() {
	once := flag.Bool("once", false, "run one poll cycle and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting lead bot", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	store, err := newLedgerStore(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize ledger", "error", err)
		panic("failed to initialize ledger: " + err.Error())
	}

	var mk marketplace.Gateway
	if cfg.IsMarketplaceMock() {
		log.Warn("no marketplace credentials configured, using mock mode")
		mk = marketplace.NewMockClient(cfg, cfg, log)
	} else {
		mk = marketplace.NewClient(cfg, cfg, val, log)
	}

	var cal gcal.Gateway
	if _, err := os.Stat(cfg.GetGoogleCredentialsFile()); err != nil {
		log.Warn("no google credentials file, using in-memory calendar", "file", cfg.GetGoogleCredentialsFile())
		cal = gcal.NewMemoryCalendar()
	} else {
		cal = gcal.NewClient(cfg, log)
	}

	analyzer := oracle.NewAdapter(oracle.NewClient(cfg), cfg, log)
	engine := availability.NewEngine(cal, cfg, log)

	var tasks *scheduler.Client
	if cfg.IsSchedulerEnabled() {
		tasks, err = scheduler.NewClient(cfg)
		if err != nil {
			log.Error("failed to initialize task scheduler", "error", err)
			panic("failed to initialize task scheduler: " + err.Error())
		}
		defer func() { _ = tasks.Close() }()
	}

	var sender notification.Sender = notification.NoopSender{}
	if cfg.IsNotifyEnabled() {
		sender = notification.NewSMTPSender(cfg)
	}
	notification.NewSubscriber(sender, log).Register(eventBus)

	orchestrator := bot.New(mk, cal, analyzer, store, cfg.CheckInterval, log)
	dispatcher := router.New(analyzer, engine, mk, cal, orchestrator, schedulerOrNil(tasks), eventBus, cfg, log)
	orchestrator.SetDispatcher(dispatcher)

	if err := withRetry(ctx, log, "gateway authentication", 3, 2*time.Second, func() error {
		return orchestrator.Initialize(ctx)
	}); err != nil {
		log.Error("failed to initialize bot", "error", err)
		panic("failed to initialize bot: " + err.Error())
	}
	defer orchestrator.Shutdown(context.Background())

	if *once {
		orchestrator.RunCycle(ctx)
		return
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.IsOpsEnabled() {
		opsServer := ops.NewServer(cfg, orchestrator, log)
		g.Go(func() error {
			opsServer.Run(gctx)
			return nil
		})
	}

	if cfg.IsSchedulerEnabled() {
		worker, err := scheduler.NewWorker(cfg, cfg, mk, log)
		if err != nil {
			log.Error("failed to initialize scheduler worker", "error", err)
			panic("failed to initialize scheduler worker: " + err.Error())
		}
		g.Go(func() error {
			worker.Run(gctx)
			return nil
		})
	}

	g.Go(func() error {
		orchestrator.Run(gctx)
		return nil
	})

	_ = g.Wait()
}

// schedulerOrNil keeps the router's TaskScheduler truly nil when no client is
// configured (a typed nil inside the interface would dodge the nil check).
func schedulerOrNil(c *scheduler.Client) router.TaskScheduler {
	if c == nil {
		return nil
	}
	return c
}

func newLedgerStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (ledger.Store, error) {
	switch cfg.LedgerDriver {
	case "redis":
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		rdb := redis.NewClient(opt)
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, err
		}
		log.Info("ledger backed by redis")
		return ledger.NewRedisStore(rdb, cfg.LedgerTTL), nil
	case "postgres":
		if err := db.RunMigrations(ctx, cfg); err != nil {
			return nil, err
		}
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		log.Info("ledger backed by postgres")
		return ledger.NewPostgresStore(pool), nil
	default:
		log.Info("ledger backed by process memory")
		return ledger.NewMemoryStore(), nil
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
