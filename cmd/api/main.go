package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	rediscache "github.com/open-builders/gws-backend/internal/cache/redis"
	"github.com/open-builders/gws-backend/internal/common/logger"
	"github.com/open-builders/gws-backend/internal/config"
	dg "github.com/open-builders/gws-backend/internal/domain/giveaway"
	du "github.com/open-builders/gws-backend/internal/domain/user"
	"github.com/open-builders/gws-backend/internal/events"
	apphttp "github.com/open-builders/gws-backend/internal/http"
	"github.com/open-builders/gws-backend/internal/lock"
	"github.com/open-builders/gws-backend/internal/platform/db"
	mongoplatform "github.com/open-builders/gws-backend/internal/platform/mongo"
	redisplatform "github.com/open-builders/gws-backend/internal/platform/redis"
	"github.com/open-builders/gws-backend/internal/repository/memory"
	mongorepo "github.com/open-builders/gws-backend/internal/repository/mongo"
	pgrepo "github.com/open-builders/gws-backend/internal/repository/postgres"
	"github.com/open-builders/gws-backend/internal/service/draw"
	"github.com/open-builders/gws-backend/internal/service/eligibility"
	gsvc "github.com/open-builders/gws-backend/internal/service/giveaway"
	"github.com/open-builders/gws-backend/internal/workers"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.ServiceName, cfg.Debug)

	if err := run(ctx, cfg); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}
	logger.Info().Msg("server stopped")
}

type storage struct {
	giveaways dg.Repository
	users     du.Repository
	close     func()
}

func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		pg, err := db.Open(ctx, cfg.Storage.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("postgres open: %w", err)
		}
		if cfg.Storage.DBAutoMigrate {
			if err := db.Migrate(ctx, pg); err != nil {
				_ = pg.Close()
				return nil, fmt.Errorf("postgres migrate: %w", err)
			}
		}
		return &storage{
			giveaways: pgrepo.NewGiveawayRepository(pg),
			users:     pgrepo.NewUserRepository(pg),
			close:     func() { _ = pg.Close() },
		}, nil

	case config.StorageDriverMongo:
		client, err := mongoplatform.Open(ctx, cfg.Storage.MongoURI)
		if err != nil {
			return nil, fmt.Errorf("mongo open: %w", err)
		}
		database := client.Database(cfg.Storage.MongoDatabase)
		if err := mongoplatform.EnsureIndexes(ctx, database); err != nil {
			logger.Warn().Err(err).Msg("failed to ensure mongo indexes")
		}
		return &storage{
			giveaways: mongorepo.NewGiveawayRepository(database),
			users:     mongorepo.NewUserRepository(database),
			close: func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = client.Disconnect(closeCtx)
			},
		}, nil

	default:
		logger.Warn().Msg("using in-memory storage, data is lost on restart")
		return &storage{
			giveaways: memory.NewGiveawayRepository(),
			users:     memory.NewUserRepository(),
			close:     func() {},
		}, nil
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	if cfg.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is not configured")
	}

	store, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.close()

	var rdb *goredis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = redisplatform.Open(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return fmt.Errorf("redis open: %w", err)
		}
		defer rdb.Close()
	}

	users := store.users
	if rdb != nil && cfg.Redis.UserCacheTTL > 0 {
		users = rediscache.NewUserCache(store.users, rdb, cfg.Redis.UserCacheTTL)
	}

	var locker lock.Locker = lock.NewKeyedMutex()
	if cfg.Lock.Backend == config.LockBackendRedis {
		locker = lock.NewRedisLocker(rdb, cfg.Lock.TTL, cfg.Lock.Wait)
	}

	period, err := eligibility.NewPeriod(cfg.Eligibility.AnchorDate, cfg.Eligibility.PeriodDays)
	if err != nil {
		return err
	}
	verifier := eligibility.NewVerifier(cfg.Eligibility.APIURL, cfg.Eligibility.APIKey, period, cfg.Eligibility.Timeout)
	if rdb != nil {
		verifier = verifier.WithCache(eligibility.NewRedisCache(rdb), cfg.Eligibility.CacheTTL)
	}

	var drawer draw.Drawer = draw.NewCryptoDrawer()
	if cfg.Draw.Seed != 0 {
		logger.Warn().Uint64("seed", cfg.Draw.Seed).Msg("using seeded draw source")
		drawer = draw.NewSeededDrawer(cfg.Draw.Seed)
	}

	var publisher events.Publisher = events.LogPublisher{}
	if rdb != nil {
		publisher = events.NewRedisStreamPublisher(rdb, cfg.Events.Stream, cfg.Events.MaxLen)
	}

	svc := gsvc.NewService(store.giveaways, users, verifier, drawer, locker, gsvc.WithPublisher(publisher))

	deps := apphttp.RouterDeps{
		Giveaways:   svc,
		Users:       users,
		JWTSecret:   cfg.Auth.JWTSecret,
		CORSOrigins: cfg.HTTP.CORSAllowedOrigins,
		Debug:       cfg.Debug,
		Storage:     store.giveaways,
	}
	if rdb != nil {
		deps.Redis = apphttp.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}

	if cfg.Scheduler.Enabled {
		sched := workers.NewScheduler(svc, workers.SchedulerConfig{
			Interval:     cfg.Scheduler.Interval,
			Concurrency:  cfg.Scheduler.Concurrency,
			DrawTimeout:  cfg.Scheduler.DrawTimeout,
			HealthWindow: cfg.Scheduler.HealthWindow,
		}, time.Now)
		sched.Start(ctx)
		defer sched.Stop()
		deps.Scheduler = sched
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           apphttp.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.HTTP.Addr).Str("storage", cfg.Storage.Driver).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown")
	}
	return nil
}
