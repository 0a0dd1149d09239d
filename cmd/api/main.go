package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	httpadp "lending-engine/internal/adapter/http"
	idemp "lending-engine/internal/adapter/middleware"
	"lending-engine/internal/adapter/notifier"
	repo "lending-engine/internal/adapter/repository/mysql"
	"lending-engine/internal/config"
	"lending-engine/internal/infrastructure/cache"
	"lending-engine/internal/infrastructure/db"
	"lending-engine/internal/infrastructure/logger"
	"lending-engine/internal/usecase/credit"
	"lending-engine/internal/usecase/lending"
	"lending-engine/internal/usecase/negotiation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gdb, err := openDB(cfg)
	if err != nil {
		zl.Fatal("open database", zap.Error(err))
	}
	if err := repo.Migrate(gdb); err != nil {
		zl.Fatal("migrate", zap.Error(err))
	}
	vaults := repo.NewTreasuryRepository(gdb)
	if _, err := vaults.EnsureVault(ctx, cfg.TreasurySeed); err != nil {
		zl.Fatal("treasury vault", zap.Error(err))
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		if rdb, err = cache.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisDB); err != nil {
			zl.Fatal("open redis", zap.Error(err))
		}
		defer func() { _ = rdb.Close() }()
	}

	deps := lending.Deps{
		UoW:        repo.NewGormUoW(gdb),
		Identities: repo.NewIdentityRepository(gdb),
		History:    repo.NewHistoryRepository(gdb),
		Treasury:   vaults,
		Sessions:   negotiation.NewStore(cfg.SessionTTL()),
		Notifier:   notifier.NewLog(zl),
		Logger:     zl,
		Capacities: capacities(cfg.JobTiers),
	}
	if rdb != nil {
		deps.Locker = cache.NewLocker(rdb, "lock:lending:", cfg.BorrowerLockTTL())
		if cfg.Notifier == "redis" {
			deps.Notifier = notifier.NewRedis(rdb, cfg.NotifyChannelPrefix, zl)
		}
	}
	uc := lending.NewUsecase(deps)
	go sweepSessions(ctx, deps.Sessions, cfg.SessionSweep(), zl)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.Logger(), middleware.Recover())
	if cfg.RateLimitRPS > 0 {
		e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(cfg.RateLimitRPS))))
	}

	h := httpadp.NewHandler(func(ctx context.Context) error {
		sqlDB, err := gdb.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
	e.GET("/health", h.Health)
	e.GET("/ready", h.Ready)

	v1 := e.Group("/v1")
	if rdb != nil {
		v1.Use(idemp.IdempotencyMiddleware(rdb, cfg.IdempTTL(), zl))
	}
	httpadp.NewLendingHandler(uc, zl).Register(v1)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = e.Shutdown(shutdownCtx)
	}()

	addr := ":" + cfg.AppPort
	zl.Info("listening", zap.String("addr", addr), zap.String("db", cfg.DBDriver), zap.Bool("redis", rdb != nil))
	if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zl.Fatal("server", zap.Error(err))
	}
}

func openDB(cfg *config.Config) (*gorm.DB, error) {
	if cfg.DBDriver == "sqlite" {
		return db.OpenSQLite(cfg.SQLitePath)
	}
	return db.OpenGorm(cfg.MySQLDSN())
}

// capacities lays the configured job tiers over the built-in table.
func capacities(tiers map[string]int64) credit.Capacities {
	out := make(credit.Capacities, len(credit.DefaultCapacities)+len(tiers))
	for k, v := range credit.DefaultCapacities {
		out[k] = v
	}
	for k, v := range tiers {
		out[k] = v
	}
	return out
}

// sweepSessions evicts expired negotiations until ctx ends.
func sweepSessions(ctx context.Context, s *negotiation.Store, every time.Duration, log *zap.Logger) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.Sweep(); n > 0 {
				log.Debug("expired sessions evicted", zap.Int("count", n))
			}
		}
	}
}
