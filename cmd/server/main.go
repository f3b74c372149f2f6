package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/cinehall/cinema-booking/internal/booking"
	"github.com/cinehall/cinema-booking/internal/config"
	"github.com/cinehall/cinema-booking/internal/handler"
	"github.com/cinehall/cinema-booking/internal/inventory"
	"github.com/cinehall/cinema-booking/internal/middleware"
	"github.com/cinehall/cinema-booking/internal/payment"
	"github.com/cinehall/cinema-booking/internal/program"
	"github.com/cinehall/cinema-booking/internal/queue"
	"github.com/cinehall/cinema-booking/internal/report"
	"github.com/cinehall/cinema-booking/internal/router"
	"github.com/cinehall/cinema-booking/internal/seating"
	"github.com/cinehall/cinema-booking/internal/store"
	"github.com/cinehall/cinema-booking/internal/utils"
)

func main() {
	hashFlag := flag.String("hash-admin-password", "",
		"print the bcrypt hash for ADMIN_PASSWORD_HASH and exit")
	flag.Parse()

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	if *hashFlag != "" {
		hash, err := utils.HashPassword(*hashFlag, config.BcryptCost())
		if err != nil {
			log.Fatalf("hash admin password: %v", err)
		}
		fmt.Println(hash)
		return
	}

	cfg := config.Load()

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// Snapshot stores: JSON files by default, MySQL when configured.
	var bookings store.BookingStore
	var catalog store.CatalogStore
	switch cfg.StoreDriver {
	case config.StoreMySQL:
		db, err := store.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			logger.Fatal("open mysql store", zap.Error(err))
		}
		defer db.Close()
		bookings, catalog = db, db
	default:
		fs, err := store.NewFileStore(cfg.DataDir, logger)
		if err != nil {
			logger.Fatal("open file store", zap.Error(err))
		}
		bookings, catalog = fs, fs
	}

	// Events are best-effort: without a broker URL the publisher is a
	// no-op and the audit consumer is not started.
	var publisher queue.Publisher = queue.NopPublisher{}
	if cfg.AMQPURL != "" {
		publisher = queue.NewAMQPPublisher(cfg.AMQPURL, logger)
		go func() {
			if err := queue.StartAuditConsumer(cfg.AMQPURL, logger); err != nil {
				logger.Warn("audit consumer stopped", zap.Error(err))
			}
		}()
	}

	ctx := context.Background()
	ledger := inventory.NewLedger(catalog, logger)
	if err := ledger.Load(ctx); err != nil {
		logger.Fatal("load concession catalog", zap.Error(err))
	}

	alloc := seating.NewAllocator(seating.DefaultRows, seating.DefaultCols)
	dir := booking.NewDirectory(bookings, alloc, publisher, logger)
	if err := dir.Load(ctx); err != nil {
		logger.Fatal("load reservations", zap.Error(err))
	}

	schedule := program.Default()
	lc := booking.NewLifecycle(dir, alloc, ledger, schedule, payment.NewCounter(), publisher, logger)
	reporter := report.NewReporter(dir, ledger)

	e := echo.New()
	e.HideBanner = true

	// Redis-backed rate limiting and browse caching degrade to no-ops
	// when no Redis server is reachable.  The token bucket covers the
	// mutating routes; the browse cache is wired per-route inside
	// RegisterPublic and never touches authenticated or per-customer
	// endpoints.
	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unavailable, rate limiting and caching disabled")
	}
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterPublic(e,
		handler.NewShowHandler(schedule, alloc),
		handler.NewConcessionHandler(ledger),
		handler.NewBookingHandler(lc, dir, ledger),
		middleware.NewBrowseCache(config.LoadCacheConfig(), rdb),
	)
	router.RegisterAuth(e,
		handler.NewAuthHandler(cfg),
		handler.NewAdminHandler(lc, dir, ledger, reporter, publisher),
		cfg.JWTSecret,
	)

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("store", cfg.StoreDriver))
	if err := e.Start(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// newLogger builds a production logger, or a human-friendly development
// one outside prod.
func newLogger(env string) (*zap.Logger, error) {
	if env == "prod" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
