package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	catalogapp "storefront/internal/application/catalog"
	orderapp "storefront/internal/application/order"
	"storefront/internal/config"
	"storefront/internal/domain/order"
	"storefront/internal/domain/repository"
	ginserver "storefront/internal/infrastructure/http/gin"
	"storefront/internal/infrastructure/messaging/kafka"
	"storefront/internal/infrastructure/persistence/memory"
	"storefront/internal/infrastructure/persistence/postgres"
	"storefront/internal/infrastructure/persistence/seed"
	"storefront/internal/interfaces/http/handler"
	"storefront/internal/interfaces/http/router"
	"storefront/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	logg, err := logger.NewZapLogger(cfg.App.Env)
	if err != nil {
		log.Fatalf("build logger failed: %v", err)
	}
	defer func() { _ = logg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, cleanup, err := buildStore(ctx, cfg, logg)
	if err != nil {
		logg.Fatal("build store failed", logger.Error(err))
	}
	defer cleanup()

	var publisher orderapp.Publisher
	if cfg.Kafka.Enabled {
		producer, err := kafka.NewOrderProducer(cfg.Kafka, logg)
		if err != nil {
			logg.Fatal("create kafka producer failed", logger.Error(err))
		}
		defer producer.Close()
		publisher = kafka.WithBreaker(producer)
	}

	pricing := order.PricingPolicy{
		TaxRate:          cfg.Pricing.TaxRate,
		FreeShippingOver: cfg.Pricing.FreeShippingOver,
		FlatShipping:     cfg.Pricing.FlatShipping,
	}

	catalogService := catalogapp.NewService(store, logg)
	orderService := orderapp.NewService(store, pricing, publisher, logg)

	engine := ginserver.NewEngine(cfg.App.Env, logg)
	router.RegisterRoutes(engine,
		handler.NewProductHandler(catalogService),
		handler.NewOrderHandler(orderService),
	)
	server := ginserver.NewServer(cfg.Server, engine)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logg.Info("http server listening", logger.String("addr", cfg.Server.Address()))
		return server.Run()
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logg.Fatal("server stopped", logger.Error(err))
	}
	logg.Info("server stopped cleanly")
}

func buildStore(ctx context.Context, cfg *config.Config, logg logger.Logger) (repository.Store, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		if err := postgres.RunMigrations(cfg.DB); err != nil {
			return nil, nil, err
		}
		pool, err := postgres.NewPool(cfg.DB)
		if err != nil {
			return nil, nil, err
		}
		logg.Info("connected to postgres", logger.String("db", cfg.DB.DBName))
		return postgres.NewStore(pool), pool.Close, nil

	default:
		store := memory.NewStore()
		if cfg.Store.Seed {
			count, err := seed.Load(ctx, store)
			if err != nil {
				return nil, nil, err
			}
			logg.Info("seeded in-memory catalog", logger.Int("products", count))
		}
		return store, func() {}, nil
	}
}
