package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/auth"
	"storefront/internal/handler"
	"storefront/internal/infra/cache"
	"storefront/internal/infra/db"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/metrics"
	"storefront/internal/server"
	"storefront/internal/usecase"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var autoMigrate bool

// storefront serve
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, gdb, log, err := bootDB()
		if err != nil {
			return err
		}
		defer func() { _ = db.Close(gdb) }()

		if autoMigrate {
			if err := db.Migrate(gdb); err != nil {
				return err
			}
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		checks := map[string]handler.HealthCheck{
			"database": func(ctx context.Context) error {
				sqlDB, err := gdb.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			},
		}

		var productCache usecase.ProductCache = usecase.NoopProductCache{}
		if cfg.Redis.Enabled {
			rdb, err := cache.Connect(ctx, cfg.Redis, log)
			if err != nil {
				return err
			}
			defer func() { _ = rdb.Close() }()
			productCache = cache.NewProductCache(rdb, cfg.Redis.TTL)
			checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		}

		m := metrics.New()
		tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL)
		shipping := usecase.ShippingPolicy{
			FlatFee:       cfg.Shipping.FlatFee,
			FreeThreshold: cfg.Shipping.FreeThreshold,
		}

		users := infraRepo.NewUserGormRepository(gdb)
		products := infraRepo.NewProductGormRepository(gdb)
		carts := infraRepo.NewCartGormRepository(gdb)
		cartItems := infraRepo.NewCartItemGormRepository(gdb)
		orders := infraRepo.NewOrderGormRepository(gdb)
		tx := infraRepo.NewTxManagerGorm(gdb)

		authUC := usecase.NewAuthUsecase(users, usecase.BcryptHasher{}, tokens, usecase.SystemClock{}, log)
		productUC := usecase.NewProductUsecase(products, tx, productCache, log)
		cartUC := usecase.NewCartUsecase(tx, carts, cartItems, products, shipping, log)
		checkoutUC := usecase.NewCheckoutUsecase(tx, productCache, m, usecase.SystemClock{}, log)
		orderUC := usecase.NewOrderUsecase(orders)

		srv := server.New(server.Handlers{
			Auth:         handler.NewAuthHandler(authUC),
			Products:     handler.NewProductHandler(productUC),
			AdminProduct: handler.NewAdminProductHandler(productUC),
			Cart:         handler.NewCartHandler(cartUC, checkoutUC),
			Orders:       handler.NewOrderHandler(orderUC),
			Health:       handler.NewHealthHandler(checks),
		}, tokens, m, log)

		return srv.Run(ctx, cfg.Server.Address(), shutdownTimeout)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&autoMigrate, "migrate", false, "apply migrations before serving")
}
