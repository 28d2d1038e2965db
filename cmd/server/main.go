package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blendstock/internal/cache"
	"blendstock/internal/config"
	"blendstock/internal/infra"
	"blendstock/internal/repository"
	"blendstock/internal/router"
	"blendstock/internal/service"
	"blendstock/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Composition root: repositories, services, jobs, HTTP — all share the
	// same instances.
	productRepo := repository.NewProductRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)
	alertRepo := repository.NewLowStockAlertRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	poRepo := repository.NewPurchaseOrderRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	dispatcher := worker.NewDispatcher(rdb)

	ledger := service.NewStockLedger(productRepo, movementRepo, cache.NewRedis(rdb))
	orders := service.NewOrderService(orderRepo, productRepo, ledger)
	lowStock := service.NewLowStockService(productRepo, alertRepo, dispatcher)
	purchaseOrders := service.NewPurchaseOrderService(poRepo, productRepo, supplierRepo, ledger)
	replenish := service.NewReplenishService(productRepo, supplierRepo, poRepo, purchaseOrders)
	catalog := service.NewCatalogService(productRepo, supplierRepo)

	// Alert notification consumers
	worker.StartPool(ctx, rdb, worker.LogAlertHandler, cfg.WorkerPoolSize)

	// Daily sweeps
	sched := worker.NewScheduler()
	sched.Register("lowstock_sweep", cfg.LowStockSweepEvery, lowStock.CheckAll)
	sched.Register("replenish_sweep", cfg.ReplenishSweepEvery, replenish.Run)
	sched.Start(ctx)

	r := router.New(cfg, db, rdb, router.Deps{
		Ledger:         ledger,
		Orders:         orders,
		LowStock:       lowStock,
		PurchaseOrders: purchaseOrders,
		Catalog:        catalog,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("blendstock backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
