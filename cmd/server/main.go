package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"contipay-be/internal/address"
	"contipay-be/internal/auth"
	"contipay-be/internal/checkout"
	"contipay-be/internal/config"
	"contipay-be/internal/contipay"
	"contipay-be/internal/currency"
	"contipay-be/internal/db"
	"contipay-be/internal/logger"
	"contipay-be/internal/metrics"
	"contipay-be/internal/middleware"

	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()
	log := logger.L()

	metrics.Init()

	database := db.InitDB(cfg)
	defer database.Close()

	gatewayCfg := cfg.ContiPay()
	signer := auth.NewReferenceSigner(cfg.ReferenceSigningKey, cfg.ReferenceTTL)

	processor := contipay.NewProcessor(
		gatewayCfg,
		contipay.NewClient(gatewayCfg),
		contipay.NewRepository(database),
		currency.NewRepository(database),
		address.NewRepository(database),
		contipay.Links{
			PublicBaseURL: cfg.PublicBaseURL,
			ConfirmURL:    cfg.StoreConfirmURL,
			ModuleID:      cfg.StoreModuleID,
			Signer:        signer,
		},
	)
	checkoutSvc := checkout.NewService(processor, contipay.NewRepository(database))
	handler := checkout.NewHandler(checkoutSvc, signer, cfg.StoreCartURL)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           newRouter(handler, middleware.ServiceAuth(cfg.ServiceSecret), cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("ContiPay service listening",
			zap.String("addr", srv.Addr),
			zap.Bool("live_mode", gatewayCfg.LiveMode),
			zap.String("gateway", gatewayCfg.BaseURL()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
