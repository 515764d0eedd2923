package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/servease/payout-service/internal/config"
	"github.com/servease/payout-service/internal/infrastructure/database"
	grpcServer "github.com/servease/payout-service/internal/infrastructure/grpc"
	httpServer "github.com/servease/payout-service/internal/infrastructure/http"
	"github.com/servease/payout-service/internal/infrastructure/notifier"
	providerFactory "github.com/servease/payout-service/internal/infrastructure/provider"
	"github.com/servease/payout-service/internal/usecase"
	"github.com/servease/payout-service/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.NewZapLogger(logger.Config{
		Level:       "info",
		Format:      "json",
		Output:      "stdout",
		Development: cfg.Service.Environment == "development",
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := database.NewConnection(&cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, zapLogger); err != nil {
			zapLogger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	if err := database.Migrate(db, zapLogger); err != nil {
		zapLogger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	repos := database.NewRepositories(db, zapLogger)

	disburser, err := providerFactory.NewDisbursementProvider(&cfg.Service, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize disbursement provider", zap.Error(err))
	}

	publisher, err := notifier.NewPublisher(cfg.Service.Messaging.URL, cfg.Service.Messaging.Exchange, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to message broker", zap.Error(err))
	}
	defer publisher.Close()

	calculator, err := usecase.NewPayoutCalculator(cfg.Finance)
	if err != nil {
		zapLogger.Fatal("Invalid finance configuration", zap.Error(err))
	}

	payouts := usecase.NewPayoutService(
		repos.Payout,
		calculator,
		disburser,
		publisher,
		zapLogger,
		cfg.Finance.MaxPayoutRetries,
		cfg.Service.DisbursementTimeout,
		cfg.Finance.Currency,
	)
	batches := usecase.NewPayoutBatchService(repos.Batch, repos.Payout, payouts, zapLogger)
	transactions := usecase.NewPendingTransactionService(repos.Transaction, publisher, zapLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	flusher := notifier.NewOutboxFlusher(repos.Outbox, publisher, cfg.Service.Messaging.FlushInterval, zapLogger)
	go flusher.Run(ctx)

	grpcSrv := grpcServer.NewServer(cfg, zapLogger)
	httpSrv := httpServer.NewServer(cfg, zapLogger, httpServer.Services{
		Payouts:      payouts,
		Batches:      batches,
		Transactions: transactions,
	})

	go func() {
		if err := grpcSrv.Start(); err != nil {
			zapLogger.Fatal("Failed to start gRPC server", zap.Error(err))
		}
	}()

	go func() {
		if err := httpSrv.Start(); err != nil {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zapLogger.Info("Shutting down servers...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := grpcSrv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Failed to shutdown gRPC server", zap.Error(err))
	}

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Failed to shutdown HTTP server", zap.Error(err))
	}

	zapLogger.Info("Servers shut down successfully")
}
