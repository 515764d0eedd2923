package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	handlers "github.com/servease/payout-service/internal/adapter/handler/http"
	"github.com/servease/payout-service/internal/config"
	"github.com/servease/payout-service/internal/middleware/auth"
	"github.com/servease/payout-service/internal/usecase"
)

// Services bundles the usecase layer handed to the HTTP server
type Services struct {
	Payouts      *usecase.PayoutService
	Batches      *usecase.PayoutBatchService
	Transactions *usecase.PendingTransactionService
}

type Server struct {
	config   *config.Config
	logger   *zap.Logger
	echo     *echo.Echo
	services Services
}

// requestValidator adapts go-playground/validator to echo's Validator
// interface
type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func NewServer(cfg *config.Config, logger *zap.Logger, services Services) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &requestValidator{validate: validator.New()}

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE},
	}))

	return &Server{
		config:   cfg,
		logger:   logger,
		echo:     e,
		services: services,
	}
}

func (s *Server) Start() error {
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Server.HTTP.Host, s.config.Server.HTTP.Port)
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	// Health check
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": s.config.Service.Name,
		})
	})

	payoutHandler := handlers.NewPayoutHandler(s.services.Payouts, s.logger)
	batchHandler := handlers.NewBatchHandler(s.services.Batches, s.logger)
	transactionHandler := handlers.NewTransactionHandler(s.services.Transactions, s.logger)

	jwtConfig := auth.JWTConfig{
		Secret: s.config.Service.JWTSecret,
		Logger: s.logger,
		SkipPaths: []string{
			"/health",
		},
	}

	v1 := s.echo.Group("/api/v1", auth.JWTMiddleware(jwtConfig))

	// Payouts
	payouts := v1.Group("/payouts")
	payouts.POST("", payoutHandler.CreatePayout)
	payouts.GET("", payoutHandler.ListPayouts)
	payouts.GET("/:id", payoutHandler.GetPayout)
	payouts.POST("/:id/process", payoutHandler.ProcessPayout)
	payouts.POST("/:id/retry", payoutHandler.RetryPayout)
	payouts.POST("/:id/approve", payoutHandler.ApprovePayout)
	payouts.POST("/:id/schedule", payoutHandler.SchedulePayout)

	// Batches (admin only, enforced per handler)
	batches := v1.Group("/batches")
	batches.POST("", batchHandler.CreateBatch)
	batches.GET("", batchHandler.ListBatches)
	batches.GET("/:id", batchHandler.GetBatch)
	batches.POST("/:id/submit", batchHandler.SubmitBatch)
	batches.POST("/:id/approve", batchHandler.ApproveBatch)
	batches.POST("/:id/process", batchHandler.ProcessBatch)
	batches.POST("/:id/pause", batchHandler.PauseBatch)
	batches.POST("/:id/cancel", batchHandler.CancelBatch)
	batches.POST("/:id/retry", batchHandler.RetryBatch)

	// Pending transactions
	transactions := v1.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.GET("/reference/:reference", transactionHandler.GetTransactionByReference)
	transactions.POST("/:id/approve", transactionHandler.ApproveTransaction)
	transactions.POST("/:id/decline", transactionHandler.DeclineTransaction)
}
