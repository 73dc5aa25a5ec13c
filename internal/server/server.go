// Package server provides the HTTP adapter over the voucher engines.
// It is a thin layer: request parsing, error-to-status mapping and
// nothing else; all invariants live in the engines and repositories.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rakankuphi/voucher-system/internal/report"
	"github.com/rakankuphi/voucher-system/internal/repository"
	"github.com/rakankuphi/voucher-system/internal/voucher"
)

// Config holds HTTP server configuration
type Config struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server is the HTTP adapter
type Server struct {
	config     Config
	httpServer *http.Server
	router     *gin.Engine
	logger     *zap.Logger
}

// NewServer wires the engines and repositories into a gin router.
func NewServer(
	config Config,
	employees *repository.EmployeeRepository,
	vouchers *repository.VoucherRepository,
	issuance *voucher.IssuanceEngine,
	redemption *voucher.RedemptionEngine,
	exporter *report.Exporter,
	logger *zap.Logger,
) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(logger))
	router.Use(corsMiddleware())

	s := &Server{
		config: config,
		router: router,
		logger: logger,
	}

	handlers := NewHandlers(employees, vouchers, issuance, redemption, exporter, logger)

	router.GET("/health", handlers.HealthCheck)

	api := router.Group("/api")
	{
		api.GET("/employees", handlers.ListEmployees)
		api.POST("/employees", handlers.CreateEmployee)
		api.PUT("/employees/:id", handlers.UpdateEmployee)
		api.DELETE("/employees/:id", handlers.DeleteEmployee)
		api.GET("/employees/voucher-status", handlers.EmployeeVoucherStatus)

		api.POST("/vouchers/generate", handlers.GenerateVouchers)
		api.GET("/vouchers/check/:identifier", handlers.CheckVoucher)
		api.PUT("/vouchers/redeem/:identifier", handlers.RedeemVoucher)
		api.GET("/vouchers/report/daily", handlers.DailyReport)
		api.GET("/vouchers/report/export", handlers.ExportReport)
		api.GET("/vouchers/details", handlers.VoucherDetails)
		api.GET("/vouchers/print", handlers.VouchersForPrint)
		api.GET("/vouchers/history", handlers.RedemptionHistory)
	}

	return s
}

// Start runs the HTTP server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", zap.Error(err))
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		)
	}
}

// corsMiddleware adds CORS headers for the mobile clients
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
