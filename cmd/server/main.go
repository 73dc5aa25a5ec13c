package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/rakankuphi/voucher-system/internal/config"
	"github.com/rakankuphi/voucher-system/internal/report"
	"github.com/rakankuphi/voucher-system/internal/repository"
	"github.com/rakankuphi/voucher-system/internal/server"
	"github.com/rakankuphi/voucher-system/internal/voucher"
	"github.com/rakankuphi/voucher-system/pkg/database"
	"github.com/rakankuphi/voucher-system/pkg/utils"
)

func main() {
	gotenv.Load()

	// Load configuration
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting voucher system",
		zap.String("company", cfg.Voucher.CompanyName),
		zap.Int("port", cfg.Server.Port))

	// Ensure the database directory exists
	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Fatal("Failed to create database directory", zap.Error(err))
		}
	}

	// Initialize database
	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Initialize repositories
	employeeRepo := repository.NewEmployeeRepository(db.DB, logger)
	voucherRepo := repository.NewVoucherRepository(db.DB, logger)

	// Initialize engines
	issuance := voucher.NewIssuanceEngine(db, employeeRepo, voucherRepo, voucher.IssuanceConfig{
		Nominal:     cfg.Voucher.Nominal,
		CompanyName: cfg.Voucher.CompanyName,
	}, logger)
	redemption := voucher.NewRedemptionEngine(db, voucherRepo, time.Now, logger)
	exporter := report.NewExporter(voucherRepo, logger)

	// Set Gin mode based on logger level
	if cfg.Logger.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := server.NewServer(server.Config{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, employeeRepo, voucherRepo, issuance, redemption, exporter, logger)

	// Wait for interrupt signal to gracefully shutdown the server
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}
