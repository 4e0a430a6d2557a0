package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"

	"github.com/fieldscope/portal/config"
	"github.com/fieldscope/portal/internal/clients/flowapi"
	"github.com/fieldscope/portal/internal/constants"
	"github.com/fieldscope/portal/internal/db"
	"github.com/fieldscope/portal/internal/db/repos"
	"github.com/fieldscope/portal/internal/events"
	"github.com/fieldscope/portal/internal/logger"
	"github.com/fieldscope/portal/internal/poller"
	"github.com/fieldscope/portal/internal/ratelimit"
	"github.com/fieldscope/portal/internal/services"
	"github.com/fieldscope/portal/pkg/api/v1/handlers"
	"github.com/fieldscope/portal/pkg/api/v1/routes"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Debugf("No .env file loaded: %v", err)
	}
	logger.InitializeAndConfigure()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbPort, _ := strconv.Atoi(config.GetEnv(constants.EnvDBPort, "5432"))
	database, err := db.New(db.Options{
		Host:     config.GetEnv(constants.EnvDBHost, db.DefaultHost),
		User:     config.GetEnv(constants.EnvDBUser, db.DefaultUser),
		Password: config.GetEnv(constants.EnvDBPassword, db.DefaultPassword),
		DBName:   config.GetEnv(constants.EnvDBName, db.DefaultDBName),
		Port:     dbPort,
	})
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Repositories
	userRepo := repos.NewUserRepository(database)
	companyRepo := repos.NewCompanyRepository(database)
	reportRepo := repos.NewReportRepository(database)
	auditRepo := repos.NewAuditRepository(database)

	// Background workers
	events.Start(ctx)
	flowClient := flowapi.NewClient(config.LoadFlowAPI())
	registry := poller.NewRegistry(flowClient, reportRepo, poller.Config{})

	// Services
	limiter := ratelimit.New(database, 0, 0)
	userService := services.NewUserService(userRepo, limiter)
	companyService := services.NewCompanyService(companyRepo)
	reportService := services.NewReportService(ctx, reportRepo, companyRepo, flowClient, registry)
	auditService := services.NewAuditService(auditRepo)
	dashboardService := services.NewDashboardService(userService, companyService, reportService)

	// Pick up reports that were still in flight before the last restart
	if err := reportService.ResumePolling(ctx); err != nil {
		logger.Errorf("Failed to resume report pollers: %v", err)
	}

	// HTTP server
	app := fiber.New(fiber.Config{
		AppName:      "portal",
		ErrorHandler: customErrorHandler,
	})
	app.Use(fiberlogger.New())

	api := handlers.NewAPIHandler(userService, companyService, reportService, auditService, dashboardService)
	routes.RegisterRoutes(app,
		handlers.NewUserHandler(api),
		handlers.NewCompanyHandler(api),
		handlers.NewReportHandler(api),
		handlers.NewAuditHandler(api),
		handlers.NewDashboardHandler(api),
	)

	// Graceful shutdown on SIGINT/SIGTERM
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		logger.Info("Shutdown signal received")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		if err := registry.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("Poller shutdown: %v", err)
		}
		cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Errorf("Server shutdown: %v", err)
		}
	}()

	address := ":" + routes.DefaultPort
	logger.Infof("Starting portal API on %s", address)
	if err := app.Listen(address); err != nil {
		logger.Fatalf("Server stopped: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
