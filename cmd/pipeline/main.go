// Command pipeline runs one data pipeline to completion and exits. It is
// the entrypoint the workflow orchestrator executes for each flow run.
//
// How to run:
//
//	go run cmd/pipeline/main.go -flow lake -start 2026-08-17 -end 2026-08-23
//	go run cmd/pipeline/main.go -flow report -report-id 12 -company "Acme" -start 2026-08-17 -end 2026-08-23
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fieldscope/portal/config"
	"github.com/fieldscope/portal/internal/clients/chartapi"
	"github.com/fieldscope/portal/internal/clients/llm"
	"github.com/fieldscope/portal/internal/constants"
	"github.com/fieldscope/portal/internal/db"
	"github.com/fieldscope/portal/internal/db/repos"
	"github.com/fieldscope/portal/internal/flows"
	"github.com/fieldscope/portal/internal/lake"
	"github.com/fieldscope/portal/internal/logger"
	"github.com/fieldscope/portal/internal/objstore"
	"github.com/fieldscope/portal/internal/scraper"
)

const dateLayout = "2006-01-02"

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Debugf("No .env file loaded: %v", err)
	}
	logger.InitializeAndConfigure()

	var (
		flowName = flag.String("flow", "", "Flow to run: lake or report")
		reportID = flag.Uint("report-id", 0, "Report row the flow is producing (report flow)")
		company  = flag.String("company", "", "Company the report covers (report flow)")
		start    = flag.String("start", "", "Window start date (YYYY-MM-DD)")
		end      = flag.String("end", "", "Window end date (YYYY-MM-DD)")
	)
	flag.Parse()

	startDate, err := time.Parse(dateLayout, *start)
	if err != nil {
		logger.Fatalf("Invalid -start date: %v", err)
	}
	endDate, err := time.Parse(dateLayout, *end)
	if err != nil {
		logger.Fatalf("Invalid -end date: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := objstore.New(config.LoadObjStore())
	if err != nil {
		logger.Fatalf("Failed to connect to object store: %v", err)
	}
	if err := store.EnsureBucket(ctx); err != nil {
		logger.Fatalf("Failed to ensure bucket: %v", err)
	}

	engine, err := lake.NewEngine(config.LoadObjStore(), store)
	if err != nil {
		logger.Fatalf("Failed to open lake engine: %v", err)
	}
	defer func() {
		if err := engine.Close(); err != nil {
			logger.Errorf("Failed to close lake engine: %v", err)
		}
	}()

	switch *flowName {
	case "lake":
		flow := flows.NewLakeFlow(scraper.New(config.LoadScraper()), store, engine, startDate, endDate)
		if err := flow.Run(ctx); err != nil {
			logger.Fatalf("Lake flow failed: %v", err)
		}
	case "report":
		if *reportID == 0 || *company == "" {
			logger.Fatal("The report flow requires -report-id and -company")
		}

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

		flow := flows.NewReportFlow(
			chartapi.NewClient(config.LoadChartAPI()),
			engine,
			llm.NewClient(config.LoadLLM()),
			store,
			repos.NewReportRepository(database),
			flows.DefaultChartSet(),
			flows.ReportParams{
				ReportID:  *reportID,
				Company:   *company,
				StartDate: startDate,
				EndDate:   endDate,
			},
		)
		if err := flow.Run(ctx); err != nil {
			logger.Fatalf("Report flow failed: %v", err)
		}
	default:
		logger.Fatalf("Unknown flow %q (expected lake or report)", *flowName)
	}

	logger.Info("Flow completed")
	os.Exit(0)
}
