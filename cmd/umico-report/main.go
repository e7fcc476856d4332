package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"umico-analytics/config"
	"umico-analytics/reporter"
	"umico-analytics/services"
	"umico-analytics/storage"
	"umico-analytics/utils"
)

func main() {
	var (
		envFile = flag.String("env", "", "path to .env file (default ./.env)")
		from    = flag.String("from", "db", "snapshot source: db or csv")
		inFile  = flag.String("in", "", "snapshot CSV path (with -from=csv)")
		outDir  = flag.String("outdir", "", "override report output directory")
		strict  = flag.Bool("strict", false, "exit non-zero when consistency checks fail")
	)
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *outDir != "" {
		cfg.ReportDir = *outDir
	}

	logger := utils.NewLoggerWith(utils.LogOptions{
		Level:    cfg.LogLevel,
		Format:   cfg.LogFormat,
		FilePath: cfg.LogFile,
	})

	logger.Info("=== Umico Catalog Report starting ===")

	categories, err := config.LoadCategoryMap(cfg.CategoryMapPath)
	if err != nil {
		logger.Error("Failed to load category map: %v", err)
		os.Exit(1)
	}

	ctx := context.Background()

	var (
		reader storage.SnapshotReader
		store  *storage.PostgresStore
	)
	switch *from {
	case "db":
		store, err = storage.NewPostgresStore(cfg.DSN())
		if err != nil {
			logger.Error("Failed to connect to PostgreSQL: %v", err)
			logger.Error("Check the POSTGRES_* settings, or read the snapshot with -from=csv")
			os.Exit(1)
		}
		reader = store
	case "csv":
		path := cfg.CSVOutputPath
		if *inFile != "" {
			path = *inFile
		}
		logger.Info("Reading snapshot from %s", path)
		reader = storage.NewCSVReader(path, categories)
	default:
		logger.Error("Unknown -from value %q (expected db or csv)", *from)
		os.Exit(1)
	}
	defer reader.Close()

	listings, err := reader.FetchAll(ctx)
	if err != nil {
		logger.Error("Failed to load snapshot: %v", err)
		os.Exit(1)
	}
	if len(listings) == 0 {
		logger.Error("Snapshot holds no listings. Run umico-ingest first.")
		os.Exit(1)
	}
	logger.Info("Loaded %d listings", len(listings))

	insights := services.NewInsightService(logger)
	report := insights.Generate(listings)

	report.Provenance.DataSource = "Umico marketplace catalog API"
	report.Provenance.CategoryScope = fmt.Sprintf("Clothing (category %d)", cfg.CategoryID)
	if store != nil {
		if run, err := store.LatestRun(ctx); err != nil {
			logger.Warn("Could not read latest ingest run: %v", err)
		} else if run != nil {
			report.Provenance.RunID = run.RunID
		}
	}

	verifier := services.NewReportVerifier(logger)
	if violations := verifier.Verify(report); len(violations) > 0 && *strict {
		logger.Error("Report failed %d consistency checks", len(violations))
		os.Exit(1)
	}

	rep := reporter.New(logger, cfg.ReportDir)
	if err := rep.Render(report); err != nil {
		logger.Error("Report rendering failed: %v", err)
		os.Exit(1)
	}

	fmt.Printf("  Done. Report → %s (report.md, report.json, report.xlsx)\n\n", cfg.ReportDir)
}
