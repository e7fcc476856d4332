package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"umico-analytics/config"
	"umico-analytics/scraper/umico"
	"umico-analytics/services"
	"umico-analytics/storage"
	"umico-analytics/utils"
)

func main() {
	var (
		envFile  = flag.String("env", "", "path to .env file (default ./.env)")
		outFile  = flag.String("out", "", "override snapshot CSV path")
		category = flag.Int64("category", 0, "override catalog category ID")
		pages    = flag.Int("pages", 0, "cap the crawl at N pages (0 = all)")
		skipDB   = flag.Bool("skip-db", false, "write the CSV snapshot only, no PostgreSQL")
	)
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// flag overrides
	if *outFile != "" {
		cfg.CSVOutputPath = *outFile
	}
	if *category > 0 {
		cfg.CategoryID = *category
	}
	if *pages > 0 {
		cfg.PageCap = *pages
	}

	logger := utils.NewLoggerWith(utils.LogOptions{
		Level:    cfg.LogLevel,
		Format:   cfg.LogFormat,
		FilePath: cfg.LogFile,
	})

	logger.Info("=== Umico Catalog Ingest starting ===")
	logger.Info("Config — category: %d | per page: %d | concurrency: %d | retries: %d | timeout: %ds",
		cfg.CategoryID, cfg.PerPage, cfg.MaxConcurrency, cfg.MaxRetries, cfg.RequestTimeout)

	categories, err := config.LoadCategoryMap(cfg.CategoryMapPath)
	if err != nil {
		logger.Error("Failed to load category map: %v", err)
		os.Exit(1)
	}

	// Ctrl-C / SIGTERM cancels the crawl; pages already collected are lost.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-stop
		logger.Warn("Received %v — cancelling crawl", sig)
		cancel()
	}()

	scraper := umico.New(cfg, logger)
	raw, run, err := scraper.Scrape(ctx)
	if err != nil {
		logger.Error("Catalog crawl failed: %v", err)
		os.Exit(1)
	}
	if len(raw) == 0 {
		logger.Error("No products were collected. Exiting.")
		os.Exit(1)
	}

	cleaner := services.NewCleaner(logger, categories)
	clean := cleaner.Clean(raw)
	if len(clean) == 0 {
		logger.Error("All listings were dropped during cleaning. Exiting.")
		os.Exit(1)
	}
	run.ProductsClean = len(clean)
	run.ProductsDropped = len(raw) - len(clean)

	csvWriter, err := storage.NewCSVWriter(cfg.CSVOutputPath)
	if err != nil {
		logger.Error("Failed to create CSV writer: %v", err)
		os.Exit(1)
	}
	defer csvWriter.Close()

	if err := csvWriter.Write(ctx, clean); err != nil {
		logger.Error("CSV write failed: %v", err)
	} else {
		logger.Info("Snapshot saved to %s (%d listings)", cfg.CSVOutputPath, len(clean))
	}

	if *skipDB {
		logger.Info("Skipping PostgreSQL (-skip-db)")
		fmt.Printf("  Done. Snapshot → %s\n\n", cfg.CSVOutputPath)
		return
	}

	store, err := storage.NewPostgresStore(cfg.DSN())
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL: %v", err)
		logger.Error("Check the POSTGRES_* settings, or re-run with -skip-db")
		os.Exit(1)
	}
	defer store.Close()

	if err := store.Write(ctx, clean); err != nil {
		logger.Error("PostgreSQL write failed: %v", err)
	} else {
		logger.Info("Clean listings stored in PostgreSQL (table: listings)")
	}

	if err := store.RecordRun(ctx, run); err != nil {
		logger.Error("Failed to record ingest run: %v", err)
	} else {
		logger.Info("Run %s recorded (%d parsed, %d clean, %d pages failed)",
			run.RunID, run.ProductsParsed, run.ProductsClean, run.PagesFailed)
	}

	fmt.Printf("  Done. Snapshot → %s | Clean data → PostgreSQL (listings table)\n\n",
		cfg.CSVOutputPath)
}
