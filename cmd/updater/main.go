// Package main is the entry point for the Stockapp market data updater
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"gorm.io/gorm"

	"github.com/vinnymaker/stockapp/database"
	"github.com/vinnymaker/stockapp/internal/config"
	"github.com/vinnymaker/stockapp/internal/indexer"
	"github.com/vinnymaker/stockapp/internal/repository"
	"github.com/vinnymaker/stockapp/internal/service"
	"github.com/vinnymaker/stockapp/pkg/utils/zaplogger"
)

// exchangesFile lists the exchange codes the updater should cover,
// whitespace separated
const exchangesFile = "exchanges.txt"

func main() {
	// Setup logger
	defer zaplogger.Sync()

	// startUpMessage
	zaplogger.Info(config.SingleLine)
	zaplogger.Info("Stockapp Updater")

	// Load configuration
	cfg, err := config.Get()
	if err != nil {
		zaplogger.Fatal("failed to load configuration", zaplogger.Fields{"error": err})
	}
	zaplogger.Info("  * loaded")
	zaplogger.SetLogLevel(cfg.ServerLogLevel)

	// Connect to Postgres
	db, err := database.ConnectPostgres(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}

	// Build an indexer per configured exchange, seeding its reference data
	codes, err := readExchangeCodes(exchangesFile)
	if err != nil {
		zaplogger.Fatal("failed to read exchanges file", zaplogger.Fields{
			"file":  exchangesFile,
			"error": err.Error(),
		})
	}
	indexers := buildIndexers(db, cfg, codes)
	if len(indexers) == 0 {
		zaplogger.Fatal("no usable exchanges configured", zaplogger.Fields{"file": exchangesFile})
	}

	// Root context, cancelled on SIGINT/SIGTERM and by the optional run
	// deadline
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	if cfg.UpdaterRunDeadline != "" {
		deadline, err := time.ParseDuration(cfg.UpdaterRunDeadline)
		if err != nil {
			zaplogger.Fatal("bad run deadline", zaplogger.Fields{
				"value": cfg.UpdaterRunDeadline,
				"error": err.Error(),
			})
		}
		var cancelDeadline context.CancelFunc
		ctx, cancelDeadline = context.WithTimeout(ctx, deadline)
		defer cancelDeadline()
	}

	// Setup and start cron jobs
	cronService := service.NewCronService(db, indexers)
	cronService.Start()
	defer cronService.Stop()

	// Run the update loop until shutdown
	interval, _ := time.ParseDuration(cfg.UpdaterRefreshInterval)
	updater := service.NewUpdaterService(service.NewSyncService(db), indexers, interval)
	updater.Start(ctx)
}

// readExchangeCodes reads the whitespace separated exchange codes from the
// given file
func readExchangeCodes(path string) ([]string, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return strings.Fields(string(contents)), nil
}

// buildIndexers creates the indexer for every supported exchange code,
// ensuring its exchange and index rows exist first. Unsupported codes are
// logged and skipped.
func buildIndexers(db *gorm.DB, cfg *config.Config, codes []string) []indexer.ExchangeDataIndexer {
	exchangeRepo := repository.NewExchangeRepository(db)
	indexRepo := repository.NewIndexRepository(db)

	indexers := make([]indexer.ExchangeDataIndexer, 0, len(codes))
	for _, code := range codes {
		var ix indexer.ExchangeDataIndexer
		var exchangeID uint
		switch code {
		case "NSE":
			exchange, err := exchangeRepo.EnsureExchange("NSE", "National Stock Exchange of India")
			if err != nil {
				zaplogger.Fatal("failed to seed exchange", zaplogger.Fields{
					"exchange": code,
					"error":    err.Error(),
				})
			}
			exchangeID = exchange.ID
			ix = indexer.NewNSEIndexer(exchangeID, cfg.NSEBaseURL)
		default:
			zaplogger.Warn("no indexer for exchange, skipped", zaplogger.Fields{"exchange": code})
			continue
		}

		for _, indexName := range ix.Indexes() {
			if _, err := indexRepo.EnsureIndex(exchangeID, indexName); err != nil {
				zaplogger.Fatal("failed to seed index", zaplogger.Fields{
					"exchange": code,
					"index":    indexName,
					"error":    err.Error(),
				})
			}
		}
		indexers = append(indexers, ix)
	}
	return indexers
}
