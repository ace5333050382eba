package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/popcommerce/fulfillbridge/internal/adapters/shopify"
	"github.com/popcommerce/fulfillbridge/internal/adapters/sqlite"
	"github.com/popcommerce/fulfillbridge/internal/app/services"
	"github.com/popcommerce/fulfillbridge/internal/config"
	"github.com/popcommerce/fulfillbridge/internal/db"
	"github.com/popcommerce/fulfillbridge/internal/observability"
	"github.com/popcommerce/fulfillbridge/internal/outcomes"
)

// orderreplay re-runs allocation for journaled events that never completed:
// events acknowledged to the sender but lost to a crash, and events whose
// processing aborted mid-sequence. Replay is operator-initiated; nothing
// retries automatically.
func main() {
	limit := flag.Int("limit", 100, "maximum number of events to replay")
	concurrency := flag.Int("concurrency", 4, "events processed in parallel")
	flag.Parse()

	log := slog.New(observability.WrapSlogHandler(
		slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))
	slog.SetDefault(log)

	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	cfg, err := config.LoadForTool()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	database, err := db.New(cfg.Database.Path)
	if err != nil {
		slog.Error("Failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(); err != nil {
			slog.Error("Failed to close database", "error", err)
		}
	}()

	journal := sqlite.NewJournalStore(database)
	client := shopify.NewClient(cfg.Shopify.BaseURL, cfg.Shopify.AccessToken,
		cfg.Shopify.APIVersion, cfg.Shopify.Timeout())

	publisher, err := outcomes.NewPublisher(cfg.Outcomes.Endpoint, cfg.Outcomes.Source, log)
	if err != nil {
		slog.Error("Failed to create outcome publisher", "error", err)
		os.Exit(1)
	}

	locations := services.LocationPair{
		EventLocationID:     cfg.Allocation.EventLocationID,
		WarehouseLocationID: cfg.Allocation.WarehouseLocationID,
	}
	allocator := services.NewAllocator(client, locations, services.SKURules{
		StarterKit:  cfg.Tagging.StarterKitSKUs,
		Stylist:     cfg.Tagging.StylistSKUs,
		DisplayAuth: cfg.Tagging.DisplayAuthSKUs,
	})
	coordinator := services.NewCommitCoordinator(client, locations, log)
	classifier := services.NewClassifier(client, services.TagRules{
		FirstOrder:  cfg.Tagging.FirstOrderTag,
		StarterKit:  cfg.Tagging.StarterKitTag,
		Stylist:     cfg.Tagging.StylistTag,
		DisplayAuth: cfg.Tagging.DisplayAuthTag,
	}, log)
	processor := services.NewOrderProcessor(allocator, coordinator, classifier,
		client, journal, publisher, cfg.Allocation.SourceChannel, log)

	ctx := context.Background()
	records, err := journal.ListUnprocessed(ctx, *limit)
	if err != nil {
		slog.Error("Failed to list unprocessed events", "error", err)
		os.Exit(1)
	}
	if len(records) == 0 {
		slog.Info("Nothing to replay")
		return
	}

	var failed atomic.Int64
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(*concurrency)
	for _, record := range records {
		group.Go(func() error {
			// One event failing must not stop the rest of the replay.
			if err := processor.Process(groupCtx, record.EventID, record.Payload); err != nil {
				failed.Add(1)
			}
			return nil
		})
	}
	_ = group.Wait()

	slog.Info("Replay finished",
		"total", len(records),
		"failed", failed.Load(),
		"succeeded", int64(len(records))-failed.Load())
}
