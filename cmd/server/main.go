package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/popcommerce/fulfillbridge/internal/adapters/shopify"
	"github.com/popcommerce/fulfillbridge/internal/adapters/sqlite"
	"github.com/popcommerce/fulfillbridge/internal/app/services"
	"github.com/popcommerce/fulfillbridge/internal/config"
	"github.com/popcommerce/fulfillbridge/internal/db"
	"github.com/popcommerce/fulfillbridge/internal/observability"
	"github.com/popcommerce/fulfillbridge/internal/outcomes"
	"github.com/popcommerce/fulfillbridge/internal/server"
	"github.com/popcommerce/fulfillbridge/internal/server/routes"
	poswebhook "github.com/popcommerce/fulfillbridge/internal/webhooks/pos"
)

func main() {
	log := slog.New(observability.WrapSlogHandler(
		slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))
	slog.SetDefault(log)

	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	cfg, err := config.Load()
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
	dispatcher := services.NewDispatcher(processor, log)

	srv := server.New(log)
	handler := poswebhook.NewHandler([]byte(cfg.Shopify.WebhookSecret), journal, dispatcher.Dispatch, log)
	srv.RegisterRouter(routes.NewWebhookRoutes(handler))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	slog.Info("Starting server", "port", cfg.Server.Port,
		"event_location", cfg.Allocation.EventLocationID,
		"warehouse_location", cfg.Allocation.WarehouseLocationID)
	slog.Error("Closing server", "error", srv.Start(addr))
	dispatcher.Wait()
}
