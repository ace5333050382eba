package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full service configuration, loaded from the environment.
type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	Shopify     ShopifyConfig
	Allocation  AllocationConfig
	Tagging     TaggingConfig
	Outcomes    OutcomesConfig
}

type ServerConfig struct {
	Port int
}

type DatabaseConfig struct {
	Path string
}

// ShopifyConfig holds Admin API access plus the inbound webhook secret.
type ShopifyConfig struct {
	BaseURL        string
	AccessToken    string
	WebhookSecret  string
	APIVersion     string
	TimeoutSeconds int
}

// AllocationConfig fixes the two candidate locations and the qualifying
// order source channel.
type AllocationConfig struct {
	EventLocationID     int64
	WarehouseLocationID int64
	SourceChannel       string
}

// TaggingConfig names the customer tags and the SKU sets that trigger them.
type TaggingConfig struct {
	FirstOrderTag   string
	StarterKitTag   string
	StylistTag      string
	DisplayAuthTag  string
	StarterKitSKUs  []string
	StylistSKUs     []string
	DisplayAuthSKUs []string
}

// OutcomesConfig points at an optional downstream consumer of allocation
// outcome events. Empty endpoint disables publishing.
type OutcomesConfig struct {
	Endpoint string
	Source   string
}

// Load reads configuration for the server, requiring the webhook secret
// outside local/dev environments.
func Load() (Config, error) {
	return load(true)
}

// LoadForTool loads config for CLI tools that do not receive webhooks.
func LoadForTool() (Config, error) {
	return load(false)
}

func load(requireWebhookSecret bool) (Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("fulfill_env", "")
	v.SetDefault("app_env", "")
	v.SetDefault("go_env", "")
	v.SetDefault("fulfill_port", 8080)
	v.SetDefault("fulfill_db_path", "data/fulfillbridge")
	v.SetDefault("shopify_base_url", "")
	v.SetDefault("shopify_access_token", "")
	v.SetDefault("shopify_webhook_secret", "")
	v.SetDefault("shopify_api_version", "2023-04")
	v.SetDefault("shopify_timeout_seconds", 10)
	v.SetDefault("fulfill_event_location_id", 0)
	v.SetDefault("fulfill_warehouse_location_id", 0)
	v.SetDefault("fulfill_source_channel", "pos")
	v.SetDefault("fulfill_first_order_tag", "event-promo")
	v.SetDefault("fulfill_starter_kit_tag", "starter_kit_purchased")
	v.SetDefault("fulfill_stylist_tag", "Stylist")
	v.SetDefault("fulfill_display_auth_tag", "is-authorized")
	v.SetDefault("fulfill_starter_kit_skus", "")
	v.SetDefault("fulfill_stylist_skus", "")
	v.SetDefault("fulfill_display_auth_skus", "")
	v.SetDefault("fulfill_outcomes_endpoint", "")
	v.SetDefault("fulfill_outcomes_source", "fulfillbridge")

	env := resolveEnvironment(v)
	port := v.GetInt("fulfill_port")
	if port <= 0 || port > 65535 {
		return Config{}, fmt.Errorf("invalid FULFILL_PORT: %d", port)
	}

	timeout := v.GetInt("shopify_timeout_seconds")
	if timeout <= 0 {
		timeout = 10
	}

	cfg := Config{
		Environment: env,
		Server:      ServerConfig{Port: port},
		Database: DatabaseConfig{
			Path: strings.TrimSpace(v.GetString("fulfill_db_path")),
		},
		Shopify: ShopifyConfig{
			BaseURL:        strings.TrimSpace(v.GetString("shopify_base_url")),
			AccessToken:    strings.TrimSpace(v.GetString("shopify_access_token")),
			WebhookSecret:  strings.TrimSpace(v.GetString("shopify_webhook_secret")),
			APIVersion:     strings.TrimSpace(v.GetString("shopify_api_version")),
			TimeoutSeconds: timeout,
		},
		Allocation: AllocationConfig{
			EventLocationID:     v.GetInt64("fulfill_event_location_id"),
			WarehouseLocationID: v.GetInt64("fulfill_warehouse_location_id"),
			SourceChannel:       strings.TrimSpace(v.GetString("fulfill_source_channel")),
		},
		Tagging: TaggingConfig{
			FirstOrderTag:   strings.TrimSpace(v.GetString("fulfill_first_order_tag")),
			StarterKitTag:   strings.TrimSpace(v.GetString("fulfill_starter_kit_tag")),
			StylistTag:      strings.TrimSpace(v.GetString("fulfill_stylist_tag")),
			DisplayAuthTag:  strings.TrimSpace(v.GetString("fulfill_display_auth_tag")),
			StarterKitSKUs:  parseSKUList(v.GetString("fulfill_starter_kit_skus")),
			StylistSKUs:     parseSKUList(v.GetString("fulfill_stylist_skus")),
			DisplayAuthSKUs: parseSKUList(v.GetString("fulfill_display_auth_skus")),
		},
		Outcomes: OutcomesConfig{
			Endpoint: strings.TrimSpace(v.GetString("fulfill_outcomes_endpoint")),
			Source:   strings.TrimSpace(v.GetString("fulfill_outcomes_source")),
		},
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/fulfillbridge"
	}
	if cfg.Allocation.EventLocationID <= 0 {
		return Config{}, fmt.Errorf("FULFILL_EVENT_LOCATION_ID is required")
	}
	if cfg.Allocation.WarehouseLocationID <= 0 {
		return Config{}, fmt.Errorf("FULFILL_WAREHOUSE_LOCATION_ID is required")
	}
	if cfg.Shopify.BaseURL == "" {
		return Config{}, fmt.Errorf("SHOPIFY_BASE_URL is required")
	}
	if requireWebhookSecret && !cfg.IsLocalDevelopment() && cfg.Shopify.WebhookSecret == "" {
		return Config{}, fmt.Errorf("SHOPIFY_WEBHOOK_SECRET is required outside local/dev environments")
	}

	return cfg, nil
}

// parseSKUList splits a comma-separated SKU list, trimming blanks.
func parseSKUList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

// Timeout returns the Admin API per-call timeout budget.
func (c ShopifyConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c Config) IsLocalDevelopment() bool {
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "", "local", "dev", "development", "test":
		return true
	default:
		return false
	}
}

func resolveEnvironment(v *viper.Viper) string {
	for _, key := range []string{"fulfill_env", "app_env", "go_env"} {
		value := strings.TrimSpace(v.GetString(key))
		if value != "" {
			return strings.ToLower(value)
		}
	}
	return ""
}
