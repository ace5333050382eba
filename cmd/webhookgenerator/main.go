package main

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type lineItem struct {
	SKU       string `json:"sku"`
	VariantID int64  `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

type customer struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Tags  string `json:"tags"`
	State string `json:"state"`
}

type address struct {
	City string `json:"city"`
}

type payload struct {
	ID              int64      `json:"id"`
	SourceName      string     `json:"source_name"`
	LineItems       []lineItem `json:"line_items"`
	Customer        *customer  `json:"customer,omitempty"`
	ShippingAddress *address   `json:"shipping_address,omitempty"`
}

func main() {
	configPath := flag.String("config", "", "path to YAML config")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	interval, err := time.ParseDuration(cfg.Interval)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid interval duration:", err)
		os.Exit(1)
	}
	if interval <= 0 {
		fmt.Fprintln(os.Stderr, "interval must be positive")
		os.Exit(1)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	client := &http.Client{Timeout: 10 * time.Second}
	for {
		if err := sendWebhook(client, cfg); err != nil {
			fmt.Fprintln(os.Stderr, "webhook error:", err)
		}
		<-ticker.C
	}
}

func loadConfig(path string) (config, error) {
	if strings.TrimSpace(path) == "" {
		return config{}, fmt.Errorf("config path is required")
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return config{}, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Secret = strings.TrimSpace(cfg.Secret)
	cfg.SKU = strings.TrimSpace(cfg.SKU)
	cfg.Channel = strings.TrimSpace(cfg.Channel)
	cfg.Email = strings.TrimSpace(cfg.Email)
	cfg.Interval = strings.TrimSpace(cfg.Interval)

	if cfg.BaseURL == "" || cfg.Secret == "" || cfg.SKU == "" {
		return config{}, fmt.Errorf("config must include base_url, secret, sku")
	}
	if cfg.Quantity <= 0 {
		cfg.Quantity = 1
	}
	if cfg.Channel == "" {
		cfg.Channel = "pos"
	}
	if cfg.Email == "" {
		cfg.Email = "generator@example.com"
	}
	if cfg.Interval == "" {
		return config{}, fmt.Errorf("interval must be provided")
	}

	parsed, err := time.ParseDuration(cfg.Interval)
	if err != nil {
		return config{}, fmt.Errorf("invalid interval duration: %w", err)
	}
	if parsed <= 0 {
		return config{}, fmt.Errorf("interval must be positive")
	}

	return cfg, nil
}

func sendWebhook(client *http.Client, cfg config) error {
	orderID, err := randomID()
	if err != nil {
		return fmt.Errorf("failed to generate order id: %w", err)
	}
	variantID, err := randomID()
	if err != nil {
		return fmt.Errorf("failed to generate variant id: %w", err)
	}

	order := payload{
		ID:         orderID,
		SourceName: cfg.Channel,
		LineItems: []lineItem{
			{SKU: cfg.SKU, VariantID: variantID, Quantity: cfg.Quantity},
		},
		Customer: &customer{
			ID:    orderID + 1,
			Email: cfg.Email,
			State: "disabled",
		},
	}
	if cfg.Shipping {
		order.ShippingAddress = &address{City: "Vilnius"}
	}

	body, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	signature := sign(body, cfg.Secret)
	request, err := http.NewRequestWithContext(context.Background(), http.MethodPost, strings.TrimRight(cfg.BaseURL, "/")+"/webhooks/orders/create", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	request.Header.Set("X-Shopify-Hmac-Sha256", signature)
	request.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(request)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		reply, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("webhook failed: %s", strings.TrimSpace(string(reply)))
	}

	fmt.Printf("Webhook status: %s (order %d)\n", resp.Status, orderID)
	return nil
}

func randomID() (int64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000_000))
	if err != nil {
		return 0, err
	}
	return n.Int64() + 1_000_000, nil
}

func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
