package main

type config struct {
	BaseURL  string `mapstructure:"base_url"`
	Secret   string `mapstructure:"secret"`
	SKU      string `mapstructure:"sku"`
	Quantity int    `mapstructure:"quantity"`
	Channel  string `mapstructure:"channel"`
	Email    string `mapstructure:"email"`
	Shipping bool   `mapstructure:"shipping"`
	Interval string `mapstructure:"interval"`
}
