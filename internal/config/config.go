package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Storefront StorefrontConfig
	API        APIConfig
	Pricing    PricingConfig
	Catalog    CatalogConfig
	Checkout   CheckoutConfig
}

type StorefrontConfig struct {
	Env         string
	CustomerID  int64
	StoragePath string
}

type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type PricingConfig struct {
	TaxRate     float64
	ShippingFee float64
	// FreeShippingThreshold of zero always waives shipping.
	FreeShippingThreshold float64
}

type CatalogConfig struct {
	StaleAfter     time.Duration
	SearchDebounce time.Duration
	SearchPageSize int
}

type CheckoutConfig struct {
	SuccessDelay time.Duration
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("STOREFRONT_ENV", "development")
	viper.SetDefault("CUSTOMER_ID", 1)
	viper.SetDefault("STORAGE_PATH", "storefront.db")
	viper.SetDefault("API_BASE_URL", "http://localhost:8080/api")
	viper.SetDefault("API_TIMEOUT_SECONDS", 15)
	viper.SetDefault("TAX_RATE", 0.05)
	viper.SetDefault("SHIPPING_FEE", 5.99)
	viper.SetDefault("FREE_SHIPPING_THRESHOLD", 100)
	viper.SetDefault("CATALOG_STALE_MINUTES", 5)
	viper.SetDefault("SEARCH_DEBOUNCE_MS", 300)
	viper.SetDefault("SEARCH_PAGE_SIZE", 20)
	viper.SetDefault("CHECKOUT_SUCCESS_DELAY_MS", 3000)

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Storefront: StorefrontConfig{
			Env:         viper.GetString("STOREFRONT_ENV"),
			CustomerID:  viper.GetInt64("CUSTOMER_ID"),
			StoragePath: viper.GetString("STORAGE_PATH"),
		},
		API: APIConfig{
			BaseURL: viper.GetString("API_BASE_URL"),
			Timeout: time.Duration(viper.GetInt("API_TIMEOUT_SECONDS")) * time.Second,
		},
		Pricing: PricingConfig{
			TaxRate:               viper.GetFloat64("TAX_RATE"),
			ShippingFee:           viper.GetFloat64("SHIPPING_FEE"),
			FreeShippingThreshold: viper.GetFloat64("FREE_SHIPPING_THRESHOLD"),
		},
		Catalog: CatalogConfig{
			StaleAfter:     time.Duration(viper.GetInt("CATALOG_STALE_MINUTES")) * time.Minute,
			SearchDebounce: time.Duration(viper.GetInt("SEARCH_DEBOUNCE_MS")) * time.Millisecond,
			SearchPageSize: viper.GetInt("SEARCH_PAGE_SIZE"),
		},
		Checkout: CheckoutConfig{
			SuccessDelay: time.Duration(viper.GetInt("CHECKOUT_SUCCESS_DELAY_MS")) * time.Millisecond,
		},
	}
}
