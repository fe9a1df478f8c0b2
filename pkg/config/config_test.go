package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.API.BaseURL != "http://localhost:8080/CarAccessories" {
		t.Fatalf("unexpected base url %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 15*time.Second {
		t.Fatalf("unexpected api timeout %v", cfg.API.Timeout)
	}
	if cfg.Storage.Driver != StorageDriverFile {
		t.Fatalf("expected file storage by default, got %q", cfg.Storage.Driver)
	}
	if got := cfg.Checkout.Fee().String(); got != "50" {
		t.Fatalf("expected delivery fee 50, got %s", got)
	}
	if got := cfg.Checkout.Rate().String(); got != "0.15" {
		t.Fatalf("expected vat 0.15, got %s", got)
	}
	if !cfg.App.IsDev() {
		t.Fatalf("expected dev env by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv(EnvAppEnv, "prod")
	t.Setenv(EnvAPIBaseURL, "https://shop.example.com/api")
	t.Setenv(EnvAPITimeout, "3s")
	t.Setenv(EnvStorageDriver, StorageDriverRedis)
	t.Setenv(EnvRedisURL, "redis://localhost:6379/2")
	t.Setenv(EnvCheckoutFee, "75.50")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if !cfg.App.IsProd() {
		t.Fatalf("expected prod env")
	}
	if cfg.API.Timeout != 3*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.API.Timeout)
	}
	if cfg.Redis.URL != "redis://localhost:6379/2" {
		t.Fatalf("unexpected redis url %q", cfg.Redis.URL)
	}
	if got := cfg.Checkout.Fee().String(); got != "75.5" {
		t.Fatalf("unexpected fee %s", got)
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"unknown driver":  {EnvStorageDriver, "floppy"},
		"bad scheme":      {EnvAPIBaseURL, "ftp://example.com"},
		"negative fee":    {EnvCheckoutFee, "-1"},
		"vat not percent": {EnvCheckoutVAT, "15"},
		"buyer path":      {EnvAPIOrdersByBuyer, "/order/buyer"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			if _, err := Load(); err == nil {
				t.Fatalf("expected %s=%q to be rejected", kv[0], kv[1])
			}
		})
	}
}
