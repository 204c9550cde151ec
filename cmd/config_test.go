package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	v := viper.New()
	if err := loadConfig(v, ""); err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	cfg := configFrom(v)

	if cfg.Port != "8080" || cfg.RatePerMinute != 5 || cfg.Nameserver != "8.8.8.8:53" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.ExternalTimeout != 4*time.Second || cfg.DNSTimeout != 3*time.Second || cfg.CacheTTL != 5*time.Minute {
		t.Fatalf("unexpected timeouts: %+v", cfg)
	}
	if !cfg.WhoisEnabled || !cfg.DomainsDBEnabled {
		t.Fatalf("registration sources should default on: %+v", cfg)
	}
}

func TestLoadConfigEnvAndFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PORT", "9999")
	t.Setenv("VIRUSTOTAL_API_KEY", "vt-key")

	file := filepath.Join(t.TempDir(), "urlguard.yaml")
	yaml := "timeouts:\n  external: 7s\nwhois:\n  enabled: false\nrate_limit:\n  per_minute: 12\n"
	if err := os.WriteFile(file, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	v := viper.New()
	if err := loadConfig(v, file); err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	cfg := configFrom(v)

	if cfg.Port != "9999" {
		t.Errorf("Port = %q, want env override", cfg.Port)
	}
	if cfg.VirusTotalKey != "vt-key" {
		t.Errorf("VirusTotalKey = %q", cfg.VirusTotalKey)
	}
	if cfg.ExternalTimeout != 7*time.Second || cfg.WhoisEnabled || cfg.RatePerMinute != 12 {
		t.Errorf("file values not applied: %+v", cfg)
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	v := viper.New()
	if err := loadConfig(v, filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}
