package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the resolved runtime configuration shared by every command.
type Config struct {
	Port             string
	ExternalTimeout  time.Duration
	DNSTimeout       time.Duration
	CacheTTL         time.Duration
	RatePerMinute    int
	DBPath           string
	Nameserver       string
	SafeBrowsingKey  string
	VirusTotalKey    string
	WhoisEnabled     bool
	DomainsDBEnabled bool
}

var envBindings = map[string]string{
	"port":                 "PORT",
	"safebrowsing.api_key": "GOOGLE_SAFE_BROWSING_KEY",
	"virustotal.api_key":   "VIRUSTOTAL_API_KEY",
	"db.path":              "URLGUARD_DB_PATH",
	"dns.nameserver":       "URLGUARD_NAMESERVER",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("timeouts.external", 4*time.Second)
	v.SetDefault("timeouts.dns", 3*time.Second)
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("rate_limit.per_minute", 5)
	v.SetDefault("db.path", "urlguard.db")
	v.SetDefault("dns.nameserver", "8.8.8.8:53")
	v.SetDefault("whois.enabled", true)
	v.SetDefault("domainsdb.enabled", true)
}

// loadConfig wires defaults, env vars, and an optional YAML file into v.
func loadConfig(v *viper.Viper, file string) error {
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath("$HOME")
		v.AddConfigPath(".")
		v.SetConfigName(".urlguard")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

func configFrom(v *viper.Viper) Config {
	return Config{
		Port:             v.GetString("port"),
		ExternalTimeout:  v.GetDuration("timeouts.external"),
		DNSTimeout:       v.GetDuration("timeouts.dns"),
		CacheTTL:         v.GetDuration("cache.ttl"),
		RatePerMinute:    v.GetInt("rate_limit.per_minute"),
		DBPath:           v.GetString("db.path"),
		Nameserver:       v.GetString("dns.nameserver"),
		SafeBrowsingKey:  v.GetString("safebrowsing.api_key"),
		VirusTotalKey:    v.GetString("virustotal.api_key"),
		WhoisEnabled:     v.GetBool("whois.enabled"),
		DomainsDBEnabled: v.GetBool("domainsdb.enabled"),
	}
}
