package cmd

import (
	"go.uber.org/zap"

	"urlguard/intel"
	"urlguard/urlcheck"
)

// newAnalyzer builds the analyzer with every adapter the configuration enables.
// Interfaces are only assigned non-nil adapters.
func newAnalyzer(cfg Config, log *zap.Logger) *urlcheck.Analyzer {
	ac := urlcheck.DefaultConfig()
	ac.Logger = log.Named("analyzer")
	ac.DNSTimeout = cfg.DNSTimeout
	ac.ExternalTimeout = cfg.ExternalTimeout
	ac.Cache = urlcheck.NewCache(cfg.CacheTTL)

	var servers []string
	if cfg.Nameserver != "" {
		servers = append(servers, cfg.Nameserver)
	}
	resolver := intel.NewDNSResolver(cfg.DNSTimeout, servers...)
	ac.Resolver = resolver

	if cfg.SafeBrowsingKey != "" {
		ac.Threats = intel.NewSafeBrowsing(cfg.SafeBrowsingKey, cfg.ExternalTimeout)
	} else {
		log.Info("safe browsing disabled: no api key")
	}
	if cfg.VirusTotalKey != "" {
		ac.Engines = intel.NewVirusTotal(cfg.VirusTotalKey, cfg.ExternalTimeout)
	} else {
		log.Info("virustotal disabled: no api key")
	}

	sources := []intel.Source{&intel.DNSExistence{Resolver: resolver}}
	if cfg.WhoisEnabled {
		sources = append(sources, intel.NewWhois(cfg.ExternalTimeout))
	}
	if cfg.DomainsDBEnabled {
		sources = append(sources, intel.NewDomainsDB(cfg.ExternalTimeout))
	}
	ac.Registration = &intel.RegistrationChain{Sources: sources, Logger: log.Named("registration")}

	return urlcheck.New(ac)
}
