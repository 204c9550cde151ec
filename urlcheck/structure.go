package urlcheck

import (
	"context"
	"net"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
)

var encodedOctet = regexp.MustCompile(`%[0-9a-fA-F]{2}`)

// Resolver answers whether a registrable domain has any A records.
// A nil error with false means the name definitively has none.
type Resolver interface {
	HasARecords(ctx context.Context, domain string) (bool, error)
}

type structureAnalyzer struct {
	lists      Lists
	weights    ScoringWeights
	thresholds ScoringThresholds
	resolver   Resolver
	timeout    time.Duration
	logger     *zap.Logger
}

// Analyze scores the URL shape and does one best-effort DNS existence lookup.
// conclusive is false when that lookup errored or timed out.
func (s *structureAnalyzer) Analyze(ctx context.Context, u ParsedURL) (CheckOutcome, bool) {
	o := newOutcome(StructureMax, s.thresholds.StructurePass)
	w := s.weights

	missing, conclusive := s.domainMissing(ctx, u.Hostname)
	if missing {
		o.deduct(w.NoDNS, SignalNoDNS, "Domain has no DNS records (likely non-existent)")
	}

	if len(u.Path) > w.LongPathChars {
		o.deduct(w.LongPath, SignalLongPath, "Unusually long URL path")
	}
	if strings.Count(u.Path, "/") > w.MaxPathSegments {
		o.deduct(w.DeepPath, SignalDeepPath, "Complex URL structure")
	}
	for _, name := range s.lists.RedirectParams {
		if u.QueryParams.Has(name) {
			o.deduct(w.RedirectParam, SignalRedirectParam, "Contains redirect parameters")
			break
		}
	}
	if encodedOctet.MatchString(u.Href) {
		o.deduct(w.Encoded, SignalEncoded, "Contains encoded characters")
	}

	return o.result(), conclusive
}

// domainMissing fails open: lookup errors and timeouts never count as missing,
// but are reported as inconclusive.
func (s *structureAnalyzer) domainMissing(ctx context.Context, host string) (missing, conclusive bool) {
	if s.resolver == nil || net.ParseIP(host) != nil {
		return false, true
	}
	domain := RegistrableDomain(host)
	if !strings.Contains(domain, ".") {
		return false, true
	}

	lookupCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	found, err := s.resolver.HasARecords(lookupCtx, domain)
	if err != nil {
		s.logger.Debug("dns lookup inconclusive", zap.String("domain", domain), zap.Error(err))
		return false, false
	}
	return !found, true
}

// RegistrableDomain returns the eTLD+1 of host, falling back to its last two labels.
func RegistrableDomain(host string) string {
	if d, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return d
	}
	parts := strings.Split(host, ".")
	if len(parts) >= 2 {
		return strings.Join(parts[len(parts)-2:], ".")
	}
	return host
}
