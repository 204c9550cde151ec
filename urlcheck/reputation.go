package urlcheck

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"urlguard/intel"
)

// ThreatList is a Safe-Browsing-style lookup. An empty slice means the URL is not listed.
type ThreatList interface {
	ThreatTypes(ctx context.Context, rawURL string) ([]string, error)
}

// EngineReputation is a multi-engine scanner such as VirusTotal.
type EngineReputation interface {
	Verdict(ctx context.Context, rawURL string) (intel.EngineVerdict, error)
}

// RegistrationLookup reports whether a domain is registered and when.
// Found=false with a nil error is a definitive "not registered".
type RegistrationLookup interface {
	Registration(ctx context.Context, domain string) (intel.Registration, error)
}

type reputationChecker struct {
	lists        Lists
	weights      ScoringWeights
	thresholds   ScoringThresholds
	threats      ThreatList
	engines      EngineReputation
	registration RegistrationLookup
	timeout      time.Duration
	now          func() time.Time
	logger       *zap.Logger
}

// externalFinding is what one external signal contributes.
type externalFinding struct {
	points int
	signal Signal
	reason string
}

// Check scores domain reputation. External calls run concurrently and fail open.
// The bool is false when any of them errored or timed out.
func (r *reputationChecker) Check(ctx context.Context, u ParsedURL, dc DomainContext) (CheckOutcome, bool) {
	host := u.Hostname
	switch {
	case dc.Category == CategoryGovernment:
		return CheckOutcome{Passed: true, Score: ReputationMax, Reasons: []string{"Official government domain - institutionally trusted"}}, true
	case dc.Category == CategoryEducational:
		return CheckOutcome{Passed: true, Score: r.weights.EducationalScore, Reasons: []string{"Educational institution domain"}}, true
	case matchesAnyDomain(host, r.lists.ReputationTrusted):
		return CheckOutcome{Passed: true, Score: ReputationMax}, true
	}

	o := newOutcome(ReputationMax, r.thresholds.ReputationPass)
	w := r.weights

	if len(host) > w.LongDomainChars {
		o.deduct(w.LongDomain, SignalLongDomain, "Unusually long domain name")
	}
	if len(strings.Split(host, ".")) > w.MaxDomainLabels {
		o.deduct(w.ManySubdomains, SignalManySubdomains, "Multiple subdomains")
	}
	if inList(topLevel(host), r.lists.ReputationTLDs) {
		o.deduct(w.ReputationTLD, SignalDisposableTLD, "Suspicious top-level domain")
	}

	// Each slot is written by exactly one goroutine; order of the slice fixes reason order.
	findings := make([]*externalFinding, 3)
	settled := make([]bool, 3)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		findings[0], settled[0] = r.threatFinding(gctx, u.RawHref)
		return nil
	})
	g.Go(func() error {
		findings[1], settled[1] = r.engineFinding(gctx, u.RawHref)
		return nil
	})
	g.Go(func() error {
		findings[2], settled[2] = r.registrationFinding(gctx, RegistrableDomain(host))
		return nil
	})
	_ = g.Wait()

	conclusive := true
	for i, f := range findings {
		if f != nil {
			o.deduct(f.points, f.signal, f.reason)
		}
		conclusive = conclusive && settled[i]
	}
	return o.result(), conclusive
}

func (r *reputationChecker) threatFinding(ctx context.Context, rawURL string) (*externalFinding, bool) {
	if r.threats == nil {
		return nil, true
	}
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	threats, err := r.threats.ThreatTypes(callCtx, rawURL)
	if err != nil {
		r.logger.Warn("threat list lookup failed", zap.String("url", rawURL), zap.Error(err))
		return nil, false
	}
	if len(threats) == 0 {
		return nil, true
	}
	return &externalFinding{
		points: r.weights.ThreatListed,
		signal: SignalThreatListed,
		reason: "Flagged by Google Safe Browsing: " + strings.Join(threats, ", "),
	}, true
}

func (r *reputationChecker) engineFinding(ctx context.Context, rawURL string) (*externalFinding, bool) {
	if r.engines == nil {
		return nil, true
	}
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	v, err := r.engines.Verdict(callCtx, rawURL)
	if err != nil {
		r.logger.Warn("engine reputation lookup failed", zap.String("url", rawURL), zap.Error(err))
		return nil, false
	}
	if !v.Seen || v.Positives() == 0 {
		return nil, true
	}
	return &externalFinding{
		points: r.weights.EngineFlagged,
		signal: SignalEngineFlagged,
		reason: fmt.Sprintf("Detected by %d security vendors", v.Positives()),
	}, true
}

func (r *reputationChecker) registrationFinding(ctx context.Context, domain string) (*externalFinding, bool) {
	if r.registration == nil || !strings.Contains(domain, ".") {
		return nil, true
	}
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	reg, err := r.registration.Registration(callCtx, domain)
	if err != nil {
		r.logger.Warn("registration lookup inconclusive", zap.String("domain", domain), zap.Error(err))
		return nil, false
	}
	if !reg.Found {
		return &externalFinding{
			points: r.weights.Unregistered,
			signal: SignalUnregistered,
			reason: "Domain does not exist or cannot be verified",
		}, true
	}
	if reg.Created.IsZero() {
		return nil, true
	}
	days := int(r.now().Sub(reg.Created).Hours() / 24)
	if days < r.weights.NewDomainMaxDays {
		return &externalFinding{
			points: r.weights.NewDomain,
			signal: SignalNewDomain,
			reason: fmt.Sprintf("Recently created domain (%d days old)", days),
		}, true
	}
	return nil, true
}
