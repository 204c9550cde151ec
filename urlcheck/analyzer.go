package urlcheck

import (
	"context"
	"reflect"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Config wires the analyzer. Zero-valued tables fall back to their defaults;
// nil collaborators disable the signal they provide.
type Config struct {
	Lists      Lists
	Weights    ScoringWeights
	Thresholds ScoringThresholds

	Resolver     Resolver
	Threats      ThreatList
	Engines      EngineReputation
	Registration RegistrationLookup

	DNSTimeout      time.Duration
	ExternalTimeout time.Duration

	Cache  *Cache
	Now    func() time.Time
	Logger *zap.Logger
}

func DefaultConfig() Config {
	return Config{
		Lists:           DefaultLists(),
		Weights:         DefaultScoringWeights(),
		Thresholds:      DefaultScoringThresholds(),
		DNSTimeout:      3 * time.Second,
		ExternalTimeout: 4 * time.Second,
	}
}

// Analyzer produces a trust verdict for a URL. It is safe for concurrent use.
type Analyzer struct {
	cfg        Config
	patterns   *patternChecker
	classifier domainClassifier
	structure  *structureAnalyzer
	reputation *reputationChecker
	logger     *zap.Logger
}

func New(cfg Config) *Analyzer {
	def := DefaultConfig()
	if reflect.ValueOf(cfg.Lists).IsZero() {
		cfg.Lists = def.Lists
	}
	if cfg.Weights == (ScoringWeights{}) {
		cfg.Weights = def.Weights
	}
	if cfg.Thresholds == (ScoringThresholds{}) {
		cfg.Thresholds = def.Thresholds
	}
	if cfg.DNSTimeout <= 0 {
		cfg.DNSTimeout = def.DNSTimeout
	}
	if cfg.ExternalTimeout <= 0 {
		cfg.ExternalTimeout = def.ExternalTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Analyzer{
		cfg:        cfg,
		patterns:   newPatternChecker(cfg.Lists, cfg.Weights, cfg.Thresholds),
		classifier: domainClassifier{lists: cfg.Lists},
		structure: &structureAnalyzer{
			lists:      cfg.Lists,
			weights:    cfg.Weights,
			thresholds: cfg.Thresholds,
			resolver:   cfg.Resolver,
			timeout:    cfg.DNSTimeout,
			logger:     cfg.Logger.Named("structure"),
		},
		reputation: &reputationChecker{
			lists:        cfg.Lists,
			weights:      cfg.Weights,
			thresholds:   cfg.Thresholds,
			threats:      cfg.Threats,
			engines:      cfg.Engines,
			registration: cfg.Registration,
			timeout:      cfg.ExternalTimeout,
			now:          cfg.Now,
			logger:       cfg.Logger.Named("reputation"),
		},
		logger: cfg.Logger,
	}
}

// Analyze scores req.URL. Only an unparseable URL returns an error, and even then
// the fixed rejected result is returned alongside it. External failures and
// cancellation degrade individual signals to "no penalty"; such degraded results
// are returned but never cached.
func (a *Analyzer) Analyze(ctx context.Context, req AnalysisRequest) (AnalysisResult, error) {
	u, err := ParseURL(req.URL)
	if err != nil {
		a.logger.Info("rejected url", zap.String("url", req.URL), zap.Error(err))
		return rejected(), err
	}

	key := strings.TrimSpace(req.URL)
	if a.cfg.Cache != nil {
		if res, ok := a.cfg.Cache.Get(key); ok {
			a.logger.Debug("cache hit", zap.String("host", u.Hostname))
			return res, nil
		}
	}

	dc := a.classifier.Classify(u.Hostname)

	var pattern, reputation, scheme, structure, content CheckOutcome
	var reputationSettled, structureSettled bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		pattern = a.patterns.Analyze(u.RawHref, u.Hostname)
		return nil
	})
	g.Go(func() error {
		reputation, reputationSettled = a.reputation.Check(gctx, u, dc)
		return nil
	})
	g.Go(func() error {
		scheme = checkScheme(u)
		return nil
	})
	g.Go(func() error {
		structure, structureSettled = a.structure.Analyze(gctx, u)
		return nil
	})
	g.Go(func() error {
		content = analyzeContent(u, a.cfg.Lists, a.cfg.Thresholds)
		return nil
	})
	_ = g.Wait()

	checks := map[string]CheckOutcome{
		CheckPattern:    pattern,
		CheckReputation: reputation,
		CheckScheme:     scheme,
		CheckStructure:  structure,
		CheckContent:    content,
	}
	res := aggregate(checks, dc, a.patterns.IsMalformedDomain(u.Hostname), a.cfg.Thresholds)

	a.logger.Info("url analyzed",
		zap.String("host", u.Hostname),
		zap.String("status", string(res.Status)),
		zap.Int("score", res.Score),
		zap.String("category", string(dc.Category)),
	)

	if a.cfg.Cache == nil {
		return res, nil
	}
	if ctx.Err() != nil || !reputationSettled || !structureSettled {
		a.logger.Debug("result not cached: external signals inconclusive", zap.String("host", u.Hostname))
		return res, nil
	}
	a.cfg.Cache.Put(key, res)
	return res, nil
}
