package urlcheck

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

type fakeResolver struct {
	mu      sync.Mutex
	found   bool
	err     error
	block   bool
	queried []string
}

func (f *fakeResolver) HasARecords(ctx context.Context, domain string) (bool, error) {
	f.mu.Lock()
	f.queried = append(f.queried, domain)
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return false, ctx.Err()
	}
	return f.found, f.err
}

func newStructure(t *testing.T, r Resolver) *structureAnalyzer {
	return &structureAnalyzer{
		lists:      DefaultLists(),
		weights:    DefaultScoringWeights(),
		thresholds: DefaultScoringThresholds(),
		resolver:   r,
		timeout:    50 * time.Millisecond,
		logger:     zaptest.NewLogger(t),
	}
}

func mustParse(t *testing.T, raw string) ParsedURL {
	t.Helper()
	u, err := ParseURL(raw)
	if err != nil {
		t.Fatalf("ParseURL(%q): %v", raw, err)
	}
	return u
}

func TestStructureAnalyze(t *testing.T) {
	longPath := "/" + strings.Repeat("a", 120)

	tests := []struct {
		name       string
		url        string
		wantScore  int
		wantPassed bool
		wantSignal Signal
	}{
		{"clean", "https://example.com/about", 20, true, ""},
		{"long path", "https://example.com" + longPath, 15, true, SignalLongPath},
		{"deep path", "https://example.com/a/b/c/d/e/f", 15, true, SignalDeepPath},
		{"redirect and encoded", "https://example.com/r?url=https%3A%2F%2Fevil.test", 10, true, SignalRedirectParam},
		{"everything", "https://example.com/a/b/c/d/e" + longPath + "?continue=%2F", 0, false, SignalEncoded},
		{"space in path is encoded", "https://example.com/a b", 15, true, SignalEncoded},
		{"space in query is encoded", "https://example.com/?q=a b", 15, true, SignalEncoded},
		{"unicode host stays clean", "https://bücher.example/", 20, true, ""},
	}
	s := newStructure(t, &fakeResolver{found: true})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, conclusive := s.Analyze(context.Background(), mustParse(t, tt.url))
			if !conclusive {
				t.Fatal("resolved lookup reported inconclusive")
			}
			if got.Score != tt.wantScore || got.Passed != tt.wantPassed {
				t.Fatalf("score=%d passed=%v, want %d/%v (%v)", got.Score, got.Passed, tt.wantScore, tt.wantPassed, got.Reasons)
			}
			if tt.wantSignal != "" && !got.Has(tt.wantSignal) {
				t.Errorf("missing signal %s in %v", tt.wantSignal, got.Signals)
			}
		})
	}
}

func TestStructureDNS(t *testing.T) {
	ctx := context.Background()

	missing := &fakeResolver{found: false}
	got, conclusive := newStructure(t, missing).Analyze(ctx, mustParse(t, "https://www.sub.nonexistent-example.co.uk/"))
	if got.Score != 5 || got.Passed || !got.Has(SignalNoDNS) || !conclusive {
		t.Fatalf("no-records outcome = %+v", got)
	}
	if len(missing.queried) != 1 || missing.queried[0] != "nonexistent-example.co.uk" {
		t.Fatalf("queried %v, want registrable domain", missing.queried)
	}

	failing := &fakeResolver{err: errors.New("servfail")}
	if got, conclusive := newStructure(t, failing).Analyze(ctx, mustParse(t, "https://example.com/")); got.Score != 20 || conclusive {
		t.Fatalf("resolver error must fail open and be inconclusive, got %+v conclusive=%v", got, conclusive)
	}

	slow := &fakeResolver{block: true}
	start := time.Now()
	if got, conclusive := newStructure(t, slow).Analyze(ctx, mustParse(t, "https://example.com/")); got.Score != 20 || conclusive {
		t.Fatalf("timeout must fail open and be inconclusive, got %+v conclusive=%v", got, conclusive)
	}
	if time.Since(start) > time.Second {
		t.Fatal("lookup timeout not applied")
	}

	ipOnly := &fakeResolver{}
	newStructure(t, ipOnly).Analyze(ctx, mustParse(t, "http://10.1.2.3/"))
	if len(ipOnly.queried) != 0 {
		t.Fatalf("ip hosts must not be resolved, queried %v", ipOnly.queried)
	}

	if got, conclusive := newStructure(t, nil).Analyze(ctx, mustParse(t, "https://example.com/")); got.Score != 20 || !conclusive {
		t.Fatalf("nil resolver should skip dns, got %+v conclusive=%v", got, conclusive)
	}
}

func TestRegistrableDomain(t *testing.T) {
	tests := map[string]string{
		"www.example.com":   "example.com",
		"a.b.example.co.uk": "example.co.uk",
		"example.com":       "example.com",
		"localhost":         "localhost",
	}
	for host, want := range tests {
		if got := RegistrableDomain(host); got != want {
			t.Errorf("RegistrableDomain(%q) = %q, want %q", host, got, want)
		}
	}
}

func TestSchemeAndContent(t *testing.T) {
	lists, th := DefaultLists(), DefaultScoringThresholds()

	if got := checkScheme(mustParse(t, "https://example.com")); !got.Passed || got.Score != SchemeMax {
		t.Fatalf("https = %+v", got)
	}
	for _, raw := range []string{"http://example.com", "ftp://example.com/file", "HTTP://www.google.com"} {
		got := checkScheme(mustParse(t, raw))
		if got.Passed || got.Score != 0 || got.Reason() != "No HTTPS/SSL encryption" {
			t.Errorf("%s = %+v", raw, got)
		}
	}

	if got := analyzeContent(mustParse(t, "https://example.com/setup.EXE"), lists, th); got.Passed || got.Score != 0 || got.Reason() != "Suspicious file type: .exe" {
		t.Fatalf("exe = %+v", got)
	}
	if got := analyzeContent(mustParse(t, "https://example.com/docs/readme.pdf"), lists, th); !got.Passed || got.Score != ContentMax {
		t.Fatalf("pdf = %+v", got)
	}
}
