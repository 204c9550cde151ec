package urlcheck

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// ErrInvalidURL is returned when the input cannot be parsed as a URL or has no hostname.
var ErrInvalidURL = errors.New("invalid url")

type Status string

const (
	StatusSafe       Status = "safe"
	StatusSuspicious Status = "suspicious"
	StatusMalicious  Status = "malicious"
)

type Category string

const (
	CategoryGovernment  Category = "government"
	CategoryEducational Category = "educational"
	CategoryHealthcare  Category = "healthcare"
	CategoryFinancial   Category = "financial"
	CategoryTrusted     Category = "trusted"
	CategoryGeneral     Category = "general"
)

type TrustLevel string

const (
	TrustHigh   TrustLevel = "high"
	TrustMedium TrustLevel = "medium"
	TrustLow    TrustLevel = "low"
)

// Check names as they appear in the result's checks map.
const (
	CheckPattern    = "patternAnalysis"
	CheckReputation = "domainReputation"
	CheckScheme     = "sslCertificate"
	CheckStructure  = "urlStructure"
	CheckContent    = "contentAnalysis"
)

// checkOrder fixes iteration order wherever checks are rendered.
var checkOrder = []string{CheckPattern, CheckReputation, CheckScheme, CheckStructure, CheckContent}

// CheckNames lists the check keys in display order.
func CheckNames() []string {
	return append([]string(nil), checkOrder...)
}

// Signal tags a specific finding so later stages don't have to match on reason text.
type Signal string

const (
	SignalMalformedDomain Signal = "malformed_domain"
	SignalMaliciousWord   Signal = "malicious_keyword"
	SignalFakeBrand       Signal = "fake_brand"
	SignalNumericHost     Signal = "numeric_host"
	SignalHomograph       Signal = "homograph"
	SignalShortener       Signal = "url_shortener"
	SignalIPHost          Signal = "ip_host"
	SignalDisposableTLD   Signal = "disposable_tld"
	SignalUrgency         Signal = "urgency_words"
	SignalAtSymbol        Signal = "at_symbol"
	SignalTyposquat       Signal = "typosquat"
	SignalLongPath        Signal = "long_path"
	SignalDeepPath        Signal = "deep_path"
	SignalRedirectParam   Signal = "redirect_param"
	SignalEncoded         Signal = "encoded_chars"
	SignalNoDNS           Signal = "no_dns"
	SignalNoHTTPS         Signal = "no_https"
	SignalExecutable      Signal = "executable"
	SignalLongDomain      Signal = "long_domain"
	SignalManySubdomains  Signal = "many_subdomains"
	SignalThreatListed    Signal = "threat_listed"
	SignalEngineFlagged   Signal = "engine_flagged"
	SignalUnregistered    Signal = "unregistered"
	SignalNewDomain       Signal = "new_domain"
)

// AnalysisRequest is what a caller hands to the analyzer.
type AnalysisRequest struct {
	URL         string `json:"url"`
	RequesterID string `json:"user_id,omitempty"`
}

// ParsedURL is the strictly parsed form of an AnalysisRequest URL.
type ParsedURL struct {
	Scheme      string
	Hostname    string
	Path        string
	QueryParams url.Values
	RawHref     string
	// Href is the normalized form: punycode host, percent-encoded path and query.
	Href string
}

// ParseURL parses raw strictly: a scheme and a non-empty hostname are required.
func ParseURL(raw string) (ParsedURL, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return ParsedURL{}, errors.Join(ErrInvalidURL, err)
	}
	if u.Scheme == "" || u.Hostname() == "" {
		return ParsedURL{}, ErrInvalidURL
	}

	return ParsedURL{
		Scheme:      strings.ToLower(u.Scheme),
		Hostname:    strings.TrimSuffix(strings.ToLower(u.Hostname()), "."),
		Path:        u.EscapedPath(),
		QueryParams: u.Query(),
		RawHref:     raw,
		Href:        normalizedHref(u),
	}, nil
}

func normalizedHref(u *url.URL) string {
	n := *u
	n.Scheme = strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	if ascii, err := idna.Punycode.ToASCII(host); err == nil {
		n.Host = strings.Replace(strings.ToLower(u.Host), host, ascii, 1)
	}
	n.RawQuery = escapeLoose(u.RawQuery)
	return n.String()
}

// escapeLoose percent-encodes spaces, control bytes and non-ASCII bytes, leaving
// existing escapes and reserved characters as they are.
func escapeLoose(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c <= ' ' || c >= 0x7f || c == '"' || c == '<' || c == '>' {
			fmt.Fprintf(&b, "%%%02X", c)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// CheckOutcome is one module's contribution to the final score.
type CheckOutcome struct {
	Passed  bool     `json:"passed"`
	Score   int      `json:"score"`
	Reasons []string `json:"reasons,omitempty"`
	Signals []Signal `json:"signals,omitempty"`
}

// Has reports whether the outcome carries sig.
func (c CheckOutcome) Has(sig Signal) bool {
	for _, s := range c.Signals {
		if s == sig {
			return true
		}
	}
	return false
}

// Reason joins all reasons into one line.
func (c CheckOutcome) Reason() string {
	return strings.Join(c.Reasons, "; ")
}

// outcome accumulates deductions for a module that starts at max.
type outcome struct {
	max     int
	minPass int
	score   int
	reasons []string
	signals []Signal
}

func newOutcome(max, minPass int) *outcome {
	return &outcome{max: max, minPass: minPass, score: max}
}

func (o *outcome) deduct(points int, sig Signal, reason string) {
	o.score -= points
	o.reasons = append(o.reasons, reason)
	o.signals = append(o.signals, sig)
}

func (o *outcome) result() CheckOutcome {
	score := o.score
	if score < 0 {
		score = 0
	}
	if score > o.max {
		score = o.max
	}
	return CheckOutcome{
		Passed:  score >= o.minPass,
		Score:   score,
		Reasons: o.reasons,
		Signals: o.signals,
	}
}

type DomainContext struct {
	Category    Category   `json:"category"`
	TrustLevel  TrustLevel `json:"trustLevel"`
	Explanation string     `json:"explanation"`
}

// AnalysisResult is the verdict for one URL.
type AnalysisResult struct {
	Status           Status                  `json:"status"`
	Score            int                     `json:"score"`
	Checks           map[string]CheckOutcome `json:"checks"`
	DomainContext    DomainContext           `json:"domainContext"`
	Warnings         []string                `json:"warnings"`
	Recommendations  []string                `json:"recommendations"`
	ScoreExplanation string                  `json:"scoreExplanation"`
}

// FailedChecks returns the names of checks that did not pass, in display order.
func (r AnalysisResult) FailedChecks() []string {
	var failed []string
	for _, name := range checkOrder {
		if c, ok := r.Checks[name]; ok && !c.Passed {
			failed = append(failed, name)
		}
	}
	return failed
}
