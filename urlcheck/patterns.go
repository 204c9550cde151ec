package urlcheck

import (
	"fmt"
	"net"
	"regexp"
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

var atSymbolPattern = regexp.MustCompile(`@|%40`)

// patternChecker scans the URL text and hostname. It performs no I/O.
type patternChecker struct {
	lists      Lists
	weights    ScoringWeights
	thresholds ScoringThresholds
	fakeBrand  *regexp.Regexp
}

func newPatternChecker(lists Lists, weights ScoringWeights, thresholds ScoringThresholds) *patternChecker {
	p := &patternChecker{lists: lists, weights: weights, thresholds: thresholds}
	if len(lists.FakeBrandTokens) > 0 {
		quoted := make([]string, len(lists.FakeBrandTokens))
		for i, t := range lists.FakeBrandTokens {
			quoted[i] = regexp.QuoteMeta(t)
		}
		p.fakeBrand = regexp.MustCompile(`fake.*(` + strings.Join(quoted, "|") + `)`)
	}
	return p
}

// Analyze is the pattern module: starts at PatternMax and subtracts per signal.
func (p *patternChecker) Analyze(rawURL, hostname string) CheckOutcome {
	o := newOutcome(PatternMax, p.thresholds.PatternPass)
	w := p.weights
	full := strings.ToLower(rawURL)
	host := strings.ToLower(hostname)

	labels := strings.Split(host, ".")
	ip := net.ParseIP(host)

	// Domain format
	if ip == nil {
		if missingTLD(labels) {
			o.deduct(w.MissingTLD, SignalMalformedDomain, "Missing or invalid top-level domain")
		}
		if p.concatenatedTLD(labels[len(labels)-1]) {
			o.deduct(w.ConcatenatedTLD, SignalMalformedDomain, "Malformed domain - missing dot before TLD")
		}
	}

	// Malicious signals
	if _, ok := containsAny(full, p.lists.MaliciousKeywords); ok {
		o.deduct(w.MaliciousKeyword, SignalMaliciousWord, "Malicious keywords detected")
	}
	if p.fakeBrand != nil {
		if m := p.fakeBrand.FindStringSubmatch(full); m != nil {
			o.deduct(w.FakeBrand, SignalFakeBrand, fmt.Sprintf("Fake service detected (%s)", m[1]))
		}
	}
	if p.numericLabel(labels) {
		o.deduct(w.NumericHost, SignalNumericHost, "Random number domain")
	}
	if homograph(labels) {
		o.deduct(w.Homograph, SignalHomograph, "Non-Latin characters in hostname (possible homograph attack)")
	}

	// Suspicious signals
	if matchesAnyDomain(host, p.lists.Shorteners) {
		o.deduct(w.Shortener, SignalShortener, "URL shortener detected")
	}
	if ip != nil && ip.To4() != nil {
		o.deduct(w.IPHost, SignalIPHost, "IP address instead of domain")
	}
	if tld := topLevel(host); len(labels) > 1 && inList(tld, p.lists.DisposableTLDs) {
		o.deduct(w.DisposableTLD, SignalDisposableTLD, fmt.Sprintf("Suspicious TLD (.%s)", tld))
	}
	if _, ok := containsAny(full, p.lists.UrgencyWords); ok {
		o.deduct(w.Urgency, SignalUrgency, "Urgency keywords detected")
	}
	if atSymbolPattern.MatchString(full) {
		o.deduct(w.AtSymbol, SignalAtSymbol, "Contains @ symbol (possible credential phishing)")
	}

	if ip != nil {
		return o.result()
	}

	// Typosquatting
	base := brandLabel(host)
	if brand, dist, ok := p.nearestBrand(base); ok {
		o.deduct(w.Typosquat, SignalTyposquat,
			fmt.Sprintf("Typosquatting detected: '%s' is suspiciously similar to '%s' (edit distance %d)", base, brand, dist))
	}
	if brand, ok := p.knownMisspelling(base); ok {
		o.deduct(w.KnownMisspelling, SignalTyposquat, fmt.Sprintf("Known typosquatting variation of %s.com", brand))
	}

	return o.result()
}

// IsMalformedDomain reports whether hostname lacks a usable TLD.
func (p *patternChecker) IsMalformedDomain(hostname string) bool {
	host := strings.ToLower(hostname)
	if net.ParseIP(host) != nil {
		return false
	}
	labels := strings.Split(host, ".")
	return missingTLD(labels) || p.concatenatedTLD(labels[len(labels)-1])
}

func missingTLD(labels []string) bool {
	if len(labels) < 2 {
		return true
	}
	for _, l := range labels {
		if l == "" {
			return true
		}
	}
	return false
}

// concatenatedTLD catches hosts like "paypalcom" where the dot before the TLD was dropped.
func (p *patternChecker) concatenatedTLD(last string) bool {
	if len(last) <= 6 {
		return false
	}
	for _, r := range last {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	for _, tld := range p.lists.ConcatenatedTLDs {
		if strings.HasSuffix(last, tld) {
			return true
		}
	}
	return false
}

func (p *patternChecker) numericLabel(labels []string) bool {
	// The final label is the TLD; an all-digit host there is an IP literal, handled elsewhere.
	for _, l := range labels[:len(labels)-1] {
		if len(l) < p.weights.MinNumericHostLen {
			continue
		}
		digits := true
		for _, r := range l {
			if r < '0' || r > '9' {
				digits = false
				break
			}
		}
		if digits {
			return true
		}
	}
	return false
}

// homograph reports letters outside the Latin script, including inside punycode labels.
func homograph(labels []string) bool {
	for _, l := range labels {
		if strings.HasPrefix(l, "xn--") {
			if u, err := idna.Punycode.ToUnicode(l); err == nil {
				l = u
			}
		}
		for _, r := range l {
			if r > unicode.MaxASCII && unicode.IsLetter(r) && !unicode.Is(unicode.Latin, r) {
				return true
			}
		}
	}
	return false
}

// brandLabel is the first label of the registrable domain ("google" for www.google.co.uk).
func brandLabel(host string) string {
	registrable, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		registrable = host
	}
	label, _, _ := strings.Cut(registrable, ".")
	return label
}

// nearestBrand finds the closest brand within edit distance 1-2. Exact brand names never match.
func (p *patternChecker) nearestBrand(label string) (string, int, bool) {
	if label == "" || inList(label, p.lists.Brands) {
		return "", 0, false
	}
	best, bestDist := "", 3
	for _, brand := range p.lists.Brands {
		d := fuzzy.LevenshteinDistance(label, brand)
		if d > 0 && d < bestDist {
			best, bestDist = brand, d
		}
	}
	if best == "" {
		return "", 0, false
	}
	return best, bestDist, true
}

func (p *patternChecker) knownMisspelling(label string) (string, bool) {
	for _, brand := range p.lists.Brands {
		if inList(label, p.lists.Misspellings[brand]) {
			return brand, true
		}
	}
	return "", false
}
