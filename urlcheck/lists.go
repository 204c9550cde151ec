package urlcheck

import "strings"

// Lists holds the curated tables the checks match against.
// DefaultLists returns a fresh copy, so callers may edit it freely.
type Lists struct {
	// Pattern checker
	MaliciousKeywords []string            `json:"malicious_keywords"`
	FakeBrandTokens   []string            `json:"fake_brand_tokens"`
	Shorteners        []string            `json:"shorteners"`
	DisposableTLDs    []string            `json:"disposable_tlds"`
	UrgencyWords      []string            `json:"urgency_words"`
	Brands            []string            `json:"brands"`
	Misspellings      map[string][]string `json:"misspellings"`

	// Domain context classifier
	GovernmentSuffixes  []string `json:"government_suffixes"`
	EducationalSuffixes []string `json:"educational_suffixes"`
	HealthcareKeywords  []string `json:"healthcare_keywords"`
	HealthcareSuffixes  []string `json:"healthcare_suffixes"`
	FinancialKeywords   []string `json:"financial_keywords"`
	KnownBanks          []string `json:"known_banks"`
	TrustedDomains      []string `json:"trusted_domains"`

	// Reputation checker
	ReputationTrusted []string `json:"reputation_trusted"`
	ReputationTLDs    []string `json:"reputation_tlds"`

	// Structure and content
	RedirectParams       []string `json:"redirect_params"`
	ExecutableExtensions []string `json:"executable_extensions"`
	ConcatenatedTLDs     []string `json:"concatenated_tlds"`
}

func DefaultLists() Lists {
	return Lists{
		MaliciousKeywords: []string{"phishing", "malware", "virus", "trojan"},
		FakeBrandTokens:   []string{"bank", "paypal", "amazon"},
		Shorteners: []string{
			"bit.ly", "tinyurl.com", "goo.gl", "t.co", "short.link",
			"ow.ly", "is.gd", "buff.ly", "rebrand.ly", "cutt.ly",
		},
		DisposableTLDs: []string{"tk", "ml", "ga", "cf", "gq", "cc"},
		UrgencyWords:   []string{"urgent", "winner", "claim", "verify", "suspended", "limited", "expire"},
		Brands: []string{
			"google", "facebook", "amazon", "paypal", "microsoft", "apple", "netflix",
			"youtube", "twitter", "instagram", "linkedin", "ebay", "walmart", "target",
			"bestbuy", "chase", "bankofamerica", "wellsfargo", "citibank", "usbank",
		},
		Misspellings: map[string][]string{
			"youtube":   {"youtub", "youtubbe", "yotube", "yuotube", "youtbe"},
			"google":    {"googel", "gogle", "goggle", "gooogle"},
			"facebook":  {"facbook", "facebok", "fcebook", "faceboo"},
			"paypal":    {"payp4l", "paypai", "paipal", "paybal"},
			"amazon":    {"amazom", "amazone", "amaz0n", "anazon"},
			"microsoft": {"mircosoft", "microsofy", "microsodt", "micr0soft"},
		},

		GovernmentSuffixes: []string{
			".gov", ".gov.in", ".nic.in", ".gov.uk", ".gov.au", ".gc.ca", ".govt.nz",
			".gov.sg", ".gob.mx", ".gov.br",
		},
		EducationalSuffixes: []string{".edu", ".ac.uk", ".edu.au", ".ac.in", ".edu.sg", ".edu.cn"},
		HealthcareKeywords:  []string{"hospital", "health", "medical", "clinic"},
		HealthcareSuffixes:  []string{".nhs.uk"},
		FinancialKeywords:   []string{"bank", "credit", "finance", "insurance", "invest"},
		KnownBanks: []string{
			"chase.com", "bankofamerica.com", "wellsfargo.com", "citibank.com",
			"usbank.com", "capitalone.com", "ally.com", "discover.com",
		},
		TrustedDomains: []string{
			"google.com", "microsoft.com", "apple.com", "amazon.com", "facebook.com",
			"youtube.com", "wikipedia.org", "github.com", "stackoverflow.com", "mozilla.org",
		},

		ReputationTrusted: []string{
			"google.com", "facebook.com", "amazon.com", "microsoft.com", "apple.com",
			"github.com", "stackoverflow.com", "wikipedia.org", "youtube.com", "twitter.com",
		},
		ReputationTLDs: []string{"tk", "ml", "ga", "cf", "cc", "download", "review"},

		RedirectParams:       []string{"redirect", "url", "continue"},
		ExecutableExtensions: []string{".exe", ".scr", ".vbs", ".pif", ".cmd", ".bat", ".msi", ".jar", ".ps1"},
		ConcatenatedTLDs:     []string{"com", "net", "org", "gov", "edu"},
	}
}

// matchesDomain reports whether host equals domain or is a subdomain of it.
func matchesDomain(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}

func matchesAnyDomain(host string, domains []string) bool {
	for _, d := range domains {
		if matchesDomain(host, d) {
			return true
		}
	}
	return false
}

func hasAnySuffix(host string, suffixes []string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(host, s) {
			return true
		}
	}
	return false
}

func containsAny(s string, words []string) (string, bool) {
	for _, w := range words {
		if strings.Contains(s, w) {
			return w, true
		}
	}
	return "", false
}

func topLevel(host string) string {
	if i := strings.LastIndexByte(host, '.'); i >= 0 {
		return host[i+1:]
	}
	return host
}

func inList(s string, list []string) bool {
	for _, v := range list {
		if s == v {
			return true
		}
	}
	return false
}
