package urlcheck

// Module maxima. The five modules sum to 100.
const (
	PatternMax    = 25
	ReputationMax = 25
	SchemeMax     = 20
	StructureMax  = 20
	ContentMax    = 10
)

// ScoringWeights holds every deduction the check modules apply.
// Values are hand-tuned starting points, not derived from a labelled corpus.
type ScoringWeights struct {
	// Pattern checker
	MissingTLD       int `json:"missing_tld"`       // Default: 20
	ConcatenatedTLD  int `json:"concatenated_tld"`  // Default: 25
	MaliciousKeyword int `json:"malicious_keyword"` // Default: 25
	FakeBrand        int `json:"fake_brand"`        // Default: 25
	NumericHost      int `json:"numeric_host"`      // Default: 20
	Homograph        int `json:"homograph"`         // Default: 20
	Shortener        int `json:"shortener"`         // Default: 10
	IPHost           int `json:"ip_host"`           // Default: 15
	DisposableTLD    int `json:"disposable_tld"`    // Default: 12
	Urgency          int `json:"urgency"`           // Default: 8
	AtSymbol         int `json:"at_symbol"`         // Default: 10
	Typosquat        int `json:"typosquat"`         // Default: 25
	KnownMisspelling int `json:"known_misspelling"` // Default: 25

	// Structural analyzer
	LongPath      int `json:"long_path"`      // Default: 5
	DeepPath      int `json:"deep_path"`      // Default: 5
	RedirectParam int `json:"redirect_param"` // Default: 5
	Encoded       int `json:"encoded"`        // Default: 5
	NoDNS         int `json:"no_dns"`         // Default: 15

	// Reputation checker
	LongDomain        int `json:"long_domain"`         // Default: 10
	ManySubdomains    int `json:"many_subdomains"`     // Default: 5
	ReputationTLD     int `json:"reputation_tld"`      // Default: 10
	ThreatListed      int `json:"threat_listed"`       // Default: 20
	EngineFlagged     int `json:"engine_flagged"`      // Default: 15
	Unregistered      int `json:"unregistered"`        // Default: 20
	NewDomain         int `json:"new_domain"`          // Default: 15
	EducationalScore  int `json:"educational_score"`   // Default: 23
	NewDomainMaxDays  int `json:"new_domain_max_days"` // Default: 30
	LongDomainChars   int `json:"long_domain_chars"`   // Default: 30
	MaxDomainLabels   int `json:"max_domain_labels"`   // Default: 4
	LongPathChars     int `json:"long_path_chars"`     // Default: 100
	MaxPathSegments   int `json:"max_path_segments"`   // Default: 5
	MinNumericHostLen int `json:"min_numeric_host"`    // Default: 10
}

// DefaultScoringWeights returns the stock deduction table.
func DefaultScoringWeights() ScoringWeights {
	return ScoringWeights{
		MissingTLD:       20,
		ConcatenatedTLD:  25,
		MaliciousKeyword: 25,
		FakeBrand:        25,
		NumericHost:      20,
		Homograph:        20,
		Shortener:        10,
		IPHost:           15,
		DisposableTLD:    12,
		Urgency:          8,
		AtSymbol:         10,
		Typosquat:        25,
		KnownMisspelling: 25,

		LongPath:      5,
		DeepPath:      5,
		RedirectParam: 5,
		Encoded:       5,
		NoDNS:         15,

		LongDomain:        10,
		ManySubdomains:    5,
		ReputationTLD:     10,
		ThreatListed:      20,
		EngineFlagged:     15,
		Unregistered:      20,
		NewDomain:         15,
		EducationalScore:  23,
		NewDomainMaxDays:  30,
		LongDomainChars:   30,
		MaxDomainLabels:   4,
		LongPathChars:     100,
		MaxPathSegments:   5,
		MinNumericHostLen: 10,
	}
}

// ScoringThresholds maps a total score to a status.
type ScoringThresholds struct {
	SafeMin        int `json:"safe_min"`         // Default: 80
	SuspiciousMin  int `json:"suspicious_min"`   // Default: 50
	TrustedFloor   int `json:"trusted_floor"`    // Default: 40, high-trust lenient band starts here
	TrustedSafeMin int `json:"trusted_safe_min"` // Default: 60
	MalformedCap   int `json:"malformed_cap"`    // Default: 20

	// Per-module pass marks
	PatternPass    int `json:"pattern_pass"`    // Default: 15
	ReputationPass int `json:"reputation_pass"` // Default: 15
	StructurePass  int `json:"structure_pass"`  // Default: 10
	ContentPass    int `json:"content_pass"`    // Default: 5
}

// DefaultScoringThresholds returns default thresholds
func DefaultScoringThresholds() ScoringThresholds {
	return ScoringThresholds{
		SafeMin:        80,
		SuspiciousMin:  50,
		TrustedFloor:   40,
		TrustedSafeMin: 60,
		MalformedCap:   20,

		PatternPass:    15,
		ReputationPass: 15,
		StructurePass:  10,
		ContentPass:    5,
	}
}
