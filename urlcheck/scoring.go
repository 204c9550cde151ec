package urlcheck

import "fmt"

var checkLabels = map[string]string{
	CheckPattern:    "Pattern analysis",
	CheckReputation: "Domain reputation",
	CheckScheme:     "SSL certificate",
	CheckStructure:  "URL structure",
	CheckContent:    "Content analysis",
}

// totalScore sums every module score and clamps to [0,100].
func totalScore(checks map[string]CheckOutcome) int {
	total := 0
	for _, c := range checks {
		total += c.Score
	}
	return clamp(total, 0, 100)
}

// classify applies the context-aware thresholds.
// High-trust domains scoring at least TrustedFloor get the lenient band.
func classify(score int, dc DomainContext, t ScoringThresholds) Status {
	if dc.TrustLevel == TrustHigh && score >= t.TrustedFloor {
		if score >= t.TrustedSafeMin {
			return StatusSafe
		}
		return StatusSuspicious
	}
	switch {
	case score >= t.SafeMin:
		return StatusSafe
	case score >= t.SuspiciousMin:
		return StatusSuspicious
	default:
		return StatusMalicious
	}
}

// aggregate folds the module outcomes into a result. A malformed domain overrides
// every other rule: status is forced to malicious and the score capped.
func aggregate(checks map[string]CheckOutcome, dc DomainContext, malformed bool, t ScoringThresholds) AnalysisResult {
	res := AnalysisResult{
		Checks:          checks,
		DomainContext:   dc,
		Warnings:        []string{},
		Recommendations: []string{},
	}

	if malformed {
		checks[CheckStructure] = CheckOutcome{
			Passed:  false,
			Score:   0,
			Reasons: []string{"Invalid domain format detected"},
			Signals: []Signal{SignalMalformedDomain},
		}
		res.Score = min(totalScore(checks), t.MalformedCap)
		res.Status = StatusMalicious
	} else {
		res.Score = totalScore(checks)
		res.Status = classify(res.Score, dc, t)
	}

	for _, name := range res.FailedChecks() {
		c := checks[name]
		if len(c.Reasons) == 0 {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s check failed.", checkLabels[name]))
			continue
		}
		res.Warnings = append(res.Warnings, fmt.Sprintf("%s check failed: %s", checkLabels[name], c.Reason()))
	}

	if malformed {
		res.Warnings = append(res.Warnings, "Domain format is invalid or incomplete")
	}
	switch res.Status {
	case StatusSuspicious:
		res.Warnings = append(res.Warnings, "This URL shows some suspicious characteristics. Proceed with caution.")
	case StatusMalicious:
		res.Warnings = append(res.Warnings, "This URL appears to be dangerous. Do not proceed.")
	}
	if !malformed && dc.TrustLevel == TrustHigh && res.Score < t.SafeMin &&
		(dc.Category == CategoryGovernment || dc.Category == CategoryEducational) {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("Note: This is a %s website with lower technical scores but high institutional trust.", dc.Category))
	}

	res.ScoreExplanation = explain(res.Score, dc, checks)
	res.Recommendations = recommend(checks, res.Status)
	return res
}

// rejected is the fixed result for input that is not a usable URL.
func rejected() AnalysisResult {
	fail := func(reason string) CheckOutcome {
		return CheckOutcome{Passed: false, Score: 0, Reasons: []string{reason}}
	}
	return AnalysisResult{
		Status: StatusMalicious,
		Score:  0,
		Checks: map[string]CheckOutcome{
			CheckPattern:    fail("Invalid domain format"),
			CheckReputation: fail("No valid domain found"),
			CheckScheme:     fail("Cannot verify SSL for invalid domain"),
			CheckStructure:  fail("Malformed URL structure"),
			CheckContent:    fail("Cannot analyze invalid URL"),
		},
		DomainContext: DomainContext{
			Category:    CategoryGeneral,
			TrustLevel:  TrustLow,
			Explanation: "The input could not be parsed as a URL with a hostname.",
		},
		Warnings:         []string{"This URL has an invalid domain format and should not be trusted."},
		Recommendations:  []string{"Do not visit this URL", "Check the URL format carefully"},
		ScoreExplanation: "This URL could not be parsed, so no checks were run. Treat it as unsafe.",
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
