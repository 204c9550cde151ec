package urlcheck

import (
	"fmt"
	"strings"
)

var failedNames = map[string]string{
	CheckPattern:    "pattern analysis",
	CheckReputation: "domain reputation",
	CheckScheme:     "SSL certificate",
	CheckStructure:  "URL structure",
	CheckContent:    "content analysis",
}

// findings turns failed checks into short plain-language causes.
func findings(checks map[string]CheckOutcome) (failed, causes []string) {
	for _, name := range checkOrder {
		c, ok := checks[name]
		if !ok || c.Passed {
			continue
		}
		failed = append(failed, failedNames[name])

		switch name {
		case CheckPattern:
			switch {
			case c.Has(SignalMalformedDomain):
				causes = append(causes, "The domain name is malformed or incomplete")
			case c.Has(SignalTyposquat):
				causes = append(causes, "The domain appears to be mimicking a popular website")
			case c.Has(SignalHomograph):
				causes = append(causes, "The domain uses look-alike characters from another alphabet")
			case c.Has(SignalShortener):
				causes = append(causes, "URL shorteners can hide the actual destination")
			case c.Has(SignalMaliciousWord), c.Has(SignalFakeBrand):
				causes = append(causes, "The URL contains wording associated with scams")
			}
		case CheckScheme:
			causes = append(causes, "The site lacks HTTPS encryption")
		case CheckReputation:
			switch {
			case c.Has(SignalThreatListed), c.Has(SignalEngineFlagged):
				causes = append(causes, "Security services have flagged this URL")
			case c.Has(SignalNewDomain):
				causes = append(causes, "The domain was created very recently")
			case c.Has(SignalUnregistered):
				causes = append(causes, "The domain could not be confirmed to exist")
			}
		case CheckStructure:
			if c.Has(SignalNoDNS) {
				causes = append(causes, "The domain does not resolve")
			} else {
				causes = append(causes, "The URL structure is unusually complex")
			}
		case CheckContent:
			causes = append(causes, "The link points to an executable file")
		}
	}
	return failed, causes
}

// explain picks a prose template for the score. Output depends only on its inputs.
func explain(score int, dc DomainContext, checks map[string]CheckOutcome) string {
	failed, causes := findings(checks)
	issues := "minor technical weaknesses"
	if len(causes) > 0 {
		issues = strings.Join(lowerFirst(causes), ", ")
	}

	switch {
	case dc.Category == CategoryGovernment && score < 80:
		return fmt.Sprintf("This government website scored %d/100. Government sites are institutionally trusted, but this one has technical issues: %s. "+
			"Government sites often run older technology for stability, which lowers security scores. The site is still appropriate for official purposes.", score, issues)
	case dc.Category == CategoryEducational && score < 80:
		return fmt.Sprintf("This educational institution scored %d/100. Educational sites are generally trusted but this one shows: %s. "+
			"The lower score reflects technical limitations rather than malicious intent.", score, issues)
	case score >= 80:
		return fmt.Sprintf("This site scored %d/100, indicating good security practices. %s", score, dc.Explanation)
	case score >= 50:
		return fmt.Sprintf("This site scored %d/100 due to: %s.%s Exercise caution when sharing personal information.",
			score, strings.Join(failed, ", "), sentences(causes))
	default:
		return fmt.Sprintf("This site scored only %d/100, indicating serious security concerns: %s.%s Avoid visiting this site or sharing any information.",
			score, strings.Join(failed, ", "), sentences(causes))
	}
}

// recommend derives user advice from the failed checks, in check order.
func recommend(checks map[string]CheckOutcome, status Status) []string {
	recs := []string{}
	if c, ok := checks[CheckScheme]; ok && !c.Passed {
		recs = append(recs, "Ensure the website uses HTTPS before entering any sensitive information.")
	}
	if c, ok := checks[CheckPattern]; ok && !c.Passed {
		recs = append(recs, "Be extremely cautious - this URL contains known phishing patterns.")
	}
	if c, ok := checks[CheckReputation]; ok && !c.Passed {
		recs = append(recs, "Verify the domain through official channels before trusting it.")
	}
	if c, ok := checks[CheckStructure]; ok && !c.Passed {
		recs = append(recs, "Check where the link actually leads before following it.")
	}
	if c, ok := checks[CheckContent]; ok && !c.Passed {
		recs = append(recs, "Do not download or run files from this link.")
	}
	if status == StatusMalicious {
		recs = append(recs, "Do not visit this URL or share any personal information with it.")
	}
	return recs
}

func sentences(causes []string) string {
	if len(causes) == 0 {
		return ""
	}
	return " " + strings.Join(causes, ". ") + "."
}

func lowerFirst(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		if s != "" {
			out[i] = strings.ToLower(s[:1]) + s[1:]
		}
	}
	return out
}
