package urlcheck

import "strings"

const (
	explainGovernment  = "This is an official government domain. Government websites are institutionally trusted, though legacy systems can lower their technical security scores."
	explainEducational = "This is an educational institution domain. Educational websites are generally trusted, though security practices vary between institutions."
	explainHealthcare  = "This appears to be a healthcare-related domain. Verify it belongs to a legitimate healthcare provider."
	explainKnownBank   = "This is a recognized financial institution. Always verify the exact domain to avoid phishing."
	explainFinancial   = "This appears to be a financial domain. Be extremely cautious and verify authenticity through official channels."
	explainTrusted     = "This is a well-known, trusted website."
	explainGeneral     = "This is a general domain. Verify its legitimacy before sharing sensitive information."
)

// domainClassifier assigns a category and trust level to a hostname. First rule wins.
type domainClassifier struct {
	lists Lists
}

func (c domainClassifier) Classify(hostname string) DomainContext {
	host := strings.ToLower(hostname)
	l := c.lists

	switch {
	case hasAnySuffix(host, l.GovernmentSuffixes) || strings.Contains(host, ".government."):
		return DomainContext{Category: CategoryGovernment, TrustLevel: TrustHigh, Explanation: explainGovernment}

	case hasAnySuffix(host, l.EducationalSuffixes):
		return DomainContext{Category: CategoryEducational, TrustLevel: TrustHigh, Explanation: explainEducational}

	case hasAnySuffix(host, l.HealthcareSuffixes):
		return DomainContext{Category: CategoryHealthcare, TrustLevel: TrustMedium, Explanation: explainHealthcare}
	}
	if _, ok := containsAny(host, l.HealthcareKeywords); ok {
		return DomainContext{Category: CategoryHealthcare, TrustLevel: TrustMedium, Explanation: explainHealthcare}
	}

	if _, ok := containsAny(host, l.FinancialKeywords); ok {
		if matchesAnyDomain(host, l.KnownBanks) {
			return DomainContext{Category: CategoryFinancial, TrustLevel: TrustHigh, Explanation: explainKnownBank}
		}
		return DomainContext{Category: CategoryFinancial, TrustLevel: TrustLow, Explanation: explainFinancial}
	}

	if matchesAnyDomain(host, l.TrustedDomains) {
		return DomainContext{Category: CategoryTrusted, TrustLevel: TrustHigh, Explanation: explainTrusted}
	}

	return DomainContext{Category: CategoryGeneral, TrustLevel: TrustLow, Explanation: explainGeneral}
}
