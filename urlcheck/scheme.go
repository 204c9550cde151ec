package urlcheck

// checkScheme only looks at the scheme; certificate validation is not attempted.
func checkScheme(u ParsedURL) CheckOutcome {
	if u.Scheme != "https" {
		return CheckOutcome{
			Passed:  false,
			Score:   0,
			Reasons: []string{"No HTTPS/SSL encryption"},
			Signals: []Signal{SignalNoHTTPS},
		}
	}
	return CheckOutcome{Passed: true, Score: SchemeMax}
}
