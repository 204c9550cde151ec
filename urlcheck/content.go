package urlcheck

import (
	"fmt"
	"strings"
)

// analyzeContent flags paths that end in an executable-style extension.
func analyzeContent(u ParsedURL, lists Lists, thresholds ScoringThresholds) CheckOutcome {
	o := newOutcome(ContentMax, thresholds.ContentPass)
	path := strings.ToLower(u.Path)

	for _, ext := range lists.ExecutableExtensions {
		if strings.HasSuffix(path, ext) {
			o.deduct(ContentMax, SignalExecutable, fmt.Sprintf("Suspicious file type: %s", ext))
			break
		}
	}
	return o.result()
}
