package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"urlguard/urlcheck"
)

var checkJSON bool

var checkCmd = &cobra.Command{
	Use:   "check <url>",
	Short: "Analyze a single URL and print the verdict",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := configFrom(viper.GetViper())
		analyzer := newAnalyzer(cfg, logger)

		res, err := analyzer.Analyze(cmd.Context(), urlcheck.AnalysisRequest{URL: args[0]})
		out := cmd.OutOrStdout()
		if checkJSON {
			if werr := writeResultJSON(out, args[0], res, err); werr != nil {
				return werr
			}
		} else {
			writeResultText(out, args[0], res)
		}

		if errors.Is(err, urlcheck.ErrInvalidURL) {
			return &exitError{code: 2, msg: fmt.Sprintf("invalid url %q", args[0])}
		}
		return err
	},
}

func init() {
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "print the result as JSON")
}

func writeResultJSON(w io.Writer, url string, res urlcheck.AnalysisResult, analyzeErr error) error {
	payload := struct {
		URL    string                  `json:"url"`
		Result urlcheck.AnalysisResult `json:"result"`
		Error  string                  `json:"error,omitempty"`
	}{URL: url, Result: res}
	if analyzeErr != nil {
		payload.Error = "Invalid domain"
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func writeResultText(w io.Writer, url string, res urlcheck.AnalysisResult) {
	fmt.Fprintf(w, "%s\n", url)
	fmt.Fprintf(w, "  status: %s  score: %d/100  (%s, %s trust)\n",
		res.Status, res.Score, res.DomainContext.Category, res.DomainContext.TrustLevel)

	for _, name := range urlcheck.CheckNames() {
		c, ok := res.Checks[name]
		if !ok {
			continue
		}
		mark := "ok  "
		if !c.Passed {
			mark = "FAIL"
		}
		line := fmt.Sprintf("  [%s] %-17s %2d", mark, name, c.Score)
		if r := c.Reason(); r != "" {
			line += "  " + r
		}
		fmt.Fprintln(w, line)
	}

	printList(w, "warnings", res.Warnings)
	printList(w, "recommendations", res.Recommendations)
	if res.ScoreExplanation != "" {
		fmt.Fprintf(w, "\n%s\n", res.ScoreExplanation)
	}
}

func printList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, it := range items {
		fmt.Fprintf(w, "  - %s\n", strings.TrimSpace(it))
	}
}
