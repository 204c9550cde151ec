package intel

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const virusTotalURL = "https://www.virustotal.com/api/v3"

// EngineVerdict summarises a multi-engine scan. Seen is false for URLs the
// service has never analysed.
type EngineVerdict struct {
	Seen       bool `json:"seen"`
	Malicious  int  `json:"malicious"`
	Suspicious int  `json:"suspicious"`
	Harmless   int  `json:"harmless"`
	Undetected int  `json:"undetected"`
}

// Positives is the number of engines voting malicious or suspicious.
func (v EngineVerdict) Positives() int {
	return v.Malicious + v.Suspicious
}

// VirusTotal looks URLs up in the VirusTotal v3 API and submits unseen ones.
type VirusTotal struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

func NewVirusTotal(apiKey string, timeout time.Duration) *VirusTotal {
	return &VirusTotal{
		APIKey:     apiKey,
		BaseURL:    virusTotalURL,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

type vtURLReport struct {
	Data *struct {
		Attributes struct {
			LastAnalysisStats *struct {
				Malicious  int `json:"malicious"`
				Suspicious int `json:"suspicious"`
				Harmless   int `json:"harmless"`
				Undetected int `json:"undetected"`
			} `json:"last_analysis_stats"`
		} `json:"attributes"`
	} `json:"data"`
}

// URLID is the VirusTotal identifier for rawURL: unpadded URL-safe base64.
func URLID(rawURL string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(rawURL))
}

// Verdict returns the last analysis for rawURL. Unknown URLs are submitted for
// scanning and reported as unseen.
func (v *VirusTotal) Verdict(ctx context.Context, rawURL string) (EngineVerdict, error) {
	const service = "virustotal"
	if v.APIKey == "" {
		return EngineVerdict{}, serviceErr(service, 0, errors.New("api key missing"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.BaseURL+"/urls/"+URLID(rawURL), nil)
	if err != nil {
		return EngineVerdict{}, serviceErr(service, 0, err)
	}
	req.Header.Set("x-apikey", v.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := v.HTTPClient.Do(req)
	if err != nil {
		return EngineVerdict{}, serviceErr(service, 0, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		if err := v.submit(ctx, rawURL); err != nil {
			return EngineVerdict{}, err
		}
		return EngineVerdict{Seen: false}, nil
	case resp.StatusCode != http.StatusOK:
		return EngineVerdict{}, serviceErr(service, resp.StatusCode, errors.New(resp.Status))
	}

	var report vtURLReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return EngineVerdict{}, serviceErr(service, 0, err)
	}
	if report.Data == nil || report.Data.Attributes.LastAnalysisStats == nil {
		return EngineVerdict{}, serviceErr(service, 0, errors.New("response missing last_analysis_stats"))
	}

	stats := report.Data.Attributes.LastAnalysisStats
	return EngineVerdict{
		Seen:       true,
		Malicious:  stats.Malicious,
		Suspicious: stats.Suspicious,
		Harmless:   stats.Harmless,
		Undetected: stats.Undetected,
	}, nil
}

func (v *VirusTotal) submit(ctx context.Context, rawURL string) error {
	const service = "virustotal"
	form := url.Values{"url": {rawURL}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.BaseURL+"/urls", strings.NewReader(form.Encode()))
	if err != nil {
		return serviceErr(service, 0, err)
	}
	req.Header.Set("x-apikey", v.APIKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.HTTPClient.Do(req)
	if err != nil {
		return serviceErr(service, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return serviceErr(service, resp.StatusCode, errors.New(resp.Status))
	}
	return nil
}
