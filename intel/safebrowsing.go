package intel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

const safeBrowsingURL = "https://safebrowsing.googleapis.com/v4/threatMatches:find"

// SafeBrowsing queries the Google Safe Browsing v4 lookup API.
type SafeBrowsing struct {
	APIKey        string
	Endpoint      string
	ClientID      string
	ClientVersion string
	HTTPClient    *http.Client
}

func NewSafeBrowsing(apiKey string, timeout time.Duration) *SafeBrowsing {
	return &SafeBrowsing{
		APIKey:        apiKey,
		Endpoint:      safeBrowsingURL,
		ClientID:      "urlguard",
		ClientVersion: "1.0.0",
		HTTPClient:    &http.Client{Timeout: timeout},
	}
}

type sbClient struct {
	ClientID      string `json:"clientId"`
	ClientVersion string `json:"clientVersion"`
}

type sbEntry struct {
	URL string `json:"url"`
}

type sbThreatInfo struct {
	ThreatTypes      []string  `json:"threatTypes"`
	PlatformTypes    []string  `json:"platformTypes"`
	ThreatEntryTypes []string  `json:"threatEntryTypes"`
	ThreatEntries    []sbEntry `json:"threatEntries"`
}

type sbRequest struct {
	Client     sbClient     `json:"client"`
	ThreatInfo sbThreatInfo `json:"threatInfo"`
}

type sbResponse struct {
	Matches []struct {
		ThreatType   string  `json:"threatType"`
		PlatformType string  `json:"platformType"`
		Threat       sbEntry `json:"threat"`
	} `json:"matches"`
}

// ThreatTypes returns the distinct threat types rawURL is listed under, or none.
func (s *SafeBrowsing) ThreatTypes(ctx context.Context, rawURL string) ([]string, error) {
	const service = "safebrowsing"
	if s.APIKey == "" {
		return nil, serviceErr(service, 0, errors.New("api key missing"))
	}

	body, err := json.Marshal(sbRequest{
		Client: sbClient{ClientID: s.ClientID, ClientVersion: s.ClientVersion},
		ThreatInfo: sbThreatInfo{
			ThreatTypes:      []string{"MALWARE", "SOCIAL_ENGINEERING", "UNWANTED_SOFTWARE", "POTENTIALLY_HARMFUL_APPLICATION"},
			PlatformTypes:    []string{"ANY_PLATFORM"},
			ThreatEntryTypes: []string{"URL"},
			ThreatEntries:    []sbEntry{{URL: rawURL}},
		},
	})
	if err != nil {
		return nil, serviceErr(service, 0, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, serviceErr(service, 0, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", s.APIKey)

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return nil, serviceErr(service, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, serviceErr(service, resp.StatusCode, errors.New(resp.Status))
	}

	var data sbResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, serviceErr(service, 0, err)
	}

	var threats []string
	seen := make(map[string]bool)
	for _, m := range data.Matches {
		if m.ThreatType == "" || seen[m.ThreatType] {
			continue
		}
		seen[m.ThreatType] = true
		threats = append(threats, m.ThreatType)
	}
	return threats, nil
}
