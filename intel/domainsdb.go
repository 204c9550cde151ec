package intel

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const domainsDBURL = "https://api.domainsdb.info/v1/domains/search"

// DomainsDB is a registration source backed by the public domainsdb.info index.
type DomainsDB struct {
	Endpoint   string
	HTTPClient *http.Client
}

func NewDomainsDB(timeout time.Duration) *DomainsDB {
	return &DomainsDB{
		Endpoint:   domainsDBURL,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

func (d *DomainsDB) Name() string { return "domainsdb" }

type domainsDBResponse struct {
	Domains []struct {
		Domain     string `json:"domain"`
		CreateDate string `json:"create_date"`
	} `json:"domains"`
}

func (d *DomainsDB) Lookup(ctx context.Context, domain string) (Registration, error) {
	const service = "domainsdb"
	q := url.Values{"domain": {domain}}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.Endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return Registration{}, serviceErr(service, 0, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.HTTPClient.Do(req)
	if err != nil {
		return Registration{}, serviceErr(service, 0, err)
	}
	defer resp.Body.Close()

	// The index answers 404 for names it has never seen.
	if resp.StatusCode == http.StatusNotFound {
		return Registration{}, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return Registration{}, serviceErr(service, resp.StatusCode, errors.New(resp.Status))
	}

	var body domainsDBResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Registration{}, serviceErr(service, 0, err)
	}
	if len(body.Domains) == 0 {
		return Registration{}, ErrNotFound
	}

	hit := body.Domains[0]
	for _, dm := range body.Domains {
		if strings.EqualFold(dm.Domain, domain) {
			hit = dm
			break
		}
	}

	reg := Registration{Found: true}
	if created, ok := parseDate(strings.TrimSpace(hit.CreateDate)); ok {
		reg.Created = created
	}
	return reg, nil
}
