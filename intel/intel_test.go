package intel

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func TestSafeBrowsingThreatTypes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Goog-Api-Key") != "sb-key" {
			t.Errorf("api key header = %q", r.Header.Get("X-Goog-Api-Key"))
		}
		var req sbRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.ThreatInfo.ThreatEntries) != 1 || req.ThreatInfo.ThreatEntries[0].URL != "http://evil.test/x" {
			t.Errorf("unexpected entries: %+v", req.ThreatInfo.ThreatEntries)
		}
		_, _ = io.WriteString(w, `{"matches":[
			{"threatType":"MALWARE","platformType":"ANY_PLATFORM","threat":{"url":"http://evil.test/x"}},
			{"threatType":"SOCIAL_ENGINEERING","platformType":"WINDOWS","threat":{"url":"http://evil.test/x"}},
			{"threatType":"MALWARE","platformType":"LINUX","threat":{"url":"http://evil.test/x"}}]}`)
	}))
	defer srv.Close()

	sb := NewSafeBrowsing("sb-key", time.Second)
	sb.Endpoint = srv.URL

	got, err := sb.ThreatTypes(context.Background(), "http://evil.test/x")
	if err != nil {
		t.Fatalf("ThreatTypes: %v", err)
	}
	if strings.Join(got, ",") != "MALWARE,SOCIAL_ENGINEERING" {
		t.Fatalf("threats = %v", got)
	}
}

func TestSafeBrowsingEmptyAndErrors(t *testing.T) {
	status := http.StatusOK
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	sb := NewSafeBrowsing("k", time.Second)
	sb.Endpoint = srv.URL

	got, err := sb.ThreatTypes(context.Background(), "https://example.com")
	if err != nil || len(got) != 0 {
		t.Fatalf("clean url: got %v, %v", got, err)
	}

	status = http.StatusForbidden
	_, err = sb.ThreatTypes(context.Background(), "https://example.com")
	var se *ServiceError
	if !errors.As(err, &se) || se.StatusCode != http.StatusForbidden || se.Service != "safebrowsing" {
		t.Fatalf("expected 403 ServiceError, got %v", err)
	}

	_, err = NewSafeBrowsing("", time.Second).ThreatTypes(context.Background(), "https://example.com")
	if !errors.As(err, &se) {
		t.Fatalf("missing key should be a ServiceError, got %v", err)
	}
}

func TestVirusTotalVerdict(t *testing.T) {
	const target = "https://evil.test/login?a=1"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-apikey") != "vt-key" {
			t.Errorf("x-apikey = %q", r.Header.Get("x-apikey"))
		}
		if r.URL.Path != "/urls/"+URLID(target) {
			t.Errorf("path = %q", r.URL.Path)
		}
		_, _ = io.WriteString(w, `{"data":{"attributes":{"last_analysis_stats":
			{"malicious":3,"suspicious":1,"harmless":60,"undetected":10}}}}`)
	}))
	defer srv.Close()

	vt := NewVirusTotal("vt-key", time.Second)
	vt.BaseURL = srv.URL

	v, err := vt.Verdict(context.Background(), target)
	if err != nil {
		t.Fatalf("Verdict: %v", err)
	}
	if !v.Seen || v.Positives() != 4 || v.Harmless != 60 {
		t.Fatalf("verdict = %+v", v)
	}
}

func TestVirusTotalSubmitsUnknownURL(t *testing.T) {
	const target = "https://fresh.test/"
	submitted := ""
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.WriteHeader(http.StatusNotFound)
		case http.MethodPost:
			if r.URL.Path != "/urls" {
				t.Errorf("submit path = %q", r.URL.Path)
			}
			body, _ := io.ReadAll(r.Body)
			form, _ := url.ParseQuery(string(body))
			submitted = form.Get("url")
			_, _ = io.WriteString(w, `{"data":{"type":"analysis","id":"x"}}`)
		}
	}))
	defer srv.Close()

	vt := NewVirusTotal("vt-key", time.Second)
	vt.BaseURL = srv.URL

	v, err := vt.Verdict(context.Background(), target)
	if err != nil {
		t.Fatalf("Verdict: %v", err)
	}
	if v.Seen {
		t.Fatalf("unknown url should be unseen: %+v", v)
	}
	if submitted != target {
		t.Fatalf("submitted %q, want %q", submitted, target)
	}
}

func TestURLIDIsUnpaddedURLSafe(t *testing.T) {
	id := URLID("http://a.b/?x=~~~")
	if strings.ContainsAny(id, "=+/") {
		t.Fatalf("id %q should be unpadded url-safe base64", id)
	}
}

func TestDomainsDBLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("domain") {
		case "known.com":
			_, _ = io.WriteString(w, `{"domains":[
				{"domain":"known.com.br","create_date":"2001-01-01T00:00:00"},
				{"domain":"known.com","create_date":"2020-05-17T10:11:12.000000"}]}`)
		case "nodate.com":
			_, _ = io.WriteString(w, `{"domains":[{"domain":"nodate.com","create_date":""}]}`)
		case "missing.com":
			_, _ = io.WriteString(w, `{"domains":[]}`)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	d := NewDomainsDB(time.Second)
	d.Endpoint = srv.URL
	ctx := context.Background()

	reg, err := d.Lookup(ctx, "known.com")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !reg.Found || reg.Created.Year() != 2020 {
		t.Fatalf("known.com: %+v", reg)
	}

	reg, err = d.Lookup(ctx, "nodate.com")
	if err != nil || !reg.Found || !reg.Created.IsZero() {
		t.Fatalf("nodate.com: %+v, %v", reg, err)
	}

	if _, err := d.Lookup(ctx, "missing.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing.com: want ErrNotFound, got %v", err)
	}

	var se *ServiceError
	if _, err := d.Lookup(ctx, "broken.com"); !errors.As(err, &se) || se.StatusCode != 500 {
		t.Fatalf("broken.com: want 500 ServiceError, got %v", err)
	}
}

type fakeSource struct {
	name  string
	reg   Registration
	err   error
	calls int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Lookup(context.Context, string) (Registration, error) {
	f.calls++
	return f.reg, f.err
}

func TestRegistrationChain(t *testing.T) {
	created := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	boom := errors.New("boom")

	tests := []struct {
		name        string
		sources     []*fakeSource
		wantErr     bool
		wantFound   bool
		wantCreated time.Time
		wantSource  string
		wantCalls   []int
	}{
		{
			name: "not found short circuits",
			sources: []*fakeSource{
				{name: "dns", err: ErrNotFound},
				{name: "whois", reg: Registration{Found: true, Created: created}},
			},
			wantFound:  false,
			wantSource: "dns",
			wantCalls:  []int{1, 0},
		},
		{
			name: "undated answer keeps looking",
			sources: []*fakeSource{
				{name: "dns", reg: Registration{Found: true}},
				{name: "whois", err: boom},
				{name: "domainsdb", reg: Registration{Found: true, Created: created}},
			},
			wantFound:   true,
			wantCreated: created,
			wantSource:  "domainsdb",
			wantCalls:   []int{1, 1, 1},
		},
		{
			name: "undated answer returned when nothing better",
			sources: []*fakeSource{
				{name: "dns", reg: Registration{Found: true}},
				{name: "whois", err: boom},
			},
			wantFound:  true,
			wantSource: "dns",
			wantCalls:  []int{1, 1},
		},
		{
			name: "not found after confirmed existence is ignored",
			sources: []*fakeSource{
				{name: "dns", reg: Registration{Found: true}},
				{name: "whois", err: boom},
				{name: "domainsdb", err: ErrNotFound},
			},
			wantFound:  true,
			wantSource: "dns",
			wantCalls:  []int{1, 1, 1},
		},
		{
			name: "not found after confirmed existence keeps looking for a date",
			sources: []*fakeSource{
				{name: "dns", reg: Registration{Found: true}},
				{name: "domainsdb", err: ErrNotFound},
				{name: "whois", reg: Registration{Found: true, Created: created}},
			},
			wantFound:   true,
			wantCreated: created,
			wantSource:  "whois",
			wantCalls:   []int{1, 1, 1},
		},
		{
			name: "all failing is an error",
			sources: []*fakeSource{
				{name: "dns", err: boom},
				{name: "whois", err: boom},
			},
			wantErr:   true,
			wantCalls: []int{1, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain := &RegistrationChain{Logger: zaptest.NewLogger(t)}
			for _, s := range tt.sources {
				chain.Sources = append(chain.Sources, s)
			}

			reg, err := chain.Registration(context.Background(), "example.com")
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				if reg.Found != tt.wantFound || !reg.Created.Equal(tt.wantCreated) || reg.Source != tt.wantSource {
					t.Fatalf("reg = %+v", reg)
				}
				if reg.Domain != "example.com" {
					t.Errorf("Domain = %q", reg.Domain)
				}
			}
			for i, s := range tt.sources {
				if s.calls != tt.wantCalls[i] {
					t.Errorf("source %s called %d times, want %d", s.name, s.calls, tt.wantCalls[i])
				}
			}
		})
	}
}

func TestWhoisLookup(t *testing.T) {
	ctx := context.Background()

	w := &Whois{query: func(string) (string, error) { return "", errors.New("dial tcp: timeout") }}
	var se *ServiceError
	if _, err := w.Lookup(ctx, "example.com"); !errors.As(err, &se) || se.Service != "whois" {
		t.Fatalf("query failure should be a ServiceError, got %v", err)
	}

	w = &Whois{query: func(string) (string, error) {
		return "No match for \"NO-SUCH-DOMAIN-4821.COM\".\n>>> Last update of whois database: 2024-01-01T00:00:00Z <<<\n", nil
	}}
	if _, err := w.Lookup(ctx, "no-such-domain-4821.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}

	block := make(chan struct{})
	defer close(block)
	w = &Whois{query: func(string) (string, error) { <-block; return "", nil }}
	cctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if _, err := w.Lookup(cctx, "slow.com"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("want deadline exceeded, got %v", err)
	}
}

func TestWhoisParentRetryStopsAtRegistrableDomain(t *testing.T) {
	tests := []struct {
		domain string
		want   []string
	}{
		{"example.co.uk", []string{"example.co.uk"}},
		{"www.example.co.uk", []string{"www.example.co.uk", "example.co.uk"}},
		{"a.b.example.com", []string{"a.b.example.com", "b.example.com", "example.com"}},
		{"example.com", []string{"example.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			var queried []string
			w := &Whois{query: func(d string) (string, error) {
				queried = append(queried, d)
				return "%% malformed reply\n", nil
			}}

			_, err := w.Lookup(context.Background(), tt.domain)
			var se *ServiceError
			if !errors.As(err, &se) {
				t.Fatalf("unparseable reply should be a ServiceError, got %v", err)
			}
			if !reflect.DeepEqual(queried, tt.want) {
				t.Fatalf("queried %v, want %v", queried, tt.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	for _, s := range []string{"2020-05-17T10:11:12Z", "2020-05-17 10:11:12", "2020-05-17", "17-May-2020", "2020.05.17"} {
		got, ok := parseDate(s)
		if !ok || got.Year() != 2020 || got.Month() != time.May || got.Day() != 17 {
			t.Errorf("parseDate(%q) = %v, %v", s, got, ok)
		}
	}
	if _, ok := parseDate("soon"); ok {
		t.Error("garbage should not parse")
	}
}
