package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"urlguard/urlcheck"
)

func TestWriteResultText(t *testing.T) {
	a := urlcheck.New(urlcheck.Config{Logger: zaptest.NewLogger(t)})
	res, err := a.Analyze(context.Background(), urlcheck.AnalysisRequest{URL: "http://bit.ly/abc"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	var buf bytes.Buffer
	writeResultText(&buf, "http://bit.ly/abc", res)
	out := buf.String()

	for _, want := range []string{"http://bit.ly/abc", "status:", "[FAIL] sslCertificate", "recommendations:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteResultJSONInvalid(t *testing.T) {
	a := urlcheck.New(urlcheck.Config{Logger: zaptest.NewLogger(t)})
	res, err := a.Analyze(context.Background(), urlcheck.AnalysisRequest{URL: "nonsense"})
	if !errors.Is(err, urlcheck.ErrInvalidURL) {
		t.Fatalf("expected ErrInvalidURL, got %v", err)
	}

	var buf bytes.Buffer
	if err := writeResultJSON(&buf, "nonsense", res, err); err != nil {
		t.Fatalf("writeResultJSON: %v", err)
	}
	var payload struct {
		Result urlcheck.AnalysisResult `json:"result"`
		Error  string                  `json:"error"`
	}
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Error != "Invalid domain" || payload.Result.Status != urlcheck.StatusMalicious || payload.Result.Score != 0 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}
