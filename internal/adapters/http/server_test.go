package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkscan/internal/domain"
	"linkscan/internal/logging"
	"linkscan/internal/services/scanner"
)

type stubAnalyzer struct {
	verdict domain.ThreatVerdict
	err     error
	got     string
}

func (s *stubAnalyzer) Analyze(_ context.Context, rawURL string) (domain.ThreatVerdict, error) {
	s.got = rawURL
	if strings.TrimSpace(rawURL) == "" {
		return domain.ThreatVerdict{}, scanner.ErrInvalidInput
	}
	return s.verdict, s.err
}

func do(t *testing.T, a *stubAnalyzer, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	srv := New(a, logging.Discard())
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(t, &stubAnalyzer{}, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestAnalyzeURL_OK(t *testing.T) {
	days := 12
	a := &stubAnalyzer{verdict: domain.ThreatVerdict{
		URL:            "https://paypa1.com",
		Score:          60,
		FinalScore:     60,
		Classification: domain.Malicious,
		ThreatLevel:    domain.Malicious,
		Breakdown:      domain.ScoreBreakdown{AgeScore: 20, Heuristics: 40},
		Reasons:        []string{"Domain age: registered 12 days ago (20 pts)"},
		APIVerdicts:    map[string]string{"VirusTotal": "Clean"},
		DomainInfo:     &domain.DomainInfo{AgeDays: &days, Registrar: "NameCheap, Inc."},
		IPInfo:         &domain.IPInfo{IP: "198.51.100.5", Country: "India", ISP: "Example"},
	}}
	rec := do(t, a, http.MethodPost, "/api/analyze-url", `{"url":"paypa1.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "paypa1.com", a.got)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(60), body["score"])
	assert.Equal(t, float64(60), body["final_score"])
	assert.Equal(t, "MALICIOUS", body["classification"])
	assert.Equal(t, "MALICIOUS", body["threat_level"])
	assert.Equal(t, false, body["from_cache"])

	breakdown := body["breakdown"].(map[string]any)
	for _, k := range []string{"whitelist", "virustotal", "abuseipdb", "google_safe_browsing", "phishtank", "age_score", "heuristics"} {
		assert.Contains(t, breakdown, k)
	}
	assert.Equal(t, float64(12), body["domain_info"].(map[string]any)["age_days"])
	assert.Equal(t, "India", body["ip_info"].(map[string]any)["server_country"])
}

func TestAnalyzeURL_Empty(t *testing.T) {
	for _, body := range []string{`{"url":"   "}`, `{}`} {
		rec := do(t, &stubAnalyzer{}, http.MethodPost, "/api/analyze-url", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.JSONEq(t, `{"detail":"URL cannot be empty"}`, rec.Body.String())
	}
}

func TestAnalyzeURL_MalformedBody(t *testing.T) {
	for _, body := range []string{`{"url":`, `not json`, `{"url": 42}`} {
		a := &stubAnalyzer{}
		rec := do(t, a, http.MethodPost, "/api/analyze-url", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.JSONEq(t, `{"detail":"URL cannot be empty"}`, rec.Body.String(), body)
		assert.Empty(t, a.got, "analyzer must not run for %s", body)
	}
}

func TestAnalyzeURL_OversizedBody(t *testing.T) {
	body := `{"url":"` + strings.Repeat("a", maxRequestBody) + `"}`
	rec := do(t, &stubAnalyzer{}, http.MethodPost, "/api/analyze-url", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeURL_InternalError(t *testing.T) {
	a := &stubAnalyzer{err: fmt.Errorf("%w: panic: boom", scanner.ErrAnalysisFailed)}
	rec := do(t, a, http.MethodPost, "/api/analyze-url", `{"url":"example.org"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"detail":"Analysis failed: analysis failed: panic: boom"}`, rec.Body.String())
}

func TestAnalyzeURL_UnreachableIsOK(t *testing.T) {
	a := &stubAnalyzer{verdict: domain.ThreatVerdict{
		URL:            "https://offline.invalid",
		Classification: domain.Unreachable,
		ThreatLevel:    domain.Unreachable,
		Reasons:        []string{"Domain does not resolve to an IP (site is offline or invalid)"},
		APIVerdicts:    map[string]string{},
	}}
	rec := do(t, a, http.MethodPost, "/api/analyze-url", `{"url":"offline.invalid"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"classification":"UNREACHABLE"`)
	assert.Contains(t, rec.Body.String(), `"api_verdicts":{}`)
	assert.Contains(t, rec.Body.String(), `"domain_info":null`)
	assert.Contains(t, rec.Body.String(), `"ip_info":null`)
}

func TestToAPI_NilCollections(t *testing.T) {
	out := toAPI(domain.ThreatVerdict{Classification: domain.Safe, ThreatLevel: domain.Safe})
	assert.NotNil(t, out.Reasons)
	assert.NotNil(t, out.ApiVerdicts)
	assert.Nil(t, out.DomainInfo)
	assert.Equal(t, "SAFE", out.Classification)
}

func TestNew_NilLogger(t *testing.T) {
	srv := New(&stubAnalyzer{}, nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	rec := do(t, &stubAnalyzer{}, http.MethodOptions, "/api/analyze-url", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestAnalyzeURL_WrongMethod(t *testing.T) {
	rec := do(t, &stubAnalyzer{err: errors.New("unused")}, http.MethodGet, "/api/analyze-url", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
