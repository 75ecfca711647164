package reputation

import (
	"context"
	"net/http"
	"net/url"

	"linkscan/internal/config"
	"linkscan/internal/domain"
)

// AbuseIPDB returns the abuse confidence percentage (0-100) of the target IP.
type AbuseIPDB struct{ endpoint }

func NewAbuseIPDB(src config.Source, hc *http.Client) *AbuseIPDB {
	return &AbuseIPDB{newEndpoint("abuseipdb", src, hc)}
}

type abuseCheck struct {
	Data struct {
		AbuseConfidenceScore int `json:"abuseConfidenceScore"`
	} `json:"data"`
}

func (a *AbuseIPDB) Check(ctx context.Context, target domain.ScanTarget) domain.Outcome[int] {
	if a.apiKey == "" {
		return domain.Fallback(0, "no api key")
	}
	if target.IP == "" {
		return domain.Fallback(0, "no resolved ip")
	}
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	q := url.Values{"ipAddress": {target.IP}, "maxAgeInDays": {"90"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/api/v2/check?"+q.Encode(), nil)
	if err != nil {
		return domain.Fallback(0, err.Error())
	}
	req.Header.Set("Key", a.apiKey)

	var res abuseCheck
	if err := a.doJSON(req, &res); err != nil {
		return domain.Fallback(0, err.Error())
	}
	score := res.Data.AbuseConfidenceScore
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return domain.OK(score)
}
