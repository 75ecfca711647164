package reputation

import (
	"context"
	"encoding/base64"
	"net/http"

	"linkscan/internal/config"
	"linkscan/internal/domain"
)

// VirusTotal looks a URL up in the multi-engine scan database.
type VirusTotal struct{ endpoint }

func NewVirusTotal(src config.Source, hc *http.Client) *VirusTotal {
	return &VirusTotal{newEndpoint("virustotal", src, hc)}
}

type vtURLReport struct {
	Data struct {
		Attributes struct {
			LastAnalysisStats map[string]int `json:"last_analysis_stats"`
		} `json:"attributes"`
	} `json:"data"`
}

func (v *VirusTotal) Check(ctx context.Context, target domain.ScanTarget) domain.Outcome[domain.EngineCounts] {
	var none domain.EngineCounts
	if v.apiKey == "" {
		return domain.Fallback(none, "no api key")
	}
	ctx, cancel := v.withTimeout(ctx)
	defer cancel()

	id := base64.RawURLEncoding.EncodeToString([]byte(target.URL))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/api/v3/urls/"+id, nil)
	if err != nil {
		return domain.Fallback(none, err.Error())
	}
	req.Header.Set("x-apikey", v.apiKey)

	var report vtURLReport
	if err := v.doJSON(req, &report); err != nil {
		return domain.Fallback(none, err.Error())
	}
	stats := report.Data.Attributes.LastAnalysisStats
	out := domain.EngineCounts{Positives: stats["malicious"] + stats["suspicious"]}
	for _, n := range stats {
		out.Total += n
	}
	return domain.OK(out)
}
