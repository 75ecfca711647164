package reputation

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"linkscan/internal/config"
	"linkscan/internal/domain"
)

// PhishTank reports whether a URL is a verified phish in the community
// database. The app key is optional.
type PhishTank struct{ endpoint }

func NewPhishTank(src config.Source, hc *http.Client) *PhishTank {
	return &PhishTank{newEndpoint("phishtank", src, hc)}
}

type ptResponse struct {
	Results struct {
		InDatabase bool `json:"in_database"`
		Verified   bool `json:"verified"`
	} `json:"results"`
}

func (p *PhishTank) Check(ctx context.Context, target domain.ScanTarget) domain.Outcome[bool] {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	form := url.Values{"url": {target.URL}, "format": {"json"}}
	if p.apiKey != "" {
		form.Set("app_key", p.apiKey)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/checkurl/", strings.NewReader(form.Encode()))
	if err != nil {
		return domain.Fallback(false, err.Error())
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var res ptResponse
	if err := p.doJSON(req, &res); err != nil {
		return domain.Fallback(false, err.Error())
	}
	return domain.OK(res.Results.InDatabase && res.Results.Verified)
}
