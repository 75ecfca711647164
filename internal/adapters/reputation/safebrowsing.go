package reputation

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"linkscan/internal/config"
	"linkscan/internal/domain"
)

// threatTypes are the Safe Browsing lists a URL is matched against.
var threatTypes = []string{
	"MALWARE",
	"SOCIAL_ENGINEERING",
	"PHISHING",
	"UNWANTED_SOFTWARE",
	"POTENTIALLY_HARMFUL_APPLICATION",
}

// SafeBrowsing matches a URL against the Google Safe Browsing lists.
type SafeBrowsing struct{ endpoint }

func NewSafeBrowsing(src config.Source, hc *http.Client) *SafeBrowsing {
	return &SafeBrowsing{newEndpoint("google_safe_browsing", src, hc)}
}

type sbEntry struct {
	URL string `json:"url"`
}

type sbRequest struct {
	Client struct {
		ClientID      string `json:"clientId"`
		ClientVersion string `json:"clientVersion"`
	} `json:"client"`
	ThreatInfo struct {
		ThreatTypes      []string  `json:"threatTypes"`
		PlatformTypes    []string  `json:"platformTypes"`
		ThreatEntryTypes []string  `json:"threatEntryTypes"`
		ThreatEntries    []sbEntry `json:"threatEntries"`
	} `json:"threatInfo"`
}

type sbResponse struct {
	Matches []json.RawMessage `json:"matches"`
}

func (s *SafeBrowsing) Check(ctx context.Context, target domain.ScanTarget) domain.Outcome[bool] {
	if s.apiKey == "" {
		return domain.Fallback(false, "no api key")
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var body sbRequest
	body.Client.ClientID = "linkscan"
	body.Client.ClientVersion = "2.0"
	body.ThreatInfo.ThreatTypes = threatTypes
	body.ThreatInfo.PlatformTypes = []string{"ANY_PLATFORM"}
	body.ThreatInfo.ThreatEntryTypes = []string{"URL"}
	body.ThreatInfo.ThreatEntries = []sbEntry{{URL: target.URL}}
	payload, err := json.Marshal(body)
	if err != nil {
		return domain.Fallback(false, err.Error())
	}

	u := s.baseURL + "/v4/threatMatches:find?key=" + url.QueryEscape(s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return domain.Fallback(false, err.Error())
	}
	req.Header.Set("Content-Type", "application/json")

	var res sbResponse
	if err := s.doJSON(req, &res); err != nil {
		return domain.Fallback(false, err.Error())
	}
	return domain.OK(len(res.Matches) > 0)
}
