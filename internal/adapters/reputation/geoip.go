package reputation

import (
	"context"
	"net/http"
	"net/url"

	"linkscan/internal/config"
	"linkscan/internal/domain"
)

// GeoIP resolves hosting country and ISP for the target IP.
type GeoIP struct{ endpoint }

func NewGeoIP(src config.Source, hc *http.Client) *GeoIP {
	return &GeoIP{newEndpoint("geoip", src, hc)}
}

type geoResponse struct {
	Status  string `json:"status"`
	Country string `json:"country"`
	ISP     string `json:"isp"`
	Query   string `json:"query"`
}

func (g *GeoIP) Check(ctx context.Context, target domain.ScanTarget) domain.Outcome[domain.IPInfo] {
	ip := target.IP
	if ip == "" {
		return domain.Fallback(domain.UnknownIP(""), "no resolved ip")
	}
	fallback := domain.UnknownIP(ip)
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	u := g.baseURL + "/json/" + url.PathEscape(ip) + "?fields=status,country,isp,query"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.Fallback(fallback, err.Error())
	}
	var res geoResponse
	if err := g.doJSON(req, &res); err != nil {
		return domain.Fallback(fallback, err.Error())
	}
	if res.Status != "success" {
		return domain.Fallback(fallback, "lookup status "+res.Status)
	}
	return domain.OK(domain.IPInfo{
		IP:      orDefault(res.Query, ip),
		Country: orDefault(res.Country, domain.Unknown),
		ISP:     orDefault(res.ISP, domain.Unknown),
	})
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
