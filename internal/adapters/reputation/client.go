// Package reputation holds the outbound clients for third-party reputation and
// intelligence services. Every client implements ports.Source and reports
// failures through domain.Fallback instead of returning errors.
package reputation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"linkscan/internal/config"
)

const userAgent = "linkscan/1.0"

// maxBody bounds how much of a response body is decoded.
const maxBody = 4 << 20

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Service string
	Code    int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Service, e.Code)
}

// endpoint holds what every client needs to talk to one service.
type endpoint struct {
	name    string
	baseURL string
	apiKey  string
	timeout time.Duration
	http    *http.Client
}

func newEndpoint(name string, src config.Source, hc *http.Client) endpoint {
	if hc == nil {
		hc = http.DefaultClient
	}
	timeout := src.Timeout
	if timeout <= 0 {
		timeout = 6 * time.Second
	}
	return endpoint{
		name:    name,
		baseURL: strings.TrimRight(src.BaseURL, "/"),
		apiKey:  src.APIKey,
		timeout: timeout,
		http:    hc,
	}
}

func (e endpoint) Name() string { return e.name }

// doJSON sends req and decodes a 2xx JSON body into out.
func (e endpoint) doJSON(req *http.Request, out any) error {
	req.Header.Set("User-Agent", userAgent)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	res, err := e.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, maxBody))
		return &StatusError{Service: e.name, Code: res.StatusCode}
	}
	if err := json.NewDecoder(io.LimitReader(res.Body, maxBody)).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", e.name, err)
	}
	return nil
}

// withTimeout derives the per-call deadline for this endpoint.
func (e endpoint) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.timeout)
}
