package reputation

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/openrdap/rdap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkscan/internal/domain"
)

const rdapBody = `{
  "objectClassName": "domain",
  "ldhName": "PAYPA1.COM",
  "events": [
    {"eventAction": "last changed", "eventDate": "2026-10-10T00:00:00Z"},
    {"eventAction": "registration", "eventDate": "2026-10-14T00:00:00Z"}
  ],
  "entities": [
    {"objectClassName": "entity", "roles": ["registrant"], "vcardArray": ["vcard", [["fn", {}, "text", "REDACTED"]]]},
    {"objectClassName": "entity", "roles": ["registrar"], "handle": "1068",
     "vcardArray": ["vcard", [["version", {}, "text", "4.0"], ["fn", {}, "text", "NameCheap, Inc."]]]}
  ]
}`

func TestRDAP_AgeAndRegistrar(t *testing.T) {
	src := serve(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/domain/paypa1.com"), r.URL.Path)
		w.Header().Set("Content-Type", "application/rdap+json")
		_, _ = w.Write([]byte(rdapBody))
	})
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	out := NewRDAP(src, nil).WithClock(func() time.Time { return now }).Check(context.Background(), target)

	assert.False(t, out.Degraded)
	require.NotNil(t, out.Value.AgeDays)
	assert.Equal(t, 5, *out.Value.AgeDays)
	assert.Equal(t, "NameCheap, Inc.", out.Value.Registrar)
}

func TestRDAP_NotFound(t *testing.T) {
	src := serve(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	out := NewRDAP(src, nil).Check(context.Background(), target)
	assert.True(t, out.Degraded)
	assert.Nil(t, out.Value.AgeDays)
	assert.Equal(t, "Unknown", out.Value.Registrar)
}

func TestRDAP_RawIPSkipped(t *testing.T) {
	out := NewRDAP(serve(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("raw ip must not be looked up")
	}), nil).Check(context.Background(), domain.ScanTarget{URL: "http://1.2.3.4", Host: "1.2.3.4", RootDomain: "1.2.3.4", IsRawIP: true})
	assert.True(t, out.Degraded)
}

func TestNoopDomainAge(t *testing.T) {
	out := NoopDomainAge{}.Check(context.Background(), target)
	assert.True(t, out.Degraded)
	assert.Equal(t, domain.UnknownDomain(), out.Value)
}

func TestRDAP_RegistrarHandleWithoutVCard(t *testing.T) {
	src := serve(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rdap+json")
		_, _ = w.Write([]byte(`{"objectClassName":"domain","ldhName":"EXAMPLE.ORG",
			"entities":[{"objectClassName":"entity","roles":["registrar"],"handle":"292"}]}`))
	})
	out := NewRDAP(src, nil).Check(context.Background(), target)
	assert.False(t, out.Degraded)
	assert.Nil(t, out.Value.AgeDays)
	assert.Equal(t, "292", out.Value.Registrar)
}

func TestRDAP_WithheldData(t *testing.T) {
	src := serve(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rdap+json")
		_, _ = w.Write([]byte(`{"objectClassName":"domain","ldhName":"EXAMPLE.ORG","events":[]}`))
	})
	out := NewRDAP(src, nil).Check(context.Background(), target)
	assert.True(t, out.Degraded)
	assert.Equal(t, domain.UnknownDomain(), out.Value)
}

func TestRegisteredAt(t *testing.T) {
	_, ok := registeredAt(nil)
	assert.False(t, ok)

	_, ok = registeredAt([]rdap.Event{{Action: "registration", Date: "yesterday"}})
	assert.False(t, ok)

	got, ok := registeredAt([]rdap.Event{
		{Action: "expiration", Date: "2030-01-01T00:00:00Z"},
		{Action: "registration", Date: "2020-02-03T04:05:06Z"},
	})
	require.True(t, ok)
	assert.Equal(t, time.Date(2020, 2, 3, 4, 5, 6, 0, time.UTC), got)
}
