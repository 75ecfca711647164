package scanner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"linkscan/internal/services/brands"
)

func testCatalog() *brands.Catalog {
	return brands.NewCatalog(append([]string{"paypal.com"}, brands.DefaultTrusted...), brands.DefaultSuspiciousTLDs)
}

func TestHeuristics_Typosquat(t *testing.T) {
	h := Heuristics(parseTarget("http://paypa1.com"), testCatalog(), false)
	assert.GreaterOrEqual(t, h.Score, 40)
	assert.Equal(t, "paypal.com", h.Brand)
	assert.Contains(t, h.Signals, "typosquat:paypal.com")
}

func TestHeuristics_TyposquatSkippedWhenWhitelisted(t *testing.T) {
	h := Heuristics(parseTarget("https://paypal.com"), testCatalog(), true)
	assert.Zero(t, h.Score)
	assert.Empty(t, h.Brand)
}

func TestHeuristics_TyposquatFirstMatchOnly(t *testing.T) {
	c := brands.NewCatalog([]string{"google.com", "goggle.com"}, nil)
	h := Heuristics(parseTarget("https://gooogle.com"), c, false)
	assert.Equal(t, 40, h.Score, "a second matching brand must not add points")
}

func TestHeuristics_ShortBrandIgnored(t *testing.T) {
	c := brands.NewCatalog([]string{"x.io"}, nil)
	h := Heuristics(parseTarget("https://y.io"), c, false)
	assert.Zero(t, h.Score)
}

func TestHeuristics_LengthGapIgnored(t *testing.T) {
	c := brands.NewCatalog([]string{"microsoft.com"}, nil)
	// distance would be 3 anyway, but the length gate rejects it first
	h := Heuristics(parseTarget("https://microsoftsvc.com"), c, false)
	assert.Zero(t, h.Score)
}

func TestHeuristics_Structural(t *testing.T) {
	c := testCatalog()

	h := Heuristics(parseTarget("http://185.22.1.9/login"), c, false)
	assert.Equal(t, 15, h.Score)
	assert.Equal(t, []string{"raw-ip"}, h.Signals)

	h = Heuristics(parseTarget("https://xn--pypal-4ve.com"), c, false)
	assert.Equal(t, 15, h.Score)

	h = Heuristics(parseTarget("https://a.b.c.example.org"), c, false)
	assert.Equal(t, 10, h.Score)

	h = Heuristics(parseTarget("https://b.c.example.org"), c, false)
	assert.Zero(t, h.Score)

	h = Heuristics(parseTarget("https://free-prizes.xyz"), c, false)
	assert.Equal(t, 10, h.Score)

	h = Heuristics(parseTarget("https://example.org/"+strings.Repeat("a", 90)), c, false)
	assert.Equal(t, 5, h.Score)
}

func TestHeuristics_Additive(t *testing.T) {
	raw := "https://login.secure.verify.xn--80ak6aa92e.tk/" + strings.Repeat("z", 80)
	h := Heuristics(parseTarget(raw), testCatalog(), false)
	// punycode + long url + deep subdomain + suspicious tld
	assert.Equal(t, 15+5+10+10, h.Score)
	assert.Len(t, h.Signals, 4)
}
