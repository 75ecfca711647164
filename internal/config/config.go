package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env        string
	ListenAddr string
	LogLevel   string
	LogFormat  string

	// Brand catalog sources; both optional, DatabaseURL wins when set.
	DatabaseURL string
	BrandsFile  string

	DNSServer    string
	WhoisEnabled bool

	CacheTTL  time.Duration
	CacheSize int

	// CatalogRefresh re-reads the brand catalog source; zero disables it.
	CatalogRefresh time.Duration

	VirusTotal   Source
	AbuseIPDB    Source
	SafeBrowsing Source
	PhishTank    Source
	RDAP         Source
	GeoIP        Source
}

// Source configures one outbound reputation service.
type Source struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Load reads configuration from the environment. A .env file in the working
// directory (or the path in ENV_FILE) is applied first without overriding
// variables that are already set.
func Load() (Config, error) {
	envFile := getenv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg := Config{
		Env:            getenv("APP_ENV", "development"),
		ListenAddr:     getenv("LISTEN_ADDR", ":8080"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		LogFormat:      getenv("LOG_FORMAT", "text"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		BrandsFile:     os.Getenv("BRANDS_FILE"),
		DNSServer:      os.Getenv("DNS_SERVER"),
		WhoisEnabled:   getenvBool("WHOIS_ENABLED", true),
		CacheTTL:       getenvDuration("CACHE_TTL", 5*time.Minute),
		CacheSize:      getenvInt("CACHE_SIZE", 10000),
		CatalogRefresh: getenvDuration("CATALOG_REFRESH_INTERVAL", 10*time.Minute),
		VirusTotal: Source{
			BaseURL: getenv("VIRUSTOTAL_BASE_URL", "https://www.virustotal.com"),
			APIKey:  os.Getenv("VIRUSTOTAL_API_KEY"),
			Timeout: getenvDuration("VIRUSTOTAL_TIMEOUT", 6*time.Second),
		},
		AbuseIPDB: Source{
			BaseURL: getenv("ABUSEIPDB_BASE_URL", "https://api.abuseipdb.com"),
			APIKey:  os.Getenv("ABUSEIPDB_API_KEY"),
			Timeout: getenvDuration("ABUSEIPDB_TIMEOUT", 6*time.Second),
		},
		SafeBrowsing: Source{
			BaseURL: getenv("GOOGLE_SAFE_BROWSING_BASE_URL", "https://safebrowsing.googleapis.com"),
			APIKey:  os.Getenv("GOOGLE_SAFE_BROWSING_KEY"),
			Timeout: getenvDuration("GOOGLE_SAFE_BROWSING_TIMEOUT", 6*time.Second),
		},
		PhishTank: Source{
			BaseURL: getenv("PHISHTANK_BASE_URL", "https://checkurl.phishtank.com"),
			APIKey:  os.Getenv("PHISHTANK_APP_KEY"),
			Timeout: getenvDuration("PHISHTANK_TIMEOUT", 6*time.Second),
		},
		RDAP: Source{
			BaseURL: getenv("RDAP_BASE_URL", "https://rdap.org"),
			Timeout: getenvDuration("RDAP_TIMEOUT", 8*time.Second),
		},
		GeoIP: Source{
			BaseURL: getenv("GEOIP_BASE_URL", "http://ip-api.com"),
			Timeout: getenvDuration("GEOIP_TIMEOUT", 4*time.Second),
		},
	}
	if cfg.CacheTTL < 0 {
		return cfg, fmt.Errorf("CACHE_TTL must not be negative, got %s", cfg.CacheTTL)
	}
	if cfg.CacheSize < 0 {
		return cfg, fmt.Errorf("CACHE_SIZE must not be negative, got %d", cfg.CacheSize)
	}
	return cfg, nil
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var out int
		_, err := fmt.Sscanf(v, "%d", &out)
		if err == nil {
			return out
		}
	}
	return def
}

// getenvDuration accepts Go durations ("90s") or a bare number of seconds.
func getenvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n := getenvInt(key, -1); n >= 0 {
		return time.Duration(n) * time.Second
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
