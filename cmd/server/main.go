package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"linkscan/internal/adapters/brandfile"
	dnsadapter "linkscan/internal/adapters/dns"
	httpadapter "linkscan/internal/adapters/http"
	pg "linkscan/internal/adapters/postgres"
	"linkscan/internal/adapters/reputation"
	"linkscan/internal/cache"
	"linkscan/internal/config"
	"linkscan/internal/domain"
	"linkscan/internal/logging"
	"linkscan/internal/ports"
	"linkscan/internal/services/brands"
	"linkscan/internal/services/scanner"
	"linkscan/internal/workers/refresher"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo, closeRepo := brandRepository(ctx, cfg, logger)
	defer closeRepo()
	brandSvc := brands.New(repo, logger)
	catalog := brandSvc.Load(ctx)
	if repo != nil {
		go refresher.Run(ctx, "brands", brandSvc, cfg.CatalogRefresh, logger)
	}

	hc := &http.Client{Transport: http.DefaultTransport}
	sources := scanner.Sources{
		VirusTotal:   reputation.NewVirusTotal(cfg.VirusTotal, hc),
		AbuseIPDB:    reputation.NewAbuseIPDB(cfg.AbuseIPDB, hc),
		SafeBrowsing: reputation.NewSafeBrowsing(cfg.SafeBrowsing, hc),
		PhishTank:    reputation.NewPhishTank(cfg.PhishTank, hc),
		GeoIP:        reputation.NewGeoIP(cfg.GeoIP, hc),
		DomainAge:    reputation.NoopDomainAge{},
	}
	if cfg.WhoisEnabled {
		sources.DomainAge = reputation.NewRDAP(cfg.RDAP, hc)
	}
	for name, key := range map[string]string{
		"VIRUSTOTAL_API_KEY":       cfg.VirusTotal.APIKey,
		"ABUSEIPDB_API_KEY":        cfg.AbuseIPDB.APIKey,
		"GOOGLE_SAFE_BROWSING_KEY": cfg.SafeBrowsing.APIKey,
	} {
		if key == "" {
			logger.WithField("key", name).Warn("credential not set, source will report neutral results")
		}
	}

	var results *cache.Cache[domain.ThreatVerdict]
	if cfg.CacheTTL > 0 {
		results = cache.New[domain.ThreatVerdict](cfg.CacheSize, cfg.CacheTTL)
	}

	resolver := dnsadapter.New(cfg.DNSServer, 2*time.Second)
	svc := scanner.New(resolver, sources, catalog, results, logger)

	srv := httpadapter.New(svc, logger)
	r := chi.NewRouter()
	r.Mount("/", srv.Routes())
	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpServer.ListenAndServe() }()
	logger.WithFields(logrus.Fields{"addr": cfg.ListenAddr, "env": cfg.Env}).Info("listening")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Infof("shutting down on %s", sig)
		cancel()
		shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("shutdown")
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(fmt.Errorf("server error: %w", err))
		}
	}
}

// brandRepository picks the brand catalog source: Postgres, then a YAML file,
// then none (built-in lists).
func brandRepository(ctx context.Context, cfg config.Config, logger logrus.FieldLogger) (ports.BrandRepository, func()) {
	noop := func() {}
	switch {
	case cfg.DatabaseURL != "":
		db, err := pg.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.WithError(err).Warn("brand database unavailable, using built-in catalog")
			return nil, noop
		}
		if err := db.Migrate(ctx); err != nil {
			logger.WithError(err).Warn("brand database migration failed, using built-in catalog")
			db.Close()
			return nil, noop
		}
		return db, db.Close
	case cfg.BrandsFile != "":
		repo, err := brandfile.Open(cfg.BrandsFile)
		if err != nil {
			logger.WithError(err).Warn("brand file unreadable, using built-in catalog")
			return nil, noop
		}
		return repo, noop
	}
	return nil, noop
}
