package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	api "linkscan/internal/api"
	"linkscan/internal/domain"
	"linkscan/internal/logging"
	"linkscan/internal/ports"
	"linkscan/internal/services/scanner"
)

const maxRequestBody = 64 << 10

// Server implements the generated StrictServerInterface.
type Server struct {
	analyzer ports.Analyzer
	log      logrus.FieldLogger
	timeout  time.Duration
}

var _ api.StrictServerInterface = (*Server)(nil)

// New builds the HTTP adapter. A nil log discards output.
func New(analyzer ports.Analyzer, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logging.Discard()
	}
	return &Server{analyzer: analyzer, log: log, timeout: 30 * time.Second}
}

// Routes returns a chi.Router mounting the generated handlers.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))
	r.Use(middleware.RequestSize(maxRequestBody))
	r.Use(cors)

	handler := api.NewStrictHandlerWithOptions(s, nil, api.StrictHTTPServerOptions{
		RequestErrorHandlerFunc:  s.requestError,
		ResponseErrorHandlerFunc: s.responseError,
	})
	api.HandlerFromMux(handler, r)
	return r
}

func (s *Server) GetHealth(ctx context.Context, _ api.GetHealthRequestObject) (api.GetHealthResponseObject, error) {
	return api.GetHealth200JSONResponse{Status: "ok", Message: "linkscan API is running"}, nil
}

func (s *Server) AnalyzeUrl(ctx context.Context, req api.AnalyzeUrlRequestObject) (api.AnalyzeUrlResponseObject, error) {
	var raw string
	if req.Body != nil {
		raw = req.Body.Url
	}
	verdict, err := s.analyzer.Analyze(ctx, raw)
	switch {
	case errors.Is(err, scanner.ErrInvalidInput):
		return api.AnalyzeUrl400JSONResponse{Detail: err.Error()}, nil
	case err != nil:
		s.log.WithError(err).WithField("request_id", middleware.GetReqID(ctx)).Error("analysis failed")
		return api.AnalyzeUrl500JSONResponse{Detail: "Analysis failed: " + err.Error()}, nil
	}
	return api.AnalyzeUrl200JSONResponse(toAPI(verdict)), nil
}

// requestError answers undecodable bodies the same way as a blank URL.
func (s *Server) requestError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.WithError(err).WithField("request_id", middleware.GetReqID(r.Context())).Debug("bad request body")
	writeError(w, http.StatusBadRequest, scanner.ErrInvalidInput.Error())
}

func (s *Server) responseError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.WithError(err).WithField("request_id", middleware.GetReqID(r.Context())).Error("write response")
	writeError(w, http.StatusInternalServerError, "Analysis failed: "+err.Error())
}

func writeError(w http.ResponseWriter, code int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(api.ErrorDetail{Detail: detail})
}

func toAPI(v domain.ThreatVerdict) api.ThreatVerdict {
	b := v.Breakdown
	out := api.ThreatVerdict{
		Url:            v.URL,
		Score:          v.Score,
		FinalScore:     v.FinalScore,
		Classification: string(v.Classification),
		ThreatLevel:    string(v.ThreatLevel),
		Breakdown: api.ScoreBreakdown{
			Whitelist:          b.Whitelist,
			Virustotal:         b.VirusTotal,
			Abuseipdb:          b.AbuseIPDB,
			GoogleSafeBrowsing: b.GoogleSafeBrowsing,
			Phishtank:          b.PhishTank,
			AgeScore:           b.AgeScore,
			Heuristics:         b.Heuristics,
		},
		Reasons:     v.Reasons,
		ApiVerdicts: v.APIVerdicts,
		FromCache:   v.FromCache,
	}
	if out.Reasons == nil {
		out.Reasons = []string{}
	}
	if out.ApiVerdicts == nil {
		out.ApiVerdicts = map[string]string{}
	}
	if d := v.DomainInfo; d != nil {
		out.DomainInfo = &api.DomainInfo{AgeDays: d.AgeDays, Registrar: d.Registrar}
	}
	if ip := v.IPInfo; ip != nil {
		out.IpInfo = &api.IPInfo{Ip: ip.IP, ServerCountry: ip.Country, Isp: ip.ISP}
	}
	return out
}

// requestLogger logs one line per request through logrus.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.log.WithFields(logrus.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      ww.Status(),
				"bytes":       ww.BytesWritten(),
				"duration_ms": time.Since(start).Milliseconds(),
				"remote":      r.RemoteAddr,
				"request_id":  middleware.GetReqID(r.Context()),
			}).Info("request")
		}()
		next.ServeHTTP(ww, r)
	})
}

// cors allows any origin; the dashboard frontend is served separately.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
