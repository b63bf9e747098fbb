package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"carefront.org/internal/audit"
	"carefront.org/internal/auth"
	"carefront.org/internal/config"
	"carefront.org/internal/obs"
	"carefront.org/internal/ratelimit"
	"carefront.org/internal/store"
	"carefront.org/internal/triage"
)

const serviceName = "carefront-api"

// Pinger is what the readiness probe needs from a backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadyProbe checks backend connectivity.
type ReadyProbe struct {
	Backend Pinger
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.Backend == nil {
		return nil
	}
	return rp.Backend.Ping(ctx)
}

// Options wires the API's collaborators.
type Options struct {
	Resolver *auth.Resolver
	Limiter  *ratelimit.Limiter
	Audit    *audit.Logger
	Records  store.HealthStore
	Triage   *triage.Service
	Ready    ReadyProbe
	Version  string
	Limits   config.LimitsConfig
	HTTP     config.HTTPConfig
}

// API is the HTTP layer.
type API struct {
	router   chi.Router
	resolver *auth.Resolver
	limiter  *ratelimit.Limiter
	auditor  *audit.Logger
	records  store.HealthStore
	triage   *triage.Service
	ready    ReadyProbe
	version  string
	limits   config.LimitsConfig
}

// New assembles the router and middleware chain.
func New(opts Options) *API {
	a := &API{
		router:   chi.NewRouter(),
		resolver: opts.Resolver,
		limiter:  opts.Limiter,
		auditor:  opts.Audit,
		records:  opts.Records,
		triage:   opts.Triage,
		ready:    opts.Ready,
		version:  opts.Version,
		limits:   opts.Limits,
	}

	r := a.router
	r.Use(RequestID)
	r.Use(LoggingJSON)
	r.Use(obs.Instrument)
	r.Use(SecurityHeaders)
	if opts.HTTP.MaxBodyBytes > 0 {
		r.Use(MaxBodyBytes(opts.HTTP.MaxBodyBytes))
	}
	if opts.HTTP.IPPerSecond > 0 {
		r.Use(ClientRateLimit(opts.HTTP.IPBurst, opts.HTTP.IPPerSecond))
	}

	r.Get("/healthz", a.healthz)
	r.Get("/readyz", a.readyz)
	r.Handle("/metrics", obs.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(NoStore)
		r.Get("/info", a.info)

		r.Method(http.MethodPost, "/intakes",
			a.secured("intake.create", a.limits.WriteLimit, a.createIntake))
		r.Method(http.MethodGet, "/intakes",
			a.secured("intake.list", a.limits.ListLimit, a.listIntakes))
		r.Method(http.MethodPost, "/appointments",
			a.secured("appointment.create", a.limits.WriteLimit, a.createAppointment))
		r.Method(http.MethodGet, "/appointments",
			a.secured("appointment.list", a.limits.ListLimit, a.listAppointments))
		r.Method(http.MethodPost, "/triage",
			a.secured("triage.message", a.limits.TriageLimit, a.handleTriage))
	})

	return a
}

// Handler returns the assembled http.Handler.
func (a *API) Handler() http.Handler { return a.router }

func (a *API) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": serviceName,
		"version": a.version,
	})
}

func (a *API) readyz(w http.ResponseWriter, r *http.Request) {
	if err := a.ready.Check(r.Context()); err != nil {
		obs.SetReady(false)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	obs.SetReady(true)
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

func (a *API) info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    serviceName,
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"error": msg,
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

// writeValidationError reports the union of all violated rules.
func writeValidationError(w http.ResponseWriter, r *http.Request, problems []string) {
	payload := map[string]any{
		"error":   strings.Join(problems, "; "),
		"details": problems,
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, http.StatusBadRequest, payload)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}
