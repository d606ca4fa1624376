package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/CodenameMaggie/introalignment-sub003/internal/config"
	"github.com/CodenameMaggie/introalignment-sub003/internal/match"
	"github.com/CodenameMaggie/introalignment-sub003/internal/metrics"
	"github.com/CodenameMaggie/introalignment-sub003/internal/model"
	"github.com/CodenameMaggie/introalignment-sub003/internal/outreach"
	"github.com/CodenameMaggie/introalignment-sub003/internal/store"
)

// Narrow interfaces so the router can be tested with fakes.
type leadCreator interface {
	CreateLead(ctx context.Context, lead model.Lead) (*model.Lead, error)
}

type batchRunner interface {
	RunBatch(ctx context.Context, limit int) (int, error)
}

type matchRunner interface {
	RunAll(ctx context.Context) (int64, error)
}

type reportRunner interface {
	RunBatch(ctx context.Context, limit int) (int, []error)
}

type outreachRunner interface {
	ProcessPending(ctx context.Context, limit int) (int, []error)
}

type matchResponder interface {
	Respond(ctx context.Context, matchID, userID string, resp model.MatchResponse) (*model.Match, error)
}

// routerDeps bundles what the HTTP surface needs.
type routerDeps struct {
	server   config.ServerConfig
	batch    config.BatchConfig
	leads    leadCreator
	scorer   batchRunner
	enricher batchRunner
	matches  matchRunner
	reports  reportRunner
	outreach outreachRunner
	respond  matchResponder
	track    *outreach.TrackHandler
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// requireBearer guards a route group with a static bearer token. An
// unconfigured token fails closed with 401.
func requireBearer(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				zap.L().Warn("bearer token not configured, rejecting request",
					zap.String("path", r.URL.Path),
				)
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if r.Header.Get("Authorization") != "Bearer "+token {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger logs each request with zap.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		zap.L().Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))
	r.Use(metrics.Middleware)
	r.Use(requestLogger)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/leads", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Source   string            `json:"source"`
			FullName string            `json:"full_name"`
			Company  string            `json:"company"`
			Domain   string            `json:"domain"`
			Signals  model.LeadSignals `json:"signals"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Source == "" {
			writeError(w, http.StatusBadRequest, "source is required")
			return
		}

		lead, err := d.leads.CreateLead(r.Context(), model.Lead{
			Source:   req.Source,
			FullName: req.FullName,
			Company:  req.Company,
			Domain:   req.Domain,
			Signals:  req.Signals,
		})
		if err != nil {
			zap.L().Error("lead capture failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to create lead")
			return
		}
		writeJSON(w, http.StatusCreated, lead)
	})

	r.Post("/matches/respond", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			MatchID  string `json:"matchId"`
			UserID   string `json:"userId"`
			Response string `json:"response"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.MatchID == "" || req.UserID == "" {
			writeError(w, http.StatusBadRequest, "matchId and userId are required")
			return
		}

		m, err := d.respond.Respond(r.Context(), req.MatchID, req.UserID, model.MatchResponse(req.Response))
		if err != nil {
			switch {
			case errors.Is(err, match.ErrInvalidResponse):
				writeError(w, http.StatusBadRequest, "response must be interested or declined")
			case errors.Is(err, match.ErrMatchNotFound):
				writeError(w, http.StatusNotFound, "match not found")
			case errors.Is(err, match.ErrNotParticipant):
				writeError(w, http.StatusForbidden, "user is not part of this match")
			default:
				zap.L().Error("match respond failed", zap.Error(err))
				writeError(w, http.StatusInternalServerError, "failed to record response")
			}
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"match": m})
	})

	r.Get("/track/open", d.track.Open)
	r.Get("/track/click", d.track.Click)

	r.Group(func(r chi.Router) {
		r.Use(requireBearer(d.server.CronSecret))

		r.Post("/cron/score-leads", func(w http.ResponseWriter, r *http.Request) {
			n, err := d.scorer.RunBatch(r.Context(), d.batch.DefaultLimit)
			if err != nil {
				zap.L().Error("score-leads cron failed", zap.Error(err))
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			writeJSON(w, http.StatusOK, map[string]int{"leadsScored": n})
		})

		r.Post("/cron/enrich-leads", func(w http.ResponseWriter, r *http.Request) {
			n, err := d.enricher.RunBatch(r.Context(), d.batch.DefaultLimit)
			if err != nil {
				zap.L().Error("enrich-leads cron failed", zap.Error(err))
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			writeJSON(w, http.StatusOK, map[string]int{"leadsEnriched": n})
		})

		r.Post("/cron/generate-matches", func(w http.ResponseWriter, r *http.Request) {
			matchCount, err := d.matches.RunAll(r.Context())
			if err != nil {
				zap.L().Error("generate-matches cron failed", zap.Error(err))
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			reportCount, errs := d.reports.RunBatch(r.Context(), d.batch.DefaultLimit)
			for _, e := range errs {
				zap.L().Warn("report generation error", zap.Error(e))
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"matches": map[string]int64{"matchesGenerated": matchCount},
				"reports": map[string]int{"reportsGenerated": reportCount},
			})
		})

		r.Post("/cron/process-outreach", func(w http.ResponseWriter, r *http.Request) {
			sent, errs := d.outreach.ProcessPending(r.Context(), d.batch.DefaultLimit)
			for _, e := range errs {
				zap.L().Warn("outreach processing error", zap.Error(e))
			}
			writeJSON(w, http.StatusOK, map[string]int{
				"emailsSent": sent,
				"errors":     len(errs),
			})
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(requireBearer(d.server.AdminToken))

		r.Get("/api/admin/migrations", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"migrations": store.Migrations()})
		})
	})

	return r
}
