package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/brunob329-droid/ifrs18/internal/application/evaluation"
	domain "github.com/brunob329-droid/ifrs18/internal/domain/classification"
	"github.com/brunob329-droid/ifrs18/internal/middleware"
)

type Router struct {
	svc *evaluation.Service
}

// NewRouter mounts the evaluation API. CORS is wide open, as the form
// clients of the original prototype expect.
func NewRouter(svc *evaluation.Service) http.Handler {
	r := &Router{svc: svc}
	mux := chi.NewRouter()

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/api", func(rt chi.Router) {
		rt.Post("/evaluate", r.wrap(r.handleEvaluate))
		rt.Get("/submissions", r.wrap(r.handleListSubmissions))
		rt.Post("/submissions/archive", r.wrap(r.handleArchive))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			middleware.IncrementSuccess()
			return
		}
		middleware.IncrementFailed()

		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Error())
			return
		}
		var perr *domain.PersistenceError
		if errors.As(err, &perr) {
			middleware.IncrementPersistenceFailures()
			zap.L().Error("audit record not committed", zap.Error(perr))
			writeError(w, http.StatusInternalServerError, "failed to persist audit record")
			return
		}
		if errors.Is(err, evaluation.ErrArchiveNotConfigured) {
			writeError(w, http.StatusServiceUnavailable, "archive storage not configured")
			return
		}
		zap.L().Error("request failed", zap.String("path", req.URL.Path), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// POST /api/evaluate
func (r *Router) handleEvaluate(w http.ResponseWriter, req *http.Request) error {
	var raw evaluation.RawSubmission
	if err := json.NewDecoder(req.Body).Decode(&raw); err != nil {
		return &domain.ValidationError{Field: "body", Reason: "is not valid JSON"}
	}

	// Metadata shape problems are logged, never rejected: the trail keeps
	// caller input verbatim.
	if err := middleware.ValidateCVMCode(raw.CVMCode); err != nil {
		zap.L().Warn("suspect company metadata", zap.Error(err))
	}
	if err := middleware.ValidateReportPeriod(raw.ReportPeriod); err != nil {
		zap.L().Warn("suspect company metadata", zap.Error(err))
	}

	middleware.IncrementEvaluations()
	rec, err := r.svc.Submit(req.Context(), raw)
	if err != nil {
		return err
	}
	if rec.Verdict.IsQualifyingMeasure {
		middleware.IncrementQualifying()
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"entry":   rec,
	})
}

// GET /api/submissions
func (r *Router) handleListSubmissions(w http.ResponseWriter, req *http.Request) error {
	recs, err := r.svc.History(req.Context())
	if err != nil {
		return err
	}
	if recs == nil {
		recs = []*domain.Record{}
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(map[string]any{"submissions": recs})
}

// POST /api/submissions/archive
func (r *Router) handleArchive(w http.ResponseWriter, req *http.Request) error {
	url, err := r.svc.ExportSnapshot(req.Context())
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(map[string]string{"url": url})
}
