// Package api serves a read-only JSON view of the latest snapshot.
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"bookingsdash/app"
	"bookingsdash/domain/bookings"
	"bookingsdash/internal/errors"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// API is the artifact JSON API
type API struct {
	router *chi.Mux
	loader *app.SnapshotLoader
}

// PeriodInfo describes one period for clients
type PeriodInfo struct {
	Period      bookings.Period `json:"period"`
	DisplayName string          `json:"display_name"`
	Sheet       string          `json:"sheet"`
	File        string          `json:"file"`
	Rows        int             `json:"rows"`
	Fingerprint string          `json:"fingerprint"`
}

// SnapshotInfo is the manifest view of the loaded snapshot
type SnapshotInfo struct {
	RunID     string       `json:"run_id"`
	CreatedAt time.Time    `json:"created_at"`
	Periods   []PeriodInfo `json:"periods"`
}

// NewAPI creates the router
func NewAPI(loader *app.SnapshotLoader) *API {
	a := &API{
		router: chi.NewRouter(),
		loader: loader,
	}
	a.setupMiddleware()
	a.setupRoutes()
	return a
}

// setupMiddleware configures HTTP middleware
func (a *API) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
}

// setupRoutes configures the API routes
func (a *API) setupRoutes() {
	a.router.Get("/api/periods", a.handlePeriods)
	a.router.Get("/api/snapshot", a.handleSnapshot)
	a.router.Route("/api/periods/{period}", func(r chi.Router) {
		r.Get("/rows", a.handleRows)
		r.Get("/variance", a.handleVariance)
		r.Get("/share", a.handleShare)
		r.Get("/summary", a.handleSummary)
	})
}

// ServeHTTP implements http.Handler
func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Start starts the HTTP server
func (a *API) Start(addr string) error {
	log.Printf("Starting bookings API on %s", addr)
	return http.ListenAndServe(addr, a.router)
}

func (a *API) handlePeriods(w http.ResponseWriter, r *http.Request) {
	info, err := a.snapshotInfo(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info.Periods)
}

func (a *API) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	info, err := a.snapshotInfo(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (a *API) snapshotInfo(r *http.Request) (SnapshotInfo, error) {
	presenter, err := a.loader.Presenter(r.Context())
	if err != nil {
		return SnapshotInfo{}, err
	}
	snapshot := presenter.Snapshot()

	info := SnapshotInfo{RunID: snapshot.RunID.String(), CreatedAt: snapshot.CreatedAt}
	for _, layout := range presenter.Periods() {
		info.Periods = append(info.Periods, PeriodInfo{
			Period:      layout.Period,
			DisplayName: layout.DisplayName,
			Sheet:       layout.Sheet,
			File:        layout.ArtifactFile,
			Rows:        len(snapshot.Tables[layout.Period]),
			Fingerprint: snapshot.Fingerprints[layout.Period].String(),
		})
	}
	return info, nil
}

func (a *API) handleRows(w http.ResponseWriter, r *http.Request) {
	presenter, period, err := a.resolve(r)
	if err != nil {
		writeError(w, err)
		return
	}

	rows, err := presenter.Filter(period, r.URL.Query().Get("brand"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (a *API) handleVariance(w http.ResponseWriter, r *http.Request) {
	a.withView(w, r, func(p *app.PresenterService, view []bookings.NormalizedRow, c bookings.Category) interface{} {
		return p.Variance(view, c)
	})
}

func (a *API) handleShare(w http.ResponseWriter, r *http.Request) {
	a.withView(w, r, func(p *app.PresenterService, view []bookings.NormalizedRow, c bookings.Category) interface{} {
		return p.Share(view, c)
	})
}

func (a *API) handleSummary(w http.ResponseWriter, r *http.Request) {
	a.withView(w, r, func(p *app.PresenterService, view []bookings.NormalizedRow, c bookings.Category) interface{} {
		return p.Summary(view, c)
	})
}

// withView resolves period, brand and category from the request and writes
// the result of fn as JSON.
func (a *API) withView(w http.ResponseWriter, r *http.Request, fn func(*app.PresenterService, []bookings.NormalizedRow, bookings.Category) interface{}) {
	presenter, period, err := a.resolve(r)
	if err != nil {
		writeError(w, err)
		return
	}

	category := bookings.CategoryDollars
	if raw := r.URL.Query().Get("category"); raw != "" {
		category, err = bookings.ParseCategory(raw)
		if err != nil {
			writeError(w, errors.InvalidInput(err.Error()))
			return
		}
	}

	view, err := presenter.Filter(period, r.URL.Query().Get("brand"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fn(presenter, view, category))
}

func (a *API) resolve(r *http.Request) (*app.PresenterService, bookings.Period, error) {
	period, err := bookings.ParsePeriod(chi.URLParam(r, "period"))
	if err != nil {
		return nil, "", errors.NotFound(err.Error())
	}
	presenter, err := a.loader.Presenter(r.Context())
	if err != nil {
		return nil, "", err
	}
	return presenter, period, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[API] Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[API] %v", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error(), "code": errors.GetCode(err)})
}
