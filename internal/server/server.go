// Package server exposes the map page and the click API over HTTP.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/UnknownOlympus/helios/internal/models"
	"github.com/UnknownOlympus/helios/internal/service"
	"github.com/UnknownOlympus/helios/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed web/index.html
var webFS embed.FS

var pageTemplate = template.Must(template.ParseFS(webFS, "web/index.html"))

// maxClickBody bounds the size of a click request.
const maxClickBody = 1 << 10

var errMissingCoordinate = errors.New("lat and lng are required")

// ClickRenderer renders the result of a click into a session.
type ClickRenderer interface {
	FetchAndRender(ctx context.Context, sess *session.Session, coord models.Coordinate) service.Outcome
}

// PageConfig is the initial map view.
type PageConfig struct {
	MapsKey   string
	CenterLat float64
	CenterLng float64
	Zoom      int
}

// Server wires HTTP routes to sessions and the click renderer.
type Server struct {
	log      *slog.Logger
	sessions *session.Registry
	renderer ClickRenderer
	page     PageConfig
	mux      *http.ServeMux
}

type pageData struct {
	SessionID string
	MapsKey   string
	CenterLat float64
	CenterLng float64
	Zoom      int
}

type clickRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// New creates the HTTP handler. reg may be nil to disable /metrics.
func New(
	log *slog.Logger,
	sessions *session.Registry,
	renderer ClickRenderer,
	page PageConfig,
	reg *prometheus.Registry,
) *Server {
	srv := &Server{
		log:      log,
		sessions: sessions,
		renderer: renderer,
		page:     page,
		mux:      http.NewServeMux(),
	}

	srv.mux.HandleFunc("GET /{$}", srv.handlePage)
	srv.mux.HandleFunc("POST /api/sessions/{id}/clicks", srv.handleClick)
	srv.mux.HandleFunc("GET /api/sessions/{id}/scene", srv.handleScene)
	srv.mux.HandleFunc("GET /healthz", srv.handleHealth)
	if reg != nil {
		srv.mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}

	return srv
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	err := pageTemplate.Execute(w, pageData{
		SessionID: sess.ID,
		MapsKey:   s.page.MapsKey,
		CenterLat: s.page.CenterLat,
		CenterLng: s.page.CenterLng,
		Zoom:      s.page.Zoom,
	})
	if err != nil {
		s.log.ErrorContext(r.Context(), "failed to render page", "error", err)
	}
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessions.Get(r.PathValue("id"))
	if !ok {
		s.writeJSON(w, r, http.StatusNotFound, errorResponse{Error: "unknown session"})
		return
	}

	var req clickRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxClickBody)).Decode(&req); err != nil {
		s.writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: "invalid click body: " + err.Error()})
		return
	}
	if req.Lat == nil || req.Lng == nil {
		s.writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: errMissingCoordinate.Error()})
		return
	}

	coord := models.Coordinate{Latitude: *req.Lat, Longitude: *req.Lng}
	// The result belongs to the session, so it is committed even if the browser stops waiting.
	outcome := s.renderer.FetchAndRender(context.WithoutCancel(r.Context()), sess, coord)

	view := sess.View()
	view.Outcome = string(outcome)
	s.writeJSON(w, r, http.StatusOK, view)
}

func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessions.Get(r.PathValue("id"))
	if !ok {
		s.writeJSON(w, r, http.StatusNotFound, errorResponse{Error: "unknown session"})
		return
	}

	s.writeJSON(w, r, http.StatusOK, sess.View())
}

func (s *Server) handleHealth(writer http.ResponseWriter, r *http.Request) {
	s.log.DebugContext(r.Context(), "Performing health checks...")
	writer.WriteHeader(http.StatusOK)
	if _, err := writer.Write([]byte("OK")); err != nil {
		s.log.ErrorContext(r.Context(), "failed to write reply", "error", err)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.ErrorContext(r.Context(), "failed to write reply", "error", err)
	}
}
