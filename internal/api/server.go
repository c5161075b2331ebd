package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openpv/sitedata/internal/metrics"
	"github.com/openpv/sitedata/internal/read"
)

// Server exposes the read layer as a small JSON API. Writes stay out of the
// HTTP surface; they belong to the ingestion side of the system.
type Server struct {
	reader *read.Reader
	port   string
}

func NewServer(reader *read.Reader, port string) *Server {
	return &Server{reader: reader, port: port}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/sites", s.handleSites)
	mux.HandleFunc("/api/forecast/latest", s.handleLatestForecast)
	mux.HandleFunc("/api/generation", s.handleGeneration)
	mux.HandleFunc("/api/status/latest", s.handleLatestStatus)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *Server) ListenAndServe() error {
	return http.ListenAndServe(":"+s.port, s.Handler())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, r *http.Request, data any) {
	metrics.HTTPRequestsTotal.WithLabelValues(r.URL.Path, "200").Inc()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

// errBadRequest marks malformed query parameters.
var errBadRequest = errors.New("bad request")

// writeError maps the read-layer taxonomy onto HTTP statuses: invalid
// arguments 400, missing entities 404, everything else 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, read.ErrInvalidSumBy), errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, read.ErrNotFound):
		status = http.StatusNotFound
	}
	metrics.HTTPRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(status)).Inc()
	http.Error(w, err.Error(), status)
}

func parseUUIDList(raw string) ([]uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]uuid.UUID, 0, len(parts))
	for _, p := range parts {
		id, err := uuid.Parse(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("%w: parse uuid %q: %v", errBadRequest, p, err)
		}
		out = append(out, id)
	}
	return out, nil
}

func parseTimeParam(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: parse time %q: %v", errBadRequest, raw, err)
	}
	t = t.UTC()
	return &t, nil
}
