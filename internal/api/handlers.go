package api

import (
	"fmt"
	"net/http"

	"github.com/openpv/sitedata/internal/read"
)

func (s *Server) handleSites(w http.ResponseWriter, r *http.Request) {
	country := r.URL.Query().Get("country")

	var (
		sites any
		err   error
	)
	if country != "" {
		sites, err = s.reader.SitesByCountry(r.Context(), country)
	} else {
		sites, err = s.reader.AllSites(r.Context())
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, sites)
}

func (s *Server) handleLatestForecast(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	// Validate sum_by before anything touches the store.
	sumBy, err := read.ParseSumBy(q.Get("sum_by"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	siteUUIDs, err := parseUUIDList(q.Get("site_uuids"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	start, err := parseTimeParam(q.Get("start"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if start == nil {
		writeError(w, r, fmt.Errorf("%w: start parameter is required", errBadRequest))
		return
	}
	end, err := parseTimeParam(q.Get("end"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	created, err := parseTimeParam(q.Get("created"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	opts := read.ForecastOptions{EndUTC: end, CreatedUTC: created}

	if sumBy == read.SumByNone {
		bySite, err := s.reader.LatestForecastValuesBySite(r.Context(), siteUUIDs, *start, opts)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, bySite)
		return
	}

	rows, err := s.reader.LatestForecastValuesSummed(r.Context(), siteUUIDs, *start, opts, sumBy)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, rows)
}

func (s *Server) handleGeneration(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	sumBy, err := read.ParseSumBy(q.Get("sum_by"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	siteUUIDs, err := parseUUIDList(q.Get("site_uuids"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	start, err := parseTimeParam(q.Get("start"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	end, err := parseTimeParam(q.Get("end"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	window := read.Window{StartUTC: start, EndUTC: end}

	if sumBy == read.SumByNone {
		values, err := s.reader.PVGenerationBySites(r.Context(), siteUUIDs, window)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, values)
		return
	}

	rows, err := s.reader.PVGenerationBySitesSummed(r.Context(), siteUUIDs, window, sumBy)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, rows)
}

func (s *Server) handleLatestStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.reader.LatestStatus(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if status == nil {
		writeError(w, r, fmt.Errorf("status: %w", read.ErrNotFound))
		return
	}
	writeJSON(w, r, status)
}
