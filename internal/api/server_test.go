package api_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/openpv/sitedata/internal/api"
	"github.com/openpv/sitedata/internal/models"
	"github.com/openpv/sitedata/internal/read"
	"github.com/openpv/sitedata/internal/store"
)

func setupServer(t *testing.T) (*api.Server, *store.Store) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := store.Migrate(db); err != nil {
		t.Fatal(err)
	}

	st := store.New(db)
	return api.NewServer(read.New(st), "8080"), st
}

func seedSite(t *testing.T, st *store.Store) models.Site {
	t.Helper()
	ctx := context.Background()

	client, err := st.CreateClient(ctx, "api_client")
	if err != nil {
		t.Fatal(err)
	}
	site, err := st.CreateSite(ctx, models.Site{
		ClientUUID:   client.ClientUUID,
		ClientSiteID: 1,
		Latitude:     51,
		Longitude:    3,
		CapacityKW:   4,
		Country:      "uk",
		GSP:          "gsp_1",
		DNO:          "dno_1",
	})
	if err != nil {
		t.Fatal(err)
	}
	return site
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := setupServer(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status"`) {
		t.Error("expected status field in JSON response")
	}
}

func TestSitesEndpoint(t *testing.T) {
	srv, st := setupServer(t)
	seedSite(t, st)

	req := httptest.NewRequest("GET", "/api/sites?country=uk", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var sites []models.Site
	if err := json.Unmarshal(w.Body.Bytes(), &sites); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(sites) != 1 {
		t.Fatalf("sites = %d, want 1", len(sites))
	}
}

func TestForecastEndpoint_InvalidSumBy(t *testing.T) {
	srv, _ := setupServer(t)

	req := httptest.NewRequest("GET", "/api/forecast/latest?start=2024-06-01T00:00:00Z&sum_by=blah", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != 400 {
		t.Fatalf("expected 400 for invalid sum_by, got %d", w.Code)
	}
}

func TestGenerationEndpoint_SummedTotal(t *testing.T) {
	srv, st := setupServer(t)
	ctx := context.Background()
	site := seedSite(t, st)

	start := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	if _, err := st.AddGenerationValue(ctx, site.SiteUUID, start, start.Add(time.Minute), 4); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("GET", "/api/generation?site_uuids="+site.SiteUUID.String()+"&sum_by=total", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var rows []read.SummedValue
	if err := json.Unmarshal(w.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 1 || rows[0].PowerKW != 4 {
		t.Fatalf("rows = %+v, want one row with 4 kW", rows)
	}
}

func TestStatusEndpoint_NotFound(t *testing.T) {
	srv, _ := setupServer(t)

	req := httptest.NewRequest("GET", "/api/status/latest", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != 404 {
		t.Fatalf("expected 404 with no statuses, got %d", w.Code)
	}
}
