package read

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	_ "modernc.org/sqlite"

	"github.com/openpv/sitedata/internal/models"
	"github.com/openpv/sitedata/internal/store"
)

// testEpoch is the frozen clock start for every test.
var testEpoch = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	reader *Reader
	store  *store.Store
	clock  *clockwork.FakeClock
}

// setup migrates a fresh in-memory database and hands back a reader whose
// store runs inside a transaction that is rolled back after the test, the
// same session discipline production callers use.
func setup(t *testing.T) *fixture {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// In-memory sqlite gives every connection its own database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := store.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	t.Cleanup(func() { tx.Rollback() })

	clock := clockwork.NewFakeClockAt(testEpoch)
	st := store.NewWithClock(tx, clock)
	return &fixture{reader: New(st), store: st, clock: clock}
}

// makeSites seeds n sites, each owned by its own client, mirroring how real
// deployments pair clients and sites one to one.
func (f *fixture) makeSites(t *testing.T, n int) []models.Site {
	t.Helper()
	ctx := context.Background()

	sites := make([]models.Site, 0, n)
	for i := 0; i < n; i++ {
		client, err := f.store.CreateClient(ctx, "testclient_"+string(rune('a'+i)))
		if err != nil {
			t.Fatalf("create client: %v", err)
		}
		site, err := f.store.CreateSite(ctx, models.Site{
			ClientUUID:     client.ClientUUID,
			ClientSiteID:   1,
			ClientSiteName: "site_" + string(rune('a'+i)),
			Latitude:       51,
			Longitude:      3,
			CapacityKW:     4,
			Country:        "uk",
			GSP:            "gsp_shared",
			DNO:            "dno_" + string(rune('a'+i)),
		})
		if err != nil {
			t.Fatalf("create site: %v", err)
		}
		sites = append(sites, site)
	}
	return sites
}

// addForecast records a run with values at the given start times, each five
// minutes long.
func (f *fixture) addForecast(t *testing.T, siteUUID uuid.UUID, issuedAt time.Time, values map[time.Time]float64) models.Forecast {
	t.Helper()
	ctx := context.Background()

	forecast, err := f.store.CreateForecast(ctx, siteUUID, "0.0.1", issuedAt)
	if err != nil {
		t.Fatalf("create forecast: %v", err)
	}
	for start, power := range values {
		if _, err := f.store.AddForecastValue(ctx, forecast.ForecastUUID, start, start.Add(5*time.Minute), power); err != nil {
			t.Fatalf("add forecast value: %v", err)
		}
	}
	return forecast
}

// addGeneration records n one-minute readings per site starting at start.
func (f *fixture) addGeneration(t *testing.T, siteUUID uuid.UUID, start time.Time, powers []float64) {
	t.Helper()
	ctx := context.Background()

	for i, power := range powers {
		s := start.Add(time.Duration(i) * time.Minute)
		if _, err := f.store.AddGenerationValue(ctx, siteUUID, s, s.Add(time.Minute), power); err != nil {
			t.Fatalf("add generation value: %v", err)
		}
	}
}
