package read

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/openpv/sitedata/internal/metrics"
	"github.com/openpv/sitedata/internal/models"
)

// ForecastOptions narrows the forecast window. All fields are optional.
type ForecastOptions struct {
	// EndUTC bounds the value window from above (exclusive).
	EndUTC *time.Time
	// CreatedUTC hides forecast runs recorded at or after this time, giving
	// the view a consumer would have seen then.
	CreatedUTC *time.Time
	// IssuedAfter drops runs issued before this floor entirely.
	IssuedAfter *time.Time
}

// LatestForecastValuesBySite selects, for each site, the best available
// forecast over [startUTC, opts.EndUTC): the most recently issued run claims
// every timestamp it covers, and older runs fill in timestamps the newer runs
// do not cover. Per-site results are ordered by start_utc ascending. Sites
// with no forecast runs are omitted rather than reported as errors.
func (r *Reader) LatestForecastValuesBySite(ctx context.Context, siteUUIDs []uuid.UUID, startUTC time.Time, opts ForecastOptions) (map[uuid.UUID][]models.ForecastValue, error) {
	metrics.ReadsTotal.WithLabelValues("latest_forecast_values").Inc()

	out := make(map[uuid.UUID][]models.ForecastValue)
	for _, siteUUID := range siteUUIDs {
		values, err := r.latestValuesForSite(ctx, siteUUID, startUTC, opts)
		if err != nil {
			return nil, err
		}
		if len(values) > 0 {
			out[siteUUID] = values
		}
	}
	return out, nil
}

func (r *Reader) latestValuesForSite(ctx context.Context, siteUUID uuid.UUID, startUTC time.Time, opts ForecastOptions) ([]models.ForecastValue, error) {
	forecasts, err := r.store.FetchForecastsForSite(ctx, siteUUID, opts.IssuedAfter, opts.CreatedUTC)
	if err != nil {
		return nil, fmt.Errorf("fetch forecasts for site %s: %w", siteUUID, err)
	}

	// Runs arrive newest first; a timestamp claimed by a newer run is never
	// overwritten by an older one.
	claimed := make(map[int64]models.ForecastValue)
	for _, f := range forecasts {
		values, err := r.store.FetchForecastValues(ctx, f.ForecastUUID, startUTC, opts.EndUTC)
		if err != nil {
			return nil, fmt.Errorf("fetch values for forecast %s: %w", f.ForecastUUID, err)
		}
		for _, v := range values {
			key := v.StartUTC.UnixNano()
			if _, ok := claimed[key]; !ok {
				claimed[key] = v
			}
		}
	}

	if len(claimed) == 0 {
		return nil, nil
	}

	values := make([]models.ForecastValue, 0, len(claimed))
	for _, v := range claimed {
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool {
		return values[i].StartUTC.Before(values[j].StartUTC)
	})
	return values, nil
}

// LatestForecastValuesSummed runs the latest-forecast selection and then
// aggregates the per-site series according to sumBy. With SumByNone the
// result is one row per (site, timestamp).
func (r *Reader) LatestForecastValuesSummed(ctx context.Context, siteUUIDs []uuid.UUID, startUTC time.Time, opts ForecastOptions, sumBy SumBy) ([]SummedValue, error) {
	bySite, err := r.LatestForecastValuesBySite(ctx, siteUUIDs, startUTC, opts)
	if err != nil {
		return nil, err
	}

	var sites map[uuid.UUID]models.Site
	if sumBy == SumByGSP || sumBy == SumByDNO {
		sites, err = r.siteIndex(ctx, siteUUIDs)
		if err != nil {
			return nil, err
		}
	}

	// Walk sites in request order so group first-encounter order is stable.
	var points []seriesPoint
	for _, siteUUID := range siteUUIDs {
		for _, v := range bySite[siteUUID] {
			points = append(points, seriesPoint{
				siteUUID: siteUUID,
				startUTC: v.StartUTC,
				endUTC:   v.EndUTC,
				powerKW:  v.ForecastPowerKW,
			})
		}
	}
	return sumSeries(points, sites, sumBy)
}
