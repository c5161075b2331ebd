package read

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/openpv/sitedata/internal/metrics"
	"github.com/openpv/sitedata/internal/models"
)

// Window is an optional half-open time window [StartUTC, EndUTC).
type Window struct {
	StartUTC *time.Time
	EndUTC   *time.Time
}

// PVGenerationBySites returns all readings for the given sites in the window,
// ordered by start_utc ascending. An empty site list short-circuits to an
// empty result without touching the store.
func (r *Reader) PVGenerationBySites(ctx context.Context, siteUUIDs []uuid.UUID, window Window) ([]models.GenerationValue, error) {
	metrics.ReadsTotal.WithLabelValues("pv_generation_by_sites").Inc()

	if len(siteUUIDs) == 0 {
		return nil, nil
	}
	return r.store.FetchGenerationValues(ctx, siteUUIDs, window.StartUTC, window.EndUTC)
}

// PVGenerationBySitesSummed aggregates the readings according to sumBy.
// Unlike forecasts there is no newest-run reduction; every reading in the
// window contributes.
func (r *Reader) PVGenerationBySitesSummed(ctx context.Context, siteUUIDs []uuid.UUID, window Window, sumBy SumBy) ([]SummedValue, error) {
	values, err := r.PVGenerationBySites(ctx, siteUUIDs, window)
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

	points := make([]seriesPoint, 0, len(values))
	for _, v := range values {
		points = append(points, seriesPoint{
			siteUUID: v.SiteUUID,
			startUTC: v.StartUTC,
			endUTC:   v.EndUTC,
			powerKW:  v.PowerKW,
		})
	}
	return sumSeries(points, sites, sumBy)
}

// PVGenerationByUserUUIDs resolves users to their accessible sites and
// delegates to the generation path. A nil userUUIDs means all readings; an
// empty non-nil list means none.
func (r *Reader) PVGenerationByUserUUIDs(ctx context.Context, userUUIDs []uuid.UUID, window Window) ([]models.GenerationValue, error) {
	metrics.ReadsTotal.WithLabelValues("pv_generation_by_users").Inc()

	if userUUIDs == nil {
		return r.store.FetchGenerationValues(ctx, nil, window.StartUTC, window.EndUTC)
	}

	seen := make(map[uuid.UUID]bool)
	var siteUUIDs []uuid.UUID
	for _, userUUID := range userUUIDs {
		sites, err := r.store.FetchSitesForUser(ctx, userUUID)
		if err != nil {
			return nil, err
		}
		for _, site := range sites {
			if !seen[site.SiteUUID] {
				seen[site.SiteUUID] = true
				siteUUIDs = append(siteUUIDs, site.SiteUUID)
			}
		}
	}

	if len(siteUUIDs) == 0 {
		return nil, nil
	}
	return r.store.FetchGenerationValues(ctx, siteUUIDs, window.StartUTC, window.EndUTC)
}
