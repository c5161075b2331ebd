package read

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/openpv/sitedata/internal/models"
	"github.com/openpv/sitedata/internal/store"
)

// SumBy selects the aggregation shape. It is a closed set; strings arriving
// from the outside go through ParseSumBy first.
type SumBy int

const (
	SumByNone SumBy = iota // one row per (site, timestamp)
	SumByTotal             // one row per timestamp across all sites
	SumByGSP               // one row per (gsp, timestamp)
	SumByDNO               // one row per (dno, timestamp)
)

func (s SumBy) String() string {
	switch s {
	case SumByNone:
		return "none"
	case SumByTotal:
		return "total"
	case SumByGSP:
		return "gsp"
	case SumByDNO:
		return "dno"
	}
	return fmt.Sprintf("SumBy(%d)", int(s))
}

// ParseSumBy is the boundary validator for external sum_by strings. The empty
// string means ungrouped.
func ParseSumBy(s string) (SumBy, error) {
	switch s {
	case "":
		return SumByNone, nil
	case "total":
		return SumByTotal, nil
	case "gsp":
		return SumByGSP, nil
	case "dno":
		return SumByDNO, nil
	}
	return SumByNone, fmt.Errorf("%w: %q", ErrInvalidSumBy, s)
}

// SummedValue is one output row of the aggregator. GroupKey is the site uuid
// for ungrouped rows, the gsp/dno key for grouped rows, and "total" for the
// all-sites sum. SiteUUID is set only on ungrouped rows.
type SummedValue struct {
	GroupKey string
	SiteUUID uuid.UUID
	StartUTC time.Time
	EndUTC   time.Time
	PowerKW  float64
}

type seriesPoint struct {
	siteUUID uuid.UUID
	startUTC time.Time
	endUTC   time.Time
	powerKW  float64
}

// sumSeries combines per-site points into rows keyed by (group, start_utc),
// adding power arithmetically. Rows come back ordered by start_utc ascending;
// rows sharing a timestamp keep the order their groups were first seen in.
// Timestamps present for only a subset of sites sum over the sites present.
// The sites map is consulted only for gsp/dno keys.
func sumSeries(points []seriesPoint, sites map[uuid.UUID]models.Site, sumBy SumBy) ([]SummedValue, error) {
	type slot struct {
		groupKey string
		startUTC int64
	}

	var (
		rows  []SummedValue
		index = make(map[slot]int)
	)

	for _, p := range points {
		var key string
		switch sumBy {
		case SumByNone:
			key = p.siteUUID.String()
		case SumByTotal:
			key = "total"
		case SumByGSP:
			site, ok := sites[p.siteUUID]
			if !ok {
				return nil, fmt.Errorf("no site record for %s", p.siteUUID)
			}
			key = site.GSP
		case SumByDNO:
			site, ok := sites[p.siteUUID]
			if !ok {
				return nil, fmt.Errorf("no site record for %s", p.siteUUID)
			}
			key = site.DNO
		default:
			return nil, fmt.Errorf("%w: %s", ErrInvalidSumBy, sumBy)
		}

		sl := slot{groupKey: key, startUTC: p.startUTC.UnixNano()}
		if i, ok := index[sl]; ok {
			rows[i].PowerKW += p.powerKW
			continue
		}

		row := SummedValue{
			GroupKey: key,
			StartUTC: p.startUTC,
			EndUTC:   p.endUTC,
			PowerKW:  p.powerKW,
		}
		if sumBy == SumByNone {
			row.SiteUUID = p.siteUUID
		}
		index[sl] = len(rows)
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].StartUTC.Before(rows[j].StartUTC)
	})
	return rows, nil
}

// siteIndex fetches the site records needed to resolve grouping keys.
func (r *Reader) siteIndex(ctx context.Context, siteUUIDs []uuid.UUID) (map[uuid.UUID]models.Site, error) {
	sites, err := r.store.FetchSites(ctx, store.SiteFilter{SiteUUIDs: siteUUIDs})
	if err != nil {
		return nil, fmt.Errorf("fetch sites: %w", err)
	}
	index := make(map[uuid.UUID]models.Site, len(sites))
	for _, site := range sites {
		index[site.SiteUUID] = site
	}
	return index, nil
}
