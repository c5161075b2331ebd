package models

import (
	"time"

	"github.com/google/uuid"
)

// Client owns sites. (ClientUUID, client_site_id) identifies a site from the
// client's point of view.
type Client struct {
	ClientUUID uuid.UUID
	ClientName string
	CreatedUTC time.Time
}

type Site struct {
	SiteUUID       uuid.UUID
	ClientUUID     uuid.UUID
	ClientSiteID   int64
	ClientSiteName string
	Latitude       float64
	Longitude      float64
	CapacityKW     float64
	Country        string
	GSP            string // mid-level grouping key
	DNO            string // distribution-network-level grouping key
	CreatedUTC     time.Time
	UpdatedUTC     time.Time
}

// Forecast is one run of the forecasting process for a site. TimestampUTC is
// the issue time; runs are never mutated after creation.
type Forecast struct {
	ForecastUUID    uuid.UUID
	SiteUUID        uuid.UUID
	ForecastVersion string
	TimestampUTC    time.Time
	CreatedUTC      time.Time
}

// ForecastValue covers the half-open interval [StartUTC, EndUTC).
type ForecastValue struct {
	ForecastValueUUID uuid.UUID
	ForecastUUID      uuid.UUID
	StartUTC          time.Time
	EndUTC            time.Time
	ForecastPowerKW   float64
	CreatedUTC        time.Time
}

// GenerationValue is a raw meter reading over [StartUTC, EndUTC).
type GenerationValue struct {
	GenerationUUID uuid.UUID
	SiteUUID       uuid.UUID
	StartUTC       time.Time
	EndUTC         time.Time
	PowerKW        float64
	CreatedUTC     time.Time
}

type Status struct {
	StatusUUID uuid.UUID
	Status     string // "ok", "warning", "error"
	Message    string
	CreatedUTC time.Time
}

// User belongs to exactly one site group; the group scopes which sites the
// user's queries may see.
type User struct {
	UserUUID      uuid.UUID
	Email         string
	SiteGroupUUID uuid.UUID
	CreatedUTC    time.Time
}

type SiteGroup struct {
	SiteGroupUUID uuid.UUID
	SiteGroupName string
	CreatedUTC    time.Time
}

// LatLonLimits is an inclusive bounding box; nil bounds impose no constraint.
type LatLonLimits struct {
	LatitudeMin  *float64
	LatitudeMax  *float64
	LongitudeMin *float64
	LongitudeMax *float64
}

// Contains reports whether the point falls inside the box.
func (l LatLonLimits) Contains(lat, lon float64) bool {
	if l.LatitudeMin != nil && lat < *l.LatitudeMin {
		return false
	}
	if l.LatitudeMax != nil && lat > *l.LatitudeMax {
		return false
	}
	if l.LongitudeMin != nil && lon < *l.LongitudeMin {
		return false
	}
	if l.LongitudeMax != nil && lon > *l.LongitudeMax {
		return false
	}
	return true
}
