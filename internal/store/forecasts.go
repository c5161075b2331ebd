package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/openpv/sitedata/internal/models"
)

// FetchForecastsForSite returns all forecast runs for a site ordered by issue
// time descending, newest first. A non-nil minTimestamp drops runs issued
// before it; a non-nil maxCreated drops runs recorded at or after it.
func (s *Store) FetchForecastsForSite(ctx context.Context, siteUUID uuid.UUID, minTimestamp, maxCreated *time.Time) ([]models.Forecast, error) {
	query := `
		SELECT forecast_uuid, site_uuid, forecast_version, timestamp_utc, created_utc
		FROM forecasts
		WHERE site_uuid = ?`
	args := []any{siteUUID}

	if minTimestamp != nil {
		query += " AND timestamp_utc >= ?"
		args = append(args, minTimestamp.UTC())
	}
	if maxCreated != nil {
		query += " AND created_utc < ?"
		args = append(args, maxCreated.UTC())
	}
	query += " ORDER BY timestamp_utc DESC, forecast_uuid DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var forecasts []models.Forecast
	for rows.Next() {
		var f models.Forecast
		if err := rows.Scan(&f.ForecastUUID, &f.SiteUUID, &f.ForecastVersion, &f.TimestampUTC, &f.CreatedUTC); err != nil {
			return nil, err
		}
		forecasts = append(forecasts, f)
	}
	return forecasts, rows.Err()
}

// FetchForecastValues returns a run's values intersecting [startUTC, endUTC),
// ordered by start_utc ascending. A nil endUTC leaves the window unbounded
// above.
func (s *Store) FetchForecastValues(ctx context.Context, forecastUUID uuid.UUID, startUTC time.Time, endUTC *time.Time) ([]models.ForecastValue, error) {
	query := `
		SELECT forecast_value_uuid, forecast_uuid, start_utc, end_utc, forecast_power_kw, created_utc
		FROM forecast_values
		WHERE forecast_uuid = ? AND end_utc > ?`
	args := []any{forecastUUID, startUTC.UTC()}

	if endUTC != nil {
		query += " AND start_utc < ?"
		args = append(args, endUTC.UTC())
	}
	query += " ORDER BY start_utc ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []models.ForecastValue
	for rows.Next() {
		var v models.ForecastValue
		if err := rows.Scan(&v.ForecastValueUUID, &v.ForecastUUID, &v.StartUTC, &v.EndUTC, &v.ForecastPowerKW, &v.CreatedUTC); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// CreateForecast records a new forecast run. Runs are append-only.
func (s *Store) CreateForecast(ctx context.Context, siteUUID uuid.UUID, forecastVersion string, timestampUTC time.Time) (models.Forecast, error) {
	f := models.Forecast{
		ForecastUUID:    uuid.New(),
		SiteUUID:        siteUUID,
		ForecastVersion: forecastVersion,
		TimestampUTC:    timestampUTC.UTC(),
		CreatedUTC:      s.clock.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO forecasts (forecast_uuid, site_uuid, forecast_version, timestamp_utc, created_utc)
		VALUES (?, ?, ?, ?, ?)
	`, f.ForecastUUID, f.SiteUUID, f.ForecastVersion, f.TimestampUTC, f.CreatedUTC)
	if err != nil {
		return models.Forecast{}, fmt.Errorf("insert forecast: %w", err)
	}
	return f, nil
}

func (s *Store) AddForecastValue(ctx context.Context, forecastUUID uuid.UUID, startUTC, endUTC time.Time, powerKW float64) (models.ForecastValue, error) {
	v := models.ForecastValue{
		ForecastValueUUID: uuid.New(),
		ForecastUUID:      forecastUUID,
		StartUTC:          startUTC.UTC(),
		EndUTC:            endUTC.UTC(),
		ForecastPowerKW:   powerKW,
		CreatedUTC:        s.clock.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO forecast_values (forecast_value_uuid, forecast_uuid, start_utc, end_utc, forecast_power_kw, created_utc)
		VALUES (?, ?, ?, ?, ?, ?)
	`, v.ForecastValueUUID, v.ForecastUUID, v.StartUTC, v.EndUTC, v.ForecastPowerKW, v.CreatedUTC)
	if err != nil {
		return models.ForecastValue{}, fmt.Errorf("insert forecast value: %w", err)
	}
	return v, nil
}
