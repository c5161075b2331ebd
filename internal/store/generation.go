package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/openpv/sitedata/internal/models"
)

// FetchGenerationValues returns readings for the given sites whose interval
// intersects [startUTC, endUTC), ordered by start_utc ascending then
// site_uuid. Nil siteUUIDs means all sites; nil bounds are unbounded.
func (s *Store) FetchGenerationValues(ctx context.Context, siteUUIDs []uuid.UUID, startUTC, endUTC *time.Time) ([]models.GenerationValue, error) {
	var (
		conds []string
		args  []any
	)

	if siteUUIDs != nil {
		if len(siteUUIDs) == 0 {
			return nil, nil
		}
		placeholders := make([]string, len(siteUUIDs))
		for i, id := range siteUUIDs {
			placeholders[i] = "?"
			args = append(args, id)
		}
		conds = append(conds, fmt.Sprintf("site_uuid IN (%s)", strings.Join(placeholders, ", ")))
	}
	if startUTC != nil {
		conds = append(conds, "end_utc > ?")
		args = append(args, startUTC.UTC())
	}
	if endUTC != nil {
		conds = append(conds, "start_utc < ?")
		args = append(args, endUTC.UTC())
	}

	query := `
		SELECT generation_uuid, site_uuid, start_utc, end_utc, power_kw, created_utc
		FROM generation_values`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY start_utc ASC, site_uuid ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []models.GenerationValue
	for rows.Next() {
		var v models.GenerationValue
		if err := rows.Scan(&v.GenerationUUID, &v.SiteUUID, &v.StartUTC, &v.EndUTC, &v.PowerKW, &v.CreatedUTC); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

func (s *Store) AddGenerationValue(ctx context.Context, siteUUID uuid.UUID, startUTC, endUTC time.Time, powerKW float64) (models.GenerationValue, error) {
	v := models.GenerationValue{
		GenerationUUID: uuid.New(),
		SiteUUID:       siteUUID,
		StartUTC:       startUTC.UTC(),
		EndUTC:         endUTC.UTC(),
		PowerKW:        powerKW,
		CreatedUTC:     s.clock.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO generation_values (generation_uuid, site_uuid, start_utc, end_utc, power_kw, created_utc)
		VALUES (?, ?, ?, ?, ?, ?)
	`, v.GenerationUUID, v.SiteUUID, v.StartUTC, v.EndUTC, v.PowerKW, v.CreatedUTC)
	if err != nil {
		return models.GenerationValue{}, fmt.Errorf("insert generation value: %w", err)
	}
	return v, nil
}
