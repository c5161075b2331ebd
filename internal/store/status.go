package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/openpv/sitedata/internal/models"
)

// FetchLatestStatus returns the most recently created status, or nil when
// none exist.
func (s *Store) FetchLatestStatus(ctx context.Context) (*models.Status, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT status_uuid, status, message, created_utc
		FROM statuses
		ORDER BY created_utc DESC, status_uuid DESC
		LIMIT 1
	`)

	var st models.Status
	err := row.Scan(&st.StatusUUID, &st.Status, &st.Message, &st.CreatedUTC)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *Store) AddStatus(ctx context.Context, status, message string) (models.Status, error) {
	st := models.Status{
		StatusUUID: uuid.New(),
		Status:     status,
		Message:    message,
		CreatedUTC: s.clock.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO statuses (status_uuid, status, message, created_utc) VALUES (?, ?, ?, ?)
	`, st.StatusUUID, st.Status, st.Message, st.CreatedUTC)
	if err != nil {
		return models.Status{}, fmt.Errorf("insert status: %w", err)
	}
	return st, nil
}
