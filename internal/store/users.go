package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/openpv/sitedata/internal/models"
)

// FetchUserByEmail returns nil when no user has the given email.
func (s *Store) FetchUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT user_uuid, email, site_group_uuid, created_utc
		FROM users WHERE email = ?
	`, email)

	var u models.User
	err := row.Scan(&u.UserUUID, &u.Email, &u.SiteGroupUUID, &u.CreatedUTC)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FetchSiteGroupByName returns nil when no group has the given name.
func (s *Store) FetchSiteGroupByName(ctx context.Context, name string) (*models.SiteGroup, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT site_group_uuid, site_group_name, created_utc
		FROM site_groups WHERE site_group_name = ?
	`, name)

	var g models.SiteGroup
	err := row.Scan(&g.SiteGroupUUID, &g.SiteGroupName, &g.CreatedUTC)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *Store) FetchAllUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_uuid, email, site_group_uuid, created_utc
		FROM users ORDER BY email ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.UserUUID, &u.Email, &u.SiteGroupUUID, &u.CreatedUTC); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) FetchAllSiteGroups(ctx context.Context) ([]models.SiteGroup, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT site_group_uuid, site_group_name, created_utc
		FROM site_groups ORDER BY site_group_name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []models.SiteGroup
	for rows.Next() {
		var g models.SiteGroup
		if err := rows.Scan(&g.SiteGroupUUID, &g.SiteGroupName, &g.CreatedUTC); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (s *Store) CreateSiteGroup(ctx context.Context, name string) (models.SiteGroup, error) {
	g := models.SiteGroup{
		SiteGroupUUID: uuid.New(),
		SiteGroupName: name,
		CreatedUTC:    s.clock.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO site_groups (site_group_uuid, site_group_name, created_utc) VALUES (?, ?, ?)
	`, g.SiteGroupUUID, g.SiteGroupName, g.CreatedUTC)
	if err != nil {
		return models.SiteGroup{}, fmt.Errorf("insert site group: %w", err)
	}
	return g, nil
}

func (s *Store) CreateUser(ctx context.Context, email string, siteGroupUUID uuid.UUID) (models.User, error) {
	u := models.User{
		UserUUID:      uuid.New(),
		Email:         email,
		SiteGroupUUID: siteGroupUUID,
		CreatedUTC:    s.clock.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (user_uuid, email, site_group_uuid, created_utc) VALUES (?, ?, ?, ?)
	`, u.UserUUID, u.Email, u.SiteGroupUUID, u.CreatedUTC)
	if err != nil {
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// AddSiteToGroup attaches a site to a group. Repeated attachment is a no-op.
func (s *Store) AddSiteToGroup(ctx context.Context, siteGroupUUID, siteUUID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO site_group_sites (site_group_uuid, site_uuid) VALUES (?, ?)
		ON CONFLICT(site_group_uuid, site_uuid) DO NOTHING
	`, siteGroupUUID, siteUUID)
	if err != nil {
		return fmt.Errorf("attach site to group: %w", err)
	}
	return nil
}
