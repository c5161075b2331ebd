package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/openpv/sitedata/internal/models"
)

// SiteFilter narrows FetchSites. Zero-value fields impose no constraint.
type SiteFilter struct {
	SiteUUIDs      []uuid.UUID
	Country        string
	ClientName     string
	ClientSiteID   *int64
	ClientSiteName string
}

const siteColumns = `s.site_uuid, s.client_uuid, s.client_site_id, s.client_site_name,
	s.latitude, s.longitude, s.capacity_kw, s.country, s.gsp, s.dno,
	s.created_utc, s.updated_utc`

// FetchSites returns sites matching the filter, ordered by site_uuid ascending.
func (s *Store) FetchSites(ctx context.Context, filter SiteFilter) ([]models.Site, error) {
	var (
		conds []string
		args  []any
	)
	join := ""

	if len(filter.SiteUUIDs) > 0 {
		placeholders := make([]string, len(filter.SiteUUIDs))
		for i, id := range filter.SiteUUIDs {
			placeholders[i] = "?"
			args = append(args, id)
		}
		conds = append(conds, fmt.Sprintf("s.site_uuid IN (%s)", strings.Join(placeholders, ", ")))
	}
	if filter.Country != "" {
		conds = append(conds, "s.country = ?")
		args = append(args, filter.Country)
	}
	if filter.ClientName != "" {
		join = " JOIN clients c ON c.client_uuid = s.client_uuid"
		conds = append(conds, "c.client_name = ?")
		args = append(args, filter.ClientName)
	}
	if filter.ClientSiteID != nil {
		conds = append(conds, "s.client_site_id = ?")
		args = append(args, *filter.ClientSiteID)
	}
	if filter.ClientSiteName != "" {
		conds = append(conds, "s.client_site_name = ?")
		args = append(args, filter.ClientSiteName)
	}

	query := "SELECT " + siteColumns + " FROM sites s" + join
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY s.site_uuid ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sites []models.Site
	for rows.Next() {
		site, err := scanSite(rows)
		if err != nil {
			return nil, err
		}
		sites = append(sites, site)
	}
	return sites, rows.Err()
}

// FetchSitesForUser resolves a user's site group to its sites, ordered by
// site_uuid ascending.
func (s *Store) FetchSitesForUser(ctx context.Context, userUUID uuid.UUID) ([]models.Site, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+siteColumns+`
		FROM sites s
		JOIN site_group_sites sgs ON sgs.site_uuid = s.site_uuid
		JOIN users u ON u.site_group_uuid = sgs.site_group_uuid
		WHERE u.user_uuid = ?
		ORDER BY s.site_uuid ASC
	`, userUUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sites []models.Site
	for rows.Next() {
		site, err := scanSite(rows)
		if err != nil {
			return nil, err
		}
		sites = append(sites, site)
	}
	return sites, rows.Err()
}

func scanSite(rows *sql.Rows) (models.Site, error) {
	var site models.Site
	err := rows.Scan(&site.SiteUUID, &site.ClientUUID, &site.ClientSiteID, &site.ClientSiteName,
		&site.Latitude, &site.Longitude, &site.CapacityKW, &site.Country, &site.GSP, &site.DNO,
		&site.CreatedUTC, &site.UpdatedUTC)
	return site, err
}

func (s *Store) CreateClient(ctx context.Context, clientName string) (models.Client, error) {
	client := models.Client{
		ClientUUID: uuid.New(),
		ClientName: clientName,
		CreatedUTC: s.clock.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO clients (client_uuid, client_name, created_utc) VALUES (?, ?, ?)
	`, client.ClientUUID, client.ClientName, client.CreatedUTC)
	if err != nil {
		return models.Client{}, fmt.Errorf("insert client: %w", err)
	}
	return client, nil
}

func (s *Store) CreateSite(ctx context.Context, site models.Site) (models.Site, error) {
	if site.SiteUUID == uuid.Nil {
		site.SiteUUID = uuid.New()
	}
	now := s.clock.Now().UTC()
	site.CreatedUTC = now
	site.UpdatedUTC = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sites (site_uuid, client_uuid, client_site_id, client_site_name,
			latitude, longitude, capacity_kw, country, gsp, dno, created_utc, updated_utc)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, site.SiteUUID, site.ClientUUID, site.ClientSiteID, site.ClientSiteName,
		site.Latitude, site.Longitude, site.CapacityKW, site.Country, site.GSP, site.DNO,
		site.CreatedUTC, site.UpdatedUTC)
	if err != nil {
		return models.Site{}, fmt.Errorf("insert site: %w", err)
	}
	return site, nil
}
