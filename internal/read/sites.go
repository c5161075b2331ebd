package read

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/openpv/sitedata/internal/metrics"
	"github.com/openpv/sitedata/internal/models"
	"github.com/openpv/sitedata/internal/store"
)

// AllSites returns every site, ordered by site_uuid ascending.
func (r *Reader) AllSites(ctx context.Context) ([]models.Site, error) {
	metrics.ReadsTotal.WithLabelValues("all_sites").Inc()
	return r.store.FetchSites(ctx, store.SiteFilter{})
}

func (r *Reader) SitesByCountry(ctx context.Context, country string) ([]models.Site, error) {
	metrics.ReadsTotal.WithLabelValues("sites_by_country").Inc()
	return r.store.FetchSites(ctx, store.SiteFilter{Country: country})
}

func (r *Reader) SiteByUUID(ctx context.Context, siteUUID uuid.UUID) (models.Site, error) {
	metrics.ReadsTotal.WithLabelValues("site_by_uuid").Inc()

	sites, err := r.store.FetchSites(ctx, store.SiteFilter{SiteUUIDs: []uuid.UUID{siteUUID}})
	if err != nil {
		return models.Site{}, err
	}
	if len(sites) == 0 {
		return models.Site{}, fmt.Errorf("site %s: %w", siteUUID, ErrNotFound)
	}
	return sites[0], nil
}

func (r *Reader) SiteByClientSiteID(ctx context.Context, clientName string, clientSiteID int64) (models.Site, error) {
	metrics.ReadsTotal.WithLabelValues("site_by_client_site_id").Inc()

	sites, err := r.store.FetchSites(ctx, store.SiteFilter{ClientName: clientName, ClientSiteID: &clientSiteID})
	if err != nil {
		return models.Site{}, err
	}
	if len(sites) == 0 {
		return models.Site{}, fmt.Errorf("site %d for client %q: %w", clientSiteID, clientName, ErrNotFound)
	}
	return sites[0], nil
}

func (r *Reader) SiteByClientSiteName(ctx context.Context, clientName, clientSiteName string) (models.Site, error) {
	metrics.ReadsTotal.WithLabelValues("site_by_client_site_name").Inc()

	sites, err := r.store.FetchSites(ctx, store.SiteFilter{ClientName: clientName, ClientSiteName: clientSiteName})
	if err != nil {
		return models.Site{}, err
	}
	if len(sites) == 0 {
		return models.Site{}, fmt.Errorf("site %q for client %q: %w", clientSiteName, clientName, ErrNotFound)
	}
	return sites[0], nil
}

// SitesFromUser returns the sites the user's group grants access to,
// optionally filtered to an inclusive lat/lon bounding box. The box is
// applied client-side after the fetch.
func (r *Reader) SitesFromUser(ctx context.Context, user models.User, limits *models.LatLonLimits) ([]models.Site, error) {
	metrics.ReadsTotal.WithLabelValues("sites_from_user").Inc()

	sites, err := r.store.FetchSitesForUser(ctx, user.UserUUID)
	if err != nil {
		return nil, err
	}
	if limits == nil {
		return sites, nil
	}

	filtered := sites[:0:0]
	for _, site := range sites {
		if limits.Contains(site.Latitude, site.Longitude) {
			filtered = append(filtered, site)
		}
	}
	return filtered, nil
}

// UserByEmail looks up a user, creating one (with its own site group) when
// absent. The creation is a probe-then-insert inside the caller's session,
// so repeated calls with the same email yield one persisted user.
func (r *Reader) UserByEmail(ctx context.Context, email string) (models.User, error) {
	metrics.ReadsTotal.WithLabelValues("user_by_email").Inc()

	user, err := r.store.FetchUserByEmail(ctx, email)
	if err != nil {
		return models.User{}, err
	}
	if user != nil {
		metrics.GetOrCreateTotal.WithLabelValues("user", "found").Inc()
		return *user, nil
	}

	group, err := r.SiteGroupByName(ctx, "site_group_for_"+email)
	if err != nil {
		return models.User{}, err
	}
	created, err := r.store.CreateUser(ctx, email, group.SiteGroupUUID)
	if err != nil {
		return models.User{}, err
	}
	metrics.GetOrCreateTotal.WithLabelValues("user", "created").Inc()
	return created, nil
}

// SiteGroupByName looks up a site group, creating it when absent.
func (r *Reader) SiteGroupByName(ctx context.Context, name string) (models.SiteGroup, error) {
	metrics.ReadsTotal.WithLabelValues("site_group_by_name").Inc()

	group, err := r.store.FetchSiteGroupByName(ctx, name)
	if err != nil {
		return models.SiteGroup{}, err
	}
	if group != nil {
		metrics.GetOrCreateTotal.WithLabelValues("site_group", "found").Inc()
		return *group, nil
	}

	created, err := r.store.CreateSiteGroup(ctx, name)
	if err != nil {
		return models.SiteGroup{}, err
	}
	metrics.GetOrCreateTotal.WithLabelValues("site_group", "created").Inc()
	return created, nil
}

func (r *Reader) AllUsers(ctx context.Context) ([]models.User, error) {
	metrics.ReadsTotal.WithLabelValues("all_users").Inc()
	return r.store.FetchAllUsers(ctx)
}

func (r *Reader) AllSiteGroups(ctx context.Context) ([]models.SiteGroup, error) {
	metrics.ReadsTotal.WithLabelValues("all_site_groups").Inc()
	return r.store.FetchAllSiteGroups(ctx)
}

// LatestStatus returns the most recent status, or nil when none have been
// recorded.
func (r *Reader) LatestStatus(ctx context.Context) (*models.Status, error) {
	metrics.ReadsTotal.WithLabelValues("latest_status").Inc()
	return r.store.FetchLatestStatus(ctx)
}
