package store

import (
	"database/sql"
	"fmt"
	"log"
	"time"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "Initial schema",
		SQL: `
CREATE TABLE IF NOT EXISTS clients (
    client_uuid TEXT PRIMARY KEY,
    client_name TEXT NOT NULL UNIQUE,
    created_utc DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS sites (
    site_uuid TEXT PRIMARY KEY,
    client_uuid TEXT NOT NULL REFERENCES clients(client_uuid),
    client_site_id INTEGER NOT NULL,
    client_site_name TEXT,
    latitude REAL,
    longitude REAL,
    capacity_kw REAL,
    country TEXT,
    gsp TEXT,
    dno TEXT,
    created_utc DATETIME NOT NULL,
    updated_utc DATETIME NOT NULL,
    UNIQUE(client_uuid, client_site_id)
);

CREATE TABLE IF NOT EXISTS forecasts (
    forecast_uuid TEXT PRIMARY KEY,
    site_uuid TEXT NOT NULL REFERENCES sites(site_uuid),
    forecast_version TEXT NOT NULL,
    timestamp_utc DATETIME NOT NULL,
    created_utc DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_forecasts_site_timestamp
    ON forecasts(site_uuid, timestamp_utc DESC);

CREATE TABLE IF NOT EXISTS forecast_values (
    forecast_value_uuid TEXT PRIMARY KEY,
    forecast_uuid TEXT NOT NULL REFERENCES forecasts(forecast_uuid),
    start_utc DATETIME NOT NULL,
    end_utc DATETIME NOT NULL,
    forecast_power_kw REAL NOT NULL,
    created_utc DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_forecast_values_forecast_start
    ON forecast_values(forecast_uuid, start_utc);

CREATE TABLE IF NOT EXISTS generation_values (
    generation_uuid TEXT PRIMARY KEY,
    site_uuid TEXT NOT NULL REFERENCES sites(site_uuid),
    start_utc DATETIME NOT NULL,
    end_utc DATETIME NOT NULL,
    power_kw REAL NOT NULL,
    created_utc DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_generation_values_site_start
    ON generation_values(site_uuid, start_utc);

CREATE TABLE IF NOT EXISTS statuses (
    status_uuid TEXT PRIMARY KEY,
    status TEXT NOT NULL,
    message TEXT,
    created_utc DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS site_groups (
    site_group_uuid TEXT PRIMARY KEY,
    site_group_name TEXT NOT NULL UNIQUE,
    created_utc DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
    user_uuid TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    site_group_uuid TEXT NOT NULL REFERENCES site_groups(site_group_uuid),
    created_utc DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS site_group_sites (
    site_group_uuid TEXT NOT NULL REFERENCES site_groups(site_group_uuid),
    site_uuid TEXT NOT NULL REFERENCES sites(site_uuid),
    PRIMARY KEY (site_group_uuid, site_uuid)
);
`,
	},
}

// Migrate applies any pending migrations. It needs a *sql.DB rather than a
// session handle because each migration runs in its own transaction.
func Migrate(db *sql.DB) error {
	if err := ensureMigrationsTable(db); err != nil {
		return fmt.Errorf("ensure migrations table: %w", err)
	}

	applied, err := appliedMigrations(db)
	if err != nil {
		return fmt.Errorf("get applied migrations: %w", err)
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}

		log.Printf("migrations: applying %d - %s", m.Version, m.Description)

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin tx for migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("execute migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, ?, ?)",
			m.Version, m.Description, time.Now().UTC(),
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

func ensureMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			description TEXT,
			applied_at DATETIME
		)
	`)
	return err
}

func appliedMigrations(db *sql.DB) (map[int]bool, error) {
	rows, err := db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}
