package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/alecthomas/kong"
	"github.com/cenkalti/backoff/v4"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"
	_ "modernc.org/sqlite"

	"github.com/openpv/sitedata/internal/api"
	"github.com/openpv/sitedata/internal/models"
	"github.com/openpv/sitedata/internal/read"
	"github.com/openpv/sitedata/internal/store"
)

type cli struct {
	DB string `help:"Path to the SQLite database." default:"data/sitedata.db" env:"SITEDATA_DB"`

	Serve   serveCmd   `cmd:"" help:"Run the JSON read API."`
	Migrate migrateCmd `cmd:"" help:"Apply pending schema migrations and exit."`
	Seed    seedCmd    `cmd:"" help:"Seed a demo client with a few sites."`
}

type serveCmd struct {
	Port string `help:"HTTP port." default:"8080" env:"SITEDATA_PORT"`
}

type migrateCmd struct{}

type seedCmd struct{}

func main() {
	var flags cli
	ctx := kong.Parse(&flags,
		kong.Name("sitedata"),
		kong.Description("Solar-site telemetry and forecast data access."),
		kong.Configuration(kongdotenv.ENVFileReader, ".env"),
	)
	ctx.FatalIfErrorf(ctx.Run(&flags))
}

func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")
	db.Exec("PRAGMA foreign_keys=ON")

	// The database file may sit on slow or still-mounting storage; retry the
	// first ping briefly before giving up.
	ping := func() error { return db.Ping() }
	if err := backoff.Retry(ping, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5)); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := store.Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func (c *serveCmd) Run(flags *cli) error {
	db, err := openDB(flags.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	reader := read.New(store.New(db))
	server := api.NewServer(reader, c.Port)

	log.Printf("listening on :%s", c.Port)
	return server.ListenAndServe()
}

func (c *migrateCmd) Run(flags *cli) error {
	db, err := openDB(flags.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	log.Println("database migrated")
	return nil
}

func (c *seedCmd) Run(flags *cli) error {
	db, err := openDB(flags.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	st := store.New(db)

	client, err := st.CreateClient(ctx, fmt.Sprintf("demo_client_%d", time.Now().Unix()))
	if err != nil {
		return err
	}

	seeds := []models.Site{
		{ClientUUID: client.ClientUUID, ClientSiteID: 1, ClientSiteName: "demo_site_1",
			Latitude: 51.5, Longitude: -0.12, CapacityKW: 4, Country: "uk", GSP: "gsp_1", DNO: "dno_1"},
		{ClientUUID: client.ClientUUID, ClientSiteID: 2, ClientSiteName: "demo_site_2",
			Latitude: 53.4, Longitude: -2.25, CapacityKW: 6, Country: "uk", GSP: "gsp_1", DNO: "dno_2"},
	}
	for _, seed := range seeds {
		site, err := st.CreateSite(ctx, seed)
		if err != nil {
			return err
		}
		log.Printf("seeded site %s (%s)", site.SiteUUID, site.ClientSiteName)
	}
	return nil
}
