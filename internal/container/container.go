package container

import (
	"context"
	"fmt"
	"log"

	"bookingsdash/adapters/coercer"
	"bookingsdash/adapters/csvstore"
	"bookingsdash/adapters/excel"
	"bookingsdash/adapters/sqlstore"
	"bookingsdash/app"
	"bookingsdash/domain/bookings"
	"bookingsdash/internal"
	"bookingsdash/internal/config"
	"bookingsdash/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure; DB is nil for the csv store
	DB *sqlx.DB

	// Adapters
	Opener ports.WorkbookOpener
	Repo   ports.SnapshotRepository

	// Services
	Pipeline *app.PipelineService
	Loader   *app.SnapshotLoader
}

// New creates a new dependency injection container
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config: cfg,
		Logger: internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel)),
		Opener: excel.NewOpener(excel.DefaultExcelConfig()),
	}

	if err := c.initRepository(ctx); err != nil {
		return nil, err
	}

	c.Pipeline = app.NewPipelineService(c.Opener, bookings.NewReshaper(coercer.ParseFigure), c.Repo, c.Logger)
	c.Loader = app.NewSnapshotLoader(c.Repo, c.Logger)

	return c, nil
}

// initRepository picks the snapshot store named by STORE
func (c *Container) initRepository(ctx context.Context) error {
	switch c.Config.Data.Store {
	case config.StorePostgres, config.StoreSQLite:
		driver := sqlstore.DriverPostgres
		if c.Config.Data.Store == config.StoreSQLite {
			driver = sqlstore.DriverSQLite
		}
		db, err := sqlstore.Open(ctx, driver, c.Config.Database.URL)
		if err != nil {
			return err
		}
		c.DB = db
		c.Repo = sqlstore.NewSnapshotRepository(db)
		log.Printf("[Container] Using %s snapshot store", c.Config.Data.Store)
	default:
		c.Repo = csvstore.NewStore(c.Config.Data.ArtifactDir)
		log.Printf("[Container] Using csv snapshot store in %s", c.Config.Data.ArtifactDir)
	}
	return nil
}

// Shutdown releases the database connection, if any
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
