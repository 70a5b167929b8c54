package commands

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/satishbabariya/sqlorm/cli/internal/config"
	"github.com/satishbabariya/sqlorm/migrate/executor"
	"github.com/satishbabariya/sqlorm/migrate/history"
	"github.com/satishbabariya/sqlorm/migrate/introspect"
	qexec "github.com/satishbabariya/sqlorm/query/executor"
	"github.com/satishbabariya/sqlorm/schema"
	"github.com/satishbabariya/sqlorm/schema/dsl"
)

var errNoDatabaseURL = errors.New("no database URL: set database_url in .sqlorm.yaml, DATABASE_URL or --database-url")

func isSQLite(provider string) bool {
	return provider == "sqlite" || provider == "sqlite3"
}

// driverName maps the configured provider to a registered database/sql
// driver.
func driverName(c *config.Config) (string, error) {
	switch c.Provider {
	case "sqlite", "sqlite3":
		switch c.Driver {
		case "", "sqlite3":
			return "sqlite3", nil
		case "sqlite":
			return "sqlite", nil
		}
		return "", fmt.Errorf("unknown sqlite driver %q (want sqlite3 or sqlite)", c.Driver)
	case "postgres", "postgresql":
		return "postgres", nil
	case "mysql":
		return "mysql", nil
	}
	return "", fmt.Errorf("provider %q: %w", c.Provider, introspect.ErrUnsupportedProvider)
}

// dataSource strips URL schemes the drivers do not accept.
func dataSource(c *config.Config) string {
	url := c.DatabaseURL
	switch {
	case isSQLite(c.Provider):
		for _, prefix := range []string{"sqlite3://", "sqlite://"} {
			url = strings.TrimPrefix(url, prefix)
		}
	case c.Provider == "mysql":
		url = strings.TrimPrefix(url, "mysql://")
	}
	return url
}

func openDatabase(ctx context.Context, c *config.Config) (*sql.DB, error) {
	if c.DatabaseURL == "" {
		return nil, errNoDatabaseURL
	}
	driver, err := driverName(c)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, dataSource(c))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if isSQLite(c.Provider) {
		// Connection-scoped pragmas must see every statement.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func loadRegistry(c *config.Config) (*schema.Registry, error) {
	s, err := dsl.Load(config.AppFs, c.SchemaPath)
	if err != nil {
		return nil, err
	}
	return s.Registry()
}

func requireSQLite(c *config.Config, command string) error {
	if !isSQLite(c.Provider) {
		return fmt.Errorf("%s supports sqlite only, config has provider %q", command, c.Provider)
	}
	return nil
}

// session is an open database with a synchronizer over it.
type session struct {
	db      *sql.DB
	backend *qexec.SQLBackend
	sync    *executor.Synchronizer
}

func (s *session) Close() error {
	s.backend.Close()
	return s.db.Close()
}

func openSession(ctx context.Context, c *config.Config, reg *schema.Registry) (*session, error) {
	if err := requireSQLite(c, "synchronization"); err != nil {
		return nil, err
	}
	db, err := openDatabase(ctx, c)
	if err != nil {
		return nil, err
	}
	backend := qexec.NewSQLBackend(db)
	opts := []executor.Option{executor.WithVersionCheck()}
	if c.History {
		ledger := history.NewManager(backend)
		if err := ledger.InitTable(ctx); err != nil {
			backend.Close()
			db.Close()
			return nil, err
		}
		opts = append(opts, executor.WithHistory(ledger))
	}
	return &session{
		db:      db,
		backend: backend,
		sync:    executor.New(backend, introspect.NewSQLite(db), reg, opts...),
	}, nil
}
