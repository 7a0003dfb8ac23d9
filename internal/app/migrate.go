package app

import (
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/riskibarqy/sports-ticker/db"
	"github.com/riskibarqy/sports-ticker/internal/config"
)

// NewMigrator reads the embedded migrations and targets DB_URL.
func NewMigrator(cfg config.Config) (*migrate.Migrate, error) {
	if strings.TrimSpace(cfg.DBURL) == "" {
		return nil, crerr.New("DB_URL is required")
	}

	source, err := iofs.New(db.Migrations, "migrations")
	if err != nil {
		return nil, crerr.Wrap(err, "open embedded migrations")
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, parsePostgresDSN(cfg.DBURL, cfg.DBApplicationName).conn)
	if err != nil {
		return nil, crerr.Wrap(err, "create migrator")
	}
	return m, nil
}

// CloseMigrator releases both ends of m, returning the first error.
func CloseMigrator(m *migrate.Migrate) error {
	if m == nil {
		return nil
	}
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		return crerr.Wrap(srcErr, "close migration source")
	}
	if dbErr != nil {
		return crerr.Wrap(dbErr, "close migration db")
	}
	return nil
}
