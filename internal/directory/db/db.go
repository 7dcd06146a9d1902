// Package db implements the read-only record store over the companies
// table using GORM.
package db

import (
	"context"
	"fmt"
	"sort"

	dbmodels "github.com/gartstein/directory/internal/directory/db/models"
	e "github.com/gartstein/directory/internal/directory/errors"
	"github.com/gartstein/directory/internal/directory/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Repository struct {
	db *gorm.DB
}

type Config struct {
	Driver     string
	Host       string
	Port       int
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
}

// Dialector returns the GORM dialector for the configured driver.
func (cfg *Config) Dialector() (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", DriverPostgres:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
		return postgres.Open(dsn), nil
	case DriverSQLite:
		return sqlite.Open(cfg.SQLitePath), nil
	default:
		return nil, fmt.Errorf("%w: unsupported database driver %q", e.ErrInvalidInput, cfg.Driver)
	}
}

func NewRepository(cfg *Config) (*Repository, error) {
	dialector, err := cfg.Dialector()
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&dbmodels.Company{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Repository{db: db}, nil
}

// FetchAllCompanies returns every company ordered by name.
func (r *Repository) FetchAllCompanies(ctx context.Context) ([]models.Company, error) {
	var rows []dbmodels.Company
	result := r.db.WithContext(ctx).Order("name asc").Find(&rows)
	if result.Error != nil {
		return nil, &e.StoreError{Op: "companies", Err: result.Error}
	}

	companies := make([]models.Company, 0, len(rows))
	for i := range rows {
		companies = append(companies, rows[i].ToDomain())
	}
	return companies, nil
}

// FetchDistinctIndustries returns the sorted set of industry labels.
func (r *Repository) FetchDistinctIndustries(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "industry", "industries")
}

// FetchDistinctLocations returns the sorted set of location labels.
func (r *Repository) FetchDistinctLocations(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "location", "locations")
}

func (r *Repository) distinct(ctx context.Context, column, op string) ([]string, error) {
	var values []string
	result := r.db.WithContext(ctx).Model(&dbmodels.Company{}).
		Distinct().
		Pluck(column, &values)
	if result.Error != nil {
		return nil, &e.StoreError{Op: op, Err: result.Error}
	}
	// Collations differ between drivers; order in Go for a stable result.
	sort.Strings(values)
	if values == nil {
		values = []string{}
	}
	return values, nil
}

// Exec runs a raw statement. The directory never writes through it; it is
// the seeding and cleanup hook for tests and operational scripts.
func (r *Repository) Exec(ctx context.Context, query string, params ...interface{}) error {
	result := r.db.WithContext(ctx).Exec(query, params...)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

func (r *Repository) Close() error {
	db, err := r.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
