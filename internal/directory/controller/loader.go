package controller

import (
	"context"
	"time"

	e "github.com/gartstein/directory/internal/directory/errors"
	"github.com/gartstein/directory/internal/directory/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Store defines the read operations of the record store.
type Store interface {
	FetchAllCompanies(ctx context.Context) ([]models.Company, error)
	FetchDistinctIndustries(ctx context.Context) ([]string, error)
	FetchDistinctLocations(ctx context.Context) ([]string, error)
}

// Snapshot is one fully loaded company set. It is never mutated; a reload
// replaces it.
type Snapshot struct {
	Companies  []models.Company
	Industries []string
	Locations  []string
	Generation uint64
	LoadedAt   time.Time
}

// Loader performs bulk loads from the store.
type Loader struct {
	store   Store
	timeout time.Duration
	logger  *zap.Logger
}

// NewLoader constructs a Loader. A zero timeout leaves the load bounded
// only by the caller's context.
func NewLoader(store Store, timeout time.Duration, logger *zap.Logger) *Loader {
	return &Loader{
		store:   store,
		timeout: timeout,
		logger:  logger.Named("loader"),
	}
}

// Load issues the three store reads concurrently and joins them. The first
// failure cancels the remaining reads and fails the whole attempt with a
// *errors.LoadFailure; no partial snapshot is ever returned.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	var (
		companies  []models.Company
		industries []string
		locations  []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		companies, err = l.store.FetchAllCompanies(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		industries, err = l.store.FetchDistinctIndustries(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		locations, err = l.store.FetchDistinctLocations(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		l.logger.Error("Load companies failed", zap.Error(err))
		return nil, e.NewLoadFailure(err)
	}

	l.logger.Info("Loaded companies",
		zap.Int("companies", len(companies)),
		zap.Int("industries", len(industries)),
		zap.Int("locations", len(locations)),
	)
	return &Snapshot{
		Companies:  companies,
		Industries: industries,
		Locations:  locations,
		LoadedAt:   time.Now(),
	}, nil
}
