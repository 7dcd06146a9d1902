// Package controller implements the view state controller of the
// directory: it owns the loaded company set and the browsing state of the
// view, applies user intents as state transitions, and derives the visible
// page through the query pipeline.
package controller

import (
	"context"
	"errors"
	"sync"
	"time"

	e "github.com/gartstein/directory/internal/directory/errors"
	"github.com/gartstein/directory/internal/directory/events"
	"github.com/gartstein/directory/internal/directory/models"
	"github.com/gartstein/directory/internal/directory/pipeline"
	"go.uber.org/zap"
)

type EventProducer interface {
	Produce(event events.Event)
}

// StatusReporter is told whether the directory can serve companies.
type StatusReporter interface {
	SetServing(serving bool)
}

// SnapshotLoader defines the bulk load of the company set.
type SnapshotLoader interface {
	Load(ctx context.Context) (*Snapshot, error)
}

// LoadState is the phase of the most recent load attempt.
type LoadState string

const (
	Loading LoadState = "loading"
	Ready   LoadState = "ready"
	Failed  LoadState = "failed"
)

// LoadStatus describes the most recent load attempt.
type LoadStatus struct {
	State     LoadState `json:"state"`
	Message   string    `json:"message,omitempty"`
	Companies int       `json:"companies"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PageView is everything the presentation needs to render the view.
type PageView struct {
	Companies        []models.Company    `json:"companies"`
	TotalMatches     int                 `json:"total_matches"`
	TotalPages       int                 `json:"total_pages"`
	Noun             string              `json:"noun"`
	HasActiveFilters bool                `json:"has_active_filters"`
	ShowPageNumbers  bool                `json:"show_page_numbers"`
	PageNumbers      []pipeline.PageItem `json:"page_numbers"`
	Range            pipeline.Range      `json:"range"`
	State            ViewState           `json:"state"`
	Status           LoadStatus          `json:"status"`
}

// DirectoryService holds the loaded companies and the view state of one
// browsing session. Intents are applied one at a time.
type DirectoryService struct {
	loader   SnapshotLoader
	producer EventProducer
	reporter StatusReporter
	logger   *zap.Logger

	mu         sync.Mutex
	snapshot   *Snapshot
	failure    *e.LoadFailure
	status     LoadStatus
	state      ViewState
	memo       pipeline.Memo
	generation uint64
}

// NewDirectoryService constructs a DirectoryService. The view starts in
// the loading state until the first Reload completes.
func NewDirectoryService(loader SnapshotLoader, producer EventProducer, reporter StatusReporter, logger *zap.Logger) *DirectoryService {
	return &DirectoryService{
		loader:   loader,
		producer: producer,
		reporter: reporter,
		logger:   logger.Named("directory_service"),
		status:   LoadStatus{State: Loading, UpdatedAt: time.Now()},
		state:    NewViewState(),
	}
}

// Reload fetches the company set from scratch. On success the new set
// replaces the old one wholesale; on failure the previous set is kept and
// the returned *errors.LoadFailure is also recorded as the load status.
func (s *DirectoryService) Reload(ctx context.Context) error {
	s.mu.Lock()
	s.status = LoadStatus{State: Loading, UpdatedAt: time.Now()}
	s.failure = nil
	s.mu.Unlock()

	snapshot, err := s.loader.Load(ctx)
	if err != nil {
		var failure *e.LoadFailure
		if !errors.As(err, &failure) {
			failure = e.NewLoadFailure(err)
		}
		s.applyFailure(failure)
		return failure
	}

	s.applySnapshot(snapshot)
	return nil
}

func (s *DirectoryService) applyFailure(failure *e.LoadFailure) {
	s.mu.Lock()
	s.failure = failure
	s.status = LoadStatus{State: Failed, Message: failure.Message, UpdatedAt: time.Now()}
	generation := s.generation
	s.mu.Unlock()

	s.logger.Error("Load failed", zap.Error(failure))
	s.reporter.SetServing(false)
	go func() {
		s.producer.Produce(events.Event{
			Type:       events.DirectoryLoadFailed,
			Generation: generation,
			Message:    failure.Message,
			OccurredAt: time.Now(),
		})
	}()
}

func (s *DirectoryService) applySnapshot(snapshot *Snapshot) {
	s.mu.Lock()
	s.generation++
	snapshot.Generation = s.generation
	s.snapshot = snapshot
	s.failure = nil
	s.status = LoadStatus{State: Ready, Companies: len(snapshot.Companies), UpdatedAt: time.Now()}
	s.state.ClampPage(s.totalPagesLocked())
	s.mu.Unlock()

	s.logger.Info("Directory ready",
		zap.Uint64("generation", snapshot.Generation),
		zap.Int("companies", len(snapshot.Companies)),
	)
	s.reporter.SetServing(true)
	go func() {
		s.producer.Produce(events.Event{
			Type:       events.DirectoryLoaded,
			Generation: snapshot.Generation,
			Companies:  len(snapshot.Companies),
			Industries: len(snapshot.Industries),
			Locations:  len(snapshot.Locations),
			OccurredAt: snapshot.LoadedAt,
		})
	}()
}

// Status returns the outcome of the most recent load attempt.
func (s *DirectoryService) Status() LoadStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// State returns a copy of the view state.
func (s *DirectoryService) State() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Page derives the visible page for the current state.
func (s *DirectoryService) Page() (*PageView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.readyLocked(); err != nil {
		return nil, err
	}

	page := s.state.PageSpec()
	result := s.memo.Derive(s.generation, s.snapshot.Companies, s.state.Filter, s.state.Sort, page)
	return &PageView{
		Companies:        result.Visible,
		TotalMatches:     result.TotalMatches,
		TotalPages:       result.TotalPages,
		Noun:             pipeline.Noun(result.TotalMatches),
		HasActiveFilters: s.state.Filter.IsActive(),
		ShowPageNumbers:  page.Mode == models.Paged && s.state.View == models.Grid && result.TotalPages > 1,
		PageNumbers:      pipeline.PageNumbers(page.CurrentPage, result.TotalPages),
		Range:            pipeline.Summarize(page.CurrentPage, result.TotalMatches, page.ItemsPerPage),
		State:            s.state,
		Status:           s.status,
	}, nil
}

// Industries returns the distinct industry labels for the filter options.
func (s *DirectoryService) Industries() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.readyLocked(); err != nil {
		return nil, err
	}
	return s.snapshot.Industries, nil
}

// Locations returns the distinct location labels for the filter options.
func (s *DirectoryService) Locations() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.readyLocked(); err != nil {
		return nil, err
	}
	return s.snapshot.Locations, nil
}

// SetFilter replaces the filter and returns to the first page.
func (s *DirectoryService) SetFilter(f models.FilterSpec) ViewState {
	return s.apply(func(st *ViewState) { st.SetFilter(f) })
}

// ClearFilters removes every filter and returns to the first page.
func (s *DirectoryService) ClearFilters() ViewState {
	return s.apply(func(st *ViewState) { st.ClearFilters() })
}

// SetSort sorts by field, flipping the direction if it is already the key.
func (s *DirectoryService) SetSort(field models.SortField) ViewState {
	return s.apply(func(st *ViewState) { st.SetSort(field) })
}

// SetViewMode switches between grid and table.
func (s *DirectoryService) SetViewMode(mode models.ViewMode) ViewState {
	return s.apply(func(st *ViewState) { st.SetViewMode(mode) })
}

// SetPaginationMode switches between paged and infinite presentation.
func (s *DirectoryService) SetPaginationMode(mode models.PaginationMode) ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SetPaginationMode(mode, s.totalPagesLocked())
	return s.state
}

// SetPage moves to page n; see ViewState.SetPage.
func (s *DirectoryService) SetPage(n int) (ViewState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.state.SetPage(n, s.totalPagesLocked()); err != nil {
		return s.state, err
	}
	return s.state, nil
}

// NotifyScroll handles a scroll report and reports whether another page
// was revealed.
func (s *DirectoryService) NotifyScroll(pos ScrollPosition) (ViewState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	advanced := s.state.NotifyScroll(pos, s.totalPagesLocked())
	if advanced {
		s.logger.Debug("Revealed next page", zap.Int("page", s.state.Page.CurrentPage))
	}
	return s.state, advanced
}

func (s *DirectoryService) apply(fn func(*ViewState)) ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
	return s.state
}

func (s *DirectoryService) readyLocked() error {
	switch {
	case s.failure != nil:
		return s.failure
	case s.status.State == Loading || s.snapshot == nil:
		return e.ErrNotLoaded
	}
	return nil
}

func (s *DirectoryService) totalPagesLocked() int {
	if s.snapshot == nil {
		return 0
	}
	matches := s.memo.Matches(s.generation, s.snapshot.Companies, s.state.Filter, s.state.Sort)
	return pipeline.TotalPages(matches, s.state.Page.ItemsPerPage)
}
