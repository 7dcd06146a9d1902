package controller

import (
	"fmt"

	e "github.com/gartstein/directory/internal/directory/errors"
	"github.com/gartstein/directory/internal/directory/models"
	"github.com/gartstein/directory/internal/directory/pipeline"
)

// ScrollThreshold is the distance in pixels from the bottom of the content
// at which infinite scroll reveals the next page.
const ScrollThreshold = 50

// ScrollPosition is a viewport report from the presentation layer.
type ScrollPosition struct {
	ViewportHeight float64 `json:"viewport_height"`
	ScrollTop      float64 `json:"scroll_top"`
	ScrollHeight   float64 `json:"scroll_height"`
}

// NearBottom reports whether the viewport is within ScrollThreshold of the
// end of the content.
func (p ScrollPosition) NearBottom() bool {
	return p.ViewportHeight+p.ScrollTop+ScrollThreshold >= p.ScrollHeight
}

// ViewState is the complete browsing state of one view. It is mutated only
// through its transition methods.
type ViewState struct {
	Filter models.FilterSpec `json:"filter"`
	Sort   models.SortSpec   `json:"sort"`
	Page   models.PageSpec   `json:"page"`
	View   models.ViewMode   `json:"view"`
}

// NewViewState returns the initial state: no filters, sorted by name,
// first page of the paged grid.
func NewViewState() ViewState {
	return ViewState{
		Sort: models.DefaultSort,
		Page: models.PageSpec{
			CurrentPage:  1,
			ItemsPerPage: pipeline.ItemsPerPage,
			Mode:         models.Paged,
		},
		View: models.Grid,
	}
}

// EffectiveMode is the pagination mode in force. Infinite scroll only
// applies to the grid; the table always pages.
func (s *ViewState) EffectiveMode() models.PaginationMode {
	if s.View != models.Grid {
		return models.Paged
	}
	return s.Page.Mode
}

// PageSpec returns the page specification to hand to the pipeline.
func (s *ViewState) PageSpec() models.PageSpec {
	p := s.Page
	p.Mode = s.EffectiveMode()
	return p
}

// SetFilter replaces the filter and returns to the first page.
func (s *ViewState) SetFilter(f models.FilterSpec) {
	s.Filter = f
	s.Page.CurrentPage = 1
}

// ClearFilters removes every filter.
func (s *ViewState) ClearFilters() {
	s.SetFilter(models.FilterSpec{})
}

// SetSort sorts by field. Selecting the current field flips the direction;
// a new field starts ascending. The page is kept.
func (s *ViewState) SetSort(field models.SortField) {
	if s.Sort.Field == field {
		s.Sort.Direction = s.Sort.Direction.Flip()
		return
	}
	s.Sort = models.SortSpec{Field: field, Direction: models.Ascending}
}

// SetViewMode switches between grid and table. The pagination mode is
// retained even while the table ignores it.
func (s *ViewState) SetViewMode(mode models.ViewMode) {
	s.View = mode
}

// SetPaginationMode switches between paged and infinite presentation.
// Entering paged mode clamps the current page into [1, max(totalPages, 1)].
func (s *ViewState) SetPaginationMode(mode models.PaginationMode, totalPages int) {
	s.Page.Mode = mode
	if mode == models.Paged {
		s.ClampPage(totalPages)
	}
}

// SetPage moves to page n. In paged mode n must lie in
// [1, max(totalPages, 1)]. In infinite mode the revealed page count only
// grows and never passes totalPages; smaller requests are ignored.
func (s *ViewState) SetPage(n, totalPages int) error {
	if n < 1 {
		return fmt.Errorf("%w: page %d must be positive", e.ErrInvalidInput, n)
	}

	if s.EffectiveMode() == models.Infinite {
		if n > s.Page.CurrentPage {
			s.Page.CurrentPage = min(n, max(totalPages, 1))
		}
		return nil
	}

	if n > max(totalPages, 1) {
		return fmt.Errorf("%w: page %d out of range [1, %d]", e.ErrInvalidInput, n, max(totalPages, 1))
	}
	s.Page.CurrentPage = n
	return nil
}

// Advance reveals one more page in infinite mode. It is a no-op, returning
// false, once every page is visible or when not scrolling infinitely.
func (s *ViewState) Advance(totalPages int) bool {
	if s.EffectiveMode() != models.Infinite || s.Page.CurrentPage >= totalPages {
		return false
	}
	s.Page.CurrentPage++
	return true
}

// NotifyScroll handles one scroll report. Reports may arrive at any rate;
// each one near the bottom advances at most one page.
func (s *ViewState) NotifyScroll(pos ScrollPosition, totalPages int) bool {
	if !pos.NearBottom() {
		return false
	}
	return s.Advance(totalPages)
}

// ClampPage bounds the current page to [1, max(totalPages, 1)].
func (s *ViewState) ClampPage(totalPages int) {
	s.Page.CurrentPage = max(1, min(s.Page.CurrentPage, max(totalPages, 1)))
}
