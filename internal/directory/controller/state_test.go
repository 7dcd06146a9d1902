package controller

import (
	"testing"

	e "github.com/gartstein/directory/internal/directory/errors"
	"github.com/gartstein/directory/internal/directory/models"
	"github.com/gartstein/directory/internal/directory/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewViewState(t *testing.T) {
	st := NewViewState()

	assert.Equal(t, models.FilterSpec{}, st.Filter)
	assert.Equal(t, models.SortSpec{Field: models.SortByName, Direction: models.Ascending}, st.Sort)
	assert.Equal(t, 1, st.Page.CurrentPage)
	assert.Equal(t, pipeline.ItemsPerPage, st.Page.ItemsPerPage)
	assert.Equal(t, models.Paged, st.Page.Mode)
	assert.Equal(t, models.Grid, st.View)
}

func TestViewState_FilterResetsPage(t *testing.T) {
	tests := []struct {
		name   string
		filter models.FilterSpec
	}{
		{"search", models.FilterSpec{Search: "acme"}},
		{"industry", models.FilterSpec{Industry: "Software"}},
		{"location", models.FilterSpec{Location: "Oslo"}},
		{"employee range", models.FilterSpec{EmployeeRange: models.Employees101To500}},
		{"unchanged empty filter", models.FilterSpec{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := NewViewState()
			require.NoError(t, st.SetPage(3, 5))

			st.SetFilter(tt.filter)

			assert.Equal(t, tt.filter, st.Filter)
			assert.Equal(t, 1, st.Page.CurrentPage)
		})
	}
}

func TestViewState_ClearFilters(t *testing.T) {
	st := NewViewState()
	st.SetFilter(models.FilterSpec{Search: "x", Industry: "y", Location: "z", EmployeeRange: models.Employees1001Plus})
	require.NoError(t, st.SetPage(2, 4))

	st.ClearFilters()

	assert.Equal(t, models.FilterSpec{}, st.Filter)
	assert.False(t, st.Filter.IsActive())
	assert.Equal(t, 1, st.Page.CurrentPage)
}

func TestViewState_SetSort(t *testing.T) {
	st := NewViewState()
	require.NoError(t, st.SetPage(2, 3))

	st.SetSort(models.SortByName)
	assert.Equal(t, models.SortSpec{Field: models.SortByName, Direction: models.Descending}, st.Sort)

	st.SetSort(models.SortByName)
	assert.Equal(t, models.SortSpec{Field: models.SortByName, Direction: models.Ascending}, st.Sort)

	st.SetSort(models.SortByName)
	st.SetSort(models.SortByEmployeeCount)
	assert.Equal(t, models.SortSpec{Field: models.SortByEmployeeCount, Direction: models.Ascending}, st.Sort,
		"a new field always starts ascending")

	assert.Equal(t, 2, st.Page.CurrentPage, "sorting must keep the page")
}

func TestViewState_ViewModeKeepsPaginationMode(t *testing.T) {
	st := NewViewState()
	st.SetPaginationMode(models.Infinite, 4)
	require.Equal(t, models.Infinite, st.EffectiveMode())

	st.SetViewMode(models.Table)
	assert.Equal(t, models.Infinite, st.Page.Mode, "mode is retained")
	assert.Equal(t, models.Paged, st.EffectiveMode(), "table ignores infinite scroll")
	assert.Equal(t, models.Paged, st.PageSpec().Mode)

	st.SetViewMode(models.Grid)
	assert.Equal(t, models.Infinite, st.EffectiveMode())
}

func TestViewState_SetPaginationMode(t *testing.T) {
	t.Run("switching keeps the page", func(t *testing.T) {
		st := NewViewState()
		require.NoError(t, st.SetPage(2, 4))

		st.SetPaginationMode(models.Infinite, 4)
		assert.Equal(t, 2, st.Page.CurrentPage)

		st.SetPaginationMode(models.Paged, 4)
		assert.Equal(t, 2, st.Page.CurrentPage)
	})

	t.Run("entering paged clamps", func(t *testing.T) {
		st := NewViewState()
		st.SetPaginationMode(models.Infinite, 4)
		st.Page.CurrentPage = 7

		st.SetPaginationMode(models.Paged, 4)
		assert.Equal(t, 4, st.Page.CurrentPage)

		st.Page.CurrentPage = 3
		st.SetPaginationMode(models.Paged, 0)
		assert.Equal(t, 1, st.Page.CurrentPage)
	})
}

func TestViewState_SetPagePaged(t *testing.T) {
	st := NewViewState()

	require.NoError(t, st.SetPage(3, 3))
	assert.Equal(t, 3, st.Page.CurrentPage)

	require.NoError(t, st.SetPage(1, 3))
	assert.Equal(t, 1, st.Page.CurrentPage)

	err := st.SetPage(4, 3)
	assert.ErrorIs(t, err, e.ErrInvalidInput)
	assert.Equal(t, 1, st.Page.CurrentPage)

	err = st.SetPage(0, 3)
	assert.ErrorIs(t, err, e.ErrInvalidInput)

	require.NoError(t, st.SetPage(1, 0), "page 1 is always valid")
}

func TestViewState_SetPageInfiniteOnlyGrows(t *testing.T) {
	st := NewViewState()
	st.SetPaginationMode(models.Infinite, 5)

	require.NoError(t, st.SetPage(3, 5))
	assert.Equal(t, 3, st.Page.CurrentPage)

	require.NoError(t, st.SetPage(2, 5))
	assert.Equal(t, 3, st.Page.CurrentPage, "infinite mode never shrinks")

	require.NoError(t, st.SetPage(9, 5))
	assert.Equal(t, 5, st.Page.CurrentPage, "bounded by the page count")
}

func TestViewState_AdvanceIsIdempotentAtLastPage(t *testing.T) {
	st := NewViewState()
	st.SetPaginationMode(models.Infinite, 3)

	assert.True(t, st.Advance(3))
	assert.True(t, st.Advance(3))
	assert.Equal(t, 3, st.Page.CurrentPage)

	for i := 0; i < 100; i++ {
		assert.False(t, st.Advance(3))
	}
	assert.Equal(t, 3, st.Page.CurrentPage)
}

func TestViewState_AdvanceRequiresInfiniteGrid(t *testing.T) {
	st := NewViewState()
	assert.False(t, st.Advance(3), "paged mode does not advance")

	st.SetPaginationMode(models.Infinite, 3)
	st.SetViewMode(models.Table)
	assert.False(t, st.Advance(3), "table view does not advance")
	assert.Equal(t, 1, st.Page.CurrentPage)
}

func TestViewState_NotifyScroll(t *testing.T) {
	st := NewViewState()
	st.SetPaginationMode(models.Infinite, 2)

	far := ScrollPosition{ViewportHeight: 800, ScrollTop: 100, ScrollHeight: 2000}
	assert.False(t, st.NotifyScroll(far, 2))
	assert.Equal(t, 1, st.Page.CurrentPage)

	near := ScrollPosition{ViewportHeight: 800, ScrollTop: 1160, ScrollHeight: 2000}
	assert.True(t, near.NearBottom())
	assert.True(t, st.NotifyScroll(near, 2))
	assert.Equal(t, 2, st.Page.CurrentPage)

	// level-triggered reports keep arriving at the bottom
	for i := 0; i < 20; i++ {
		assert.False(t, st.NotifyScroll(near, 2))
	}
	assert.Equal(t, 2, st.Page.CurrentPage)
}

func TestScrollPosition_NearBottomThreshold(t *testing.T) {
	assert.True(t, ScrollPosition{ViewportHeight: 500, ScrollTop: 450, ScrollHeight: 1000}.NearBottom())
	assert.True(t, ScrollPosition{ViewportHeight: 500, ScrollTop: 500, ScrollHeight: 1000}.NearBottom())
	assert.False(t, ScrollPosition{ViewportHeight: 500, ScrollTop: 449, ScrollHeight: 1000}.NearBottom())
}

func TestViewState_ClampPage(t *testing.T) {
	st := NewViewState()
	st.Page.CurrentPage = 9
	st.ClampPage(4)
	assert.Equal(t, 4, st.Page.CurrentPage)

	st.Page.CurrentPage = -2
	st.ClampPage(4)
	assert.Equal(t, 1, st.Page.CurrentPage)
}
