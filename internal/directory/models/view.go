package models

import (
	"fmt"
	"strings"

	e "github.com/gartstein/directory/internal/directory/errors"
)

// EmployeeRange is one of the fixed employee-count bands.
type EmployeeRange string

const (
	// AnySize places no constraint on the employee count.
	AnySize            EmployeeRange = ""
	Employees0To100    EmployeeRange = "0-100"
	Employees101To500  EmployeeRange = "101-500"
	Employees501To1000 EmployeeRange = "501-1000"
	Employees1001Plus  EmployeeRange = "1001+"
)

// EmployeeRanges lists the selectable bands in display order.
var EmployeeRanges = []EmployeeRange{
	Employees0To100,
	Employees101To500,
	Employees501To1000,
	Employees1001Plus,
}

// ParseEmployeeRange validates a band key. Blank input yields AnySize.
func ParseEmployeeRange(s string) (EmployeeRange, error) {
	r := EmployeeRange(strings.TrimSpace(s))
	if r == AnySize {
		return AnySize, nil
	}
	for _, known := range EmployeeRanges {
		if r == known {
			return r, nil
		}
	}
	return AnySize, fmt.Errorf("%w: unknown employee range %q", e.ErrInvalidInput, s)
}

// Contains reports whether count falls inside the band. Unknown keys and
// AnySize accept every count.
func (r EmployeeRange) Contains(count int) bool {
	switch r {
	case Employees0To100:
		return count >= 0 && count <= 100
	case Employees101To500:
		return count >= 101 && count <= 500
	case Employees501To1000:
		return count >= 501 && count <= 1000
	case Employees1001Plus:
		return count >= 1001
	default:
		return true
	}
}

// FilterSpec is the complete set of user filters. A blank field places no
// constraint on the result.
type FilterSpec struct {
	Search        string        `json:"search"`
	Industry      string        `json:"industry"`
	Location      string        `json:"location"`
	EmployeeRange EmployeeRange `json:"employee_range"`
}

// IsActive reports whether any field constrains the result.
func (f FilterSpec) IsActive() bool {
	return strings.TrimSpace(f.Search) != "" ||
		strings.TrimSpace(f.Industry) != "" ||
		strings.TrimSpace(f.Location) != "" ||
		strings.TrimSpace(string(f.EmployeeRange)) != ""
}

// SortField names a sortable company attribute.
type SortField string

const (
	SortByName          SortField = "name"
	SortByIndustry      SortField = "industry"
	SortByLocation      SortField = "location"
	SortByEmployeeCount SortField = "employee_count"
	SortByFoundedYear   SortField = "founded_year"
)

// ParseSortField validates a sort field name.
func ParseSortField(s string) (SortField, error) {
	switch f := SortField(strings.TrimSpace(s)); f {
	case SortByName, SortByIndustry, SortByLocation, SortByEmployeeCount, SortByFoundedYear:
		return f, nil
	}
	return "", fmt.Errorf("%w: unknown sort field %q", e.ErrInvalidInput, s)
}

// SortDirection is the order applied to the sort key.
type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// Flip returns the opposite direction.
func (d SortDirection) Flip() SortDirection {
	if d == Ascending {
		return Descending
	}
	return Ascending
}

// SortSpec is a single-key sort.
type SortSpec struct {
	Field     SortField     `json:"field"`
	Direction SortDirection `json:"direction"`
}

// DefaultSort orders companies by name, ascending.
var DefaultSort = SortSpec{Field: SortByName, Direction: Ascending}

// PaginationMode selects between a fixed window and a growing prefix.
type PaginationMode string

const (
	Paged    PaginationMode = "paged"
	Infinite PaginationMode = "infinite"
)

// ParsePaginationMode validates a pagination mode.
func ParsePaginationMode(s string) (PaginationMode, error) {
	switch m := PaginationMode(strings.TrimSpace(s)); m {
	case Paged, Infinite:
		return m, nil
	}
	return "", fmt.Errorf("%w: unknown pagination mode %q", e.ErrInvalidInput, s)
}

// PageSpec locates the visible slice. In Infinite mode CurrentPage counts
// the pages revealed so far.
type PageSpec struct {
	CurrentPage  int            `json:"current_page"`
	ItemsPerPage int            `json:"items_per_page"`
	Mode         PaginationMode `json:"mode"`
}

// ViewMode selects the presentation of the visible slice.
type ViewMode string

const (
	Grid  ViewMode = "grid"
	Table ViewMode = "table"
)

// ParseViewMode validates a view mode.
func ParseViewMode(s string) (ViewMode, error) {
	switch m := ViewMode(strings.TrimSpace(s)); m {
	case Grid, Table:
		return m, nil
	}
	return "", fmt.Errorf("%w: unknown view mode %q", e.ErrInvalidInput, s)
}
