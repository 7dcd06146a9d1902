package pipeline

import (
	"github.com/gartstein/directory/internal/directory/models"
)

// Result is the output of one pipeline run.
type Result struct {
	// Visible is the slice of companies to present. Read-only.
	Visible []models.Company
	// TotalMatches counts the companies that passed the filter.
	TotalMatches int
	// TotalPages is ceil(TotalMatches / ItemsPerPage).
	TotalPages int
}

// Derive runs filter, sort and paginate over companies.
func Derive(companies []models.Company, f models.FilterSpec, s models.SortSpec, p models.PageSpec) Result {
	matched := Sort(Filter(companies, f), s)
	return Result{
		Visible:      Paginate(matched, p),
		TotalMatches: len(matched),
		TotalPages:   TotalPages(len(matched), p.ItemsPerPage),
	}
}

type orderKey struct {
	generation uint64
	filter     models.FilterSpec
	sort       models.SortSpec
}

// Memo caches the last derivation. The generation identifies the loaded
// company set: callers bump it whenever the set is replaced. The filtered
// and sorted sequence is cached separately from the page slice, so a page
// change only re-slices. A Memo is not safe for concurrent use.
type Memo struct {
	ordered    []models.Company
	orderKey   orderKey
	hasOrdered bool

	page    models.PageSpec
	result  Result
	hasPage bool

	// orderRuns counts filter+sort computations.
	orderRuns int
}

// Derive returns the same Result as the package-level Derive, reusing the
// previous computation when the inputs are unchanged.
func (m *Memo) Derive(generation uint64, companies []models.Company, f models.FilterSpec, s models.SortSpec, p models.PageSpec) Result {
	ordered := m.order(generation, companies, f, s)
	if m.hasPage && m.page == p {
		return m.result
	}

	m.result = Result{
		Visible:      Paginate(ordered, p),
		TotalMatches: len(ordered),
		TotalPages:   TotalPages(len(ordered), p.ItemsPerPage),
	}
	m.page = p
	m.hasPage = true
	return m.result
}

// Matches returns the cached match count for the given inputs, computing
// the ordered sequence if necessary.
func (m *Memo) Matches(generation uint64, companies []models.Company, f models.FilterSpec, s models.SortSpec) int {
	return len(m.order(generation, companies, f, s))
}

func (m *Memo) order(generation uint64, companies []models.Company, f models.FilterSpec, s models.SortSpec) []models.Company {
	key := orderKey{generation: generation, filter: f, sort: s}
	if !m.hasOrdered || m.orderKey != key {
		m.ordered = Sort(Filter(companies, f), s)
		m.orderKey = key
		m.hasOrdered = true
		m.hasPage = false
		m.orderRuns++
	}
	return m.ordered
}

// Reset drops the cached results.
func (m *Memo) Reset() {
	*m = Memo{}
}
