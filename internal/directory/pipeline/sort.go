package pipeline

import (
	"cmp"
	"sort"

	"github.com/gartstein/directory/internal/directory/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// collationTag is the locale used for string sort keys.
var collationTag = language.English

// Sort returns a stably sorted copy of companies ordered by s.
//
// String fields are compared with a locale-aware collator, numeric fields
// numerically. Descending order negates the comparator, so companies with
// equal keys keep their input order in both directions. An unknown field
// compares every pair as equal and leaves the order untouched.
func Sort(companies []models.Company, s models.SortSpec) []models.Company {
	sorted := make([]models.Company, len(companies))
	copy(sorted, companies)

	compare := comparator(s.Field)
	if compare == nil {
		return sorted
	}
	sign := 1
	if s.Direction == models.Descending {
		sign = -1
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return sign*compare(&sorted[i], &sorted[j]) < 0
	})
	return sorted
}

// comparator returns a three-way comparison for field, or nil if the
// field is not sortable. A collator is not safe for concurrent use, so a
// fresh one backs every comparator.
func comparator(field models.SortField) func(a, b *models.Company) int {
	switch field {
	case models.SortByName:
		col := collate.New(collationTag)
		return func(a, b *models.Company) int { return col.CompareString(a.Name, b.Name) }
	case models.SortByIndustry:
		col := collate.New(collationTag)
		return func(a, b *models.Company) int { return col.CompareString(a.Industry, b.Industry) }
	case models.SortByLocation:
		col := collate.New(collationTag)
		return func(a, b *models.Company) int { return col.CompareString(a.Location, b.Location) }
	case models.SortByEmployeeCount:
		return func(a, b *models.Company) int { return cmp.Compare(a.EmployeeCount, b.EmployeeCount) }
	case models.SortByFoundedYear:
		return func(a, b *models.Company) int { return cmp.Compare(a.FoundedYear, b.FoundedYear) }
	default:
		return nil
	}
}
