package pipeline

import (
	"github.com/gartstein/directory/internal/directory/models"
)

// ItemsPerPage is the fixed page size of the directory.
const ItemsPerPage = 9

// TotalPages returns ceil(total/perPage), or 0 when there is nothing to show.
func TotalPages(total, perPage int) int {
	if total <= 0 {
		return 0
	}
	perPage = pageSize(perPage)
	return (total + perPage - 1) / perPage
}

// Paginate returns the visible slice of companies for p.
//
// Paged mode yields the single window for CurrentPage. Infinite mode
// yields the prefix of the first CurrentPage pages. A page outside the
// available range yields an empty slice in paged mode and the whole set in
// infinite mode; a page below 1 is empty in either mode. The returned slice
// shares memory with companies and must be treated as read-only.
func Paginate(companies []models.Company, p models.PageSpec) []models.Company {
	perPage := pageSize(p.ItemsPerPage)
	if p.CurrentPage < 1 {
		return []models.Company{}
	}

	// compare page numbers before multiplying so huge pages cannot overflow
	pages := TotalPages(len(companies), perPage)
	if p.Mode == models.Infinite {
		if p.CurrentPage >= pages {
			return companies[:len(companies):len(companies)]
		}
		end := p.CurrentPage * perPage
		return companies[:end:end]
	}

	if p.CurrentPage > pages {
		return []models.Company{}
	}
	start := (p.CurrentPage - 1) * perPage
	end := min(start+perPage, len(companies))
	return companies[start:end:end]
}

func pageSize(n int) int {
	if n <= 0 {
		return ItemsPerPage
	}
	return n
}
