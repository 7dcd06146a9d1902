// Package pipeline implements the in-memory query pipeline of the directory:
// filtering, sorting and pagination over the fully loaded company set.
// Every function is pure and never mutates its input.
package pipeline

import (
	"strings"

	"github.com/gartstein/directory/internal/directory/models"
)

// Filter returns the companies that satisfy every active predicate of f,
// in input order. The result is always a fresh slice.
func Filter(companies []models.Company, f models.FilterSpec) []models.Company {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	industry := strings.TrimSpace(f.Industry)
	location := strings.TrimSpace(f.Location)
	band := models.EmployeeRange(strings.TrimSpace(string(f.EmployeeRange)))

	result := make([]models.Company, 0, len(companies))
	for _, c := range companies {
		if search != "" && !strings.Contains(strings.ToLower(c.Name), search) {
			continue
		}
		if industry != "" && c.Industry != industry {
			continue
		}
		if location != "" && c.Location != location {
			continue
		}
		if !band.Contains(c.EmployeeCount) {
			continue
		}
		result = append(result, c)
	}
	return result
}
