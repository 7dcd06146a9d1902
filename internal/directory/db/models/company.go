// Package models contains the storage models of the record store,
// configured to work using GORM as the ORM.
package models

import (
	"strings"
	"time"

	domain "github.com/gartstein/directory/internal/directory/models"
	"github.com/gartstein/directory/internal/pkg/utils"
	"github.com/google/uuid"
)

// Company is a row of the companies table.
type Company struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name          string    `gorm:"size:255;not null;index"`
	Industry      string    `gorm:"size:255;index"`
	Location      string    `gorm:"size:255;index"`
	EmployeeCount int       `gorm:"not null;default:0;check:employee_count >= 0"`
	FoundedYear   int
	Description   string  `gorm:"type:text"`
	Website       *string `gorm:"size:2048"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ToDomain converts the row into the domain record. The website is copied
// and trimmed; a blank one is treated as absent.
func (c *Company) ToDomain() domain.Company {
	company := domain.Company{
		ID:            c.ID,
		Name:          c.Name,
		Industry:      c.Industry,
		Location:      c.Location,
		EmployeeCount: c.EmployeeCount,
		FoundedYear:   c.FoundedYear,
		Description:   c.Description,
	}
	if c.Website != nil {
		company.Website = utils.Ptr(strings.TrimSpace(*c.Website))
	}
	if !company.HasWebsite() {
		company.Website = nil
	}
	return company
}
