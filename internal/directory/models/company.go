// Package models defines the core domain models of the company directory:
// the Company record and the filter, sort and page settings applied to it.
package models

import (
	"github.com/google/uuid"
)

// Company defines the domain model for a company record.
type Company struct {
	// ID is the unique identifier for the company.
	ID uuid.UUID `json:"id"`
	// Name is the company’s name. It is the search target and the default sort key.
	Name string `json:"name"`
	// Industry is the category label of the company.
	Industry string `json:"industry"`
	// Location is a free-form place label.
	Location string `json:"location"`
	// EmployeeCount is the number of employees in the company.
	EmployeeCount int `json:"employee_count"`
	// FoundedYear is the calendar year the company was founded.
	FoundedYear int `json:"founded_year"`
	// Description provides details about the company.
	Description string `json:"description"`
	// Website is the company homepage; nil means it is not displayed.
	Website *string `json:"website,omitempty"`
}

// HasWebsite reports whether the company has a website to display.
func (c Company) HasWebsite() bool {
	return c.Website != nil && *c.Website != ""
}
