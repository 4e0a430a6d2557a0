package models

import (
	"fmt"

	"gorm.io/gorm"
)

// Company represents an audited customer entity reports are generated for
type Company struct {
	gorm.Model
	Name    string `json:"name" gorm:"not null;index"`
	Address string `json:"address,omitempty" gorm:"type:text"`
}

// Validate ensures that the company data is valid
func (c *Company) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("company name cannot be empty")
	}
	return nil
}

// BeforeCreate is a GORM hook that runs before creating a new company
func (c *Company) BeforeCreate(_ *gorm.DB) error {
	return c.Validate()
}
