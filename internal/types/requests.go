package types

import (
	"fmt"
	"time"

	"github.com/fieldscope/portal/internal/db/models"
)

// LoginRequest carries a credential pair
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate ensures the login request is well formed
func (r *LoginRequest) Validate() error {
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// LoginResponse carries the authenticated user
type LoginResponse struct {
	User models.User `json:"user"`
}

// CreateUserRequest carries the fields for registering a user
type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Validate ensures the create user request is well formed
func (r *CreateUserRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	if r.Role != "" {
		if _, err := models.ParseUserRole(r.Role); err != nil {
			return err
		}
	}
	return nil
}

// CreateCompanyRequest carries the fields for registering a company
type CreateCompanyRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Validate ensures the create company request is well formed
func (r *CreateCompanyRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("company name is required")
	}
	return nil
}

// CreateReportRequest carries the fields for requesting a report
type CreateReportRequest struct {
	CompanyID uint   `json:"company_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// ReportDateLayout is the wire format of report date fields
const ReportDateLayout = "2006-01-02"

// Validate ensures the create report request is well formed
func (r *CreateReportRequest) Validate() error {
	if r.CompanyID == 0 {
		return fmt.Errorf("company_id is required")
	}
	start, err := time.Parse(ReportDateLayout, r.StartDate)
	if err != nil {
		return fmt.Errorf("invalid start_date: %w", err)
	}
	end, err := time.Parse(ReportDateLayout, r.EndDate)
	if err != nil {
		return fmt.Errorf("invalid end_date: %w", err)
	}
	if end.Before(start) {
		return fmt.Errorf("end_date cannot precede start_date")
	}
	return nil
}

// Dates returns the parsed report window. Validate must have passed.
func (r *CreateReportRequest) Dates() (time.Time, time.Time) {
	start, _ := time.Parse(ReportDateLayout, r.StartDate)
	end, _ := time.Parse(ReportDateLayout, r.EndDate)
	return start, end
}

// CreateResponse carries the identifier of a created record
type CreateResponse struct {
	ID uint `json:"id"`
}
