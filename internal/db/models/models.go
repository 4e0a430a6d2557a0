package models

const (
	// DefaultLimit is the max number of rows that are retrieved from the DB per listing API call
	DefaultLimit = 50

	// AdminID is the ID of the bootstrap admin user
	AdminID uint = 1
)

// ListOptions represents pagination and filtering options for list operations
type ListOptions struct {
	Limit          int           `json:"limit"`  // Number of items to return
	Offset         int           `json:"offset"` // Number of items to skip
	IncludeDeleted bool          `json:"include_deleted"`
	Status         *ReportStatus `json:"status,omitempty"`     // Filter reports by status
	CompanyID      uint          `json:"company_id,omitempty"` // Filter reports by company
}
