package handlers

import "github.com/fieldscope/portal/internal/db/models"

const (
	// DefaultPageSize is the default number of items per page
	DefaultPageSize = models.DefaultLimit
	// MaxPageSize is the maximum allowed page size
	MaxPageSize = 500
)

// listOptions builds validated pagination options from query values
func listOptions(limit, offset int) *models.ListOptions {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return &models.ListOptions{
		Limit:  limit,
		Offset: offset,
	}
}

// pageOf derives the 1-based page number for a pagination response
func pageOf(opts *models.ListOptions) int {
	if opts.Limit <= 0 {
		return 1
	}
	return opts.Offset/opts.Limit + 1
}
