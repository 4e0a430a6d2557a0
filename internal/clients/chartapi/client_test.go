package chartapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewriteFiltersDropsUnitAndDateFilters(t *testing.T) {
	filters := []AdhocFilter{
		{Clause: "WHERE", Subject: UnitDimension, Operator: "IN", Comparator: []string{"Old Co"}},
		{Clause: "WHERE", Subject: DateDimension, Operator: "TEMPORAL_RANGE", Comparator: "Last month"},
		{Clause: "WHERE", Subject: "region", Operator: "IN", Comparator: []string{"south"}},
	}

	rewritten := RewriteFilters(filters, "Acme")
	require.Len(t, rewritten, 3)

	// Unrelated filters survive in order
	assert.Equal(t, "region", rewritten[0].Subject)

	// The temporal range filter is re-appended pinned to last week
	assert.Equal(t, DateDimension, rewritten[1].Subject)
	assert.Equal(t, "TEMPORAL_RANGE", rewritten[1].Operator)
	assert.Equal(t, LastWeekRange, rewritten[1].Comparator)

	// The company filter is re-appended as an IN on the unit dimension
	assert.Equal(t, UnitDimension, rewritten[2].Subject)
	assert.Equal(t, "IN", rewritten[2].Operator)
	assert.Equal(t, []string{"Acme"}, rewritten[2].Comparator)
}

func TestRewriteFiltersOnEmptyList(t *testing.T) {
	rewritten := RewriteFilters(nil, "Acme")
	require.Len(t, rewritten, 2)
	assert.Equal(t, DateDimension, rewritten[0].Subject)
	assert.Equal(t, UnitDimension, rewritten[1].Subject)
}

func TestRewriteFiltersDoesNotMutateInput(t *testing.T) {
	filters := []AdhocFilter{
		{Clause: "WHERE", Subject: "region", Operator: "IN", Comparator: []string{"south"}},
		{Clause: "WHERE", Subject: UnitDimension, Operator: "IN", Comparator: []string{"Old Co"}},
	}

	_ = RewriteFilters(filters, "Acme")

	require.Len(t, filters, 2)
	assert.Equal(t, UnitDimension, filters[1].Subject)
	assert.Equal(t, []string{"Old Co"}, filters[1].Comparator)
}
