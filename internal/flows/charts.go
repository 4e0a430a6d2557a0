package flows

// ChartSet maps the dashboard chart titles to their IDs in the BI tool.
// The order of Titles is the order the charts appear in the rendered report.
type ChartSet struct {
	Titles []string
	IDs    map[string]int
}

// DefaultChartSet lists the charts included in the weekly report
func DefaultChartSet() ChartSet {
	return ChartSet{
		Titles: []string{
			"Inspections per unit",
			"Compliance by region",
			"Top recurring findings",
			"Inspection duration",
		},
		IDs: map[string]int{
			"Inspections per unit":   98,
			"Compliance by region":   99,
			"Top recurring findings": 101,
			"Inspection duration":    104,
		},
	}
}
