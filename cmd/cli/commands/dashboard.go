package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the portal home aggregates",
	RunE: func(_ *cobra.Command, _ []string) error {
		overview, err := apiClient.GetDashboard(context.Background())
		if err != nil {
			return fmt.Errorf("error fetching dashboard overview: %w", err)
		}
		return printJSON(overview)
	},
}

// GetDashboardCmd returns the dashboard command
func GetDashboardCmd() *cobra.Command {
	return dashboardCmd
}
