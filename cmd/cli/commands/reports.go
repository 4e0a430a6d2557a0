package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fieldscope/portal/internal/db/models"
	"github.com/fieldscope/portal/internal/types"
)

func init() {
	reportCmd.AddCommand(listReportsCmd)
	reportCmd.AddCommand(getReportCmd)
	reportCmd.AddCommand(createReportCmd)
	reportCmd.AddCommand(checkReportCmd)
	reportCmd.AddCommand(cancelReportCmd)
	reportCmd.AddCommand(deleteReportCmd)

	listReportsCmd.Flags().String("status", "", "filter by lifecycle status")
	listReportsCmd.Flags().Uint("company-id", 0, "filter by company")

	getReportCmd.Flags().UintP("id", "i", 0, "ID of the report")
	_ = getReportCmd.MarkFlagRequired("id")

	createReportCmd.Flags().UintP("company-id", "c", 0, "company the report covers")
	createReportCmd.Flags().String("start", "", "window start date (YYYY-MM-DD)")
	createReportCmd.Flags().String("end", "", "window end date (YYYY-MM-DD)")
	_ = createReportCmd.MarkFlagRequired("company-id")
	_ = createReportCmd.MarkFlagRequired("start")
	_ = createReportCmd.MarkFlagRequired("end")

	checkReportCmd.Flags().UintP("id", "i", 0, "ID of the report")
	_ = checkReportCmd.MarkFlagRequired("id")

	cancelReportCmd.Flags().UintP("id", "i", 0, "ID of the report")
	_ = cancelReportCmd.MarkFlagRequired("id")

	deleteReportCmd.Flags().UintP("id", "i", 0, "ID of the report to be deleted")
	_ = deleteReportCmd.MarkFlagRequired("id")
}

var reportCmd = &cobra.Command{
	Use:   "reports",
	Short: "Manage reports",
}

// GetReportsCmd returns the reports command
func GetReportsCmd() *cobra.Command {
	return reportCmd
}

var listReportsCmd = &cobra.Command{
	Use:   "list",
	Short: "List reports",
	Long:  `List reports with optional filtering by status and company.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		statusStr, _ := cmd.Flags().GetString("status")
		companyID, _ := cmd.Flags().GetUint("company-id")

		opts := &models.ListOptions{CompanyID: companyID}
		if statusStr != "" {
			status, err := models.ParseReportStatus(statusStr)
			if err != nil {
				return err
			}
			opts.Status = &status
		}

		reports, err := apiClient.GetReports(context.Background(), opts)
		if err != nil {
			return fmt.Errorf("error fetching reports: %w", err)
		}
		return printJSON(reports)
	},
}

var getReportCmd = &cobra.Command{
	Use:   "get",
	Short: "Get a report",
	RunE: func(cmd *cobra.Command, _ []string) error {
		id, _ := cmd.Flags().GetUint("id")

		report, err := apiClient.GetReport(context.Background(), id)
		if err != nil {
			return fmt.Errorf("error fetching report: %w", err)
		}
		return printJSON(report)
	},
}

var createReportCmd = &cobra.Command{
	Use:   "create",
	Short: "Request a report",
	Long:  `Request a new report for a company over a date window; the flow run is triggered immediately.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		companyID, _ := cmd.Flags().GetUint("company-id")
		start, _ := cmd.Flags().GetString("start")
		end, _ := cmd.Flags().GetString("end")

		report, err := apiClient.CreateReport(context.Background(), types.CreateReportRequest{
			CompanyID: companyID,
			StartDate: start,
			EndDate:   end,
		})
		if err != nil {
			return fmt.Errorf("error creating report: %w", err)
		}
		return printJSON(report)
	},
}

var checkReportCmd = &cobra.Command{
	Use:   "check",
	Short: "Refresh a report's status from the orchestrator",
	RunE: func(cmd *cobra.Command, _ []string) error {
		id, _ := cmd.Flags().GetUint("id")

		report, err := apiClient.CheckReportStatus(context.Background(), id)
		if err != nil {
			return fmt.Errorf("error checking report status: %w", err)
		}
		return printJSON(report)
	},
}

var cancelReportCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Cancel a running report",
	RunE: func(cmd *cobra.Command, _ []string) error {
		id, _ := cmd.Flags().GetUint("id")

		report, err := apiClient.CancelReport(context.Background(), id)
		if err != nil {
			return fmt.Errorf("error cancelling report: %w", err)
		}
		return printJSON(report)
	},
}

var deleteReportCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a report",
	RunE: func(cmd *cobra.Command, _ []string) error {
		id, _ := cmd.Flags().GetUint("id")

		if err := apiClient.DeleteReport(context.Background(), id); err != nil {
			return fmt.Errorf("error deleting report: %w", err)
		}
		fmt.Println("Report deleted successfully")
		return nil
	},
}
