package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	auditCmd.AddCommand(listAuditCmd)
	auditCmd.AddCommand(getAuditCmd)

	listAuditCmd.Flags().Uint("user-id", 0, "filter by acting user")
	listAuditCmd.Flags().String("action", "", "filter by action name")

	getAuditCmd.Flags().UintP("id", "i", 0, "ID of the audit entry")
	_ = getAuditCmd.MarkFlagRequired("id")
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the audit trail",
}

// GetAuditCmd returns the audit command
func GetAuditCmd() *cobra.Command {
	return auditCmd
}

var listAuditCmd = &cobra.Command{
	Use:   "list",
	Short: "List audit entries",
	RunE: func(cmd *cobra.Command, _ []string) error {
		userID, _ := cmd.Flags().GetUint("user-id")
		action, _ := cmd.Flags().GetString("action")

		entries, err := apiClient.GetAuditLogs(context.Background(), userID, action, nil)
		if err != nil {
			return fmt.Errorf("error fetching audit entries: %w", err)
		}
		return printJSON(entries)
	},
}

var getAuditCmd = &cobra.Command{
	Use:   "get",
	Short: "Get an audit entry",
	RunE: func(cmd *cobra.Command, _ []string) error {
		id, _ := cmd.Flags().GetUint("id")

		entry, err := apiClient.GetAuditLog(context.Background(), id)
		if err != nil {
			return fmt.Errorf("error fetching audit entry: %w", err)
		}
		return printJSON(entry)
	},
}
