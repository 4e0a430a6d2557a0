// Package commands implements the portal CLI commands
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fieldscope/portal/internal/constants"
	"github.com/fieldscope/portal/pkg/api/v1/client"
	"github.com/fieldscope/portal/pkg/api/v1/routes"
)

// flag names
const (
	flagServerAddress = "server-address"
	flagActorID       = "actor-id"
)

var (
	// apiClient is the shared API client instance
	apiClient client.Client
	// serverAddress holds the target API server address. Flag parsing sets this.
	serverAddress string
	// actorID identifies the acting user on state-changing commands
	actorID uint
)

// initClient initializes the API client
func initClient() error {
	var err error
	opts := client.DefaultOptions()
	opts.BaseURL = serverAddress
	opts.ActorID = actorID

	apiClient, err = client.NewClient(opts)
	return err
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&serverAddress, flagServerAddress, "s", routes.DefaultBaseURL,
		"Address of the portal API server (env: PORTAL_SERVER_ADDRESS)")
	RootCmd.PersistentFlags().UintVarP(&actorID, flagActorID, "a", 0,
		"ID of the acting user recorded in the audit trail")

	RootCmd.AddCommand(GetUsersCmd())
	RootCmd.AddCommand(GetCompaniesCmd())
	RootCmd.AddCommand(GetReportsCmd())
	RootCmd.AddCommand(GetAuditCmd())
	RootCmd.AddCommand(GetDashboardCmd())
}

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "portal",
	Short: "Portal CLI - A command line interface for the report portal API",
	Long:  `Portal CLI manages users, companies, reports and the audit trail through the portal API.`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		// Flag > env var > default
		if !cmd.Flags().Changed(flagServerAddress) {
			if envAddr := os.Getenv(constants.EnvServerAddress); envAddr != "" {
				serverAddress = envAddr
			}
		}

		if serverAddress == "" {
			return fmt.Errorf("server address cannot be empty")
		}
		return initClient()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return RootCmd.Execute()
}
