package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fieldscope/portal/internal/types"
)

func init() {
	companyCmd.AddCommand(listCompaniesCmd)
	companyCmd.AddCommand(createCompanyCmd)
	companyCmd.AddCommand(deleteCompanyCmd)

	createCompanyCmd.Flags().StringP("name", "n", "", "name of the company")
	createCompanyCmd.Flags().String("address", "", "address of the company")
	_ = createCompanyCmd.MarkFlagRequired("name")

	deleteCompanyCmd.Flags().UintP("id", "i", 0, "ID of the company to be deleted")
	_ = deleteCompanyCmd.MarkFlagRequired("id")
}

var companyCmd = &cobra.Command{
	Use:   "companies",
	Short: "Manage companies",
}

// GetCompaniesCmd returns the companies command
func GetCompaniesCmd() *cobra.Command {
	return companyCmd
}

var listCompaniesCmd = &cobra.Command{
	Use:   "list",
	Short: "List companies",
	RunE: func(_ *cobra.Command, _ []string) error {
		companies, err := apiClient.GetCompanies(context.Background(), nil)
		if err != nil {
			return fmt.Errorf("error fetching companies: %w", err)
		}
		return printJSON(companies)
	},
}

var createCompanyCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a company",
	RunE: func(cmd *cobra.Command, _ []string) error {
		name, _ := cmd.Flags().GetString("name")
		address, _ := cmd.Flags().GetString("address")

		id, err := apiClient.CreateCompany(context.Background(), types.CreateCompanyRequest{
			Name:    name,
			Address: address,
		})
		if err != nil {
			return fmt.Errorf("error creating company: %w", err)
		}
		fmt.Printf("Company created with ID %d\n", id)
		return nil
	},
}

var deleteCompanyCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a company",
	RunE: func(cmd *cobra.Command, _ []string) error {
		id, _ := cmd.Flags().GetUint("id")

		if err := apiClient.DeleteCompany(context.Background(), id); err != nil {
			return fmt.Errorf("error deleting company: %w", err)
		}
		fmt.Println("Company deleted successfully")
		return nil
	},
}
