package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fieldscope/portal/internal/types"
)

func init() {
	userCmd.AddCommand(listUsersCmd)
	userCmd.AddCommand(createUserCmd)
	userCmd.AddCommand(deleteUserCmd)

	createUserCmd.Flags().StringP("name", "n", "", "display name of the user")
	createUserCmd.Flags().StringP("email", "e", "", "email of the user")
	createUserCmd.Flags().StringP("password", "p", "", "initial password of the user")
	createUserCmd.Flags().StringP("role", "r", "user", "role of the user (admin, user, viewer)")
	_ = createUserCmd.MarkFlagRequired("name")
	_ = createUserCmd.MarkFlagRequired("email")
	_ = createUserCmd.MarkFlagRequired("password")

	deleteUserCmd.Flags().UintP("id", "i", 0, "ID of the user to be deleted")
	_ = deleteUserCmd.MarkFlagRequired("id")
}

var userCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage users",
}

// GetUsersCmd returns the users command
func GetUsersCmd() *cobra.Command {
	return userCmd
}

var listUsersCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	RunE: func(_ *cobra.Command, _ []string) error {
		users, err := apiClient.GetUsers(context.Background(), nil)
		if err != nil {
			return fmt.Errorf("error fetching users: %w", err)
		}
		return printJSON(users)
	},
}

var createUserCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user",
	RunE: func(cmd *cobra.Command, _ []string) error {
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		role, _ := cmd.Flags().GetString("role")

		req := types.CreateUserRequest{
			Name:     name,
			Email:    email,
			Password: password,
			Role:     role,
		}

		id, err := apiClient.CreateUser(context.Background(), req)
		if err != nil {
			return fmt.Errorf("error creating user: %w", err)
		}
		fmt.Printf("User created with ID %d\n", id)
		return nil
	},
}

var deleteUserCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a user",
	RunE: func(cmd *cobra.Command, _ []string) error {
		id, _ := cmd.Flags().GetUint("id")

		if err := apiClient.DeleteUser(context.Background(), id); err != nil {
			return fmt.Errorf("error deleting user: %w", err)
		}
		fmt.Println("User deleted successfully")
		return nil
	},
}

// printJSON pretty prints an API response
func printJSON(v interface{}) error {
	prettyJSON, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("error formatting response: %w", err)
	}
	fmt.Println(string(prettyJSON))
	return nil
}
