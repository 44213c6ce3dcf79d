package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var meCmd = &cobra.Command{
	Use:   "me",
	Short: "Show the signed in user",
	RunE: func(cmd *cobra.Command, _ []string) error {
		user, err := app.Client.Me(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> verified=%t\n", user.Name, user.Email, user.IsVerified)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the current session",
	Run: func(cmd *cobra.Command, _ []string) {
		if !app.Manager.Logout(cmd.Context()) {
			fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
		}
	},
}

var verifyEmailCmd = &cobra.Command{
	Use:   "verify-email <address>",
	Short: "Send an email verification link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.Client.SendVerificationEmail(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Verification email sent.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(meCmd)
	rootCmd.AddCommand(verifyEmailCmd)
	rootCmd.AddCommand(logoutCmd)
}
