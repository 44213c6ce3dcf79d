package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jrsteele09/procure-client/session"
)

var (
	accessToken  string
	refreshToken string
	userType     string
	linkedInCode string
	oauthState   string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store a session from tokens or a LinkedIn authorization code",
	Long: `Without flags, prints the LinkedIn sign in URL. Pass --code and --state from
the redirect to complete the sign in, or --access-token to store a session
issued elsewhere.`,
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVar(&accessToken, "access-token", "", "access token to store")
	loginCmd.Flags().StringVar(&refreshToken, "refresh-token", "", "refresh token to store")
	loginCmd.Flags().StringVar(&userType, "user-type", "", "buyer or supplier (default: read from the token)")
	loginCmd.Flags().StringVar(&linkedInCode, "code", "", "LinkedIn authorization code")
	loginCmd.Flags().StringVar(&oauthState, "state", "", "state returned with the LinkedIn code")
}

func runLogin(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	ut, err := session.ParseUserType(userType)
	if err != nil {
		return err
	}

	var route string
	switch {
	case accessToken != "":
		route, err = app.Manager.Login(ctx, session.Session{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			UserType:     ut,
		})
	case linkedInCode != "":
		route, err = app.Client.LinkedInCallback(ctx, linkedInCode, oauthState, ut)
	default:
		auth, err := app.Client.LinkedInAuthURL(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Open %s\nthen run: procurectl login --code <code> --state %s\n", auth.AuthorizationURL, auth.State)
		return nil
	}
	if err != nil {
		return err
	}
	if route == "" {
		return errors.New("login did not produce a session")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Signed in. Dashboard: %s\n", route)
	return nil
}
