package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	iot "github.com/tj-smith47/iot-go"
	"github.com/tj-smith47/iot-go/internal/config"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Obtain a bearer token with OAuth client credentials",
	Long: `Exchange client credentials for a bearer token and save it for later commands.

The client ID and secret are taken from --client-id/--client-secret, the
IOT_CLIENT_ID/IOT_CLIENT_SECRET environment variables or the config file.
Missing values are prompted for when stdin is a terminal.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.log.Sync() //nolint:errcheck

		creds := iot.ClientCredentials{ID: a.cfg.ClientID, Secret: a.cfg.ClientSecret, Scope: a.cfg.Scope}
		if v, _ := cmd.Flags().GetString("client-id"); v != "" {
			creds.ID = v
		}
		if v, _ := cmd.Flags().GetString("client-secret"); v != "" {
			creds.Secret = v
		}
		if v, _ := cmd.Flags().GetString("scope"); v != "" {
			creds.Scope = v
		}
		if err := promptCredentials(&creds); err != nil {
			return err
		}

		var token *iot.TokenResponse
		res := a.client.Authenticate(cmd.Context(), creds.ID, creds.Secret, creds.Scope, func(t *iot.TokenResponse) {
			token = t
		}, nil).Wait()
		if res.Failure != nil {
			return fmt.Errorf("login failed: %s", res.Failure.Envelope().TextCode)
		}

		store := iot.NewFileTokenStore(a.cfg.TokenFile)
		if err := store.SaveToken(cmd.Context(), token); err != nil {
			return err
		}
		a.log.Info("token saved", zap.String("path", store.Path()), zap.Time("expires_at", token.ExpiresAt))

		if save, _ := cmd.Flags().GetBool("save"); save {
			err := config.Update(a.configPath, func(c *config.Config) {
				c.ClientID = creds.ID
				c.Scope = creds.Scope
			})
			if err != nil {
				return err
			}
		}

		fmt.Fprintf(a.out, "Logged in as %s\n", creds.ID)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the saved bearer token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := iot.NewFileTokenStore(a.cfg.TokenFile).Delete(); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Logged out")
		return nil
	},
}

// promptCredentials asks for whatever is missing when stdin is a terminal.
func promptCredentials(creds *iot.ClientCredentials) error {
	interactive := term.IsTerminal(int(os.Stdin.Fd()))

	if creds.ID == "" {
		if !interactive {
			return fmt.Errorf("client ID required: use --client-id or %s", "IOT_CLIENT_ID")
		}
		if err := survey.AskOne(&survey.Input{Message: "Client ID:"}, &creds.ID, survey.WithValidator(survey.Required)); err != nil {
			return err
		}
	}
	if creds.Secret == "" {
		if !interactive {
			return fmt.Errorf("client secret required: use --client-secret or %s", "IOT_CLIENT_SECRET")
		}
		if err := survey.AskOne(&survey.Password{Message: "Client secret:"}, &creds.Secret); err != nil {
			return err
		}
	}
	creds.ID = strings.TrimSpace(creds.ID)
	return nil
}

func init() {
	loginCmd.Flags().String("client-id", "", "OAuth client ID")
	loginCmd.Flags().String("client-secret", "", "OAuth client secret (prompted when omitted)")
	loginCmd.Flags().String("scope", "", "requested scope")
	loginCmd.Flags().Bool("save", false, "remember client ID and scope in the config file")

	rootCmd.AddCommand(loginCmd, logoutCmd)
}
