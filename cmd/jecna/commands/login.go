package commands

import (
	"fmt"
	"log/slog"

	"jecna-client/pkg/serviceutil"

	"github.com/spf13/cobra"
)

var (
	loginUsername string
	loginPassword string
	loginSave     bool
)

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username of the portal account.")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password of the portal account.")
	loginCmd.Flags().BoolVar(&loginSave, "save", false, "Save the credentials for later commands.")
	rootCmd.AddCommand(loginCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login [--username <user> --password <pass>] [--save]",
	Short: "Verifies that the credentials can log in to the portal.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		auth, err := credentials(cfg, loginUsername, loginPassword)
		if err != nil {
			serviceutil.Fatal("failed to get credentials", err)
		}

		client := newClient(cfg, newClock(), false)
		err = client.LoginAuth(cmd.Context(), auth)
		if err != nil {
			serviceutil.Fatal("failed to login", err)
		}
		fmt.Printf("Přihlášen jako %s\n", auth.Username)

		if loginSave {
			err = saveAuth(cfg.AuthFile, auth)
			if err != nil {
				serviceutil.Fatal("failed to save credentials", err)
			}
			slog.Info("saved credentials", "path", cfg.AuthFile)
		}
	},
}
