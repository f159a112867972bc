package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"repscout/pkg/auth"
	"repscout/pkg/ui"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage search provider credentials",
	Long: `Store, list and remove credentials for search providers.

Credentials go to the system keychain when available, otherwise to an
encrypted file under the config directory. The environment variables
REPSCOUT_API_KEY and REPSCOUT_SESSION_COOKIE act as a read-only fallback.`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login <provider>",
	Short: "Store credentials for a provider",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		provider := strings.TrimSpace(args[0])

		fmt.Print("API key (leave empty to skip): ")
		keyBytes, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("failed to read api key: %w", err)
		}

		reader := bufio.NewReader(os.Stdin)
		fmt.Print("Session cookie (leave empty to skip): ")
		cookie, err := reader.ReadString('\n')
		if err != nil && cookie == "" {
			return fmt.Errorf("failed to read session cookie: %w", err)
		}

		cred := &auth.Credential{
			Provider:      provider,
			APIKey:        strings.TrimSpace(string(keyBytes)),
			SessionCookie: strings.TrimSpace(cookie),
		}

		manager, err := auth.NewManager()
		if err != nil {
			ui.PrintError("Failed to open credential store", err)
			return err
		}
		if err := manager.Save(cred); err != nil {
			ui.PrintError("Failed to store credentials", err)
			return err
		}

		ui.PrintSuccess(fmt.Sprintf("Credentials stored for %s", provider))
		return nil
	},
}

var authListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored providers",
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := auth.NewManager()
		if err != nil {
			ui.PrintError("Failed to open credential store", err)
			return err
		}

		creds, err := manager.List()
		if err != nil {
			ui.PrintError("Failed to list credentials", err)
			return err
		}
		if len(creds) == 0 {
			ui.PrintWarning("No stored credentials")
			return nil
		}

		for _, cred := range creds {
			masked := auth.Sanitize(cred)
			fmt.Printf("%s  api_key=%s  session=%s  (modified %s)\n",
				masked.Provider, masked.APIKey, masked.SessionCookie,
				masked.LastModified.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout <provider>",
	Short: "Remove stored credentials for a provider",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		provider := strings.TrimSpace(args[0])

		manager, err := auth.NewManager()
		if err != nil {
			ui.PrintError("Failed to open credential store", err)
			return err
		}
		if err := manager.Delete(provider); err != nil {
			ui.PrintError("Failed to delete credentials", err)
			return err
		}

		ui.PrintSuccess(fmt.Sprintf("Credentials removed for %s", provider))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authListCmd)
	authCmd.AddCommand(authLogoutCmd)
}
