package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"matchharvest/pkg/auth"
	"matchharvest/pkg/ui"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Steam Web API keys",
	Long: `Manage stored Steam Web API keys.

Keys are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - MATCHHARVEST_STEAM_API_KEY (read only)

fetch and heroes use a stored key when none is configured.`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [name]",
	Short: "Store a Steam Web API key",
	Long: `Store a Steam Web API key under a name ("default" when omitted). The key is
read without echo.`,
	Example: `  # Store the default key
  matchharvest auth login

  # Store a second key
  matchharvest auth login backup`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout [name]",
	Short: "Remove a stored key",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLogout,
}

// listCmd represents the auth list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored keys",
	Long:  `List stored Steam Web API keys with the keys masked.`,
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(listCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager("")
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	name := auth.DefaultName
	if len(args) > 0 {
		name = args[0]
	}

	auth.ShowAPIKeyGuide(os.Stdout)
	key, err := promptSecret("Steam Web API key: ")
	if err != nil {
		return err
	}
	if key == "" {
		return errors.New("no key entered")
	}

	if err := manager.Store(&auth.Credential{Name: name, APIKey: key}); err != nil {
		return err
	}
	ui.PrintSuccess(fmt.Sprintf("Stored key %q (%s)", name, auth.MaskKey(key)))
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager("")
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	name := auth.DefaultName
	if len(args) > 0 {
		name = args[0]
	}
	if err := manager.Delete(name); err != nil {
		return err
	}
	ui.PrintSuccess(fmt.Sprintf("Removed key %q", name))
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager("")
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	creds, err := manager.List()
	if err != nil {
		return err
	}
	if len(creds) == 0 {
		ui.PrintWarning("No keys stored. Run 'matchharvest auth login' to add one.")
		return nil
	}
	ui.Print(credentialTable(creds))
	return nil
}

func credentialTable(creds []*auth.Credential) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Name", "Key", "Last modified"})
	for _, cred := range creds {
		c := auth.Sanitize(cred)
		modified := "-"
		if !c.LastModified.IsZero() {
			modified = c.LastModified.Format(time.RFC3339)
		}
		t.AppendRow(table.Row{c.Name, c.APIKey, modified})
	}
	t.SetStyle(table.StyleRounded)
	return t.Render()
}

// promptSecret reads a line without echo when stdin is a terminal
func promptSecret(prompt string) (string, error) {
	fmt.Print(prompt)
	fd := int(syscall.Stdin)
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read key: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read key: %w", err)
	}
	return strings.TrimSpace(line), nil
}
