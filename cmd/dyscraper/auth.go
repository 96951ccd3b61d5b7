package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"dyscraper/pkg/auth"
	"dyscraper/pkg/ui"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Douyin sessions",
	Long: `Manage stored Douyin browser sessions securely.

Sessions are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (DYSCRAPER_COOKIE, read only)

Never share your cookie or config files!`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [name]",
	Short: "Store a Douyin session cookie",
	Long: `Store a Douyin session cookie securely in the system keychain or an
encrypted file.

You will be prompted for:
  - A name for the account (if not provided)
  - The Cookie header of a logged-in browser request (hidden)
  - User Agent (optional, press Enter to keep the default)`,
	Example: `  # Interactive login
  dyscraper auth login

  # Login with a name
  dyscraper auth login work`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout [name]",
	Short: "Remove stored sessions",
	Long: `Remove a stored Douyin session. Use --all to remove every stored session.`,
	Example: `  # Remove one account
  dyscraper auth logout work

  # Remove everything
  dyscraper auth logout --all`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogout,
}

// listCmd represents the auth list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored accounts",
	Long:  `List all stored accounts with the cookie masked.`,
	RunE:  runList,
}

var logoutAll bool

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(listCmd)

	logoutCmd.Flags().BoolVar(&logoutAll, "all", false, "remove every stored account")
}

// readSecret reads a line without echo when stdin is a terminal
func readSecret(reader *bufio.Reader) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func runLogin(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	reader := bufio.NewReader(os.Stdin)
	auth.ShowCookieExtractionGuide(os.Stdout)

	var name string
	if len(args) > 0 {
		name = strings.TrimSpace(args[0])
	}
	if name == "" {
		name = prompt(reader, "Account name: ")
	}
	if name == "" {
		return fmt.Errorf("account name is required")
	}

	if existing, _ := manager.Retrieve(name); existing != nil {
		answer := prompt(reader, fmt.Sprintf("\nAccount '%s' already exists. Update it? (y/N): ", name))
		if !strings.HasPrefix(strings.ToLower(answer), "y") {
			return nil
		}
	}

	fmt.Print("Cookie (hidden): ")
	cookieValue, err := readSecret(reader)
	if err != nil {
		return fmt.Errorf("failed to read cookie: %w", err)
	}
	if err := checkCookie(cookieValue); err != nil {
		return err
	}

	ua := prompt(reader, "User Agent (press Enter for default): ")

	account := &auth.Account{
		Name:      name,
		Cookie:    cookieValue,
		UserAgent: ua,
	}
	if err := manager.Store(account); err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}

	sanitized := auth.SanitizeAccount(account)
	ui.PrintSuccess(fmt.Sprintf("Account saved: %s", name))
	fmt.Printf("   Cookie: %s\n", sanitized.Cookie)
	fmt.Println("\nUse it with:")
	fmt.Printf("   $ dyscraper harvest <profile-url> --account %s\n", name)
	return nil
}

// checkCookie rejects values that cannot be a Cookie header
func checkCookie(value string) error {
	if value == "" {
		return fmt.Errorf("cookie is required")
	}
	if !strings.Contains(value, "=") {
		return fmt.Errorf("cookie should be a list of name=value pairs, copy the whole Cookie header")
	}
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	if logoutAll {
		if err := manager.DeleteAll(); err != nil {
			return fmt.Errorf("failed to remove all accounts: %w", err)
		}
		ui.PrintSuccess("All accounts removed")
		return nil
	}

	name := ""
	if len(args) > 0 {
		name = args[0]
	} else {
		accounts, err := manager.List()
		if err != nil || len(accounts) == 0 {
			ui.PrintInfo("No stored accounts", "Nothing to remove")
			return nil
		}
		fmt.Println("Stored accounts:")
		for _, account := range accounts {
			fmt.Printf("  - %s\n", account.Name)
		}
		name = prompt(bufio.NewReader(os.Stdin), "Account to remove: ")
		if name == "" {
			return nil
		}
	}

	if err := manager.Delete(name); err != nil {
		return fmt.Errorf("failed to remove account %s: %w", name, err)
	}
	ui.PrintSuccess("Account removed: " + name)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	accounts, err := manager.List()
	if err != nil {
		return fmt.Errorf("failed to list accounts: %w", err)
	}

	if len(accounts) == 0 {
		ui.PrintInfo("No stored accounts", "Use 'dyscraper auth login' to add an account")
		return nil
	}

	ui.PrintHighlight("Stored Accounts")
	fmt.Println()
	printAccounts(ui.Out, accounts)
	return nil
}

func printAccounts(w io.Writer, accounts []*auth.Account) {
	for i, account := range accounts {
		sanitized := auth.SanitizeAccount(account)
		fmt.Fprintf(w, "%d. Name: %s\n", i+1, sanitized.Name)
		fmt.Fprintf(w, "   Cookie: %s\n", sanitized.Cookie)
		if sanitized.UserAgent != "" {
			fmt.Fprintf(w, "   User Agent: %s\n", sanitized.UserAgent)
		}
		if !sanitized.LastModified.IsZero() {
			fmt.Fprintf(w, "   Last Modified: %s\n", sanitized.LastModified.Format("2006-01-02 15:04:05"))
		}
		fmt.Fprintln(w)
	}
}
