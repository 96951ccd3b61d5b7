package main

import (
	"fmt"
	"os"
	"path/filepath"

	"dyscraper/pkg/config"
	"dyscraper/pkg/ui"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage dyscraper configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (DYSCRAPER_*, also read from .env)
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as 'dyscraper.yaml'
unless a different path is specified with the --config flag.`,
	RunE: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration after merging the config file, the
environment and the defaults. The session cookie is masked.`,
	RunE: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Value types and ranges
  - Export selection
  - Output and log path accessibility`,
	RunE: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

const exampleConfig = `# dyscraper configuration file
#
# Every option can also be set with an environment variable prefixed with
# DYSCRAPER_, for example DYSCRAPER_COOKIE or DYSCRAPER_PAGE_DELAY.

douyin:
  base_url: "https://www.douyin.com"

  # Browser identity sent with every request
  user_agent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.0.0 Safari/537.36 Edg/118.0.0.0"
  accept_language: "vi"

  # Logged-in session cookie (optional). Prefer 'dyscraper auth login'.
  cookie: ""

  # Stored account to use when no cookie is set (optional)
  account: ""

  page_size: 20
  request_timeout: 30s

# Each page is attempted up to max_attempts times, pausing delay in between
retry:
  max_attempts: 5
  delay: 2s

pagination:
  # Pause after every page that has a successor
  page_delay: 1s

  # Stop after this many pages, 0 means no limit
  max_pages: 0

# Optional ceiling across all attempts, 0 disables it
rate_limit:
  requests_per_minute: 0
  burst: 1

output:
  directory: "./downloads"
  json: true
  txt: true
  yaml: false

  # Add a UTC timestamp to file names so runs never overwrite each other
  timestamped: true
  prefix: "douyin-video"

logging:
  # debug, info, warn, error
  level: "info"

  # Also log to this file (optional)
  file: ""

metrics:
  # Write Prometheus metrics here after each run (optional)
  textfile: ""
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = "dyscraper.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		return fmt.Errorf("configuration file already exists: %s", configPath)
	}

	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0600); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Run 'dyscraper auth login' or set douyin.cookie")
	fmt.Println("2. Run 'dyscraper config validate' to check the configuration")
	fmt.Println("3. Start with 'dyscraper harvest <profile-url>'")
	return nil
}

// maskedConfig returns a copy of cfg that is safe to print
func maskedConfig(cfg *config.Config) *config.Config {
	display := *cfg
	display.Douyin.Cookie = config.MaskSecret(cfg.Douyin.Cookie)
	return &display
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	data, err := yaml.Marshal(maskedConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (DYSCRAPER_*)")
	switch path := configFile; {
	case path != "":
		fmt.Printf("3. Configuration file: %s\n", path)
	case config.FindConfigFile() != "":
		fmt.Printf("3. Configuration file: %s\n", config.FindConfigFile())
	default:
		fmt.Println("3. Configuration file: (none found)")
	}
	fmt.Println("4. Default values")
	return nil
}

// checkPaths reports directories the run would fail to create
func checkPaths(cfg *config.Config) []string {
	var problems []string
	if err := os.MkdirAll(cfg.Output.Directory, 0755); err != nil {
		problems = append(problems, fmt.Sprintf("cannot create output directory: %v", err))
	}
	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
			problems = append(problems, fmt.Sprintf("cannot create log directory: %v", err))
		}
	}
	if cfg.Metrics.Textfile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Metrics.Textfile), 0755); err != nil {
			problems = append(problems, fmt.Sprintf("cannot create metrics directory: %v", err))
		}
	}
	return problems
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	path := configFile
	if path == "" {
		path = config.FindConfigFile()
	}
	if path == "" {
		return fmt.Errorf("no configuration file found, specify one with --config")
	}

	ui.PrintInfo("Validating configuration", path)

	cfg, err := config.Load(path, nil)
	if err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	if problems := checkPaths(cfg); len(problems) > 0 {
		ui.PrintError("Configuration has errors:")
		for _, p := range problems {
			fmt.Printf("  - %s\n", p)
		}
		return fmt.Errorf("%d configuration errors", len(problems))
	}

	if cfg.Douyin.Cookie == "" && cfg.Douyin.Account == "" {
		ui.PrintWarning("No session cookie configured, the stored default account will be used if any")
		fmt.Println()
	}

	ui.PrintSuccess("Configuration is valid")

	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Output directory: %s\n", cfg.Output.Directory)
	fmt.Printf("  Exports: json=%t txt=%t yaml=%t timestamped=%t\n", cfg.Output.JSON, cfg.Output.Text, cfg.Output.YAML, cfg.Output.Timestamped)
	fmt.Printf("  Retry: %d attempts, %s apart\n", cfg.Retry.MaxAttempts, cfg.Retry.Delay)
	fmt.Printf("  Page delay: %s\n", cfg.Pagination.PageDelay)
	if cfg.RateLimit.RequestsPerMinute > 0 {
		fmt.Printf("  Rate limit: %d requests/minute\n", cfg.RateLimit.RequestsPerMinute)
	}
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
	return nil
}
