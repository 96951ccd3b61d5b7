package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"dyscraper/pkg/logger"
	"dyscraper/pkg/ui"

	"github.com/spf13/cobra"
)

var (
	// Version information, set at build time with -ldflags
	version   = "0.3.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	quiet      bool
	verbose    bool
)

// reportedError marks an error the run reporter has already shown
type reportedError struct {
	err error
}

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dyscraper",
	Short: "Collect the video catalog of a Douyin creator",
	Long: `dyscraper walks the public post listing of a Douyin creator and exports
every playable video as structured metadata.

Features:
  - Cursor pagination with a fixed pause between pages
  - Automatic retry of failed page requests with a constant delay
  - JSON, plain-text link list and YAML exports, written atomically
  - Stored browser sessions in the system keychain or an encrypted file
  - Optional request ceiling, page cap and Prometheus textfile metrics
  - Interactive terminal UI with live progress`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Version = version

		if quiet || useTUI {
			return
		}
		switch cmd.Name() {
		case "version", "help", "show":
			return
		}
		ui.PrintLogo()
	},
}

// versionCmd prints build information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), versionText())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var reported reportedError
		if !errors.As(err, &reported) {
			ui.PrintError("Error", err)
		}
		os.Exit(1)
	}
}

func versionText() string {
	return `dyscraper ` + rootCmd.Version + `
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./dyscraper.yaml or ~/.dyscraper.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show every fetch attempt")

	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "%s" .Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(versionCmd)
}
