// Webli is a TLS HTTP/1.1 server with routing and WebSocket support.
//
// It serves the bundled demo application, generates development
// certificates, and sends HTTPS requests with the built-in client.
//
// Usage:
//
//	webli [command] [flags]
//
// See 'webli --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MINAqwq/LibWebli/internal/config"
	"github.com/MINAqwq/LibWebli/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Persistent flags
var (
	configPath string
	envFile    string
)

var rootCmd = &cobra.Command{
	Use:   "webli",
	Short: "Webli HTTPS server",
	Long: `A small TLS-terminated HTTP/1.1 server with request routing and
WebSocket upgrades.

Settings are read from webli.yaml, WEBLI_* environment variables (optionally
seeded from a .env file) and command line flags, in that order.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.LoadDotEnv(envFile, false)
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to webli.yaml (default: search working and config directory)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", config.DefaultDotEnvFile, "Dotenv file loaded before reading configuration")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(gencertCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "webli %s\n%s\n", version.Full(), version.Platform())
	},
}

// loadConfig reads the configuration file, or the built-in defaults when
// none is found.
func loadConfig() (*config.File, error) {
	path := configPath
	if path == "" {
		path = config.FindPath()
	}
	return config.Load(path)
}
