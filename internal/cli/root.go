// Package cli wires the gqlite commands together.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "gqlite",
	Short: "Minimal GraphQL-over-HTTP client",
	Long: `gqlite issues GraphQL queries and mutations over plain HTTP POST.
The operation text is sent as-is; nothing is parsed or validated
client-side.

Get started:
  gqlite run --endpoint URL --query '{ viewer { id } }'
  gqlite watch --endpoint URL --query '{ viewer { id } }' --interval 5s`,
	Version: fmt.Sprintf("%s (built %s)", version, buildTime),
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "gqlite %s (built %s)\n", version, buildTime)
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(versionCmd)
}

// SetVersion sets the version info
func SetVersion(v, bt string) {
	version = v
	buildTime = bt
	rootCmd.Version = fmt.Sprintf("%s (built %s)", version, buildTime)
}
