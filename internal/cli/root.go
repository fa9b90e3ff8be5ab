// Package cli implements the command-line interface for schemascan.
package cli

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "schemascan",
	Short: "schemascan - find the tables and views your code touches",
	Long: `schemascan reads application source (JavaScript, TypeScript, Python) and raw
SQL scripts, extracts every database operation it can see, and builds a catalog
of tables and views scored against observed usage.

Commands:
  analyze    Scan paths and report tables, views and dead code
  watch      Re-run the analysis whenever sources change
  export     Export stored nodes as JSON lines
  init       Write a .schemascan.yaml config file
  version    Print version information`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .schemascan.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newVersionCmd())
}
