package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags).
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "jimple2cpg",
	Short: "Lower Jimple-like method bodies into Code Property Graph fragments",
	Long: `jimple2cpg lowers a Jimple-like three-address method body into a Code
Property Graph fragment: an AST/CFG/PDG overlay expressed as an ordered
delta-graph log.

It is a demonstrator around package lower, not a full static-analysis
frontend: bytecode loading, type resolution, and graph persistence are
treated as external concerns and are not implemented here.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
