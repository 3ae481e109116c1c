package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "weft",
		Short: "Weft entity schema and component wiring tooling",
		Long: `Weft declares typed entities with relationship-aware schemas and wires
autowired components into a dependency graph. This tool inspects and
verifies a Weft project's configuration.`,
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(checkCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
