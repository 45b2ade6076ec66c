// Command simextctl inspects kernel configuration, persisted extension
// data and script extensions from outside the host.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "simextctl",
		Short:         "Inspect simext configuration and extension data",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.AddCommand(configCmd())
	root.AddCommand(dataCmd())
	root.AddCommand(extensionsCmd())
	root.AddCommand(versionCmd())
	return root
}
