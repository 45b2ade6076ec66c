package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/simext/internal/plugin"
)

func extensionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extensions",
		Short: "Inspect script extensions",
	}
	cmd.AddCommand(extensionsListCmd())
	return cmd
}

func extensionsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <path>...",
		Short: "List the script extensions found in the given directories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manifests, err := plugin.NewLoader(plugin.WithPaths(args...)).Discover()
			for _, m := range manifests {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", m.Name, m.Namespace(), m.Dir())
			}
			return err
		},
	}
}
