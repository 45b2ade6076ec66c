package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/dshills/simext/internal/persistence"
)

func dataCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Read and edit persisted extension data",
	}
	cmd.AddCommand(dataGetCmd())
	cmd.AddCommand(dataSetCmd())
	cmd.AddCommand(dataDeleteCmd())
	cmd.AddCommand(dataDumpCmd())
	return cmd
}

func dataGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <file> [path]",
		Short: "Print a JSON data file or the value at a gjson path",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readData(args[0])
			if err != nil {
				return err
			}
			if len(args) == 1 {
				fmt.Fprint(cmd.OutOrStdout(), string(pretty.Pretty(raw)))
				return nil
			}
			res := gjson.GetBytes(raw, args[1])
			if !res.Exists() {
				return fmt.Errorf("%s: no value at %q", args[0], args[1])
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.String())
			return nil
		},
	}
}

func dataSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <file> <path> <value>",
		Short: "Set the value at an sjson path; valid JSON is stored raw",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readData(args[0])
			if err != nil {
				return err
			}
			var out []byte
			if gjson.Valid(args[2]) {
				out, err = sjson.SetRawBytes(raw, args[1], []byte(args[2]))
			} else {
				out, err = sjson.SetBytes(raw, args[1], args[2])
			}
			if err != nil {
				return fmt.Errorf("setting %q: %w", args[1], err)
			}
			return writeData(args[0], out)
		},
	}
}

func dataDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <file> <path>",
		Short: "Delete the value at an sjson path",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readData(args[0])
			if err != nil {
				return err
			}
			out, err := sjson.DeleteBytes(raw, args[1])
			if err != nil {
				return fmt.Errorf("deleting %q: %w", args[1], err)
			}
			return writeData(args[0], out)
		},
	}
}

func dataDumpCmd() *cobra.Command {
	var namespace string
	cmd := &cobra.Command{
		Use:   "dump <database>",
		Short: "List the blobs of a bolt database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); err != nil {
				return err
			}
			db, err := persistence.OpenBolt(args[0])
			if err != nil {
				return err
			}
			defer db.Close()

			return db.Each(func(ns, name string, raw []byte) error {
				if namespace != "" && ns != namespace {
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s/%s\n%s", ns, name, pretty.Pretty(raw))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&namespace, "namespace", "", "Only show this namespace")
	return cmd
}

func readData(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("%s is not valid JSON", path)
	}
	return raw, nil
}

func writeData(path string, raw []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path, pretty.Pretty(raw), info.Mode().Perm())
}
