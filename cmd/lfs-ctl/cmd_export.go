package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var runExportOut string

// lfs-ctl run-export <slug>
var runExportCmd = &cobra.Command{
	Use:   "run-export <slug>",
	Short: "Generate a product feed and store it in the blob store",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
		w := io.Discard
		if runExportOut == "-" {
			w = cmd.OutOrStdout()
		} else if runExportOut != "" {
			f, err := os.Create(runExportOut)
			if err != nil {
				return fmt.Errorf("create %s: %w", runExportOut, err)
			}
			defer f.Close()
			w = f
		}

		result, err := e.svcs.Export.RunExport(cmd.Context(), args[0], w)
		if err != nil {
			return fmt.Errorf("run export %s: %w", args[0], err)
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "exported %d products to %s\n", result.Products, result.Location)
		return nil
	}),
}

func init() {
	runExportCmd.Flags().StringVarP(&runExportOut, "out", "o", "", `also write the feed to this file, "-" for stdout`)
}
