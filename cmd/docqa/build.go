package main

import (
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build <docs-dir>",
	Short: "Parse, chunk and index every supported document under a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		n, err := a.builder.BuildDir(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		a.log.Info("build complete", "dir", args[0], "chunks", n)
		return nil
	},
}
