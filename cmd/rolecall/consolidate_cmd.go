package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hrtools/rolecall/modules/intake/services"
	"github.com/hrtools/rolecall/pkg/configuration"
)

func newConsolidateCmd() *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "consolidate <input-dir>",
		Short: "Merge every submission workbook under a folder into one consolidated report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configuration.Use()
			defer cfg.Unload()

			svc := services.NewConsolidationService(workbookOptions(cfg), cfg.SubmittedBy, cfg.Logger())
			outputPath, err := svc.Consolidate(cmd.Context(), args[0], outputDir, printProgress)
			if err != nil {
				return err
			}
			fmt.Printf("consolidated report written to %s\n", outputPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", ".", "directory for the consolidated report")
	return cmd
}
