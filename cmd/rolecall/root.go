package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hrtools/rolecall/modules/intake/infrastructure/workbook"
	"github.com/hrtools/rolecall/pkg/configuration"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rolecall",
		Short: "Role holder submission intake, validation and consolidation",
	}
	cmd.AddCommand(newProcessCmd(), newConsolidateCmd(), newReviewCmd())
	return cmd
}

func execute(ctx context.Context) {
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func workbookOptions(cfg *configuration.Configuration) workbook.Options {
	return workbook.Options{
		MainSheet:      cfg.Workbook.MainSheet,
		RosterSheet:    cfg.Workbook.RosterSheet,
		MaxFileSize:    cfg.Workbook.MaxFileSize,
		HighlightColor: cfg.Workbook.HighlightColor,
	}
}

func printProgress(percent int, message string) {
	fmt.Printf("[%3d%%] %s\n", percent, message)
}
