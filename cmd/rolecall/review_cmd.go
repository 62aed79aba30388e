package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hrtools/rolecall/modules/intake/services"
	"github.com/hrtools/rolecall/pkg/configuration"
)

func newReviewCmd() *cobra.Command {
	var destDir string

	cmd := &cobra.Command{
		Use:   "review <workbook.xlsx>",
		Short: "Write a _REVIEW copy of an original submission workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configuration.Use()
			defer cfg.Unload()

			svc := services.NewReviewService(cfg.Logger())
			dest, err := svc.CopyForReview(args[0], destDir)
			if err != nil {
				return err
			}
			fmt.Printf("review copy written to %s\n", dest)
			return nil
		},
	}
	cmd.Flags().StringVarP(&destDir, "dest-dir", "d", ".", "directory for the review copy")
	return cmd
}
