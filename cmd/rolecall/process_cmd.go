package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hrtools/rolecall/modules/intake/domain/finding"
	"github.com/hrtools/rolecall/modules/intake/services"
	"github.com/hrtools/rolecall/pkg/configuration"
)

func newProcessCmd() *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "process <workbook.xlsx>",
		Short: "Validate, enrich and annotate one submission workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configuration.Use()
			defer cfg.Unload()

			svc := services.NewFileProcessService(workbookOptions(cfg), cfg.SubmittedBy, cfg.Logger())
			res, err := svc.ProcessFile(cmd.Context(), args[0], outputDir, printProgress)
			if err != nil {
				return err
			}
			printFindings(res.Findings)
			if res.OutputPath == "" {
				return fmt.Errorf("%s was rejected; see the findings above", args[0])
			}
			fmt.Printf("output written to %s\n", res.OutputPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", ".", "directory for the annotated output workbook")
	return cmd
}

func printFindings(findings []finding.Finding) {
	for _, f := range findings {
		if f.Row > 0 {
			fmt.Printf("%s row %d [%s]: %s\n", f.File, f.Row, f.Kind, f.Description)
			continue
		}
		fmt.Printf("%s [%s]: %s\n", f.File, f.Kind, f.Description)
	}
}
