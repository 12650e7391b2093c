package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory/infrastructure/persistence"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory/services"
)

func newExportCmd() *cobra.Command {
	var (
		scope  string
		kind   string
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Run verification and write the result to a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := runVerification(cmd, scope, kind)
			if err != nil {
				return err
			}

			var data []byte
			switch format {
			case "json":
				data, err = result.ToJSON()
			case "csv":
				data, err = result.ToCSV()
			case "xlsx":
				svc := services.NewVerificationService(persistence.NewPgProductRepository())
				data, err = svc.ExportXLSX(result)
			default:
				return fmt.Errorf("unknown format %q, want json, csv or xlsx", format)
			}
			if err != nil {
				return err
			}

			if out == "" {
				out = "verification." + format
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, len(data))
			return nil
		},
	}

	cmd.Flags().StringVar(&scope, "scope", "", "Session scope (required)")
	cmd.Flags().StringVar(&kind, "kind", "update", "Job kind the rows came from (import or update)")
	cmd.Flags().StringVar(&format, "format", "csv", "Output format: json, csv or xlsx")
	cmd.Flags().StringVar(&out, "out", "", "Output path (default verification.<format>)")
	_ = cmd.MarkFlagRequired("scope")
	return cmd
}
