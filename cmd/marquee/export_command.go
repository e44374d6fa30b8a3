package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"marquee/internal/config"
	"marquee/internal/export"
	"marquee/internal/library"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var (
		formatFlag string
		outputFlag string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the library as CSV or JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := export.ParseFormat(formatFlag)
			if err != nil {
				return err
			}

			return ctx.withStore(func(_ *config.Config, store *library.Store) error {
				records, err := store.List(cmd.Context(), library.Filter{})
				if err != nil {
					return err
				}

				if outputFlag == "" || outputFlag == "-" {
					return export.Write(cmd.OutOrStdout(), format, records)
				}

				file, err := os.Create(outputFlag)
				if err != nil {
					return fmt.Errorf("create output file: %w", err)
				}
				if err := export.Write(file, format, records); err != nil {
					_ = file.Close()
					return err
				}
				if err := file.Close(); err != nil {
					return fmt.Errorf("close output file: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d movie(s) to %s\n", len(records), outputFlag)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&formatFlag, "format", "json", "Export format: csv or json")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output file (default stdout)")
	return cmd
}
