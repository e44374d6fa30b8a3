package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"marquee/internal/batch"
	"marquee/internal/config"
	"marquee/internal/library"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var fileFlag string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "batch [title ...]",
		Short: "Classify a list of titles and add them to the library",
		Long: `Classify a list of titles and add them to the library.

Titles come from the command line or from --file, which accepts .txt (one
title per line), .csv (first column), or .json (array of strings or an
object with a movies, titles, or items array).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			titles := batch.CleanTitles(args)
			if fileFlag != "" {
				fromFile, err := batch.ReadTitles(fileFlag)
				if err != nil {
					return err
				}
				titles = append(titles, fromFile...)
			}
			if len(titles) == 0 {
				return fmt.Errorf("no titles to process; pass titles or --file")
			}

			searcher, err := ctx.newSearcher()
			if err != nil {
				return err
			}

			return ctx.withStore(func(cfg *config.Config, store *library.Store) error {
				pipeline := batch.New(searcher, store, ctx.newNotifier(), ctx.ensureLogger(), batch.PolicyFromConfig(cfg))
				result, runErr := pipeline.Run(cmd.Context(), titles)

				if jsonOutput {
					if err := writeJSON(cmd, result); err != nil {
						return err
					}
					return runErr
				}
				printBatchResult(cmd, result)
				return runErr
			})
		},
	}

	cmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Read titles from a .txt, .csv, or .json file")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the run summary as JSON")
	return cmd
}

func printBatchResult(cmd *cobra.Command, result *batch.Result) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Run %s: %d of %d succeeded (%.0f%%) in %s\n",
		result.RunID, len(result.Succeeded), result.TotalRequested, result.SuccessRate(), result.Duration.Round(10*time.Millisecond))

	if len(result.Succeeded) > 0 {
		rows := make([][]string, 0, len(result.Succeeded))
		for _, entry := range result.Succeeded {
			movie := entry.Record.Movie
			rows = append(rows, []string{
				movie.Title,
				yearLabel(movie.Year),
				ratingLabel(movie),
				entry.Record.Labels.GenreBucket,
				entry.Record.Labels.RatingTier,
			})
		}
		fmt.Fprintln(out, renderTable(out,
			[]string{"Title", "Year", "Rating", "Genre Bucket", "Tier"},
			rows,
			[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft, alignLeft},
		))
	}

	for _, failure := range result.Failed {
		fmt.Fprintf(out, "failed: %q (%s) %s\n", failure.Title, failure.Reason, failure.Detail)
	}
}
