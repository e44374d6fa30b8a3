package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"marquee/internal/classify"
	"marquee/internal/config"
	"marquee/internal/library"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var noStore bool

	cmd := &cobra.Command{
		Use:   "search <title>",
		Short: "Look up one movie, classify it, and add it to the library",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(strings.Join(args, " "))
			searcher, err := ctx.newSearcher()
			if err != nil {
				return err
			}

			movie, err := searcher.Lookup(cmd.Context(), title)
			if err != nil {
				return err
			}
			labels := classify.Classify(movie.Genres, movie.Rating, movie.Year)

			record := &library.Record{Movie: *movie, Labels: labels}
			if !noStore {
				err = ctx.withStore(func(_ *config.Config, store *library.Store) error {
					stored, storeErr := store.Upsert(cmd.Context(), movie, labels)
					if storeErr != nil {
						return storeErr
					}
					record = stored
					return nil
				})
				if err != nil {
					return err
				}
			}

			if jsonOutput {
				return writeJSON(cmd, record)
			}
			printRecord(cmd, record)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the record as JSON")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "Look up without saving to the library")
	return cmd
}

func printRecord(cmd *cobra.Command, record *library.Record) {
	out := cmd.OutOrStdout()
	movie := record.Movie

	fmt.Fprintf(out, "%s (%s)\n", movie.Title, yearLabel(movie.Year))
	fmt.Fprintf(out, "  Rating:   %s  [%s]\n", ratingLabel(movie), record.Labels.RatingTier)
	fmt.Fprintf(out, "  Genres:   %s  [%s]\n", genresLabel(movie.Genres), record.Labels.GenreBucket)
	fmt.Fprintf(out, "  Era:      %s\n", record.Labels.EraBucket)
	if movie.Director != "" {
		fmt.Fprintf(out, "  Director: %s\n", movie.Director)
	}
	if movie.RuntimeMinutes > 0 {
		fmt.Fprintf(out, "  Runtime:  %d min\n", movie.RuntimeMinutes)
	}
	if movie.Plot != "" {
		fmt.Fprintf(out, "  Plot:     %s\n", movie.Plot)
	}
	fmt.Fprintf(out, "  IMDb ID:  %s\n", movie.ExternalID)
}

func yearLabel(year int) string {
	if year <= 0 {
		return "year unknown"
	}
	return fmt.Sprintf("%d", year)
}

func ratingLabel(movie library.Movie) string {
	if !movie.HasRating() {
		return "unrated"
	}
	return fmt.Sprintf("%.1f", movie.Rating)
}

func genresLabel(genres []string) string {
	if len(genres) == 0 {
		return "unknown"
	}
	return strings.Join(genres, ", ")
}
