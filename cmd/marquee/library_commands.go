package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"marquee/internal/classify"
	"marquee/internal/config"
	"marquee/internal/library"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var (
		queryFlag   string
		genreBucket string
		ratingTier  string
		yearFrom    int
		yearTo      int
		sortFlag    string
		jsonOutput  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List library movies",
		Long:  "List library movies.\n\nValid genre buckets: " + bucketHint() + ".",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := library.Filter{
				Query:       queryFlag,
				GenreBucket: genreBucket,
				RatingTier:  ratingTier,
				YearFrom:    yearFrom,
				YearTo:      yearTo,
				Sort:        sortFlag,
			}
			return ctx.withStore(func(_ *config.Config, store *library.Store) error {
				records, err := store.List(cmd.Context(), filter)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, records)
				}
				if len(records) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Library is empty.")
					return nil
				}
				printRecordTable(cmd, records)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&queryFlag, "query", "q", "", "Match title, genres, director, or actors")
	cmd.Flags().StringVar(&genreBucket, "genre-bucket", "", "Filter by genre bucket (e.g. \"Sci-Fi & Fantasy\")")
	cmd.Flags().StringVar(&ratingTier, "rating-tier", "", "Filter by rating tier (High, Medium, Low, Unrated)")
	cmd.Flags().IntVar(&yearFrom, "year-from", 0, "Only movies released in or after this year")
	cmd.Flags().IntVar(&yearTo, "year-to", 0, "Only movies released in or before this year")
	cmd.Flags().StringVar(&sortFlag, "sort", "", "Sort key: title, year, rating, added (prefix with - for descending)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit records as JSON")
	return cmd
}

func printRecordTable(cmd *cobra.Command, records []*library.Record) {
	out := cmd.OutOrStdout()
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		movie := record.Movie
		rows = append(rows, []string{
			movie.ExternalID,
			movie.Title,
			yearLabel(movie.Year),
			ratingLabel(movie),
			record.Labels.GenreBucket,
			record.Labels.RatingTier,
		})
	}
	fmt.Fprintln(out, renderTable(out,
		[]string{"IMDb ID", "Title", "Year", "Rating", "Genre Bucket", "Tier"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
	))
	fmt.Fprintf(out, "%d movie(s)\n", len(records))
}

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show library statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *library.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, stats)
				}
				printStats(cmd, stats)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit statistics as JSON")
	return cmd
}

func printStats(cmd *cobra.Command, stats *library.LibraryStats) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Movies:  %d total, %d rated\n", stats.TotalMovies, stats.RatedMovies)
	if stats.RatedMovies > 0 {
		fmt.Fprintf(out, "Average: %.2f\n", stats.AverageRating)
	}
	if stats.TotalMovies == 0 {
		return
	}

	printDistribution(cmd, "Genres", stats.GenreBuckets)
	printDistribution(cmd, "Rating tiers", stats.RatingTiers)
	printDistribution(cmd, "Rating histogram", stats.RatingHistogram)
	printDistribution(cmd, "Decades", stats.Decades)

	if len(stats.TopRated) > 0 {
		fmt.Fprintln(out, "\nTop rated:")
		for i, record := range stats.TopRated {
			fmt.Fprintf(out, "  %d. %s (%s) %s\n", i+1, record.Movie.Title, yearLabel(record.Movie.Year), ratingLabel(record.Movie))
		}
	}
}

func printDistribution(cmd *cobra.Command, title string, counts []library.LabelCount) {
	if len(counts) == 0 {
		return
	}
	out := cmd.OutOrStdout()
	rows := make([][]string, 0, len(counts))
	for _, count := range counts {
		rows = append(rows, []string{count.Label, fmt.Sprintf("%d", count.Count)})
	}
	fmt.Fprintf(out, "\n%s:\n", title)
	fmt.Fprintln(out, renderTable(out,
		[]string{"Label", "Count"},
		rows,
		[]columnAlignment{alignLeft, alignRight},
	))
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <imdb-id>",
		Short: "Remove a movie from the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			externalID := strings.TrimSpace(args[0])
			return ctx.withStore(func(_ *config.Config, store *library.Store) error {
				removed, err := store.Remove(cmd.Context(), externalID)
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("no movie with id %s in the library", externalID)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", externalID)
				return nil
			})
		},
	}
}

func newClearCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every movie from the library",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return fmt.Errorf("refusing to clear the library without --force")
			}
			return ctx.withStore(func(_ *config.Config, store *library.Store) error {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d movie(s)\n", removed)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Confirm clearing the library")
	return cmd
}

func bucketHint() string {
	return strings.Join(classify.Buckets(), ", ")
}
