package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"marquee/internal/config"
	"marquee/internal/library"
)

func newWatchlistCommand(ctx *commandContext) *cobra.Command {
	watchlistCmd := &cobra.Command{
		Use:   "watchlist",
		Short: "Manage named watchlists",
	}

	watchlistCmd.AddCommand(newWatchlistCreateCommand(ctx))
	watchlistCmd.AddCommand(newWatchlistListCommand(ctx))
	watchlistCmd.AddCommand(newWatchlistShowCommand(ctx))
	watchlistCmd.AddCommand(newWatchlistAddCommand(ctx))
	watchlistCmd.AddCommand(newWatchlistRemoveCommand(ctx))

	return watchlistCmd
}

func newWatchlistCreateCommand(ctx *commandContext) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a watchlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *library.Store) error {
				watchlist, err := store.CreateWatchlist(cmd.Context(), args[0], description)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created watchlist %q (id %d)\n", watchlist.Name, watchlist.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Watchlist description")
	return cmd
}

func newWatchlistListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List watchlists",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *library.Store) error {
				watchlists, err := store.Watchlists(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, watchlists)
				}
				if len(watchlists) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No watchlists.")
					return nil
				}
				rows := make([][]string, 0, len(watchlists))
				for _, watchlist := range watchlists {
					rows = append(rows, []string{
						strconv.FormatInt(watchlist.ID, 10),
						watchlist.Name,
						watchlist.Description,
						strconv.Itoa(watchlist.MovieCount),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(cmd.OutOrStdout(),
					[]string{"ID", "Name", "Description", "Movies"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit watchlists as JSON")
	return cmd
}

func newWatchlistShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a watchlist and its movies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseWatchlistID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(_ *config.Config, store *library.Store) error {
				watchlist, err := store.GetWatchlist(cmd.Context(), id)
				if err != nil {
					return err
				}
				movies, err := store.WatchlistMovies(cmd.Context(), id)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, struct {
						Watchlist *library.Watchlist `json:"watchlist"`
						Movies    []*library.Record  `json:"movies"`
					}{watchlist, movies})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s", watchlist.Name)
				if watchlist.Description != "" {
					fmt.Fprintf(cmd.OutOrStdout(), " (%s)", watchlist.Description)
				}
				fmt.Fprintln(cmd.OutOrStdout())
				if len(movies) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Watchlist is empty.")
					return nil
				}
				printRecordTable(cmd, movies)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the watchlist as JSON")
	return cmd
}

func newWatchlistAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <id> <imdb-id>",
		Short: "Add a library movie to a watchlist",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseWatchlistID(args[0])
			if err != nil {
				return err
			}
			externalID := strings.TrimSpace(args[1])
			return ctx.withStore(func(_ *config.Config, store *library.Store) error {
				if err := store.AddToWatchlist(cmd.Context(), id, externalID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s to watchlist %d\n", externalID, id)
				return nil
			})
		},
	}
}

func newWatchlistRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a watchlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseWatchlistID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(_ *config.Config, store *library.Store) error {
				removed, err := store.RemoveWatchlist(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("no watchlist with id %d", id)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed watchlist %d\n", id)
				return nil
			})
		},
	}
}

func parseWatchlistID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid watchlist id %q", value)
	}
	return id, nil
}
