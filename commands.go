package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/llehouerou/tracksearch/internal/errmsg"
	"github.com/llehouerou/tracksearch/internal/index"
	"github.com/llehouerou/tracksearch/internal/search"
	"github.com/llehouerou/tracksearch/internal/state"
	"github.com/llehouerou/tracksearch/internal/track"
)

var errNotFound = errors.New("not found")

func newIndexCommand() *cobra.Command {
	var (
		force   bool
		history int
	)
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build the index if it is stale, or always with --force",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), errmsg.OpIndexBuild, "", force, func(ctx context.Context, a *app) error {
				n, err := a.lib.Count(ctx)
				if err != nil {
					return err
				}
				last, err := a.state.LastIndexed()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s tracks indexed %s\n",
					humanize.Comma(int64(n)), humanize.Time(last))
				if history <= 0 {
					return nil
				}
				hist, err := a.state.History(history)
				if err != nil {
					return err
				}
				return printHistory(cmd.OutOrStdout(), hist)
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "rebuild even if the index is fresh")
	cmd.Flags().IntVar(&history, "history", 0, "also list the last N rebuilds")
	return cmd
}

func newSearchCommand() *cobra.Command {
	var (
		sortName string
		desc     bool
		filter   string
	)
	cmd := &cobra.Command{
		Use:   "search <keywords>...",
		Short: "Search tracks by keywords, '*' for all",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			order, err := search.ParseSortOrder(sortName)
			if err != nil {
				return err
			}
			f, err := parseFilter(filter)
			if err != nil {
				return err
			}
			s := &search.Search{
				Keywords:   strings.Join(args, " "),
				Filter:     f,
				Sort:       order,
				Descending: desc,
			}
			return run(cmd.Context(), errmsg.OpSearch, s.Keywords, false, func(ctx context.Context, a *app) error {
				tracks, err := a.lib.Search(ctx, s)
				if err != nil {
					return err
				}
				return printTracks(cmd.OutOrStdout(), tracks)
			})
		},
	}
	cmd.Flags().StringVar(&sortName, "sort", search.SortDefault.String(), "sort order: default, artist, album or track")
	cmd.Flags().BoolVar(&desc, "desc", false, "reverse the sort order")
	cmd.Flags().StringVar(&filter, "filter", "", "exact filter as field=value, e.g. year=2001")
	return cmd
}

func newShuffleCommand() *cobra.Command {
	var (
		size  int
		genre string
	)
	cmd := &cobra.Command{
		Use:   "shuffle",
		Short: "Print a random playlist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var f *search.Filter
			if genre != "" {
				f = &search.Filter{Field: index.FieldGenres, Value: genre}
			}
			return run(cmd.Context(), errmsg.OpShuffle, genre, false, func(ctx context.Context, a *app) error {
				tracks, err := a.lib.ShuffledPlaylist(ctx, size, f)
				if err != nil {
					return err
				}
				return printTracks(cmd.OutOrStdout(), tracks)
			})
		},
	}
	cmd.Flags().IntVar(&size, "size", 25, "number of tracks")
	cmd.Flags().StringVar(&genre, "genre", "", "only tracks of this genre")
	return cmd
}

func newAlbumCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "album <id>",
		Short: "Print the tracks of an album",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), errmsg.OpAlbumLoad, args[0], false, func(ctx context.Context, a *app) error {
				album, ok, err := a.lib.AlbumByID(ctx, args[0])
				if err != nil {
					return err
				}
				if !ok {
					return errNotFound
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s - %s (%d)\n", album.ArtistName, album.Name, album.Year)
				return printTracks(cmd.OutOrStdout(), album.Tracks)
			})
		},
	}
}

func newTrackCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "track <id>",
		Short: "Print a track",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), errmsg.OpTrackLoad, args[0], false, func(ctx context.Context, a *app) error {
				r, ok, err := a.lib.TrackByID(ctx, args[0])
				if err != nil {
					return err
				}
				if !ok {
					return errNotFound
				}
				return printTracks(cmd.OutOrStdout(), []track.Record{r})
			})
		},
	}
}

func newGenresCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "genres",
		Short: "List indexed genres",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), errmsg.OpGenresLoad, "", false, func(_ context.Context, a *app) error {
				genres, err := a.lib.Genres()
				if err != nil {
					return err
				}
				for _, g := range genres {
					fmt.Fprintln(cmd.OutOrStdout(), g)
				}
				return nil
			})
		},
	}
}

func newYearsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "years",
		Short: "List indexed years",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), errmsg.OpYearsLoad, "", false, func(_ context.Context, a *app) error {
				years, err := a.lib.Years()
				if err != nil {
					return err
				}
				for _, y := range years {
					fmt.Fprintln(cmd.OutOrStdout(), y)
				}
				return nil
			})
		},
	}
}

// parseFilter parses "field=value". An empty string means no filter.
func parseFilter(s string) (*search.Filter, error) {
	if s == "" {
		return nil, nil //nolint:nilnil // no filter is valid
	}
	field, value, ok := strings.Cut(s, "=")
	if !ok || value == "" {
		return nil, fmt.Errorf("filter %q: want field=value", s)
	}
	for _, f := range index.ExactFields {
		if f == field {
			return &search.Filter{Field: field, Value: value}, nil
		}
	}
	return nil, fmt.Errorf("filter %q: unknown field %q", s, field)
}

func printTracks(w io.Writer, tracks []track.Record) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tYEAR\tARTIST\tALBUM\t#\tTITLE")
	for _, r := range tracks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, yearString(r.Year), r.ArtistName, r.AlbumName, strconv.Itoa(r.Index), r.Name)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s tracks\n", humanize.Comma(int64(len(tracks))))
	return nil
}

// printHistory lists rebuilds, newest first, with their time in UTC.
func printHistory(w io.Writer, hist []state.IndexState) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEXED\tVERSION")
	for _, h := range hist {
		fmt.Fprintf(tw, "%s\t%s\n", h.LastIndexed.UTC().Format(time.DateTime), h.Version)
	}
	return tw.Flush()
}

func yearString(y int) string {
	if y == 0 {
		return "-"
	}
	return strconv.Itoa(y)
}
