package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"velociplayer/internal/library"
)

func newLibraryCommand(ctx *commandContext) *cobra.Command {
	libraryCmd := &cobra.Command{
		Use:   "library",
		Short: "Manage imported subtitle files",
	}

	libraryCmd.AddCommand(newLibraryImportCommand(ctx))
	libraryCmd.AddCommand(newLibraryListCommand(ctx))
	libraryCmd.AddCommand(newLibraryShowCommand(ctx))
	libraryCmd.AddCommand(newLibraryRemoveCommand(ctx))
	libraryCmd.AddCommand(newLibraryLoadCommand(ctx))

	return libraryCmd
}

func (c *commandContext) withLibrary(fn func(*library.Store) error) error {
	store, err := library.Open(c.configValue(), c.cliLogger())
	if err != nil {
		return fmt.Errorf("open library: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func newLibraryImportCommand(ctx *commandContext) *cobra.Command {
	var name string
	var charset string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a subtitle file into the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read subtitle file: %w", err)
			}
			if strings.TrimSpace(name) == "" {
				name = filepath.Base(args[0])
			}
			return ctx.withLibrary(func(store *library.Store) error {
				sub, created, err := store.Import(cmd.Context(), name, data, charset)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if created {
					fmt.Fprintf(out, "Imported %s as #%d (%d captions, ends at %s)\n", sub.Name, sub.ID, sub.CaptionCount, formatSeconds(sub.EndSeconds))
				} else {
					fmt.Fprintf(out, "Already imported as #%d (%s)\n", sub.ID, sub.Name)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Library name (default: file name)")
	cmd.Flags().StringVar(&charset, "charset", "", "Text encoding of the file (default from config)")
	return cmd
}

func newLibraryListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List imported subtitle files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLibrary(func(store *library.Store) error {
				subs, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					if subs == nil {
						subs = []library.Subtitle{}
					}
					return writeJSON(cmd, subs)
				}
				out := cmd.OutOrStdout()
				if len(subs) == 0 {
					fmt.Fprintln(out, "Library is empty")
					return nil
				}
				rows := make([][]string, 0, len(subs))
				for _, sub := range subs {
					rows = append(rows, []string{
						strconv.FormatInt(sub.ID, 10),
						sub.Name,
						strconv.Itoa(sub.CaptionCount),
						formatSeconds(sub.EndSeconds),
						sub.Charset,
						humanize.Bytes(uint64(sub.Size)),
						humanize.Time(sub.ImportedAt),
					})
				}
				fmt.Fprintln(out, renderTable([]column{
					{Header: "ID", Align: alignRight},
					{Header: "Name", MaxWidth: 40},
					{Header: "Captions", Align: alignRight},
					{Header: "Ends"},
					{Header: "Charset"},
					{Header: "Size", Align: alignRight},
					{Header: "Imported"},
				}, rows))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newLibraryShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show an imported subtitle and its caption track",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseSubtitleID(args[0])
			if err != nil {
				return err
			}
			return ctx.withLibrary(func(store *library.Store) error {
				sub, err := store.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				track, err := store.Track(cmd.Context(), id)
				if err != nil {
					return err
				}
				view := newTrackView(sub.Name, track)
				if asJSON {
					return writeJSON(cmd, struct {
						Subtitle *library.Subtitle `json:"subtitle"`
						Track    trackView         `json:"track"`
					}{sub, view})
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "#%d %s\n", sub.ID, sub.Name)
				fmt.Fprintf(out, "  digest:   %s\n", sub.Digest)
				fmt.Fprintf(out, "  charset:  %s, %s\n", sub.Charset, humanize.Bytes(uint64(sub.Size)))
				fmt.Fprintf(out, "  imported: %s\n", sub.ImportedAt.Local().Format("2006-01-02 15:04:05"))
				fmt.Fprintln(out, renderTrackTable(view.Captions))
				fmt.Fprintln(out, trackSummary(view))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newLibraryRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove an imported subtitle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseSubtitleID(args[0])
			if err != nil {
				return err
			}
			return ctx.withLibrary(func(store *library.Store) error {
				if err := store.Remove(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed #%d\n", id)
				return nil
			})
		},
	}
}

func newLibraryLoadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "load <id>",
		Short: "Load an imported subtitle into the running daemon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseSubtitleID(args[0])
			if err != nil {
				return err
			}
			st, err := newAPIClient(ctx.configValue()).LoadLibrary(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Daemon loaded #%d (%d captions)\n", id, st.RealCaptions)
			return nil
		},
	}
}

func parseSubtitleID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(value), "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid subtitle id %q", value)
	}
	return id, nil
}

func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 3, 64) + "s"
}
