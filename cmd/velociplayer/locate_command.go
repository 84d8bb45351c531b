package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"velociplayer/internal/captions"
	"velociplayer/internal/rational"
)

type locateResult struct {
	At      rational.Time     `json:"at"`
	Caption *captions.Caption `json:"caption"`
}

func newLocateCommand(ctx *commandContext) *cobra.Command {
	var charset string
	var ordering string
	var at []float64
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "locate <file> --at <seconds>...",
		Short: "Show the caption active at the given playback times",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(at) == 0 {
				return errors.New("at least one --at time is required")
			}
			cfg := ctx.configValue()
			track, _, err := readSubtitleFile(cfg, args[0], charset, ordering)
			if err != nil {
				return err
			}

			results := make([]locateResult, 0, len(at))
			var cached *captions.Caption
			for _, seconds := range at {
				t, err := rational.ParseSeconds(seconds, cfg.Playback.Timescale)
				if err != nil {
					return fmt.Errorf("--at %v: %w", seconds, err)
				}
				cached = captions.Locate(track, t, cached)
				results = append(results, locateResult{At: t, Caption: cached})
			}
			if asJSON {
				return writeJSON(cmd, results)
			}

			rows := make([][]string, 0, len(results))
			for _, r := range results {
				rng := "-"
				if r.Caption != nil {
					rng = r.Caption.DisplayRange.String()
				}
				rows = append(rows, []string{
					r.At.String(),
					strconv.FormatFloat(r.At.Seconds(), 'f', -1, 64),
					captionIDCell(r.Caption),
					rng,
					captionTextCell(r.Caption),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]column{
				{Header: "At"},
				{Header: "Seconds", Align: alignRight},
				{Header: "ID", Align: alignRight},
				{Header: "Range"},
				{Header: "Text", MaxWidth: 48},
			}, rows))
			return nil
		},
	}

	cmd.Flags().Float64SliceVar(&at, "at", nil, "Playback time in seconds (repeatable or comma separated)")
	cmd.Flags().StringVar(&charset, "charset", "", "Text encoding of the file (default from config)")
	cmd.Flags().StringVar(&ordering, "ordering", "", "Caption ordering: id, start, or strict (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}
