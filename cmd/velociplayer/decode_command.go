package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"velociplayer/internal/captions"
	"velociplayer/internal/rational"
)

type trackView struct {
	File     string             `json:"file"`
	Captions []captions.Caption `json:"captions"`
	Real     int                `json:"real_captions"`
	End      rational.Time      `json:"end"`
	Blocks   int                `json:"blocks"`
	Dropped  int                `json:"dropped_blocks"`
}

func newTrackView(file string, track *captions.Track) trackView {
	stats := track.Stats()
	return trackView{
		File:     file,
		Captions: track.Captions(),
		Real:     track.RealCount(),
		End:      track.End(),
		Blocks:   stats.Blocks,
		Dropped:  stats.Dropped,
	}
}

func newDecodeCommand(ctx *commandContext) *cobra.Command {
	var charset string
	var ordering string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "decode <file>",
		Short: "Decode a subtitle file and print its caption track",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			track, _, err := readSubtitleFile(ctx.configValue(), args[0], charset, ordering)
			if err != nil {
				return err
			}
			view := newTrackView(args[0], track)
			if asJSON {
				return writeJSON(cmd, view)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTrackTable(view.Captions))
			fmt.Fprintln(out, trackSummary(view))
			return nil
		},
	}

	cmd.Flags().StringVar(&charset, "charset", "", "Text encoding of the file (default from config)")
	cmd.Flags().StringVar(&ordering, "ordering", "", "Caption ordering: id, start, or strict (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func renderTrackTable(list []captions.Caption) string {
	rows := make([][]string, 0, len(list))
	for i := range list {
		c := &list[i]
		rows = append(rows, []string{
			strconv.Itoa(i),
			captionIDCell(c),
			c.DisplayRange.Start.String(),
			c.DisplayRange.End.String(),
			captionTextCell(c),
		})
	}
	return renderTable([]column{
		{Header: "#", Align: alignRight},
		{Header: "ID", Align: alignRight},
		{Header: "Start"},
		{Header: "End"},
		{Header: "Text", MaxWidth: 48},
	}, rows)
}

func trackSummary(v trackView) string {
	gaps := len(v.Captions) - v.Real
	line := fmt.Sprintf("%d captions, %d gaps, ends at %s", v.Real, gaps, v.End)
	if v.Dropped > 0 {
		line += fmt.Sprintf(" (%d of %d blocks dropped)", v.Dropped, v.Blocks)
	}
	return line
}
