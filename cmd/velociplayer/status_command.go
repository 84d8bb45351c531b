package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"velociplayer/internal/daemon"
)

const statusLabelWidth = 12

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the running daemon's playback state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := newAPIClient(ctx.configValue()).Status(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, st)
			}
			printStatus(cmd.OutOrStdout(), st, isTerminal(cmd.OutOrStdout()))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func printStatus(out io.Writer, st daemon.Status, colorize bool) {
	line := func(label, value string) {
		fmt.Fprintf(out, "  %-*s %s\n", statusLabelWidth, label+":", value)
	}
	pb := st.Playback

	line("Daemon", fmt.Sprintf("running (pid %d) on %s", st.PID, st.APIAddress))
	line("Lock", st.LockFilePath)
	if st.LibraryPath != "" {
		line("Library", st.LibraryPath)
	}
	if !pb.Loaded {
		line("Captions", "none loaded")
	} else {
		line("Captions", fmt.Sprintf("%d (%d with gaps), ends at %s", pb.RealCaptions, pb.Captions, pb.End))
	}
	if pb.Time != nil {
		pos := pb.Time.String()
		if pb.Duration != nil {
			pos += fmt.Sprintf(" / %s (%.0f%%)", pb.Duration, pb.Progress*100)
		}
		line("Position", pos)
		line("Caption", renderChange(*pb.Time, pb.Caption, colorize))
	}
	line("Searches", strconv.FormatUint(pb.Searches, 10))
	line("Observers", strconv.Itoa(pb.Observers))
}
