package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/spf13/cobra"

	"github.com/ElysonGreber/JKPSol/app/params"
	"github.com/ElysonGreber/JKPSol/codec"
	"github.com/ElysonGreber/JKPSol/directory"
	"github.com/ElysonGreber/JKPSol/history"
	"github.com/ElysonGreber/JKPSol/session"
	"github.com/ElysonGreber/JKPSol/state"
)

// print writes v as indented JSON with --output json, otherwise runs text on
// a tab-aligned writer.
func (e *env) print(cmd *cobra.Command, v any, text func(w io.Writer)) error {
	out := cmd.OutOrStdout()
	if e.output == outputJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	text(tw)
	return tw.Flush()
}

func explorerLink(sig codec.Signature, cluster string) string {
	link := params.ExplorerURL + sig.String()
	if cluster != "" {
		link += "?cluster=" + cluster
	}
	return link
}

// formatDec drops the trailing zeros LegacyDec always prints.
func formatDec(d sdkmath.LegacyDec) string {
	s := d.String()
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	return s
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}

func writeState(w io.Writer, v session.View) {
	fmt.Fprintf(w, "Player:\t%s\n", v.Player)
	fmt.Fprintf(w, "State account:\t%s\n", v.Address)
	fmt.Fprintf(w, "Score:\t%d\n", v.State.Score)
	fmt.Fprintf(w, "Rounds:\t%d/%d\n", len(v.State.History), params.HistoryCapacity)
	fmt.Fprintf(w, "Synced:\t%s\n", formatTime(v.SyncedAt))
}

func writeHistory(w io.Writer, v session.View) {
	if len(v.Items) == 0 {
		fmt.Fprintln(w, "No rounds played yet.")
		return
	}
	fmt.Fprintln(w, "#\tYOU\tPROGRAM\tRESULT")
	for _, it := range v.Items {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", it.Round, it.PlayerMove, it.ProgramMove, it.Result)
	}
	fmt.Fprintf(w, "\nPage %d of %d\n", v.Page, v.Pages)
}

func writeSummary(w io.Writer, s history.Summary) {
	fmt.Fprintln(w, "MOVE\tPLAYED\tWINS\tWIN RATE")
	for _, m := range state.Moves {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d%%\n", m, s.Choices(m), s.Wins(m), s.WinPercent(m))
	}
	fmt.Fprintf(w, "\nRounds:\t%d\n", s.Rounds)
	fmt.Fprintf(w, "Won / Draw / Lost:\t%d / %d / %d\n", s.Won, s.Draw, s.Lost)
}

func writeRanking(w io.Writer, entries []directory.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "Leaderboard is empty.")
		return
	}
	fmt.Fprintln(w, "RANK\tNICKNAME\tSCORE\tPLAYER\tUPDATED")
	for i, en := range entries {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n", i+1, en.Nickname, en.Score, en.Identity, formatTime(en.UpdatedAt))
	}
}
