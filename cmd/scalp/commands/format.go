package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/kcpatrick93/earning-scalp-bot/internal/brain"
	"github.com/kcpatrick93/earning-scalp-bot/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

const (
	doubleLine = "═══════════════════════════════════════════════════════════"
	singleLine = "───────────────────────────────────────────────────────────"
)

var recColumns = []string{"#", "SYMBOL", "SIGNAL", "GAP", "SCORE", "CONF", "WINDOW", "PRICE"}
var recWidths = []int{3, 7, 13, 7, 6, 5, 12, 18}

// printHeader prints a titled block with key/value lines
func printHeader(w io.Writer, title string, kv [][2]string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, doubleLine)
	fmt.Fprintf(w, "  %s\n", title)
	fmt.Fprintln(w, singleLine)
	for _, pair := range kv {
		fmt.Fprintf(w, "  %-10s: %s\n", pair[0], pair[1])
	}
	fmt.Fprintln(w, singleLine)
}

// printReport prints the counts and the ranked table
func printReport(w io.Writer, r contracts.RunReport) {
	fmt.Fprintf(w, "Considered %d | Normalized %d | Qualified %d | Selected %d\n",
		r.Considered, r.Normalized, r.Qualified, r.Selected)
	fmt.Fprintln(w)

	if r.Empty() {
		fmt.Fprintln(w, "📭 No opportunities today")
		return
	}

	printTableRow(w, recColumns, recWidths)
	fmt.Fprintln(w, strings.Repeat("─", tableWidth(recWidths)))
	for _, rec := range r.Recommendations {
		printTableRow(w, []string{
			fmt.Sprintf("%d", rec.Rank),
			rec.Symbol,
			string(rec.Signal.Type),
			fmt.Sprintf("%+.1f%%", rec.GapPercentDisplay),
			fmt.Sprintf("%.0f", rec.Score),
			fmt.Sprintf("%d/10", rec.Confidence),
			string(rec.EarningsWindow),
			fmt.Sprintf("%.2f → %.2f", rec.PreviousClose, rec.CurrentPrice),
		}, recWidths)
	}
}

// printDiagnostics lists rejections and field issues
func printDiagnostics(w io.Writer, d brain.Diagnostics) {
	if len(d.Rejections) == 0 && len(d.Issues) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, singleLine)
	for _, rej := range d.Rejections {
		fmt.Fprintf(w, "⚠️  rejected %-6s %s %s\n", rej.Symbol, rej.Reason, rej.Detail)
	}
	for _, is := range d.Issues {
		fmt.Fprintf(w, "ℹ️  %-6s %s=%q (%s)\n", is.Symbol, is.Field, is.Value, is.Code)
	}
}

// printTableRow prints one padded row
func printTableRow(w io.Writer, values []string, widths []int) {
	for i, val := range values {
		fmt.Fprintf(w, "%-*s", widths[i], val)
		if i < len(values)-1 {
			fmt.Fprint(w, "  ")
		}
	}
	fmt.Fprintln(w)
}

func tableWidth(widths []int) int {
	total := 0
	for i, width := range widths {
		total += width
		if i < len(widths)-1 {
			total += 2 // spacing
		}
	}
	return total
}
