package telegram

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kcpatrick93/earning-scalp-bot/internal/contracts"
)

// maxMessageLen is Telegram's limit for one message
const maxMessageLen = 4096

var markdownEscaper = strings.NewReplacer("_", `\_`, "*", `\*`, "`", "\\`", "[", `\[`)

// FormatReport renders a run report as legacy Markdown
func FormatReport(r *contracts.RunReport, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 *Earnings gap signals* %s\n", r.GeneratedAt.In(loc).Format("2006-01-02 15:04 MST"))
	fmt.Fprintf(&b, "Considered %d | Normalized %d | Qualified %d\n", r.Considered, r.Normalized, r.Qualified)

	if r.Empty() {
		b.WriteString("\n📭 No opportunities today")
		return b.String()
	}

	for _, rec := range r.Recommendations {
		icon := "🔴"
		if rec.Signal.Type.IsLong() {
			icon = "🟢"
		}
		fmt.Fprintf(&b, "\n%d. %s *%s* %s\n", rec.Rank, icon, markdownEscaper.Replace(rec.Symbol), markdownEscaper.Replace(string(rec.Signal.Type)))
		fmt.Fprintf(&b, "   Gap %+.1f%% | Score %.0f | Conf %d/10", rec.GapPercentDisplay, rec.Score, rec.Confidence)
		if rec.EarningsWindow != contracts.WindowUnknown {
			fmt.Fprintf(&b, " | %s", markdownEscaper.Replace(string(rec.EarningsWindow)))
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, "   %.2f → %.2f\n", rec.PreviousClose, rec.CurrentPrice)
	}

	return truncate(strings.TrimRight(b.String(), "\n"))
}

// truncate cuts at the last line break that fits so no Markdown entity is split
func truncate(s string) string {
	if len(s) <= maxMessageLen {
		return s
	}
	const more = "\n..."
	cut := s[:maxMessageLen-len(more)]
	if i := strings.LastIndexByte(cut, '\n'); i > 0 {
		return cut[:i] + more
	}
	// 줄바꿈이 없으면 바이트 기준 자르기 후 깨진 룬 제거
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut + more
}
