package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kcpatrick93/earning-scalp-bot/internal/contracts"
	"github.com/kcpatrick93/earning-scalp-bot/pkg/config"
	"github.com/kcpatrick93/earning-scalp-bot/pkg/httputil"
	"github.com/kcpatrick93/earning-scalp-bot/pkg/logger"
)

var generatedAt = time.Date(2025, 7, 29, 13, 45, 0, 0, time.UTC)

func sampleReport() *contracts.RunReport {
	rec := func(sym string, rank int, sig contracts.SignalType, gap, score float64) contracts.Recommendation {
		r := contracts.Recommendation{Signal: contracts.Signal{Type: sig}, Rank: rank}
		r.Symbol = sym
		r.GapPercentDisplay = gap
		r.Score = score
		r.Confidence = 8
		r.PreviousClose = 162.5
		r.CurrentPrice = 165.8
		r.EarningsWindow = contracts.WindowBeforeOpen
		return r
	}
	return &contracts.RunReport{
		GeneratedAt: generatedAt,
		Considered:  5,
		Normalized:  4,
		Qualified:   2,
		Selected:    2,
		Recommendations: []contracts.Recommendation{
			rec("MRK", 1, contracts.SignalStrongBuy, 2.0, 100),
			rec("UNH", 2, contracts.SignalStrongShort, -4.6, 88),
		},
	}
}

func TestFormatReport(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	text := FormatReport(sampleReport(), ny)

	assert.Contains(t, text, "2025-07-29 09:45 EDT")
	assert.Contains(t, text, "Considered 5 | Normalized 4 | Qualified 2")
	assert.Contains(t, text, `1. 🟢 *MRK* STRONG\_BUY`)
	assert.Contains(t, text, `2. 🔴 *UNH* STRONG\_SHORT`)
	assert.Contains(t, text, "Gap +2.0% | Score 100 | Conf 8/10 | BEFORE\\_OPEN")
	assert.Contains(t, text, "Gap -4.6% | Score 88")
	assert.Less(t, strings.Index(text, "MRK"), strings.Index(text, "UNH"))
}

func TestFormatReport_Empty(t *testing.T) {
	text := FormatReport(&contracts.RunReport{GeneratedAt: generatedAt, Considered: 3, Normalized: 3}, nil)
	assert.Contains(t, text, "No opportunities today")
	assert.Contains(t, text, "2025-07-29 13:45 UTC")
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("é", maxMessageLen)
	out := truncate(long)
	assert.LessOrEqual(t, len(out), maxMessageLen)
	assert.True(t, strings.HasSuffix(out, "\n..."))
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, "short", truncate("short"))
}

func TestFormatReport_TruncatesOnLineBoundary(t *testing.T) {
	report := sampleReport()
	base := report.Recommendations[0]
	report.Recommendations = nil
	for i := 1; i <= 120; i++ {
		rec := base
		rec.Rank = i
		rec.Symbol = fmt.Sprintf("S%03d", i)
		report.Recommendations = append(report.Recommendations, rec)
	}

	text := FormatReport(report, nil)

	require.LessOrEqual(t, len(text), maxMessageLen)
	require.True(t, strings.HasSuffix(text, "\n..."))
	body := strings.TrimSuffix(text, "\n...")
	assert.Zero(t, strings.Count(body, "*")%2, "bold entity split")
	lines := strings.Split(body, "\n")
	assert.Regexp(t, `^$|STRONG\\_BUY$|BEFORE\\_OPEN$|165\.80$`, lines[len(lines)-1], "last kept line is complete")
}

func newTestNotifier(t *testing.T, handler http.HandlerFunc) *Notifier {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	log := logger.Nop()
	return NewNotifier(httputil.New(&config.Config{}, log).DisableRetry(), log, config.TelegramConfig{
		BotToken: "123:abc",
		ChatID:   "42",
		BaseURL:  server.URL,
	}, time.UTC)
}

func TestPublish(t *testing.T) {
	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bot123:abc/sendMessage", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "42", r.PostForm.Get("chat_id"))
		assert.Equal(t, "Markdown", r.PostForm.Get("parse_mode"))
		assert.Contains(t, r.PostForm.Get("text"), "*MRK*")
		w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
	})

	assert.NoError(t, n.Publish(context.Background(), sampleReport()))
	assert.Equal(t, "telegram", n.Name())
}

func TestPublish_APIError(t *testing.T) {
	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
	})

	err := n.Publish(context.Background(), sampleReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}
