package contracts

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by repositories when nothing matches.
	ErrNotFound = errors.New("not found")

	// ErrNoQuote is returned by quote sources that answered without usable prices.
	ErrNoQuote = errors.New("no quote data")
)

// EarningsEvent is one calendar entry.
type EarningsEvent struct {
	Symbol      string    `json:"symbol"`
	CompanyName string    `json:"company_name,omitempty"`
	Date        time.Time `json:"date"`
	Hour        string    `json:"hour,omitempty"` // bmo / amc / raw text
	EPSActual   *float64  `json:"eps_actual,omitempty"`
	EPSEstimate *float64  `json:"eps_estimate,omitempty"`
	Source      string    `json:"source"`
}

// Surprise returns actual - estimate when both are known.
func (e EarningsEvent) Surprise() (float64, bool) {
	if e.EPSActual == nil || e.EPSEstimate == nil {
		return 0, false
	}
	return *e.EPSActual - *e.EPSEstimate, true
}

// Quote is a previous close and current price pair.
type Quote struct {
	Symbol        string    `json:"symbol"`
	PreviousClose float64   `json:"previous_close"`
	CurrentPrice  float64   `json:"current_price"`
	MarketCap     float64   `json:"market_cap,omitempty"`
	Volume        int64     `json:"volume,omitempty"`
	Source        string    `json:"source"`
	FetchedAt     time.Time `json:"fetched_at"`
}

// Valid reports whether both prices are usable.
func (q *Quote) Valid() bool {
	return q != nil && q.PreviousClose > 0 && q.CurrentPrice > 0
}

// SentimentRequest is what the sentiment source is asked about.
type SentimentRequest struct {
	Symbol           string
	CompanyName      string
	PreviousClose    float64
	CurrentPrice     float64
	EarningsSurprise *float64
	Window           string
}

// SentimentJudgment is the unvalidated answer of the sentiment source.
// The normalizer validates every field.
type SentimentJudgment struct {
	Sentiment  string `json:"sentiment"`
	Direction  string `json:"direction"`
	Confidence string `json:"confidence"`
	Result     string `json:"result,omitempty"`
	Rationale  string `json:"rationale,omitempty"`
	Model      string `json:"model,omitempty"`
}

// CalendarSource lists companies reporting on a day.
// ⭐ SSOT: 실적 발표 일정 인터페이스
type CalendarSource interface {
	Name() string
	Fetch(ctx context.Context, day time.Time) ([]EarningsEvent, error)
}

// QuoteSource returns prices for a symbol.
// ⭐ SSOT: 시세 조회 인터페이스
type QuoteSource interface {
	Name() string
	Quote(ctx context.Context, symbol string) (*Quote, error)
}

// SentimentSource judges an earnings report.
// ⭐ SSOT: AI 감성 분석 인터페이스
type SentimentSource interface {
	Analyze(ctx context.Context, req SentimentRequest) (*SentimentJudgment, error)
}

// Notifier publishes a finished report.
// ⭐ SSOT: 결과 전송 인터페이스
type Notifier interface {
	Name() string
	Publish(ctx context.Context, report *RunReport) error
}

// ReportRepository persists run reports.
type ReportRepository interface {
	Save(ctx context.Context, stored *StoredReport) error
	Latest(ctx context.Context) (*StoredReport, error)
	ByDate(ctx context.Context, day time.Time) ([]StoredReport, error)
}
