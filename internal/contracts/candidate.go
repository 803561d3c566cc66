package contracts

import "strings"

// RawCandidate is one company reporting earnings, as joined by the collector
// from the calendar, quote and sentiment sources. Every field may be missing
// or malformed.
// ⭐ SSOT: S0 → S1 후보 데이터 전달
type RawCandidate struct {
	Symbol           string `json:"symbol"`
	CompanyName      string `json:"company_name,omitempty"`
	MarketCap        Number `json:"market_cap,omitempty"`
	Volume           Number `json:"volume,omitempty"`
	PreviousClose    Number `json:"previous_close"`
	CurrentPrice     Number `json:"current_price"`
	EarningsSurprise Number `json:"earnings_surprise,omitempty"`
	Result           Text   `json:"result,omitempty"` // BEAT/MISS/INLINE, advisory
	Sentiment        Text   `json:"sentiment,omitempty"`
	Direction        Text   `json:"direction,omitempty"`
	Confidence       Number `json:"confidence,omitempty"`
	EarningsWindow   Text   `json:"earnings_window,omitempty"`
}

// Sentiment is the AI judgment of an earnings report.
type Sentiment string

const (
	SentimentAbsent   Sentiment = ""
	SentimentPositive Sentiment = "POSITIVE"
	SentimentNegative Sentiment = "NEGATIVE"
	SentimentNeutral  Sentiment = "NEUTRAL"
)

// ParseSentiment matches case-insensitively. ok is false for unknown text;
// blank text is absent and ok.
func ParseSentiment(s string) (Sentiment, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return SentimentAbsent, true
	case "POSITIVE":
		return SentimentPositive, true
	case "NEGATIVE":
		return SentimentNegative, true
	case "NEUTRAL":
		return SentimentNeutral, true
	}
	return SentimentAbsent, false
}

// Direction is an expected or observed price direction.
type Direction string

const (
	DirectionAbsent Direction = ""
	DirectionUp     Direction = "UP"
	DirectionDown   Direction = "DOWN"
)

// ParseDirection matches case-insensitively. ok is false for unknown text.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return DirectionAbsent, true
	case "UP":
		return DirectionUp, true
	case "DOWN":
		return DirectionDown, true
	}
	return DirectionAbsent, false
}

// EarningsWindow tells whether the report came before the open or after the close.
type EarningsWindow string

const (
	WindowUnknown    EarningsWindow = "UNKNOWN"
	WindowBeforeOpen EarningsWindow = "BEFORE_OPEN"
	WindowAfterClose EarningsWindow = "AFTER_CLOSE"
)

// ParseEarningsWindow accepts the calendar shorthands BMO and AMC.
// Unknown text maps to WindowUnknown with ok false.
func ParseEarningsWindow(s string) (EarningsWindow, bool) {
	v := strings.ToUpper(strings.TrimSpace(s))
	v = strings.NewReplacer("-", "_", " ", "_").Replace(v)
	switch v {
	case "", "UNKNOWN", "TNS", "TAS":
		return WindowUnknown, true
	case "BEFORE_OPEN", "BMO", "PRE_MARKET":
		return WindowBeforeOpen, true
	case "AFTER_CLOSE", "AMC", "AFTER_HOURS":
		return WindowAfterClose, true
	}
	return WindowUnknown, false
}

// Result is the categorical earnings outcome. It is advisory only:
// the numeric surprise wins when both are present.
type Result string

const (
	ResultAbsent Result = ""
	ResultBeat   Result = "BEAT"
	ResultMiss   Result = "MISS"
	ResultInline Result = "INLINE"
)

// ParseResult matches case-insensitively.
func ParseResult(s string) (Result, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return ResultAbsent, true
	case "BEAT":
		return ResultBeat, true
	case "MISS":
		return ResultMiss, true
	case "INLINE", "IN_LINE", "MEET", "MET":
		return ResultInline, true
	}
	return ResultAbsent, false
}

// CanonicalCandidate is a RawCandidate that passed normalization.
// It only exists when both prices are positive and the gap is finite.
// ⭐ SSOT: S1 → S2 정규화된 후보
type CanonicalCandidate struct {
	Symbol        string  `json:"symbol"`
	CompanyName   string  `json:"company_name,omitempty"`
	MarketCap     float64 `json:"market_cap"` // 0 = unknown
	Volume        int64   `json:"volume"`     // 0 = unknown
	PreviousClose float64 `json:"previous_close"`
	CurrentPrice  float64 `json:"current_price"`

	GapPercent        float64   `json:"-"`           // unrounded, scoring uses this
	GapPercentDisplay float64   `json:"gap_percent"` // 소수점 1자리
	GapDirection      Direction `json:"gap_direction"`

	EarningsSurprise float64 `json:"earnings_surprise,omitempty"`
	HasSurprise      bool    `json:"-"`
	Result           Result  `json:"result,omitempty"`

	Sentiment          Sentiment      `json:"sentiment,omitempty"`
	Direction          Direction      `json:"direction,omitempty"`
	Confidence         int            `json:"confidence"`
	ConfidenceSupplied bool           `json:"-"`
	EarningsWindow     EarningsWindow `json:"earnings_window"`

	Issues []FieldIssue `json:"-"`
}

// AbsGap returns |gap_percent|.
func (c CanonicalCandidate) AbsGap() float64 {
	if c.GapPercent < 0 {
		return -c.GapPercent
	}
	return c.GapPercent
}

// EffectiveDirection is the supplied direction, or the gap direction when none was given.
func (c CanonicalCandidate) EffectiveDirection() Direction {
	if c.Direction != DirectionAbsent {
		return c.Direction
	}
	return c.GapDirection
}

// DirectionAligned reports whether a supplied direction agrees with the gap.
// An absent direction counts as aligned.
func (c CanonicalCandidate) DirectionAligned() bool {
	return c.Direction == DirectionAbsent || c.Direction == c.GapDirection
}
