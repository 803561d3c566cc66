package s1_normalize

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/kcpatrick93/earning-scalp-bot/internal/contracts"
	"github.com/kcpatrick93/earning-scalp-bot/internal/strategyconfig"
)

// Normalizer turns RawCandidates into CanonicalCandidates
// ⭐ SSOT: S1 입력 정규화 (I/O 없음)
type Normalizer struct {
	cfg      strategyconfig.Normalization
	validate *validator.Validate
}

// New creates a normalizer for the given parameters
func New(cfg strategyconfig.Normalization) *Normalizer {
	return &Normalizer{
		cfg:      cfg,
		validate: validator.New(),
	}
}

// Normalize validates one candidate. A non-nil error is always a *contracts.Rejection.
// Malformed optional fields do not reject: they fall back to absent/default and are
// recorded in CanonicalCandidate.Issues.
func (n *Normalizer) Normalize(raw contracts.RawCandidate) (contracts.CanonicalCandidate, error) {
	symbol := symbolKey(raw.Symbol)

	if err := n.validate.Var(symbol, n.cfg.SymbolRule); err != nil {
		return contracts.CanonicalCandidate{}, &contracts.Rejection{
			Symbol: symbol,
			Reason: contracts.RejectInvalidSymbol,
			Detail: fmt.Sprintf("symbol %q", raw.Symbol),
		}
	}

	prev, err := positivePrice(raw.PreviousClose)
	if err != nil {
		return contracts.CanonicalCandidate{}, missingPrice(symbol, "previous_close", err)
	}
	cur, err := positivePrice(raw.CurrentPrice)
	if err != nil {
		return contracts.CanonicalCandidate{}, missingPrice(symbol, "current_price", err)
	}

	gap := (cur - prev) / prev * 100
	if math.IsNaN(gap) || math.IsInf(gap, 0) {
		return contracts.CanonicalCandidate{}, missingPrice(symbol, "gap_percent", contracts.ErrNotFinite)
	}

	c := contracts.CanonicalCandidate{
		Symbol:            symbol,
		CompanyName:       strings.TrimSpace(raw.CompanyName),
		PreviousClose:     prev,
		CurrentPrice:      cur,
		GapPercent:        gap,
		GapPercentDisplay: decimal.NewFromFloat(gap).Round(n.cfg.GapDisplayDigits).InexactFloat64(),
		GapDirection:      contracts.DirectionDown,
	}
	if gap > 0 {
		c.GapDirection = contracts.DirectionUp
	}

	issue := func(field string, code contracts.IssueCode, value string) {
		c.Issues = append(c.Issues, contracts.FieldIssue{Symbol: symbol, Field: field, Code: code, Value: value})
	}

	// 시가총액/거래량: 잘못된 값은 0 (unknown)
	if raw.MarketCap.Present() {
		if v, err := raw.MarketCap.Float64(); err == nil && v >= 0 {
			c.MarketCap = v
		} else {
			issue("market_cap", contracts.IssueMalformedNumeric, string(raw.MarketCap))
		}
	}
	if raw.Volume.Present() {
		if v, err := raw.Volume.Float64(); err == nil && v >= 0 && v < math.MaxInt64 {
			c.Volume = int64(math.Round(v))
		} else {
			issue("volume", contracts.IssueMalformedNumeric, string(raw.Volume))
		}
	}
	if raw.EarningsSurprise.Present() {
		if v, err := raw.EarningsSurprise.Float64(); err == nil {
			c.EarningsSurprise = v
			c.HasSurprise = true
		} else {
			issue("earnings_surprise", contracts.IssueMalformedNumeric, string(raw.EarningsSurprise))
		}
	}

	// 감성/방향: 알 수 없는 값은 absent 처리 (후보는 유지)
	var ok bool
	if c.Sentiment, ok = contracts.ParseSentiment(raw.Sentiment.String()); !ok {
		issue("sentiment", contracts.IssueMalformedSentiment, raw.Sentiment.String())
	}
	if c.Direction, ok = contracts.ParseDirection(raw.Direction.String()); !ok {
		issue("direction", contracts.IssueMalformedSentiment, raw.Direction.String())
	}
	if c.Result, ok = contracts.ParseResult(raw.Result.String()); !ok {
		issue("result", contracts.IssueMalformedSentiment, raw.Result.String())
	}
	if c.EarningsWindow, ok = contracts.ParseEarningsWindow(raw.EarningsWindow.String()); !ok {
		issue("earnings_window", contracts.IssueMalformedWindow, raw.EarningsWindow.String())
	}

	c.Confidence = n.cfg.DefaultConfidence
	if raw.Confidence.Present() {
		if v, err := raw.Confidence.Float64(); err == nil {
			c.Confidence = n.clampConfidence(v)
			c.ConfidenceSupplied = true
		} else {
			issue("confidence", contracts.IssueMalformedSentiment, string(raw.Confidence))
		}
	}

	return c, nil
}

// NormalizeAll normalizes a batch in input order. A symbol seen earlier in the
// batch is rejected as DUPLICATE_SYMBOL; the first occurrence wins.
func (n *Normalizer) NormalizeAll(raws []contracts.RawCandidate) ([]contracts.CanonicalCandidate, []*contracts.Rejection) {
	out := make([]contracts.CanonicalCandidate, 0, len(raws))
	var rejections []*contracts.Rejection
	seen := make(map[string]bool, len(raws))

	for _, raw := range raws {
		// 정규화 성공 여부와 무관하게 첫 등장만 인정
		key := symbolKey(raw.Symbol)
		if key != "" {
			if seen[key] {
				rejections = append(rejections, &contracts.Rejection{
					Symbol: key,
					Reason: contracts.RejectDuplicateSymbol,
				})
				continue
			}
			seen[key] = true
		}

		c, err := n.Normalize(raw)
		if err != nil {
			rej, ok := contracts.AsRejection(err)
			if !ok {
				rej = &contracts.Rejection{Symbol: raw.Symbol, Reason: contracts.RejectInvalidSymbol, Detail: err.Error()}
			}
			rejections = append(rejections, rej)
			continue
		}
		out = append(out, c)
	}

	return out, rejections
}

func symbolKey(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// clampConfidence clamps silently, then rounds to the nearest integer.
func (n *Normalizer) clampConfidence(v float64) int {
	if v < float64(n.cfg.ConfidenceMin) {
		return n.cfg.ConfidenceMin
	}
	if v > float64(n.cfg.ConfidenceMax) {
		return n.cfg.ConfidenceMax
	}
	return int(math.Round(v))
}

func positivePrice(v contracts.Number) (float64, error) {
	f, err := v.Float64()
	if err != nil {
		return 0, err
	}
	if f <= 0 {
		return 0, fmt.Errorf("non-positive value %v", f)
	}
	return f, nil
}

func missingPrice(symbol, field string, err error) *contracts.Rejection {
	return &contracts.Rejection{
		Symbol: symbol,
		Reason: contracts.RejectMissingPriceData,
		Detail: fmt.Sprintf("%s: %v", field, err),
	}
}
