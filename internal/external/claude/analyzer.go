package claude

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/kcpatrick93/earning-scalp-bot/internal/contracts"
	"github.com/kcpatrick93/earning-scalp-bot/pkg/config"
	"github.com/kcpatrick93/earning-scalp-bot/pkg/logger"
)

// Completer sends one prompt and returns the model's text
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// sdkCompleter calls the Messages API
type sdkCompleter struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

func (s *sdkCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.model),
		MaxTokens: s.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := s.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("claude API call failed: %w", err)
	}

	var out strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	if out.Len() == 0 {
		return "", fmt.Errorf("no text in claude response")
	}
	return out.String(), nil
}

// Analyzer asks a language model to judge an earnings release
// ⭐ SSOT: AI 감성 분석 호출은 여기서만 (결과 검증은 s1_normalize)
type Analyzer struct {
	completer Completer
	logger    *logger.Logger
	model     string
	timeout   time.Duration
}

// NewAnalyzer creates an analyzer backed by the Anthropic Messages API
func NewAnalyzer(cfg config.AnthropicConfig, log *logger.Logger) *Analyzer {
	completer := &sdkCompleter{
		client:    anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:     cfg.Model,
		maxTokens: int64(cfg.MaxTokens),
	}
	return NewAnalyzerWithCompleter(completer, cfg.Model, cfg.Timeout, log)
}

// NewAnalyzerWithCompleter creates an analyzer over any Completer
func NewAnalyzerWithCompleter(c Completer, model string, timeout time.Duration, log *logger.Logger) *Analyzer {
	return &Analyzer{
		completer: c,
		logger:    log,
		model:     model,
		timeout:   timeout,
	}
}

const systemPrompt = `You are an equity analyst judging same-day earnings releases for a short-term gap trade.
Answer with a single JSON object and nothing else:
{"sentiment": "POSITIVE|NEGATIVE|NEUTRAL", "direction": "UP|DOWN", "confidence": 1-10, "result": "BEAT|MISS|INLINE", "reason": "<one sentence>"}`

// Analyze implements contracts.SentimentSource.
// The answer is returned as raw strings; nothing here decides whether it is valid.
func (a *Analyzer) Analyze(ctx context.Context, req contracts.SentimentRequest) (*contracts.SentimentJudgment, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	text, err := a.completer.Complete(ctx, systemPrompt, buildPrompt(req))
	if err != nil {
		return nil, fmt.Errorf("sentiment %s: %w", req.Symbol, err)
	}

	judgment, err := parseJudgment(text)
	if err != nil {
		a.logger.WithSymbol(req.Symbol).WithField("response", truncate(text, 200)).Warn("Unparseable sentiment response")
		return nil, fmt.Errorf("sentiment %s: %w", req.Symbol, err)
	}
	judgment.Model = a.model

	a.logger.WithSymbol(req.Symbol).WithFields(map[string]interface{}{
		"sentiment":  judgment.Sentiment,
		"direction":  judgment.Direction,
		"confidence": judgment.Confidence,
	}).Debug("Sentiment judged")
	return judgment, nil
}

func buildPrompt(req contracts.SentimentRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Company: %s", req.Symbol)
	if req.CompanyName != "" {
		fmt.Fprintf(&b, " (%s)", req.CompanyName)
	}
	b.WriteString("\n")
	if req.Window != "" {
		fmt.Fprintf(&b, "Report timing: %s\n", req.Window)
	}
	if req.PreviousClose > 0 && req.CurrentPrice > 0 {
		gap := (req.CurrentPrice - req.PreviousClose) / req.PreviousClose * 100
		fmt.Fprintf(&b, "Previous close: %.2f\nCurrent price: %.2f\nGap: %+.2f%%\n", req.PreviousClose, req.CurrentPrice, gap)
	}
	if req.EarningsSurprise != nil {
		fmt.Fprintf(&b, "EPS surprise (actual - estimate): %+.2f\n", *req.EarningsSurprise)
	}
	b.WriteString("Judge the earnings reaction.")
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
