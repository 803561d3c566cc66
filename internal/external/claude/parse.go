package claude

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kcpatrick93/earning-scalp-bot/internal/contracts"
)

// ErrNoJudgment means the response carried none of the expected fields
var ErrNoJudgment = errors.New("no sentiment fields in response")

// parseJudgment accepts a JSON object (possibly wrapped in prose or a code fence)
// or "KEY: value" lines.
func parseJudgment(text string) (*contracts.SentimentJudgment, error) {
	if j, ok := parseJSON(text); ok {
		return j, nil
	}
	if j, ok := parseLines(text); ok {
		return j, nil
	}
	return nil, ErrNoJudgment
}

func parseJSON(text string) (*contracts.SentimentJudgment, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, false
	}

	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(text[start:end+1]), &fields); err != nil {
		return nil, false
	}

	lower := make(map[string]string, len(fields))
	for k, v := range fields {
		lower[strings.ToLower(strings.TrimSpace(k))] = scalarString(v)
	}
	return fromFields(lower)
}

func parseLines(text string) (*contracts.SentimentJudgment, bool) {
	fields := map[string]string{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.Trim(strings.TrimSpace(line), "*-• ")
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.Trim(strings.TrimSpace(key), "*"))
		if _, exists := fields[key]; !exists {
			fields[key] = strings.Trim(strings.TrimSpace(value), "*\"")
		}
	}
	return fromFields(fields)
}

func fromFields(fields map[string]string) (*contracts.SentimentJudgment, bool) {
	j := &contracts.SentimentJudgment{
		Sentiment:  fields["sentiment"],
		Direction:  fields["direction"],
		Confidence: fields["confidence"],
		Result:     fields["result"],
		Rationale:  firstOf(fields, "reason", "rationale", "reasoning"),
	}
	if j.Sentiment == "" && j.Direction == "" && j.Confidence == "" {
		return nil, false
	}
	return j, true
}

func scalarString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return fmt.Sprintf("%g", t)
	case bool:
		return fmt.Sprintf("%t", t)
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}

func firstOf(fields map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := fields[k]; v != "" {
			return v
		}
	}
	return ""
}
