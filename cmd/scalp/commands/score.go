package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kcpatrick93/earning-scalp-bot/internal/brain"
	"github.com/kcpatrick93/earning-scalp-bot/internal/contracts"
)

// scoreCmd represents the score command
var scoreCmd = &cobra.Command{
	Use:   "score [file|-]",
	Short: "Score candidates from JSON (no network)",
	Long: `Runs the pure pipeline on raw candidates and prints the report as JSON.

Input is either a JSON array of candidates or {"candidates": [...]}.
Reads stdin when the file is "-" or omitted.

Example:
  go run ./cmd/scalp score candidates.json
  cat candidates.json | go run ./cmd/scalp score --table`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScore,
}

var (
	scoreLimit       int
	scoreDiagnostics bool
	scoreTable       bool
)

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().IntVar(&scoreLimit, "limit", 0, "number of recommendations")
	scoreCmd.Flags().BoolVar(&scoreDiagnostics, "diagnostics", false, "include rejections and issues")
	scoreCmd.Flags().BoolVar(&scoreTable, "table", false, "print a table instead of JSON")
}

func runScore(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	strategy, _, err := loadStrategy(cfg)
	if err != nil {
		return err
	}

	in := cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	raws, err := decodeCandidates(in)
	if err != nil {
		return err
	}

	report, diag := brain.NewPipeline(strategy).RunWithLimit(raws, scoreLimit, time.Now().UTC())
	return writeScore(cmd.OutOrStdout(), report, diag)
}

// writeScore prints the report in the format chosen by flags
func writeScore(out io.Writer, report contracts.RunReport, diag brain.Diagnostics) error {
	if scoreTable {
		printReport(out, report)
		if scoreDiagnostics {
			printDiagnostics(out, diag)
		}
		return nil
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if scoreDiagnostics {
		return enc.Encode(struct {
			Report      contracts.RunReport `json:"report"`
			Diagnostics brain.Diagnostics   `json:"diagnostics"`
		}{report, diag})
	}
	return enc.Encode(report)
}

// decodeCandidates accepts a bare array or an object with "candidates"
func decodeCandidates(r io.Reader) ([]contracts.RawCandidate, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	if data[0] == '[' {
		var raws []contracts.RawCandidate
		if err := json.Unmarshal(data, &raws); err != nil {
			return nil, fmt.Errorf("decode candidates: %w", err)
		}
		return raws, nil
	}

	var wrapped struct {
		Candidates []contracts.RawCandidate `json:"candidates"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("decode candidates: %w", err)
	}
	return wrapped.Candidates, nil
}
