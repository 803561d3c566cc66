package repos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kcpatrick93/earning-scalp-bot/internal/contracts"
)

// ReportRepository implements contracts.ReportRepository
// ⭐ SSOT: 실행 결과 저장/조회는 여기서만
type ReportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository creates a new report repository
func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

const schemaSQL = `
	CREATE SCHEMA IF NOT EXISTS scalp;

	CREATE TABLE IF NOT EXISTS scalp.run_reports (
		run_id           UUID PRIMARY KEY,
		trading_date     DATE NOT NULL,
		strategy_hash    TEXT NOT NULL,
		strategy_id      TEXT NOT NULL DEFAULT '',
		strategy_version TEXT NOT NULL DEFAULT '',
		strategy_yaml    TEXT NOT NULL DEFAULT '',
		generated_at     TIMESTAMPTZ NOT NULL,
		considered       INT NOT NULL,
		normalized       INT NOT NULL,
		qualified        INT NOT NULL,
		selected         INT NOT NULL,
		report           JSONB NOT NULL,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	-- 스냅샷 컬럼 이전 테이블 업그레이드
	ALTER TABLE scalp.run_reports ADD COLUMN IF NOT EXISTS strategy_id TEXT NOT NULL DEFAULT '';
	ALTER TABLE scalp.run_reports ADD COLUMN IF NOT EXISTS strategy_version TEXT NOT NULL DEFAULT '';
	ALTER TABLE scalp.run_reports ADD COLUMN IF NOT EXISTS strategy_yaml TEXT NOT NULL DEFAULT '';

	CREATE INDEX IF NOT EXISTS idx_run_reports_date
		ON scalp.run_reports (trading_date, created_at DESC);

	CREATE TABLE IF NOT EXISTS scalp.recommendations (
		run_id      UUID NOT NULL REFERENCES scalp.run_reports (run_id) ON DELETE CASCADE,
		rank        INT NOT NULL,
		symbol      TEXT NOT NULL,
		signal      TEXT NOT NULL,
		score       DOUBLE PRECISION NOT NULL,
		gap_percent DOUBLE PRECISION NOT NULL,
		confidence  INT NOT NULL,
		PRIMARY KEY (run_id, rank)
	);
`

// EnsureSchema creates the tables when missing
func (r *ReportRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create report schema: %w", err)
	}
	return nil
}

// Save stores the report and its recommendation rows in one transaction.
// An empty RunID is filled with a new UUID.
func (r *ReportRepository) Save(ctx context.Context, stored *contracts.StoredReport) error {
	if stored.RunID == "" {
		stored.RunID = uuid.NewString()
	}
	runID, err := uuid.Parse(stored.RunID)
	if err != nil {
		return fmt.Errorf("invalid run id %q: %w", stored.RunID, err)
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	reportJSON, err := json.Marshal(stored.Report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	// Begin transaction
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rep := stored.Report
	_, err = tx.Exec(ctx, insertReport, reportArgs(runID, stored, reportJSON)...)
	if err != nil {
		return fmt.Errorf("failed to insert run report: %w", err)
	}

	rows := recommendationRows(runID, rep)
	if len(rows) > 0 {
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"scalp", "recommendations"},
			[]string{"run_id", "rank", "symbol", "signal", "score", "gap_percent", "confidence"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return fmt.Errorf("failed to insert recommendations: %w", err)
		}
	}

	// Commit transaction
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

const insertReport = `
	INSERT INTO scalp.run_reports (
		run_id, trading_date,
		strategy_hash, strategy_id, strategy_version, strategy_yaml,
		generated_at, considered, normalized, qualified, selected,
		report, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12::jsonb, $13)
`

// reportArgs lines up with insertReport's columns
func reportArgs(runID uuid.UUID, stored *contracts.StoredReport, reportJSON []byte) []interface{} {
	rep := stored.Report
	snap := stored.Strategy
	return []interface{}{
		runID, stored.TradingDate,
		snap.ConfigHash, snap.StrategyID, snap.Version, snap.ConfigYAML,
		rep.GeneratedAt, rep.Considered, rep.Normalized, rep.Qualified, rep.Selected,
		string(reportJSON), stored.CreatedAt,
	}
}

// recommendationRows flattens the ranked list for COPY
func recommendationRows(runID uuid.UUID, rep contracts.RunReport) [][]interface{} {
	rows := make([][]interface{}, 0, len(rep.Recommendations))
	for _, rec := range rep.Recommendations {
		rows = append(rows, []interface{}{
			runID, rec.Rank, rec.Symbol, string(rec.Signal.Type),
			rec.Score, rec.GapPercentDisplay, rec.Confidence,
		})
	}
	return rows
}

const selectReport = `
	SELECT run_id::text, trading_date,
		strategy_hash, strategy_id, strategy_version, strategy_yaml,
		report, created_at
	FROM scalp.run_reports
`

// Latest returns the most recent run
func (r *ReportRepository) Latest(ctx context.Context) (*contracts.StoredReport, error) {
	row := r.pool.QueryRow(ctx, selectReport+` ORDER BY created_at DESC LIMIT 1`)

	stored, err := scanReport(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, contracts.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest report: %w", err)
	}
	return stored, nil
}

// ByDate returns all runs for a trading date, newest first
func (r *ReportRepository) ByDate(ctx context.Context, day time.Time) ([]contracts.StoredReport, error) {
	rows, err := r.pool.Query(ctx, selectReport+` WHERE trading_date = $1 ORDER BY created_at DESC`, day)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var out []contracts.StoredReport
	for rows.Next() {
		stored, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, *stored)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return out, nil
}

func scanReport(row pgx.Row) (*contracts.StoredReport, error) {
	var stored contracts.StoredReport
	var reportJSON []byte

	snap := &stored.Strategy
	if err := row.Scan(
		&stored.RunID, &stored.TradingDate,
		&snap.ConfigHash, &snap.StrategyID, &snap.Version, &snap.ConfigYAML,
		&reportJSON, &stored.CreatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(reportJSON, &stored.Report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &stored, nil
}
