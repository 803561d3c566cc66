package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/kcpatrick93/earning-scalp-bot/internal/brain"
	"github.com/kcpatrick93/earning-scalp-bot/internal/contracts"
	"github.com/kcpatrick93/earning-scalp-bot/pkg/logger"
)

// Scanner starts engine runs in the background.
// Start must claim the scanner before returning, or fail with brain.ErrScanInProgress.
type Scanner interface {
	Start(ctx context.Context, cfg brain.RunConfig, done func(*brain.RunResult, error)) error
}

// ReportHandler handles report and scan endpoints
// ⭐ SSOT: 리포트 API 핸들러는 이 구조체에서만
type ReportHandler struct {
	repo     contracts.ReportRepository // nil이면 503
	scanner  Scanner                    // nil이면 503
	pipeline *brain.Pipeline
	loc      *time.Location
	logger   *logger.Logger
	validate *validator.Validate

	baseCtx     context.Context
	scanTimeout time.Duration
	now         func() time.Time
}

// ReportHandlerConfig holds the handler's collaborators
type ReportHandlerConfig struct {
	Repository  contracts.ReportRepository
	Scanner     Scanner
	Pipeline    *brain.Pipeline
	Location    *time.Location
	BaseContext context.Context // background scans stop when this is cancelled
	ScanTimeout time.Duration
}

// NewReportHandler creates a new report handler
func NewReportHandler(cfg ReportHandlerConfig, log *logger.Logger) *ReportHandler {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	base := cfg.BaseContext
	if base == nil {
		base = context.Background()
	}
	timeout := cfg.ScanTimeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &ReportHandler{
		repo:        cfg.Repository,
		scanner:     cfg.Scanner,
		pipeline:    cfg.Pipeline,
		loc:         loc,
		logger:      log,
		validate:    validator.New(),
		baseCtx:     base,
		scanTimeout: timeout,
		now:         time.Now,
	}
}

// GetLatest returns the most recent stored report
// GET /api/reports/latest
func (h *ReportHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		respondError(w, http.StatusServiceUnavailable, "Report storage is not configured")
		return
	}

	stored, err := h.repo.Latest(r.Context())
	if errors.Is(err, contracts.ErrNotFound) {
		respondError(w, http.StatusNotFound, "No report stored yet")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to get latest report")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve report")
		return
	}

	respondJSON(w, http.StatusOK, stored)
}

// GetByDate returns every report stored for a trading date (default today)
// GET /api/reports?date=YYYY-MM-DD
func (h *ReportHandler) GetByDate(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		respondError(w, http.StatusServiceUnavailable, "Report storage is not configured")
		return
	}

	day, err := h.parseDay(r.URL.Query().Get("date"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid 'date' format (expected YYYY-MM-DD)")
		return
	}

	reports, err := h.repo.ByDate(r.Context(), day)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get reports by date")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve reports")
		return
	}
	if reports == nil {
		reports = []contracts.StoredReport{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"date":    day.Format(brain.DateLayout),
		"count":   len(reports),
		"reports": reports,
	})
}

// ScanRequest represents a manual scan request
type ScanRequest struct {
	Date   string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Limit  int    `json:"limit" validate:"gte=0,lte=50"`
	DryRun bool   `json:"dry_run"`
}

// ScanResponse is returned when a scan has been accepted
type ScanResponse struct {
	Status string `json:"status"`
	RunID  string `json:"run_id"`
	Date   string `json:"date"`
}

// TriggerScan starts a scan in the background
// POST /api/scan
func (h *ReportHandler) TriggerScan(w http.ResponseWriter, r *http.Request) {
	if h.scanner == nil {
		respondError(w, http.StatusServiceUnavailable, "Scanning is not configured")
		return
	}

	var req ScanRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	day, err := h.parseDay(req.Date)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid 'date' format (expected YYYY-MM-DD)")
		return
	}
	cfg := brain.RunConfig{
		Day:    day,
		RunID:  uuid.NewString(),
		Limit:  req.Limit,
		DryRun: req.DryRun,
	}
	log := h.logger.WithRun(cfg.RunID)

	ctx, cancel := context.WithTimeout(h.baseCtx, h.scanTimeout)
	err = h.scanner.Start(ctx, cfg, func(_ *brain.RunResult, err error) {
		defer cancel()
		if err != nil {
			log.WithError(err).Error("Manual scan failed")
		}
	})
	if err != nil {
		cancel()
		if errors.Is(err, brain.ErrScanInProgress) {
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		log.WithError(err).Error("Failed to start scan")
		respondError(w, http.StatusInternalServerError, "Failed to start scan")
		return
	}

	log.WithFields(map[string]interface{}{
		"day":     day.Format(brain.DateLayout),
		"dry_run": req.DryRun,
	}).Info("Manual scan triggered")

	respondJSON(w, http.StatusAccepted, ScanResponse{
		Status: "started",
		RunID:  cfg.RunID,
		Date:   day.Format(brain.DateLayout),
	})
}

// ScoreRequest carries candidates for the pure pipeline
type ScoreRequest struct {
	Candidates []contracts.RawCandidate `json:"candidates"`
	Limit      int                      `json:"limit" validate:"gte=0,lte=50"`
}

// ScoreResponse is the report plus what the run observed
type ScoreResponse struct {
	Report      contracts.RunReport `json:"report"`
	Diagnostics brain.Diagnostics   `json:"diagnostics"`
}

// Score runs the pipeline on posted candidates without any I/O
// POST /api/score
func (h *ReportHandler) Score(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	rep, diag := h.pipeline.RunWithLimit(req.Candidates, req.Limit, h.now().UTC())
	respondJSON(w, http.StatusOK, ScoreResponse{Report: rep, Diagnostics: diag})
}

// parseDay parses YYYY-MM-DD; empty means today in the market time zone
func (h *ReportHandler) parseDay(s string) (time.Time, error) {
	return brain.ResolveTradingDay(s, h.now(), h.loc)
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
