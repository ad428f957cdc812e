package httpapi

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/poule-scoring/internal/usecase"
)

const (
	scoringRunIDHeader  = "X-Scoring-Run-Id"
	maxScoringBodyBytes = 4 << 10
)

var strictJSON = sonic.Config{DisallowUnknownFields: true}.Froze()

// scoringOptionsFromRequest reads the optional {"force":bool} body. An empty
// body and ?force=true are both accepted.
func scoringOptionsFromRequest(r *http.Request) (usecase.ScoringOptions, error) {
	var req scoringRequest
	if r.Body != nil {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxScoringBodyBytes))
		if err != nil {
			return usecase.ScoringOptions{}, fmt.Errorf("%w: read body: %v", usecase.ErrInvalidInput, err)
		}
		if len(bytes.TrimSpace(body)) > 0 {
			if err := strictJSON.Unmarshal(body, &req); err != nil {
				return usecase.ScoringOptions{}, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
			}
		}
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("force")); raw != "" {
		force, err := strconv.ParseBool(raw)
		if err != nil {
			return usecase.ScoringOptions{}, fmt.Errorf("%w: force must be a boolean", usecase.ErrInvalidInput)
		}
		req.Force = req.Force || force
	}

	return usecase.ScoringOptions{Force: req.Force}, nil
}

func setRunID(w http.ResponseWriter, runID string) {
	if runID != "" {
		w.Header().Set(scoringRunIDHeader, runID)
	}
}

func (h *Handler) ScoreMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ScoreMatches")
	defer span.End()

	opts, err := scoringOptionsFromRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.scoringService.ScoreMatches(ctx, opts)
	setRunID(w, result.RunID)
	if err != nil {
		h.logger.ErrorContext(ctx, "match scoring failed", "run_id", result.RunID, "force", opts.Force, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchScoringToDTO(result))
}

func (h *Handler) ScoreTopscorers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ScoreTopscorers")
	defer span.End()

	opts, err := scoringOptionsFromRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.scoringService.ScoreTopscorers(ctx, opts)
	setRunID(w, result.RunID)
	if err != nil {
		h.logger.ErrorContext(ctx, "topscorer scoring failed", "run_id", result.RunID, "force", opts.Force, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, topscorerScoringToDTO(result))
}

func (h *Handler) ScoreGroups(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ScoreGroups")
	defer span.End()

	opts, err := scoringOptionsFromRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.scoringService.ScoreGroups(ctx, opts)
	setRunID(w, result.RunID)
	if err != nil {
		h.logger.ErrorContext(ctx, "group scoring failed", "run_id", result.RunID, "force", opts.Force, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, groupScoringToDTO(result))
}

func (h *Handler) ScoreWinner(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ScoreWinner")
	defer span.End()

	opts, err := scoringOptionsFromRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.scoringService.ScoreWinner(ctx, opts)
	setRunID(w, result.RunID)
	if err != nil {
		h.logger.ErrorContext(ctx, "winner scoring failed", "run_id", result.RunID, "force", opts.Force, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, winnerScoringToDTO(result))
}

func (h *Handler) RunAllScoring(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunAllScoring")
	defer span.End()

	opts, err := scoringOptionsFromRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.scoringService.RunAll(ctx, opts)
	setRunID(w, result.RunID)
	if err != nil {
		h.logger.ErrorContext(ctx, "combined scoring run failed", "run_id", result.RunID, "force", opts.Force, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, runAllToDTO(result))
}
