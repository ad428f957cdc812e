package httpapi

import (
	"fmt"
	"net/http"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/poule-scoring/internal/usecase"
)

func (h *Handler) SetTournamentResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetTournamentResult")
	defer span.End()

	var req setTournamentResultRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.groundTruthService.SetTournamentResult(ctx, usecase.SetTournamentResultInput{
		Winner:   req.Winner,
		Finalist: req.Finalist,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "set tournament result failed", "winner", req.Winner, "finalist", req.Finalist, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, tournamentResultToDTO(result))
}

func (h *Handler) SetGroupStanding(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetGroupStanding")
	defer span.End()

	group := r.PathValue("group")

	var req setGroupStandingRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	standing, err := h.groundTruthService.SetGroupStanding(ctx, usecase.SetGroupStandingInput{
		GroupLabel: group,
		Teams:      req.Teams,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "set group standing failed", "group", group, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, groupStandingToDTO(standing))
}
