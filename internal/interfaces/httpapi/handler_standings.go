package httpapi

import (
	"net/http"
	"strings"
)

func (h *Handler) ListPoolStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPoolStandings")
	defer span.End()

	poolID := strings.TrimSpace(r.PathValue("poolID"))
	members, err := h.standingsService.List(ctx, poolID)
	if err != nil {
		h.logger.WarnContext(ctx, "list pool standings failed", "pool_id", poolID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, standingsToDTO(poolID, members))
}
