package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/poule-scoring/internal/platform/logging"
	"github.com/riskibarqy/poule-scoring/internal/usecase"
)

type Handler struct {
	scoringService     *usecase.ScoringService
	standingsService   *usecase.StandingsService
	groundTruthService *usecase.GroundTruthService
	logger             *logging.Logger
	validator          *validator.Validate
}

func NewHandler(
	scoringService *usecase.ScoringService,
	standingsService *usecase.StandingsService,
	groundTruthService *usecase.GroundTruthService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		scoringService:     scoringService,
		standingsService:   standingsService,
		groundTruthService: groundTruthService,
		logger:             logger.Named("httpapi"),
		validator:          validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}
