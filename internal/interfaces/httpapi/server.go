package httpapi

import (
	"net/http"

	"github.com/riskibarqy/poule-scoring/internal/platform/logging"
)

type RouterConfig struct {
	ServiceName        string
	CORSAllowedOrigins []string
	InternalJobToken   string
	// Metrics is mounted at GET /metrics when set.
	Metrics http.Handler
}

func NewRouter(handler *Handler, cfg RouterConfig, logger *logging.Logger) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "poule-scoring"
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler, cfg.Metrics)
	registerPublicRoutes(mux, handler)
	registerScoringRoutes(mux, handler, cfg.InternalJobToken)
	registerAdminRoutes(mux, handler, cfg.InternalJobToken)

	return RequestTracing(serviceName, RequestLogging(logger, CORS(cfg.CORSAllowedOrigins, recoverPanic(logger, mux))))
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.recoverPanic")
		defer span.End()

		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(ctx, "panic recovered", "panic", rec, "path", r.URL.Path)
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
