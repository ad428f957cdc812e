package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, metrics http.Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/pools/{poolID}/standings", handler.ListPoolStandings)
}

func registerScoringRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/scoring/matches", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.ScoreMatches)))
	mux.Handle("POST /v1/scoring/topscorers", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.ScoreTopscorers)))
	mux.Handle("POST /v1/scoring/groups", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.ScoreGroups)))
	mux.Handle("POST /v1/scoring/winner", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.ScoreWinner)))
	mux.Handle("POST /v1/scoring/run", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunAllScoring)))
}

func registerAdminRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("PUT /v1/admin/tournament-result", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.SetTournamentResult)))
	mux.Handle("PUT /v1/admin/groups/{group}/standing", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.SetGroupStanding)))
}
