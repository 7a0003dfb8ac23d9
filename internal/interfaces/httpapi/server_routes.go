package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerStatusRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/cycles/last", handler.GetLastCycle)
	mux.HandleFunc("GET /v1/teams", handler.ListTeams)
	mux.HandleFunc("GET /v1/teams/{teamID}/fixtures", handler.ListFixturesByTeam)
	mux.HandleFunc("GET /v1/matches/{matchID}/state", handler.GetMatchState)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/poll", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunPollJob)))
}
