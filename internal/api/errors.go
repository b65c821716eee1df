// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ManuGH/avalon/internal/domain/session/manager"
	"github.com/ManuGH/avalon/internal/domain/session/model"
	"github.com/ManuGH/avalon/internal/history"
	"github.com/ManuGH/avalon/internal/log"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error     string `json:"error"`
	Detail    string `json:"detail"`
	RequestID string `json:"requestId,omitempty"`
}

// errBadRequest marks malformed input detected by the handlers themselves.
var errBadRequest = errors.New("bad request")

type errorMapping struct {
	err    error
	status int
	code   string
}

// errorTable is checked in order; the first errors.Is match wins.
var errorTable = []errorMapping{
	{manager.ErrSessionNotFound, http.StatusNotFound, "session_not_found"},
	{manager.ErrSessionExists, http.StatusConflict, "session_exists"},
	{manager.ErrWrongPhase, http.StatusConflict, "wrong_phase"},
	{manager.ErrAlreadyVoted, http.StatusConflict, "already_voted"},
	{manager.ErrAlreadyJoined, http.StatusConflict, "already_joined"},
	{manager.ErrLobbyFull, http.StatusConflict, "lobby_full"},
	{manager.ErrNotEnoughPlayers, http.StatusConflict, "not_enough_players"},
	{manager.ErrRestartActive, http.StatusConflict, "restart_active"},
	{manager.ErrNoRestartVote, http.StatusConflict, "no_restart_vote"},
	{manager.ErrNotHost, http.StatusForbidden, "not_host"},
	{manager.ErrNotLeader, http.StatusForbidden, "not_leader"},
	{manager.ErrNotMember, http.StatusForbidden, "not_member"},
	{manager.ErrNotTeamMember, http.StatusForbidden, "not_team_member"},
	{manager.ErrNotAssassin, http.StatusForbidden, "not_assassin"},
	{manager.ErrGoodCannotFail, http.StatusForbidden, "good_cannot_fail"},
	{manager.ErrTeamSize, http.StatusUnprocessableEntity, "team_size"},
	{manager.ErrDuplicateTeamMember, http.StatusUnprocessableEntity, "duplicate_team_member"},
	{manager.ErrSelfTarget, http.StatusUnprocessableEntity, "self_target"},
	{model.ErrInvalidKey, http.StatusUnprocessableEntity, "invalid_session_key"},
	{model.ErrInvalidPlayer, http.StatusUnprocessableEntity, "invalid_player"},
	{history.ErrInvalidRecord, http.StatusUnprocessableEntity, "invalid_record"},
	{errBadRequest, http.StatusUnprocessableEntity, "bad_request"},
}

// classify maps err to an HTTP status and a stable error code.
func classify(err error) (int, string) {
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, "internal_error"
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err and writes it. Server faults are logged and their
// detail is not exposed.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	body := errorBody{Error: code, Detail: err.Error(), RequestID: log.RequestIDFromContext(r.Context())}
	if status >= http.StatusInternalServerError {
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Error().Err(err).Str(log.FieldEvent, "api.internal_error").Msg("request failed")
		body.Detail = "An unexpected error occurred."
	}
	writeJSON(w, status, body)
}

func writeUnavailable(w http.ResponseWriter, r *http.Request, err error) {
	writeJSON(w, http.StatusServiceUnavailable, errorBody{
		Error:     "unavailable",
		Detail:    err.Error(),
		RequestID: log.RequestIDFromContext(r.Context()),
	})
}
