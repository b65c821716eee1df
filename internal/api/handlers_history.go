// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ManuGH/avalon/internal/domain/session/model"
	"github.com/ManuGH/avalon/internal/history"
)

// historyResponse wraps the list so the shape can grow without breaking clients.
type historyResponse struct {
	GuildID string               `json:"guildId"`
	Games   []history.GameRecord `json:"games"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	guild := chi.URLParam(r, "guild")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, r, fmt.Errorf("%w: limit must be a non-negative integer", errBadRequest))
			return
		}
		limit = n
	}

	games, err := s.history.History(r.Context(), guild, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if games == nil {
		games = []history.GameRecord{}
	}
	writeJSON(w, http.StatusOK, historyResponse{GuildID: guild, Games: games})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	guild := chi.URLParam(r, "guild")
	player := model.PlayerID(chi.URLParam(r, "player"))

	stats, err := s.history.PlayerStats(r.Context(), player, guild)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
