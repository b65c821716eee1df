// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ManuGH/avalon/internal/domain/session/manager"
	"github.com/ManuGH/avalon/internal/domain/session/model"
	"github.com/ManuGH/avalon/internal/log"
)

// Action names accepted by POST .../actions.
const (
	ActionCreate      = "create"
	ActionJoin        = "join"
	ActionLeave       = "leave"
	ActionCancel      = "cancel"
	ActionStart       = "start"
	ActionPropose     = "propose"
	ActionVoteTeam    = "vote_team"
	ActionVoteQuest   = "vote_quest"
	ActionAssassinate = "assassinate"
	ActionRestart     = "restart"
	ActionVoteRestart = "vote_restart"
)

// ActionRequest is one player interaction. Which optional fields are
// required depends on Action.
type ActionRequest struct {
	Actor       model.PlayerID   `json:"actor"`
	DisplayName string           `json:"displayName,omitempty"`
	Action      string           `json:"action"`
	Team        []model.PlayerID `json:"team,omitempty"`
	Approve     *bool            `json:"approve,omitempty"`
	Success     *bool            `json:"success,omitempty"`
	Target      model.PlayerID   `json:"target,omitempty"`
	Yes         *bool            `json:"yes,omitempty"`
}

func sessionKey(r *http.Request) model.SessionKey {
	return model.SessionKey{
		GuildID:   chi.URLParam(r, "guild"),
		ChannelID: chi.URLParam(r, "channel"),
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	view, err := s.engine.Status(r.Context(), sessionKey(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	var req ActionRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, r, fmt.Errorf("%w: decode body: %v", errBadRequest, err))
		return
	}

	ctx := log.ContextWithActorID(r.Context(), string(req.Actor))
	res, err := s.dispatch(r.WithContext(ctx), sessionKey(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func requireBool(name string, v *bool) (bool, error) {
	if v == nil {
		return false, fmt.Errorf("%w: %q is required", errBadRequest, name)
	}
	return *v, nil
}

func (s *Server) dispatch(r *http.Request, key model.SessionKey, req ActionRequest) (manager.Result, error) {
	ctx := r.Context()
	e := s.engine

	switch req.Action {
	case ActionCreate, ActionJoin:
		p, err := model.NewPlayer(req.Actor, req.DisplayName)
		if err != nil {
			return manager.Result{}, err
		}
		if req.Action == ActionCreate {
			return e.Create(ctx, key, p)
		}
		return e.Join(ctx, key, p)
	case ActionLeave:
		return e.Leave(ctx, key, req.Actor)
	case ActionCancel:
		return e.Cancel(ctx, key, req.Actor)
	case ActionStart:
		return e.Start(ctx, key, req.Actor)
	case ActionPropose:
		return e.Propose(ctx, key, req.Actor, req.Team)
	case ActionVoteTeam:
		approve, err := requireBool("approve", req.Approve)
		if err != nil {
			return manager.Result{}, err
		}
		return e.VoteTeam(ctx, key, req.Actor, approve)
	case ActionVoteQuest:
		success, err := requireBool("success", req.Success)
		if err != nil {
			return manager.Result{}, err
		}
		return e.VoteQuest(ctx, key, req.Actor, success)
	case ActionAssassinate:
		if req.Target == "" {
			return manager.Result{}, fmt.Errorf("%w: \"target\" is required", errBadRequest)
		}
		return e.Assassinate(ctx, key, req.Actor, req.Target)
	case ActionRestart:
		return e.OpenRestart(ctx, key, req.Actor)
	case ActionVoteRestart:
		yes, err := requireBool("yes", req.Yes)
		if err != nil {
			return manager.Result{}, err
		}
		return e.VoteRestart(ctx, key, req.Actor, yes)
	default:
		return manager.Result{}, fmt.Errorf("%w: unknown action %q", errBadRequest, req.Action)
	}
}
