// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package store owns the table of live sessions.
package store

import (
	"errors"
	"sync"

	"github.com/ManuGH/avalon/internal/domain/session/model"
)

var (
	ErrSessionExists   = errors.New("session already exists for key")
	ErrSessionNotFound = errors.New("session not found")
)

// Registry is the keyed table of live sessions, one per (guild, channel).
//
// Lock order is session then registry: Delete expects the caller to hold the
// session lock, and the registry never locks a session while holding its own.
type Registry struct {
	mu       sync.RWMutex
	sessions map[model.SessionKey]*model.Session
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[model.SessionKey]*model.Session)}
}

// Create registers s under its key.
func (r *Registry) Create(s *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[s.Key]; exists {
		return ErrSessionExists
	}
	r.sessions[s.Key] = s
	return nil
}

// Get fetches the live session for key.
func (r *Registry) Get(key model.SessionKey) (*model.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[key]
	return s, ok
}

// Has reports whether key has a live session.
func (r *Registry) Has(key model.SessionKey) bool {
	_, ok := r.Get(key)
	return ok
}

// Delete cancels both timers of s, marks it removed and drops it from the
// table if it is still the entity registered under its key. The caller must
// hold s's lock.
func (r *Registry) Delete(s *model.Session) bool {
	s.QuestTimer.Clear()
	s.CleanupTimer.Clear()
	s.Removed = true

	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.sessions[s.Key]; ok && cur == s {
		delete(r.sessions, s.Key)
		return true
	}
	return false
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// List returns the live sessions in no particular order.
func (r *Registry) List() []*model.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

// Close removes every session, cancelling their timers.
func (r *Registry) Close() {
	for _, s := range r.List() {
		s.Lock()
		r.Delete(s)
		s.Unlock()
	}
}
