// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package model

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// PlayerID is the opaque, stable platform user identifier.
type PlayerID string

// SessionKey identifies a session by (guild, channel).
type SessionKey struct {
	GuildID   string
	ChannelID string
}

func (k SessionKey) String() string {
	return k.GuildID + "-" + k.ChannelID
}

// Validate rejects keys with empty components.
func (k SessionKey) Validate() error {
	if strings.TrimSpace(k.GuildID) == "" || strings.TrimSpace(k.ChannelID) == "" {
		return ErrInvalidKey
	}
	return nil
}

const maxDisplayNameRunes = 64

var (
	ErrInvalidKey    = errors.New("session key requires guild and channel")
	ErrInvalidPlayer = errors.New("player id must not be empty")
)

// Player is a seated participant.
type Player struct {
	ID          PlayerID `json:"id"`
	DisplayName string   `json:"displayName"`
}

// NewPlayer builds a Player with a normalized display name. An empty name
// falls back to the ID.
func NewPlayer(id PlayerID, displayName string) (Player, error) {
	if strings.TrimSpace(string(id)) == "" {
		return Player{}, ErrInvalidPlayer
	}
	return Player{ID: id, DisplayName: NormalizeDisplayName(displayName, string(id))}, nil
}

// NormalizeDisplayName applies NFC, trims whitespace and caps the length.
func NormalizeDisplayName(name, fallback string) string {
	name = strings.TrimSpace(norm.NFC.String(name))
	if name == "" {
		return fallback
	}
	if utf8.RuneCountInString(name) > maxDisplayNameRunes {
		runes := []rune(name)
		name = string(runes[:maxDisplayNameRunes])
	}
	return name
}

// Mention renders a platform-neutral reference to the player.
func (p Player) Mention() string {
	return fmt.Sprintf("@%s", p.DisplayName)
}
