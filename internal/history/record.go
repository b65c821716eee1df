// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package history

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/ManuGH/avalon/internal/domain/rules"
	"github.com/ManuGH/avalon/internal/domain/session/model"
)

const (
	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 100
)

// GameRecord is one completed game.
type GameRecord struct {
	ID           string              `json:"id"`
	GuildID      string              `json:"guildId"`
	ChannelID    string              `json:"channelId"`
	Winner       rules.Alignment     `json:"winner"`
	EndReason    model.EndReason     `json:"endReason"`
	PlayerCount  int                 `json:"playerCount"`
	QuestResults []rules.QuestResult `json:"questResults"`
	EndedAt      time.Time           `json:"endedAt"`
	Players      []PlayerRecord      `json:"players"`
}

// PlayerRecord is one seat of a completed game.
type PlayerRecord struct {
	UserID    model.PlayerID  `json:"userId"`
	Role      rules.Role      `json:"role"`
	Alignment rules.Alignment `json:"alignment"`
}

// Validate checks the fields every backend relies on.
func (r GameRecord) Validate() error {
	if r.GuildID == "" {
		return fmt.Errorf("%w: guild id is empty", ErrInvalidRecord)
	}
	if r.Winner != rules.Good && r.Winner != rules.Evil {
		return fmt.Errorf("%w: winner %q", ErrInvalidRecord, r.Winner)
	}
	switch r.EndReason {
	case model.EndQuestsEvil, model.EndRejection, model.EndAssassinationSuccess, model.EndAssassinationFailed:
	default:
		return fmt.Errorf("%w: end reason %q", ErrInvalidRecord, r.EndReason)
	}
	if r.PlayerCount != len(r.Players) {
		return fmt.Errorf("%w: player count %d with %d seats", ErrInvalidRecord, r.PlayerCount, len(r.Players))
	}
	return nil
}

// PlayerStats aggregates one player's results within a guild.
type PlayerStats struct {
	TotalGames    int        `json:"totalGames"`
	Wins          int        `json:"wins"`
	Losses        int        `json:"losses"`
	RoleBreakdown []RoleStat `json:"roleBreakdown"`
}

// RoleStat is the per-role slice of PlayerStats.
type RoleStat struct {
	Role  rules.Role `json:"role"`
	Games int        `json:"games"`
	Wins  int        `json:"wins"`
}

// Participation is the minimal row needed for statistics.
type Participation struct {
	Winner    rules.Alignment `db:"winner"`
	Role      rules.Role      `db:"role"`
	Alignment rules.Alignment `db:"alignment"`
}

// Tally folds participations into stats. A game counts as a win when the
// player's alignment matches the winner. Breakdown is ordered by games played,
// then role name.
func Tally(rows []Participation) PlayerStats {
	stats := PlayerStats{TotalGames: len(rows), RoleBreakdown: []RoleStat{}}
	byRole := map[rules.Role]*RoleStat{}
	for _, row := range rows {
		win := row.Alignment == row.Winner
		if win {
			stats.Wins++
		}
		rs, ok := byRole[row.Role]
		if !ok {
			rs = &RoleStat{Role: row.Role}
			byRole[row.Role] = rs
		}
		rs.Games++
		if win {
			rs.Wins++
		}
	}
	stats.Losses = stats.TotalGames - stats.Wins
	for _, rs := range byRole {
		stats.RoleBreakdown = append(stats.RoleBreakdown, *rs)
	}
	slices.SortFunc(stats.RoleBreakdown, func(a, b RoleStat) int {
		if c := cmp.Compare(b.Games, a.Games); c != 0 {
			return c
		}
		return cmp.Compare(a.Role, b.Role)
	})
	return stats
}

// participationsFor extracts the rows of player from guild-scoped records.
func participationsFor(records []GameRecord, player model.PlayerID) []Participation {
	var out []Participation
	for _, rec := range records {
		for _, p := range rec.Players {
			if p.UserID == player {
				out = append(out, Participation{Winner: rec.Winner, Role: p.Role, Alignment: p.Alignment})
			}
		}
	}
	return out
}

// NormalizeLimit applies the default and the cap to a history limit.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		return MaxHistoryLimit
	}
	return limit
}

// sortNewestFirst orders records by EndedAt descending.
func sortNewestFirst(records []GameRecord) {
	slices.SortStableFunc(records, func(a, b GameRecord) int {
		return b.EndedAt.Compare(a.EndedAt)
	})
}
