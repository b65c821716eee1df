// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package notify

import (
	"context"
	"fmt"

	"github.com/ManuGH/avalon/internal/domain/session/model"
	"github.com/ManuGH/avalon/internal/ratelimit"
)

// RateLimited paces outbound traffic per recipient so a burst of game
// events stays under the chat platform's limits. Callers block until a
// token is free or their context ends.
type RateLimited struct {
	next  Notifier
	dms   *ratelimit.Keyed
	posts *ratelimit.Keyed
}

func NewRateLimited(next Notifier, cfg ratelimit.Config) *RateLimited {
	return &RateLimited{
		next:  next,
		dms:   ratelimit.NewKeyed("notify_dm", cfg),
		posts: ratelimit.NewKeyed("notify_post", cfg),
	}
}

func (r *RateLimited) SendDirectMessage(ctx context.Context, player model.PlayerID, content string) error {
	if err := r.dms.Wait(ctx, string(player)); err != nil {
		return fmt.Errorf("dm to %s throttled: %w", player, err)
	}
	return r.next.SendDirectMessage(ctx, player, content)
}

func (r *RateLimited) PostToChannel(ctx context.Context, key model.SessionKey, content string) error {
	if err := r.posts.Wait(ctx, key.String()); err != nil {
		return fmt.Errorf("post to %s throttled: %w", key, err)
	}
	return r.next.PostToChannel(ctx, key, content)
}
