// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package manager

import (
	"context"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/avalon/internal/domain/session/model"
	"github.com/ManuGH/avalon/internal/history"
	"github.com/ManuGH/avalon/internal/log"
)

type directMessage struct {
	to      model.PlayerID
	content string
}

// outbox collects the effects of one committed mutation. It is filled under
// the session lock and flushed after the lock is released.
type outbox struct {
	key    model.SessionKey
	reply  string
	posts  []string
	dms    []directMessage
	record *history.GameRecord
}

func newOutbox(key model.SessionKey) *outbox {
	return &outbox{key: key}
}

func (o *outbox) post(content string) { o.posts = append(o.posts, content) }

func (o *outbox) dm(to model.PlayerID, content string) {
	o.dms = append(o.dms, directMessage{to: to, content: content})
}

// flush persists the record, posts to the channel and fans out DMs.
// Nothing here can undo the committed state.
func (e *Engine) flush(ctx context.Context, ob *outbox, res *Result) {
	if ob.record != nil {
		id, err := e.history.SaveGame(ctx, *ob.record)
		if err != nil {
			historySaveFailuresTotal.Inc()
			e.logger.Error().
				Str(log.FieldEvent, "history.save_failed").
				Str(log.FieldGuildID, ob.key.GuildID).
				Str(log.FieldChannelID, ob.key.ChannelID).
				Str(log.FieldEndReason, string(ob.record.EndReason)).
				Err(err).
				Msg("could not persist completed game")
			res.Warnings = append(res.Warnings, "game result could not be saved: "+err.Error())
		} else {
			res.RecordID = id
			e.logger.Info().
				Str(log.FieldEvent, "history.saved").
				Str(log.FieldGuildID, ob.key.GuildID).
				Str(log.FieldRecordID, id).
				Msg("completed game persisted")
		}
	}

	for _, content := range ob.posts {
		if err := e.notifier.PostToChannel(ctx, ob.key, content); err != nil {
			e.logger.Warn().
				Str(log.FieldEvent, "channel.post_failed").
				Str(log.FieldGuildID, ob.key.GuildID).
				Str(log.FieldChannelID, ob.key.ChannelID).
				Err(err).
				Msg("channel post failed")
		}
	}

	if failed := e.sendDMs(ctx, ob.dms); len(failed) > 0 {
		res.DMFailures = failed
		res.Warnings = append(res.Warnings, "some direct messages could not be delivered")
	}
}

// sendDMs delivers messages concurrently and returns the recipients that
// could not be reached, sorted.
func (e *Engine) sendDMs(ctx context.Context, dms []directMessage) []model.PlayerID {
	if len(dms) == 0 {
		return nil
	}
	var (
		mu     sync.Mutex
		failed []model.PlayerID
		g      errgroup.Group
	)
	g.SetLimit(e.fanout)
	for _, m := range dms {
		g.Go(func() error {
			if err := e.notifier.SendDirectMessage(ctx, m.to, m.content); err != nil {
				dmFailuresTotal.Inc()
				e.logger.Warn().
					Str(log.FieldEvent, "dm.failed").
					Str(log.FieldPlayerID, string(m.to)).
					Err(err).
					Msg("direct message failed")
				mu.Lock()
				failed = append(failed, m.to)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	slices.Sort(failed)
	return slices.Compact(failed)
}
