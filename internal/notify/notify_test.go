// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ManuGH/avalon/internal/domain/session/model"
	"github.com/ManuGH/avalon/internal/ratelimit"
)

var testKey = model.SessionKey{GuildID: "g1", ChannelID: "c1"}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// The traced default transport keeps idle keep-alive connections.
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

type recorder struct {
	mu    sync.Mutex
	dms   []string
	posts []string
	err   error
}

func (r *recorder) SendDirectMessage(_ context.Context, player model.PlayerID, content string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.dms = append(r.dms, string(player)+":"+content)
	return nil
}

func (r *recorder) PostToChannel(_ context.Context, key model.SessionKey, content string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.posts = append(r.posts, key.String()+":"+content)
	return nil
}

func TestLogNotifier(t *testing.T) {
	n := NewLogNotifier()
	require.NoError(t, n.SendDirectMessage(context.Background(), "p1", "You are Merlin (good)."))
	require.NoError(t, n.PostToChannel(context.Background(), testKey, "hello"))
}

func TestMulti(t *testing.T) {
	ok := &recorder{}
	broken := &recorder{err: errors.New("down")}

	m := Multi{broken, ok}
	require.NoError(t, m.SendDirectMessage(context.Background(), "p1", "hi"))
	require.NoError(t, m.PostToChannel(context.Background(), testKey, "round 1"))
	assert.Equal(t, []string{"p1:hi"}, ok.dms)
	assert.Len(t, ok.posts, 1)

	err := Multi{broken, &recorder{err: errors.New("also down")}}.SendDirectMessage(context.Background(), "p1", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "down")
	assert.Contains(t, err.Error(), "also down")

	assert.NoError(t, Multi{}.PostToChannel(context.Background(), testKey, "nobody"))
}

func TestWebhookNotifier(t *testing.T) {
	var (
		mu  sync.Mutex
		got []Event
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var ev Event
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&ev)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		mu.Lock()
		got = append(got, ev)
		mu.Unlock()
		if ev.PlayerID == "blocked" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, WithHTTPClient(srv.Client()))
	ctx := context.Background()

	require.NoError(t, n.SendDirectMessage(ctx, "p1", "secret"))
	require.NoError(t, n.PostToChannel(ctx, testKey, "public"))
	err := n.SendDirectMessage(ctx, "blocked", "secret")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 403")

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 3)
	assert.Equal(t, Event{Kind: KindDirect, PlayerID: "p1", Content: "secret"}, got[0])
	assert.Equal(t, Event{Kind: KindChannel, GuildID: "g1", ChannelID: "c1", Content: "public"}, got[1])
}

func TestWebhookNotifier_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	n := NewWebhookNotifier(url, WithHTTPClient(&http.Client{Timeout: time.Second}))
	require.Error(t, n.PostToChannel(context.Background(), testKey, "lost"))
}

func TestRateLimited(t *testing.T) {
	next := &recorder{}
	n := NewRateLimited(next, ratelimit.Config{Rate: 0.001, Burst: 2, IdleTTL: time.Hour})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, n.SendDirectMessage(ctx, "p1", "a"))
	require.NoError(t, n.SendDirectMessage(ctx, "p1", "b"))
	require.Error(t, n.SendDirectMessage(ctx, "p1", "c"))
	require.NoError(t, n.SendDirectMessage(ctx, "p2", "a"), "other players are not affected")
	require.NoError(t, n.PostToChannel(ctx, testKey, "x"))

	assert.Equal(t, []string{"p1:a", "p1:b", "p2:a"}, next.dms)
}

func dialHub(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?" + query
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestHub(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	table := dialHub(t, srv, "guild=g1&channel=c1")
	defer table.Close()
	private := dialHub(t, srv, "player=p1")
	defer private.Close()
	require.Eventually(t, func() bool { return hub.Len() == 2 }, 2*time.Second, 10*time.Millisecond)

	ctx := context.Background()
	require.NoError(t, hub.PostToChannel(ctx, testKey, "Round 1/5"))
	assert.Equal(t, Event{Kind: KindChannel, GuildID: "g1", ChannelID: "c1", Content: "Round 1/5"}, readEvent(t, table))

	require.NoError(t, hub.SendDirectMessage(ctx, "p1", "You are Merlin (good)."))
	assert.Equal(t, Event{Kind: KindDirect, PlayerID: "p1", Content: "You are Merlin (good)."}, readEvent(t, private))

	require.ErrorIs(t, hub.SendDirectMessage(ctx, "p2", "nobody home"), ErrNotConnected)
	require.NoError(t, hub.PostToChannel(ctx, model.SessionKey{GuildID: "g1", ChannelID: "other"}, "unheard"))
}

func TestHub_RejectsEmptySubscription(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	rec := httptest.NewRecorder()
	hub.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?guild=g1", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHub_PeerDisconnectUnregisters(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	conn := dialHub(t, srv, "player=p1")
	require.Eventually(t, func() bool { return hub.Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_CloseDisconnectsSubscribers(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dialHub(t, srv, "guild=g1&channel=c1")
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Close()
	assert.Equal(t, 0, hub.Len())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}
