package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

type webhookServer struct {
	mu     sync.Mutex
	paths  []string
	bodies [][]byte
	status int
}

func startWebhookServer(t *testing.T, status int) (*webhookServer, *fasthttputil.InmemoryListener) {
	t.Helper()
	ws := &webhookServer{status: status}
	ln := fasthttputil.NewInmemoryListener()
	srv := &fasthttp.Server{
		Handler: func(ctx *fasthttp.RequestCtx) {
			ws.mu.Lock()
			ws.paths = append(ws.paths, string(ctx.Path()))
			ws.bodies = append(ws.bodies, append([]byte(nil), ctx.PostBody()...))
			ws.mu.Unlock()
			ctx.SetStatusCode(ws.status)
			if ws.status >= 300 {
				ctx.SetBodyString(`{"message": "nope"}`)
			}
		},
	}
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() { _ = ln.Close() })
	return ws, ln
}

func testSink(ln *fasthttputil.InmemoryListener, opts ...DiscordOption) *DiscordSink {
	opts = append([]DiscordOption{
		WithBaseURL("http://discord.test/api/"),
		WithDial(func(string) (net.Conn, error) { return ln.Dial() }),
		WithRate(0, 0),
	}, opts...)
	return NewDiscordSink(opts...)
}

func TestDiscordSink_Send(t *testing.T) {
	ws, ln := startWebhookServer(t, fasthttp.StatusNoContent)
	sink := testSink(ln)

	msg := Message{
		Title:       "Kill",
		Description: "Slang killed Urrgence",
		Color:       colorRed,
		Fields:      []Field{{Name: "Weapon", Value: "AS Val", Inline: true}},
		Timestamp:   time.Date(2025, 7, 19, 18, 35, 44, 0, time.UTC),
	}
	require.NoError(t, sink.Send(context.Background(), testChannel, msg))

	require.Len(t, ws.paths, 1)
	assert.Equal(t, "/api/webhooks/123/secret", ws.paths[0])

	var payload webhookPayload
	require.NoError(t, json.Unmarshal(ws.bodies[0], &payload))
	require.Len(t, payload.Embeds, 1)
	e := payload.Embeds[0]
	assert.Equal(t, "Kill", e.Title)
	assert.Equal(t, colorRed, e.Color)
	assert.Equal(t, "2025-07-19T18:35:44Z", e.Timestamp)
	assert.Equal(t, []embedField{{Name: "Weapon", Value: "AS Val", Inline: true}}, e.Fields)
}

func TestDiscordSink_StatusError(t *testing.T) {
	ws, ln := startWebhookServer(t, fasthttp.StatusTooManyRequests)
	sink := testSink(ln)

	err := sink.Send(context.Background(), testChannel, Message{Title: "x"})
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, fasthttp.StatusTooManyRequests, se.Code)
	assert.Contains(t, se.Body, "nope")
	assert.Len(t, ws.paths, 1, "no retry")
}

func TestDiscordSink_UnconfiguredChannel(t *testing.T) {
	_, ln := startWebhookServer(t, fasthttp.StatusNoContent)
	err := testSink(ln).Send(context.Background(), Channel{ID: "123"}, Message{})
	assert.ErrorIs(t, err, ErrNoChannel)
}

func TestDiscordSink_ExpiredContext(t *testing.T) {
	_, ln := startWebhookServer(t, fasthttp.StatusNoContent)
	ctx, cancel := context.WithTimeout(context.Background(), -time.Second)
	defer cancel()
	assert.Error(t, testSink(ln).Send(ctx, testChannel, Message{}))
}

func TestDiscordSink_RateLimitHonoursContext(t *testing.T) {
	_, ln := startWebhookServer(t, fasthttp.StatusNoContent)
	sink := testSink(ln, WithRate(0.001, 1))

	require.NoError(t, sink.Send(context.Background(), testChannel, Message{}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.Error(t, sink.Send(ctx, testChannel, Message{}))
}

func TestDiscordSink_ThroughDispatcher(t *testing.T) {
	ws, ln := startWebhookServer(t, fasthttp.StatusOK)
	d := NewDispatcher(testSink(ln))

	assert.True(t, d.Dispatch(context.Background(), testKill(), testChannel))
	require.Len(t, ws.bodies, 1)
	assert.Contains(t, string(ws.bodies[0]), "AS Val")
}

func TestToEmbed_Limits(t *testing.T) {
	msg := Message{Title: strings.Repeat("t", 300)}
	for i := 0; i < 30; i++ {
		msg.Fields = append(msg.Fields, Field{Name: "n", Value: strings.Repeat("v", 2000)})
	}
	e := toEmbed(msg)
	assert.Len(t, []rune(e.Title), maxTitle)
	assert.Len(t, e.Fields, maxFields)
	assert.Len(t, []rune(e.Fields[0].Value), maxFieldValue)
}
