package chatclient

import (
	"context"
	"encoding/json"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sehatlink/sehat/internal/model"
)

const eventTimeout = 5 * time.Second

// newStalledListener returns the address of a TCP listener that accepts
// connections but never answers the websocket handshake, so a dial
// against it blocks until its context is canceled.
func newStalledListener(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var (
		mu    sync.Mutex
		conns []net.Conn
	)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, conn)
			mu.Unlock()
		}
	}()
	t.Cleanup(func() {
		ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, conn := range conns {
			conn.Close()
		}
	})
	return ln.Addr().String()
}

func nextEvent(t *testing.T, s *ChannelSession) Event {
	t.Helper()
	select {
	case ev, ok := <-s.Events():
		require.True(t, ok, "event channel closed unexpectedly")
		return ev
	case <-time.After(eventTimeout):
		t.Fatal("timed out waiting for session event")
		return nil
	}
}

func TestSessionOpenReceiveClose(t *testing.T) {
	relay := newTestRelay()
	defer relay.Close()

	session := OpenChannel(context.Background(), relay.URL(), "room-1")

	ev := nextEvent(t, session)
	assert.IsType(t, Opened{}, ev)
	assert.Equal(t, StateOpen, session.State())

	want := model.Envelope{Sender: model.RoleHelper, Text: "hello", ClientID: 42}
	payload, err := json.Marshal(want)
	require.NoError(t, err)
	relay.push(payload)

	ev = nextEvent(t, session)
	received, ok := ev.(MessageReceived)
	require.True(t, ok, "expected MessageReceived, got %T", ev)
	assert.Equal(t, want, received.Envelope)

	session.Close()

	ev = nextEvent(t, session)
	assert.IsType(t, Closed{}, ev)
	assert.Equal(t, StateClosed, session.State())

	// Terminal: the channel is closed after Closed.
	_, open := <-session.Events()
	assert.False(t, open)
}

func TestSessionDropsMalformedFrames(t *testing.T) {
	relay := newTestRelay()
	defer relay.Close()

	session := OpenChannel(context.Background(), relay.URL(), "room-1")
	defer session.Close()

	assert.IsType(t, Opened{}, nextEvent(t, session))

	relay.push([]byte("{not json"))

	want := model.Envelope{Sender: model.RolePatient, Text: "still here"}
	payload, err := json.Marshal(want)
	require.NoError(t, err)
	relay.push(payload)

	ev := nextEvent(t, session)
	received, ok := ev.(MessageReceived)
	require.True(t, ok, "malformed frame should be skipped, got %T", ev)
	assert.Equal(t, want, received.Envelope)
}

func TestSessionSendWhenClosed(t *testing.T) {
	relay := newTestRelay()
	defer relay.Close()

	session := OpenChannel(context.Background(), relay.URL(), "room-1")
	assert.IsType(t, Opened{}, nextEvent(t, session))

	session.Close()
	assert.IsType(t, Closed{}, nextEvent(t, session))

	err := session.Send(context.Background(), model.Envelope{
		Sender: model.RolePatient,
		Text:   "too late",
	})
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestSessionCloseCancelsPendingDial(t *testing.T) {
	addr := newStalledListener(t)

	session := OpenChannel(context.Background(), "http://"+addr, "room-1")
	require.Equal(t, StateConnecting, session.State())

	session.Close()

	ev := nextEvent(t, session)
	assert.IsType(t, Closed{}, ev)
	assert.Equal(t, StateClosed, session.State())

	_, open := <-session.Events()
	assert.False(t, open)
}

func TestSessionDialFailure(t *testing.T) {
	// A server that is already gone refuses the handshake.
	relay := newTestRelay()
	url := relay.URL()
	relay.Close()

	session := OpenChannel(context.Background(), url, "room-1")

	ev := nextEvent(t, session)
	_, ok := ev.(Errored)
	require.True(t, ok, "expected Errored, got %T", ev)

	ev = nextEvent(t, session)
	assert.IsType(t, Closed{}, ev)
	assert.Equal(t, StateClosed, session.State())
}

func TestSessionCloseIsIdempotent(t *testing.T) {
	relay := newTestRelay()
	defer relay.Close()

	session := OpenChannel(context.Background(), relay.URL(), "room-1")
	assert.IsType(t, Opened{}, nextEvent(t, session))

	session.Close()
	session.Close()
	session.Close()

	assert.IsType(t, Closed{}, nextEvent(t, session))
}
