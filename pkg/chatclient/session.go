package chatclient

import (
	"context"
	"encoding/json"
	"log"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"

	"github.com/sehatlink/sehat/internal/model"
)

// SessionState is the lifecycle phase of a ChannelSession.
type SessionState int32

const (
	StateIdle SessionState = iota
	StateConnecting
	StateOpen
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Event is a session lifecycle or transport event. Consumers read the
// session's Events channel in a single loop and switch on the concrete
// type: Opened, MessageReceived, Errored, Closed. Closed is always the
// final event before the channel closes.
type Event interface{ sessionEvent() }

// Opened signals the socket handshake completed.
type Opened struct{}

// MessageReceived carries one decoded inbound envelope.
type MessageReceived struct {
	Envelope model.Envelope
}

// Errored reports a transport fault. The session does not reconnect; a
// Closed event follows.
type Errored struct {
	Err error
}

// Closed signals the session reached its terminal state.
type Closed struct{}

func (Opened) sessionEvent()          {}
func (MessageReceived) sessionEvent() {}
func (Errored) sessionEvent()         {}
func (Closed) sessionEvent()          {}

const sessionWriteTimeout = 10 * time.Second

// ChannelSession owns one websocket connection to a chat room. It is
// created by OpenChannel, emits typed events on Events, and never
// reconnects after a fault. Close is safe to call any number of times
// and from any goroutine.
type ChannelSession struct {
	wsURL string

	state atomic.Int32

	mu   sync.Mutex
	conn *websocket.Conn

	events    chan Event
	closeOnce sync.Once
	done      chan struct{}
	cancel    context.CancelFunc
}

// OpenChannel starts connecting to the room's websocket endpoint and
// returns immediately. The handshake runs in the background; the caller
// observes Opened or Errored+Closed on the Events channel.
func OpenChannel(ctx context.Context, baseURL, roomID string) *ChannelSession {
	ctx, cancel := context.WithCancel(ctx)
	s := &ChannelSession{
		wsURL:  wsEndpoint(baseURL, roomID),
		events: make(chan Event, 64),
		done:   make(chan struct{}),
		cancel: cancel,
	}
	s.state.Store(int32(StateConnecting))
	go s.run(ctx)
	return s
}

func wsEndpoint(baseURL, roomID string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return baseURL + "/ws/" + roomID
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws/" + roomID
	return u.String()
}

func (s *ChannelSession) run(ctx context.Context) {
	defer s.cancel()

	conn, _, err := websocket.Dial(ctx, s.wsURL, nil)
	if err != nil {
		s.state.Store(int32(StateClosed))
		select {
		case <-s.done:
			// Closed locally before the handshake finished.
		default:
			s.events <- Errored{Err: err}
		}
		s.events <- Closed{}
		close(s.events)
		return
	}

	s.mu.Lock()
	closedEarly := SessionState(s.state.Load()) == StateClosed
	if !closedEarly {
		s.conn = conn
		s.state.Store(int32(StateOpen))
	}
	s.mu.Unlock()

	if closedEarly {
		conn.Close(websocket.StatusNormalClosure, "")
		s.events <- Closed{}
		close(s.events)
		return
	}

	s.events <- Opened{}
	s.readLoop(ctx, conn)
}

func (s *ChannelSession) readLoop(ctx context.Context, conn *websocket.Conn) {
	defer func() {
		s.state.Store(int32(StateClosed))
		conn.CloseNow()
		s.events <- Closed{}
		close(s.events)
	}()

	for {
		msgType, payload, err := conn.Read(ctx)
		if err != nil {
			select {
			case <-s.done:
				// Local Close; a plain Closed event is enough.
			default:
				status := websocket.CloseStatus(err)
				if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
					s.events <- Errored{Err: err}
				}
			}
			return
		}
		if msgType != websocket.MessageText {
			continue
		}
		var env model.Envelope
		if err := json.Unmarshal(payload, &env); err != nil {
			log.Printf("chatclient: dropping malformed frame: %v", err)
			continue
		}
		s.events <- MessageReceived{Envelope: env}
	}
}

// Events returns the session's event stream. The channel is closed after
// the terminal Closed event.
func (s *ChannelSession) Events() <-chan Event {
	return s.events
}

// State reports the current lifecycle phase.
func (s *ChannelSession) State() SessionState {
	return SessionState(s.state.Load())
}

// Send transmits one envelope as a text frame. A session that already
// reached its terminal state returns ErrSessionClosed; one that is still
// idle or connecting returns ErrNotConnected. Nothing is queued for later
// delivery either way.
func (s *ChannelSession) Send(ctx context.Context, env model.Envelope) error {
	s.mu.Lock()
	conn := s.conn
	state := SessionState(s.state.Load())
	s.mu.Unlock()

	if state == StateClosed {
		return ErrSessionClosed
	}
	if state != StateOpen || conn == nil {
		return ErrNotConnected
	}

	payload, err := json.Marshal(env)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, sessionWriteTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, payload)
}

// Close tears the session down. It is idempotent; the event channel still
// delivers its terminal Closed event exactly once.
func (s *ChannelSession) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		// Abort a dial that is still mid-handshake; the run goroutine
		// then finishes the event stream.
		s.cancel()

		s.mu.Lock()
		conn := s.conn
		prev := SessionState(s.state.Load())
		s.state.Store(int32(StateClosed))
		s.mu.Unlock()

		if conn != nil {
			conn.Close(websocket.StatusNormalClosure, "client closed")
		} else if prev == StateIdle {
			// Never dialed; emit the terminal event ourselves.
			s.events <- Closed{}
			close(s.events)
		}
		// StateConnecting with no conn yet: the dial goroutine observes
		// the closed state and finishes the event stream.
	})
}
