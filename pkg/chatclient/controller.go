package chatclient

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sehatlink/sehat/internal/chat"
	"github.com/sehatlink/sehat/internal/model"
)

// Entry is one line of the conversation log as a UI would render it.
// Outbound entries carry the correlation id they were transmitted with;
// inbound and system entries get a fresh timestamp id.
type Entry struct {
	ID     int64
	Sender model.Role
	Text   string
}

// Peer identifies the party on the other end of the conversation.
type Peer struct {
	ID   uuid.UUID
	Name string
}

// Controller drives one conversation: it resolves the room, owns the
// channel session, appends outbound messages optimistically, and
// suppresses the relay's echo of the controller's own frames. All methods
// are safe for concurrent use.
type Controller struct {
	role     model.Role
	baseURL  string
	resolver *RoomResolver

	mu       sync.Mutex
	session  *ChannelSession
	roomID   string
	entries  []Entry
	lastCorr int64

	updates chan struct{}
	wg      sync.WaitGroup
}

// NewController builds a controller for the given role against the
// server's HTTP base URL.
func NewController(role model.Role, baseURL string) *Controller {
	return &Controller{
		role:     role,
		baseURL:  baseURL,
		resolver: NewRoomResolver(baseURL),
		updates:  make(chan struct{}, 1),
	}
}

// Start resolves the room for the peer and opens a channel session.
// Resolution failure leaves the controller idle and returns
// ErrResolutionFailed; no session is created. Calling Start while a
// session is already open reuses the existing connection.
func (c *Controller) Start(ctx context.Context, peer Peer) error {
	if c.reuseOpenSession() {
		return nil
	}

	room, err := c.resolver.Resolve(ctx, peer.ID)
	if err != nil {
		return err
	}
	c.open(ctx, room.RoomID, peer.Name)
	return nil
}

// StartWithRoom opens a session on a room id composed directly from both
// party ids, skipping resolution. Dashboards use this when they already
// know the pairing.
func (c *Controller) StartWithRoom(ctx context.Context, patientID, helperID uuid.UUID, peerName string) {
	if c.reuseOpenSession() {
		return
	}
	c.open(ctx, chat.ComposeRoomID(patientID, helperID), peerName)
}

func (c *Controller) reuseOpenSession() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != nil && c.session.State() == StateOpen
}

func (c *Controller) open(ctx context.Context, roomID, peerName string) {
	c.mu.Lock()
	prev := c.session
	c.roomID = roomID
	c.entries = []Entry{{
		ID:     time.Now().UnixMilli(),
		Sender: model.RoleSystem,
		Text:   fmt.Sprintf("You're now connected with %s.", peerName),
	}}
	session := OpenChannel(ctx, c.baseURL, roomID)
	c.session = session
	c.mu.Unlock()

	// A previous session that never reached Open would otherwise dial on
	// into the same room and double every inbound frame.
	if prev != nil {
		prev.Close()
	}

	c.notify()

	c.wg.Add(1)
	go c.dispatch(session)
}

// dispatch is the single consumer of the session's event stream.
func (c *Controller) dispatch(session *ChannelSession) {
	defer c.wg.Done()
	for ev := range session.Events() {
		switch ev := ev.(type) {
		case Opened:
			log.Printf("chatclient: channel open, room %s", c.RoomID())
		case MessageReceived:
			c.handleInbound(ev.Envelope)
		case Errored:
			log.Printf("chatclient: transport error: %v", ev.Err)
		case Closed:
			log.Printf("chatclient: channel closed, room %s", c.RoomID())
		}
	}
}

// handleInbound appends a received envelope unless it is the relay's echo
// of a frame this controller sent. The relay broadcasts to every member
// of the room including the sender, so a frame carrying our own role and
// a correlation id is one we already appended optimistically.
func (c *Controller) handleInbound(env model.Envelope) {
	if env.Sender == c.role && env.ClientID != 0 {
		return
	}

	c.mu.Lock()
	c.entries = append(c.entries, Entry{
		ID:     time.Now().UnixMilli(),
		Sender: c.role.Counterpart(),
		Text:   env.Text,
	})
	c.mu.Unlock()

	c.notify()
}

// SendText appends the message to the local log immediately, then
// transmits it. Blank text is rejected. A transmit failure is logged but
// the optimistic entry stays; there is no rollback.
func (c *Controller) SendText(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}

	c.mu.Lock()
	corr := time.Now().UnixMilli()
	if corr <= c.lastCorr {
		corr = c.lastCorr + 1
	}
	c.lastCorr = corr

	c.entries = append(c.entries, Entry{
		ID:     corr,
		Sender: c.role,
		Text:   text,
	})
	session := c.session
	c.mu.Unlock()

	c.notify()

	env := model.Envelope{
		Sender:   c.role,
		Text:     text,
		ClientID: corr,
	}
	if session == nil {
		log.Printf("chatclient: send without session, message kept locally")
		return nil
	}
	if err := session.Send(ctx, env); err != nil {
		log.Printf("chatclient: send failed: %v", err)
	}
	return nil
}

// Log returns a snapshot of the conversation in append order.
func (c *Controller) Log() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// State reports the underlying session's lifecycle phase, StateIdle when
// no session exists.
func (c *Controller) State() SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return StateIdle
	}
	return c.session.State()
}

// RoomID reports the room the controller is attached to, empty before the
// first Start.
func (c *Controller) RoomID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roomID
}

// Updates signals after every log mutation. The channel is buffered with
// depth one, so a slow reader coalesces bursts into a single wakeup.
func (c *Controller) Updates() <-chan struct{} {
	return c.updates
}

func (c *Controller) notify() {
	select {
	case c.updates <- struct{}{}:
	default:
	}
}

// End closes the channel session and waits for the dispatch loop to
// drain. The conversation log survives so a UI can keep rendering it.
// End is idempotent.
func (c *Controller) End() {
	c.mu.Lock()
	session := c.session
	c.session = nil
	c.mu.Unlock()

	if session != nil {
		session.Close()
	}
	c.wg.Wait()
}
