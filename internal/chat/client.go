package chat

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"time"

	"github.com/coder/websocket"
	"golang.org/x/time/rate"

	"github.com/sehatlink/sehat/internal/model"
)

// Client is one websocket connection bound to one room.
type Client struct {
	RoomID     string
	conn       *websocket.Conn
	Hub        *Hub
	MessageCh  chan model.Envelope
	messageLim *rate.Limiter
}

// NewClient returns a new instance of Client.
func NewClient(conn *websocket.Conn, roomID string) *Client {
	return &Client{
		conn:      conn,
		RoomID:    roomID,
		MessageCh: make(chan model.Envelope, 64),
	}
}

// SetMessageLimiter caps how many frames a client may push per window.
func (c *Client) SetMessageLimiter(requests int, window time.Duration) {
	c.messageLim = rate.NewLimiter(rate.Every(window/time.Duration(requests)), requests)
}

// ReadMessage reads inbound frames from the websocket stream and hands them
// to the hub. Malformed frames are dropped, never fatal.
func (c *Client) ReadMessage(ctx context.Context) {
	defer func() {
		c.Hub.Unregister <- c
		c.conn.CloseNow()
	}()

	for {
		msgType, p, err := c.conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure &&
				status != websocket.StatusGoingAway &&
				status != -1 {
				log.Printf("%v", err)
			}
			return
		}

		if msgType != websocket.MessageText {
			continue
		}

		var payload model.Envelope
		if err := json.Unmarshal(p, &payload); err != nil {
			log.Printf("failed to process payload from client: %v", err)
			continue
		}

		if !payload.Sender.Valid() || payload.Text == "" {
			slog.WarnContext(ctx, "dropping invalid frame",
				"room_id", c.RoomID,
				"sender", string(payload.Sender))
			continue
		}

		if c.messageLim != nil && !c.messageLim.Allow() {
			slog.WarnContext(ctx, "rate limit exceeded, dropping frame",
				"room_id", c.RoomID)
			continue
		}

		c.Hub.ClientMsg <- RoomFrame{RoomID: c.RoomID, Envelope: payload}
	}
}

// WriteMessage forwards hub broadcasts to the websocket stream.
func (c *Client) WriteMessage(ctx context.Context) {
	for {
		select {
		case payload, ok := <-c.MessageCh:
			// The hub closed our channel during unregister.
			if !ok {
				c.conn.Close(websocket.StatusNormalClosure, "channel closed")
				return
			}

			p, err := json.Marshal(payload)
			if err != nil {
				log.Printf("failed to encode frame: %v", err)
				continue
			}

			writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			err = c.conn.Write(writeCtx, websocket.MessageText, p)
			cancel()
			if err != nil {
				slog.WarnContext(ctx, "failed to write frame",
					"error", err,
					"room_id", c.RoomID)
				continue
			}

		case <-ctx.Done():
			c.conn.Close(websocket.StatusGoingAway, "context cancelled")
			return
		}
	}
}
