package chat

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/sehatlink/sehat/internal/broker"
	"github.com/sehatlink/sehat/internal/database"
	"github.com/sehatlink/sehat/internal/model"
)

type sanitizer interface {
	Sanitize(s string) string
}

// Registration pairs a client with a done channel so the caller can wait for
// the hub to pick it up before starting the read loop.
type Registration struct {
	Client *Client
	Done   chan struct{}
}

// RoomFrame is one envelope addressed to a room.
type RoomFrame struct {
	RoomID   string         `json:"room_id"`
	Envelope model.Envelope `json:"envelope"`
}

// Hub owns all live room memberships. A single Run goroutine multiplexes
// registration, teardown and message traffic, so no map access needs a lock.
type Hub struct {
	db         *database.Queries
	jetstream  jetstream.JetStream
	rooms      map[string]map[*Client]struct{}
	Register   chan Registration
	Unregister chan *Client
	ClientMsg  chan RoomFrame
	BrokerMsg  chan RoomFrame
	sanitizer  sanitizer
}

// NewHub returns a new instance of Hub. js may be nil, in which case frames
// fan out locally instead of through the broker.
func NewHub(js jetstream.JetStream, db *database.Queries) *Hub {
	return &Hub{
		db:         db,
		jetstream:  js,
		rooms:      make(map[string]map[*Client]struct{}),
		Register:   make(chan Registration),
		Unregister: make(chan *Client),
		ClientMsg:  make(chan RoomFrame, 1024),
		BrokerMsg:  make(chan RoomFrame, 1024),
		sanitizer:  bluemonday.StrictPolicy(),
	}
}

// Run manages incoming and outgoing hub traffic until ctx is cancelled.
func (h *Hub) Run(ctx context.Context, stream jetstream.Stream) {
	if stream != nil {
		if err := broker.Subscriber(ctx, stream, h.BrokerMsg); err != nil {
			log.Printf("failed to subscribe to broker: %v", err)
		}
	}

	for {
		select {
		case reg := <-h.Register:
			client := reg.Client
			members, ok := h.rooms[client.RoomID]
			if !ok {
				members = make(map[*Client]struct{})
				h.rooms[client.RoomID] = members
			}
			members[client] = struct{}{}
			client.Hub = h
			close(reg.Done)

		case client := <-h.Unregister:
			if members, ok := h.rooms[client.RoomID]; ok {
				if _, in := members[client]; in {
					delete(members, client)
					close(client.MessageCh)
				}
				if len(members) == 0 {
					delete(h.rooms, client.RoomID)
				}
			}

		case frame := <-h.ClientMsg:
			// Sanitize inbound text to prevent stored XSS.
			frame.Envelope.Text = h.sanitizer.Sanitize(frame.Envelope.Text)
			if frame.Envelope.Text == "" {
				continue
			}

			h.persist(ctx, frame)

			// With a broker attached the frame comes back through the
			// stream, which also covers clients on other instances.
			if h.jetstream != nil {
				if err := broker.Publisher(ctx, h.jetstream, frame.RoomID, frame); err != nil {
					log.Printf("%v", err)
				}
				continue
			}
			h.broadcast(frame)

		case frame := <-h.BrokerMsg:
			h.broadcast(frame)

		case <-ctx.Done():
			log.Printf("context cancelled: %v", ctx.Err())
			return
		}
	}
}

// broadcast relays a frame to every member of its room, sender included.
func (h *Hub) broadcast(frame RoomFrame) {
	for client := range h.rooms[frame.RoomID] {
		select {
		case client.MessageCh <- frame.Envelope:
		default:
			log.Println("skipping frame - channel full or client slow")
		}
	}
}

// persist stores the frame if the room id is the canonical composite. A bad
// room id or DB error never stops the relay.
func (h *Hub) persist(ctx context.Context, frame RoomFrame) {
	patientID, helperID, err := SplitRoomID(frame.RoomID)
	if err != nil {
		log.Printf("skipping persistence for room [%s]: %v", frame.RoomID, err)
		return
	}

	_, err = h.db.CreateMessage(ctx, database.CreateMessageParams{
		RoomID:    frame.RoomID,
		PatientID: pgtype.UUID{Bytes: patientID, Valid: true},
		HelperID:  pgtype.UUID{Bytes: helperID, Valid: true},
		Sender:    string(frame.Envelope.Sender),
		Text:      frame.Envelope.Text,
	})
	if err != nil {
		log.Printf("failed to store frame to database: %v", err)
	}
}
