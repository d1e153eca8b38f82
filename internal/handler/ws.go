package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"

	"github.com/sehatlink/sehat/internal/chat"
)

// ServeWs upgrades the connection and joins it to the requested room.
func ServeWs(h *chat.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		roomID := chi.URLParam(r, "roomID")
		if roomID == "" {
			respondError(w, http.StatusBadRequest, "Missing room id.")
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			log.Printf("failed to accept websocket: %v", err)
			return
		}

		log.Printf("upgraded connection for room %s", roomID)

		c := chat.NewClient(conn, roomID)
		c.SetMessageLimiter(30, time.Minute)

		reg := chat.Registration{
			Client: c,
			Done:   make(chan struct{}),
		}

		h.Register <- reg

		// Wait for registration to complete.
		<-reg.Done

		// We block on c.ReadMessage() because the request context is
		// cancelled as soon as we return from the handler.
		go c.WriteMessage(ctx)
		c.ReadMessage(ctx)
	}
}
