package handler

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sehatlink/sehat/internal/database"
	"github.com/sehatlink/sehat/internal/model"
)

// ListMessages loads a room's chat history, oldest first. Clients call this
// once on chat open, before the websocket takes over.
func ListMessages(db *database.Queries) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		roomID := chi.URLParam(r, "roomID")
		if roomID == "" {
			respondError(w, http.StatusBadRequest, "Missing room id.")
			return
		}

		messages, err := db.ListMessagesByRoom(ctx, roomID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			respondError(w, http.StatusInternalServerError, "Database error.")
			log.Printf("failed to load messages from database: %v", err)
			return
		}
		if messages == nil {
			messages = []model.Message{}
		}

		respondJSON(w, http.StatusOK, messages)
	}
}
