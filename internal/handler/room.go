package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/sehatlink/sehat/internal/chat"
	"github.com/sehatlink/sehat/internal/database"
	"github.com/sehatlink/sehat/internal/model"
)

// ResolveRoom returns the chat room shared by a patient and their assigned
// helper. The endpoint is the sole authority for room assignment; a patient
// without a helper gets the error in-band, which clients treat the same as a
// failed request.
func ResolveRoom(db *database.Queries) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		patientID, err := uuid.Parse(chi.URLParam(r, "patientID"))
		if err != nil {
			respondJSON(w, http.StatusOK, map[string]string{"error": "Invalid patient id."})
			return
		}

		profile, err := db.GetProfile(ctx, pgtype.UUID{Bytes: patientID, Valid: true})
		if err != nil || profile.AssignedWorkerID == nil {
			respondJSON(w, http.StatusOK, map[string]string{"error": "No helper assigned to this patient."})
			return
		}

		respondJSON(w, http.StatusOK, model.Room{
			RoomID:   chat.ComposeRoomID(patientID, *profile.AssignedWorkerID),
			HelperID: *profile.AssignedWorkerID,
		})
	}
}
