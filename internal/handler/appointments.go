package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/sehatlink/sehat/internal/auth"
	"github.com/sehatlink/sehat/internal/database"
	"github.com/sehatlink/sehat/internal/model"
)

type bookAppointmentRequest struct {
	WorkerID      string    `json:"worker_id"`
	ScheduledTime time.Time `json:"scheduled_time"`
}

// BookAppointment books a visit with a health worker.
func BookAppointment(db *database.Queries) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, err := auth.GetUserFromContext(ctx)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "Unauthorized.")
			return
		}

		var req bookAppointmentRequest
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body.")
			return
		}

		workerID, err := uuid.Parse(req.WorkerID)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid worker_id.")
			return
		}
		if req.ScheduledTime.Before(time.Now()) {
			respondError(w, http.StatusBadRequest, "Appointment must be in the future.")
			return
		}

		appt, err := db.CreateAppointment(ctx, database.CreateAppointmentParams{
			ID:            pgtype.UUID{Bytes: uuid.New(), Valid: true},
			PatientID:     pgtype.UUID{Bytes: userID, Valid: true},
			WorkerID:      pgtype.UUID{Bytes: workerID, Valid: true},
			ScheduledTime: pgtype.Timestamptz{Time: req.ScheduledTime.UTC(), Valid: true},
		})
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Database error.")
			log.Printf("failed to create appointment: %v", err)
			return
		}

		respondJSON(w, http.StatusCreated, appt)
	}
}

// ListAppointments returns the authenticated patient's upcoming visits.
func ListAppointments(db *database.Queries) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, err := auth.GetUserFromContext(ctx)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "Unauthorized.")
			return
		}

		appts, err := db.ListUpcomingAppointments(ctx, pgtype.UUID{Bytes: userID, Valid: true})
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Database error.")
			log.Printf("failed to list appointments: %v", err)
			return
		}
		if appts == nil {
			appts = []model.Appointment{}
		}

		respondJSON(w, http.StatusOK, appts)
	}
}
