package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/sehatlink/sehat/internal/auth"
	"github.com/sehatlink/sehat/internal/database"
	"github.com/sehatlink/sehat/internal/model"
)

type vitalEntry struct {
	Type       string    `json:"type"`
	Value      string    `json:"value"`
	Unit       string    `json:"unit"`
	MeasuredAt time.Time `json:"measured_at"`
}

// CreateVitals records a batch of measurements for the authenticated patient,
// matching the "add today's vitals" form that submits several types at once.
func CreateVitals(db *database.Queries) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, err := auth.GetUserFromContext(ctx)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "Unauthorized.")
			return
		}

		var entries []vitalEntry
		if err := decodeJSON(r, &entries); err != nil || len(entries) == 0 {
			respondError(w, http.StatusBadRequest, "Invalid request body.")
			return
		}

		saved := make([]model.Vital, 0, len(entries))
		for _, e := range entries {
			if e.Type == "" || e.Value == "" {
				respondError(w, http.StatusBadRequest, "Each vital needs a type and value.")
				return
			}
			measuredAt := e.MeasuredAt
			if measuredAt.IsZero() {
				measuredAt = time.Now().UTC()
			}

			v, err := db.CreateVital(ctx, database.CreateVitalParams{
				PatientID:  pgtype.UUID{Bytes: userID, Valid: true},
				Type:       e.Type,
				Value:      e.Value,
				Unit:       e.Unit,
				MeasuredAt: pgtype.Timestamptz{Time: measuredAt, Valid: true},
			})
			if err != nil {
				respondError(w, http.StatusInternalServerError, "Database error.")
				log.Printf("failed to create vital: %v", err)
				return
			}
			saved = append(saved, v)
		}

		respondJSON(w, http.StatusCreated, saved)
	}
}

// ListVitals returns the authenticated patient's measurements, newest first.
func ListVitals(db *database.Queries) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, err := auth.GetUserFromContext(ctx)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "Unauthorized.")
			return
		}

		vitals, err := db.ListVitals(ctx, pgtype.UUID{Bytes: userID, Valid: true}, 200)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Database error.")
			log.Printf("failed to list vitals: %v", err)
			return
		}
		if vitals == nil {
			vitals = []model.Vital{}
		}

		respondJSON(w, http.StatusOK, vitals)
	}
}
