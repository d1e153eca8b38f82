package handler

import (
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/sehatlink/sehat/internal/auth"
	"github.com/sehatlink/sehat/internal/database"
)

type profileRequest struct {
	Name             string   `json:"name"`
	Phone            string   `json:"phone"`
	Age              int32    `json:"age"`
	Gender           string   `json:"gender"`
	Language         string   `json:"language"`
	RiskLevel        string   `json:"risk_level"`
	Conditions       []string `json:"conditions"`
	State            string   `json:"state"`
	District         string   `json:"district"`
	MealPreference   string   `json:"meal_preference"`
	AssignedWorkerID string   `json:"assigned_worker_id,omitempty"`
}

// GetProfile returns the authenticated user's profile.
func GetProfile(db *database.Queries) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, err := auth.GetUserFromContext(ctx)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "Unauthorized.")
			return
		}

		profile, err := db.GetProfile(ctx, pgtype.UUID{Bytes: userID, Valid: true})
		if err != nil {
			respondError(w, http.StatusNotFound, "Profile not found.")
			return
		}

		respondJSON(w, http.StatusOK, profile)
	}
}

// UpsertProfile creates or updates the authenticated user's profile.
func UpsertProfile(db *database.Queries) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, err := auth.GetUserFromContext(ctx)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "Unauthorized.")
			return
		}

		var req profileRequest
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body.")
			return
		}

		var worker pgtype.UUID
		if req.AssignedWorkerID != "" {
			id, err := uuid.Parse(req.AssignedWorkerID)
			if err != nil {
				respondError(w, http.StatusBadRequest, "Invalid assigned_worker_id.")
				return
			}
			worker = pgtype.UUID{Bytes: id, Valid: true}
		}

		profile, err := db.UpsertProfile(ctx, database.UpsertProfileParams{
			ID:               pgtype.UUID{Bytes: userID, Valid: true},
			Name:             req.Name,
			Phone:            req.Phone,
			Age:              req.Age,
			Gender:           req.Gender,
			Language:         req.Language,
			RiskLevel:        req.RiskLevel,
			Conditions:       req.Conditions,
			State:            req.State,
			District:         req.District,
			MealPreference:   req.MealPreference,
			AssignedWorkerID: worker,
		})
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Database error.")
			log.Printf("failed to upsert profile: %v", err)
			return
		}

		respondJSON(w, http.StatusOK, profile)
	}
}
