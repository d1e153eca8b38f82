package handler

import (
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/sehatlink/sehat/internal/auth"
	"github.com/sehatlink/sehat/internal/database"
	"github.com/sehatlink/sehat/internal/feed"
	"github.com/sehatlink/sehat/internal/model"
)

// GenerateFeed refreshes the feed for one user in the requested language.
func GenerateFeed(svc *feed.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, err := uuid.Parse(chi.URLParam(r, "userID"))
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid user id.")
			return
		}
		lang := chi.URLParam(r, "lang")

		count, err := svc.RefreshUserFeed(ctx, userID, lang)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			log.Printf("feed generation failed: %v", err)
			return
		}

		respondJSON(w, http.StatusOK, map[string]any{
			"user_id": userID.String(),
			"count":   count,
			"message": "refreshed",
		})
	}
}

// RefreshAllFeeds refreshes feeds for a page of users. limit defaults to 100
// (max 1000), offset to 0.
func RefreshAllFeeds(svc *feed.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := queryInt(r, "limit", 100)
		offset := queryInt(r, "offset", 0)
		if limit < 1 || limit > 1000 || offset < 0 {
			respondError(w, http.StatusBadRequest, "Invalid limit or offset.")
			return
		}

		report, err := svc.RefreshAll(r.Context(), int32(limit), int32(offset))
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Feed refresh failed.")
			log.Printf("%v", err)
			return
		}

		respondJSON(w, http.StatusOK, report)
	}
}

// ListFeed returns the authenticated user's latest feed rows.
func ListFeed(db *database.Queries) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, err := auth.GetUserFromContext(ctx)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "Unauthorized.")
			return
		}

		items, err := db.ListFeedItems(ctx, pgtype.UUID{Bytes: userID, Valid: true}, 12)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Database error.")
			log.Printf("failed to list feed items: %v", err)
			return
		}
		if items == nil {
			items = []model.FeedItem{}
		}

		respondJSON(w, http.StatusOK, items)
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return n
}
