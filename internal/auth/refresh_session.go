package auth

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/sehatlink/sehat/internal/config"
	"github.com/sehatlink/sehat/internal/database"
)

// RefreshSession issues a fresh JWT from the refresh token cookie.
func RefreshSession(w http.ResponseWriter, r *http.Request, db *database.Queries, cfg config.JWTConfig) (uuid.UUID, error) {
	refreshTokCookie, err := r.Cookie("refresh_token")
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("internal/auth: no refresh token cookie: %w", err)
	}

	userID, err := db.GetUserFromRefreshTok(r.Context(), refreshTokCookie.Value)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("internal/auth: failed to retrieve user from refresh token: %w", err)
	}

	token, err := MakeJWT(userID.Bytes, cfg.Secret, cfg.Issuer, cfg.AccessTTL)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("internal/auth: failed to make JWT: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "jwt",
		Value:    token,
		Path:     "/",
		MaxAge:   int(cfg.AccessTTL.Seconds()),
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return userID.Bytes, nil
}
