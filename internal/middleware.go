package internal

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/sehatlink/sehat/internal/auth"
	"github.com/sehatlink/sehat/internal/config"
	"github.com/sehatlink/sehat/internal/database"
)

// Middleware validates the client's session before protected handlers run.
// The JWT is accepted from an Authorization bearer header or the jwt cookie;
// an expired JWT falls back to the refresh token.
func Middleware(next http.Handler, db *database.Queries, jwtCfg config.JWTConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			if jwtCookie, err := r.Cookie("jwt"); err == nil {
				token = jwtCookie.Value
			}
		}

		if token != "" {
			userID, err := auth.ValidateJWT(token, jwtCfg.Secret)
			if err == nil {
				r = r.WithContext(context.WithValue(r.Context(), auth.UserIDKey, userID))
				next.ServeHTTP(w, r)
				return
			}
		}

		// If the JWT is missing or invalid, try the refresh token. On
		// success a new JWT cookie is set and the request proceeds.
		userID, err := auth.RefreshSession(w, r, db, jwtCfg)
		if err != nil {
			log.Printf("middleware: %v", err)
			http.Error(w, "Unauthorized.", http.StatusUnauthorized)
			return
		}

		r = r.WithContext(context.WithValue(r.Context(), auth.UserIDKey, userID))
		next.ServeHTTP(w, r)
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}
