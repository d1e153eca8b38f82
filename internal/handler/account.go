package handler

import (
	"log"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/sehatlink/sehat/internal/auth"
	"github.com/sehatlink/sehat/internal/config"
	"github.com/sehatlink/sehat/internal/database"
	"github.com/sehatlink/sehat/internal/sms"
)

type credentialsRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password,omitempty"`
	OTP      string `json:"otp,omitempty"`
}

// Signup creates an account from phone and password.
func Signup(db *database.Queries, jwtCfg config.JWTConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req credentialsRequest
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body.")
			return
		}
		if req.Phone == "" || req.Password == "" {
			respondError(w, http.StatusBadRequest, "Phone and password are required.")
			return
		}

		hashedPw, err := auth.HashPassword(req.Password)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Server error.")
			log.Printf("argon2id hash creation failed: %v", err)
			return
		}

		user, err := db.CreateUser(ctx, database.CreateUserParams{
			UserID:         pgtype.UUID{Bytes: uuid.New(), Valid: true},
			Phone:          req.Phone,
			HashedPassword: hashedPw,
		})
		if err != nil {
			respondError(w, http.StatusConflict, "Account already exists.")
			log.Printf("failed to create user entry in database: %v", err)
			return
		}

		if err := auth.SetTokensAndCookies(w, r, db, user.UserID, jwtCfg); err != nil {
			respondError(w, http.StatusInternalServerError, "Server error.")
			log.Printf("%v", err)
			return
		}

		slog.InfoContext(ctx, "user signed up", slog.String("user_id", user.UserID.String()))
		respondJSON(w, http.StatusCreated, map[string]string{"user_id": user.UserID.String()})
	}
}

// Login authenticates phone and password.
func Login(db *database.Queries, jwtCfg config.JWTConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req credentialsRequest
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body.")
			return
		}

		user, err := db.GetUserByPhone(ctx, req.Phone)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "Invalid phone or password.")
			log.Printf("failed to retrieve user from db: %v", err)
			return
		}

		ok, err := auth.CheckPasswordHash(req.Password, user.HashedPassword)
		if err != nil || !ok {
			respondError(w, http.StatusUnauthorized, "Invalid phone or password.")
			return
		}

		if err := auth.SetTokensAndCookies(w, r, db, user.UserID, jwtCfg); err != nil {
			respondError(w, http.StatusInternalServerError, "Server error.")
			log.Printf("%v", err)
			return
		}

		slog.InfoContext(ctx, "user logged in", slog.String("user_id", user.UserID.String()))
		respondJSON(w, http.StatusOK, map[string]string{"user_id": user.UserID.String()})
	}
}

// SendOTP mints a one-time code for the phone number and delivers it by SMS.
// The response never reveals whether the account exists.
func SendOTP(db *database.Queries, sender sms.Sender) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req credentialsRequest
		if err := decodeJSON(r, &req); err != nil || req.Phone == "" {
			respondError(w, http.StatusBadRequest, "Phone is required.")
			return
		}

		code, err := auth.GenerateOTP(ctx, db, req.Phone)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Server error.")
			log.Printf("%v", err)
			return
		}

		body := "Your Sehat login code is " + code + ". It expires in 5 minutes."
		if err := sender.Send(req.Phone, body); err != nil {
			respondError(w, http.StatusInternalServerError, "Could not send OTP.")
			log.Printf("%v", err)
			return
		}

		respondJSON(w, http.StatusOK, map[string]string{"message": "otp sent"})
	}
}

// VerifyOTP exchanges a valid code for a session. An unknown phone gets an
// account created on the fly, matching the OTP-first onboarding flow.
func VerifyOTP(db *database.Queries, jwtCfg config.JWTConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req credentialsRequest
		if err := decodeJSON(r, &req); err != nil || req.Phone == "" || req.OTP == "" {
			respondError(w, http.StatusBadRequest, "Phone and OTP are required.")
			return
		}

		if err := auth.VerifyOTP(ctx, db, req.Phone, req.OTP); err != nil {
			respondError(w, http.StatusUnauthorized, "Invalid or expired OTP.")
			return
		}

		user, err := db.GetUserByPhone(ctx, req.Phone)
		if err != nil {
			user, err = db.CreateUser(ctx, database.CreateUserParams{
				UserID: pgtype.UUID{Bytes: uuid.New(), Valid: true},
				Phone:  req.Phone,
			})
			if err != nil {
				respondError(w, http.StatusInternalServerError, "Server error.")
				log.Printf("failed to create user entry in database: %v", err)
				return
			}
		}

		if err := auth.SetTokensAndCookies(w, r, db, user.UserID, jwtCfg); err != nil {
			respondError(w, http.StatusInternalServerError, "Server error.")
			log.Printf("%v", err)
			return
		}

		slog.InfoContext(ctx, "user verified otp", slog.String("user_id", user.UserID.String()))
		respondJSON(w, http.StatusOK, map[string]string{"user_id": user.UserID.String()})
	}
}

// Logout revokes the refresh token and clears both cookies.
func Logout(db *database.Queries) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie("refresh_token"); err == nil {
			if err := db.RevokeRefreshToken(r.Context(), cookie.Value); err != nil {
				log.Printf("%v", err)
			}
		}

		for _, name := range []string{"jwt", "refresh_token"} {
			http.SetCookie(w, &http.Cookie{
				Name:     name,
				Value:    "",
				Path:     "/",
				MaxAge:   -1,
				Secure:   true,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		respondJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
	}
}
