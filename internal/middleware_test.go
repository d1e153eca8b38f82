package internal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/sehatlink/sehat/internal/auth"
	"github.com/sehatlink/sehat/internal/config"
	"github.com/sehatlink/sehat/internal/database"
	"github.com/sehatlink/sehat/internal/testutil"
)

var testJWTCfg = config.JWTConfig{
	Secret:     "middleware-test-secret",
	Issuer:     "sehat",
	AccessTTL:  5 * time.Minute,
	RefreshTTL: 7 * 24 * time.Hour,
}

func sessionRequest(t *testing.T,
	ctx context.Context,
	userID uuid.UUID,
	queries *database.Queries,
	refreshTokenExp, jwtExp time.Duration,
	isCookieEmpty bool) (*http.Request, *httptest.ResponseRecorder) {

	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/profile", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	if isCookieEmpty {
		return req, rec
	}

	jwtStr, err := auth.MakeJWT(userID, testJWTCfg.Secret, testJWTCfg.Issuer, jwtExp)
	if err != nil {
		t.Fatalf("%+v", err)
	}

	refreshTokenStr, err := auth.MakeRefreshToken(ctx, queries, userID, refreshTokenExp)
	if err != nil {
		t.Fatalf("%+v", err)
	}

	req.AddCookie(&http.Cookie{Name: "jwt", Value: jwtStr})
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: refreshTokenStr})

	return req, rec
}

func TestMiddleware(t *testing.T) {
	db, dbForGoose, migDir := testutil.DbInit(t)
	testutil.DbGooseUp(t, dbForGoose, migDir)
	defer testutil.DbCleanup(t, db, migDir)

	queries := database.New(db)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	user, err := queries.CreateUser(ctx, database.CreateUserParams{
		UserID:         pgtype.UUID{Bytes: uuid.New(), Valid: true},
		Phone:          "+919876543210",
		HashedPassword: "dummy-hash",
	})
	if err != nil {
		t.Fatalf("%+v", err)
	}

	tests := []struct {
		Name              string
		jwtExp            time.Duration
		refreshTokenExp   time.Duration
		isCookieEmpty     bool
		wantHandlerCalled bool
		wantCode          int
	}{
		{"valid_JWT", 5 * time.Minute, 7 * 24 * time.Hour, false, true, http.StatusOK},
		{"expired_JWT_live_refresh_token", -1 * time.Second, 7 * 24 * time.Hour, false, true, http.StatusOK},
		{"expired_JWT_and_refresh_token", -1 * time.Second, -1 * time.Second, false, false, http.StatusUnauthorized},
		{"empty_cookies", 0, 0, true, false, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			req, rec := sessionRequest(t, ctx, user.UserID, queries, tt.refreshTokenExp, tt.jwtExp, tt.isCookieEmpty)

			isHandlerCalled := false
			var gotUserID uuid.UUID
			nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				isHandlerCalled = true
				gotUserID, _ = auth.GetUserFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			Middleware(nextHandler, queries, testJWTCfg).ServeHTTP(rec, req)

			if isHandlerCalled != tt.wantHandlerCalled {
				t.Errorf("handler called = %v, want %v", isHandlerCalled, tt.wantHandlerCalled)
			}

			if rec.Code != tt.wantCode {
				t.Errorf("want %d, got %d", tt.wantCode, rec.Code)
			}

			if tt.wantHandlerCalled && gotUserID != user.UserID {
				t.Errorf("context user id = %s, want %s", gotUserID, user.UserID)
			}
		})
	}

	t.Run("bearer_header", func(t *testing.T) {
		jwtStr, err := auth.MakeJWT(user.UserID, testJWTCfg.Secret, testJWTCfg.Issuer, 5*time.Minute)
		if err != nil {
			t.Fatalf("%+v", err)
		}

		req := httptest.NewRequest(http.MethodGet, "/profile", nil).WithContext(ctx)
		req.Header.Set("Authorization", "Bearer "+jwtStr)
		rec := httptest.NewRecorder()

		Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}), queries, testJWTCfg).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("want %d, got %d", http.StatusOK, rec.Code)
		}
	})
}
