package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/sehatlink/sehat/internal/model"
)

// CreateUserParams are the columns required to create an account.
type CreateUserParams struct {
	UserID         pgtype.UUID
	Phone          string
	HashedPassword string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (model.User, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO users (user_id, phone, hashed_password)
		VALUES ($1, $2, $3)
		RETURNING user_id, phone, hashed_password, created_at`,
		arg.UserID, arg.Phone, arg.HashedPassword,
	)
	return scanUser(row)
}

func (q *Queries) GetUserByPhone(ctx context.Context, phone string) (model.User, error) {
	row := q.db.QueryRow(ctx, `
		SELECT user_id, phone, hashed_password, created_at
		FROM users WHERE phone = $1`,
		phone,
	)
	return scanUser(row)
}

func (q *Queries) GetUserById(ctx context.Context, userID pgtype.UUID) (model.User, error) {
	row := q.db.QueryRow(ctx, `
		SELECT user_id, phone, hashed_password, created_at
		FROM users WHERE user_id = $1`,
		userID,
	)
	return scanUser(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (model.User, error) {
	var (
		u         model.User
		id        pgtype.UUID
		createdAt pgtype.Timestamptz
	)
	if err := row.Scan(&id, &u.Phone, &u.HashedPassword, &createdAt); err != nil {
		return model.User{}, fmt.Errorf("database: scan user: %w", err)
	}
	u.UserID = uuid.UUID(id.Bytes)
	u.CreatedAt = createdAt.Time
	return u, nil
}

// CreateRefreshTokenParams mirror the refresh_tokens columns.
type CreateRefreshTokenParams struct {
	Token     string
	UserID    pgtype.UUID
	CreatedAt pgtype.Timestamptz
	ExpiresAt pgtype.Timestamptz
}

func (q *Queries) CreateRefreshToken(ctx context.Context, arg CreateRefreshTokenParams) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO refresh_tokens (token, user_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)`,
		arg.Token, arg.UserID, arg.CreatedAt, arg.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("database: create refresh token: %w", err)
	}
	return nil
}

// GetUserFromRefreshTok returns the owning user of a live refresh token.
func (q *Queries) GetUserFromRefreshTok(ctx context.Context, token string) (pgtype.UUID, error) {
	var userID pgtype.UUID
	err := q.db.QueryRow(ctx, `
		SELECT user_id FROM refresh_tokens
		WHERE token = $1 AND revoked_at IS NULL AND expires_at > now()`,
		token,
	).Scan(&userID)
	if err != nil {
		return pgtype.UUID{}, fmt.Errorf("database: get user from refresh token: %w", err)
	}
	return userID, nil
}

// DoesRefreshTokenExist errors when the token is unknown, revoked, or expired.
func (q *Queries) DoesRefreshTokenExist(ctx context.Context, token string) (string, error) {
	var got string
	err := q.db.QueryRow(ctx, `
		SELECT token FROM refresh_tokens
		WHERE token = $1 AND revoked_at IS NULL AND expires_at > now()`,
		token,
	).Scan(&got)
	if err != nil {
		return "", fmt.Errorf("database: refresh token lookup: %w", err)
	}
	return got, nil
}

func (q *Queries) RevokeRefreshToken(ctx context.Context, token string) error {
	_, err := q.db.Exec(ctx,
		`UPDATE refresh_tokens SET revoked_at = now() WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("database: revoke refresh token: %w", err)
	}
	return nil
}

// UpsertOTP stores the hashed one-time code for a phone number, replacing any
// previous code.
func (q *Queries) UpsertOTP(ctx context.Context, phone, hashedCode string, expiresAt time.Time) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO otp_codes (phone, hashed_code, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (phone) DO UPDATE
		SET hashed_code = EXCLUDED.hashed_code,
		    expires_at = EXCLUDED.expires_at,
		    created_at = now()`,
		phone, hashedCode, pgtype.Timestamptz{Time: expiresAt, Valid: true},
	)
	if err != nil {
		return fmt.Errorf("database: upsert otp: %w", err)
	}
	return nil
}

// GetOTP returns the current unexpired hashed code for a phone number.
func (q *Queries) GetOTP(ctx context.Context, phone string) (string, error) {
	var hashed string
	err := q.db.QueryRow(ctx, `
		SELECT hashed_code FROM otp_codes
		WHERE phone = $1 AND expires_at > now()`,
		phone,
	).Scan(&hashed)
	if err != nil {
		return "", fmt.Errorf("database: get otp: %w", err)
	}
	return hashed, nil
}

func (q *Queries) DeleteOTP(ctx context.Context, phone string) error {
	_, err := q.db.Exec(ctx, `DELETE FROM otp_codes WHERE phone = $1`, phone)
	if err != nil {
		return fmt.Errorf("database: delete otp: %w", err)
	}
	return nil
}
