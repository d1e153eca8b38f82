package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/sehatlink/sehat/internal/database"
)

// OTPTTL is how long a one-time code stays valid.
const OTPTTL = 5 * time.Minute

var ErrInvalidOTP = errors.New("internal/auth: otp invalid or expired")

// GenerateOTP mints a 6-digit code for the phone number and stores only its
// argon2id hash. The plaintext code is returned for SMS delivery.
func GenerateOTP(ctx context.Context, db *database.Queries, phone string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("internal/auth: otp generation failed: %w", err)
	}
	code := fmt.Sprintf("%06d", n.Int64())

	hashed, err := HashPassword(code)
	if err != nil {
		return "", err
	}

	if err := db.UpsertOTP(ctx, phone, hashed, time.Now().UTC().Add(OTPTTL)); err != nil {
		return "", fmt.Errorf("internal/auth: failed to store otp: %w", err)
	}

	return code, nil
}

// VerifyOTP checks code against the stored hash for phone and consumes it on
// success. A code can be used once.
func VerifyOTP(ctx context.Context, db *database.Queries, phone, code string) error {
	hashed, err := db.GetOTP(ctx, phone)
	if err != nil {
		return ErrInvalidOTP
	}

	ok, err := CheckPasswordHash(code, hashed)
	if err != nil || !ok {
		return ErrInvalidOTP
	}

	if err := db.DeleteOTP(ctx, phone); err != nil {
		return fmt.Errorf("internal/auth: failed to consume otp: %w", err)
	}
	return nil
}
