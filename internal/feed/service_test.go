package feed

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sehatlink/sehat/internal/database"
	"github.com/sehatlink/sehat/internal/testutil"
)

// createAccount satisfies the users foreign key that profiles and feed rows
// hang off.
func createAccount(t *testing.T, queries *database.Queries) uuid.UUID {
	t.Helper()
	userID := uuid.New()
	_, err := queries.CreateUser(context.Background(), database.CreateUserParams{
		UserID:         pgtype.UUID{Bytes: userID, Valid: true},
		Phone:          fmt.Sprintf("+91%d", time.Now().UnixNano()),
		HashedPassword: "dummy-hash",
	})
	require.NoError(t, err)
	return userID
}

// stubGenerator returns canned content, recording the prompts it saw.
type stubGenerator struct {
	content string
	err     error
	system  string
	user    string
}

func (g *stubGenerator) Complete(_ context.Context, system, user string) (string, error) {
	g.system = system
	g.user = user
	if g.err != nil {
		return "", g.err
	}
	return g.content, nil
}

const stubFeedContent = `{
	"headline": "Your plan for today",
	"items": [
		{"item_type": "diet", "title": "Breakfast idea", "body": "Vegetable poha with curd", "tags": ["fiber"]},
		{"item_type": "education", "title": "Know your BP", "body": "What the two numbers mean"},
		{"item_type": "habit", "title": "Hydration", "body": "A glass of water before each meal"},
		{"item_type": "reminder", "title": "Evening walk", "body": "15 minutes at a talkable pace"},
		{"item_type": "exercise", "title": "Mobility", "body": "Ankle circles and shoulder rolls"},
		{"item_type": "recipe", "title": "Dal chilla", "body": "Protein-rich savoury pancake",
		 "ingredients": ["moong dal", "onion", "spices"], "instructions": ["soak", "grind", "pan fry"]}
	]
}`

func TestRefreshUserFeed(t *testing.T) {
	db, dbForGoose, migDir := testutil.DbInit(t)
	testutil.DbGooseUp(t, dbForGoose, migDir)
	defer testutil.DbCleanup(t, db, migDir)

	queries := database.New(db)
	ctx := context.Background()

	userID := createAccount(t, queries)
	pgID := pgtype.UUID{Bytes: userID, Valid: true}

	_, err := queries.UpsertProfile(ctx, database.UpsertProfileParams{
		ID:         pgID,
		Name:       "Asha Devi",
		Phone:      "9876543210",
		Age:        62,
		Language:   "hi",
		RiskLevel:  "high",
		Conditions: []string{"diabetes"},
	})
	require.NoError(t, err)

	_, err = queries.CreateVital(ctx, database.CreateVitalParams{
		PatientID:  pgID,
		Type:       "glucose",
		Value:      "160",
		Unit:       "mg/dL",
		MeasuredAt: pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true},
	})
	require.NoError(t, err)

	gen := &stubGenerator{content: stubFeedContent}
	svc := NewService(queries, gen)

	stored, err := svc.RefreshUserFeed(ctx, userID, "en")
	require.NoError(t, err)
	assert.Equal(t, 6, stored)

	// The prompt carries the conditions and the rule seeds, never the name.
	assert.Contains(t, gen.user, "diabetes")
	assert.Contains(t, gen.user, "brisk walk")
	assert.NotContains(t, gen.user, "Asha Devi")

	items, err := queries.ListFeedItems(ctx, pgID, 12)
	require.NoError(t, err)
	require.Len(t, items, 6)

	for _, it := range items {
		// Rule tags are merged into every stored item.
		assert.Contains(t, it.Tags, "diabetes")
		assert.Contains(t, it.Tags, "glucose_aware")
		assert.Equal(t, "ai+rules", it.Source)
		// The profile language wins over the request language.
		assert.Equal(t, "hi", it.Lang)
	}
}

func TestRefreshUserFeedWithoutProfile(t *testing.T) {
	db, dbForGoose, migDir := testutil.DbInit(t)
	testutil.DbGooseUp(t, dbForGoose, migDir)
	defer testutil.DbCleanup(t, db, migDir)

	svc := NewService(database.New(db), &stubGenerator{content: stubFeedContent})

	_, err := svc.RefreshUserFeed(context.Background(), uuid.New(), "en")
	assert.Error(t, err)
}

func TestRefreshAll(t *testing.T) {
	db, dbForGoose, migDir := testutil.DbInit(t)
	testutil.DbGooseUp(t, dbForGoose, migDir)
	defer testutil.DbCleanup(t, db, migDir)

	queries := database.New(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		userID := createAccount(t, queries)
		_, err := queries.UpsertProfile(ctx, database.UpsertProfileParams{
			ID:   pgtype.UUID{Bytes: userID, Valid: true},
			Name: "Patient",
			Age:  40,
		})
		require.NoError(t, err)
	}

	t.Run("all succeed", func(t *testing.T) {
		svc := NewService(queries, &stubGenerator{content: stubFeedContent})
		report, err := svc.RefreshAll(ctx, 100, 0)
		require.NoError(t, err)
		assert.Equal(t, 3, report.Requested)
		assert.Equal(t, 3, report.Refreshed)
		assert.Empty(t, report.Errors)
	})

	t.Run("generator failures collected per user", func(t *testing.T) {
		svc := NewService(queries, &stubGenerator{err: errors.New("model down")})
		report, err := svc.RefreshAll(ctx, 100, 0)
		require.NoError(t, err)
		assert.Equal(t, 3, report.Requested)
		assert.Equal(t, 0, report.Refreshed)
		assert.Len(t, report.Errors, 3)
	})

	t.Run("empty page", func(t *testing.T) {
		svc := NewService(queries, &stubGenerator{content: stubFeedContent})
		report, err := svc.RefreshAll(ctx, 100, 50)
		require.NoError(t, err)
		assert.Equal(t, "No users in range", report.Message)
	})
}
