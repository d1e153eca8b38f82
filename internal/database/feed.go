package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/sehatlink/sehat/internal/model"
)

// CreateFeedItemParams is one generated feed row.
type CreateFeedItemParams struct {
	UserID     pgtype.UUID
	ItemType   string
	Title      string
	Body       string
	Lang       string
	Tags       []string
	RiskLevel  string
	Conditions []string
	Source     string
}

func (q *Queries) CreateFeedItem(ctx context.Context, arg CreateFeedItemParams) error {
	if arg.Tags == nil {
		arg.Tags = []string{}
	}
	if arg.Conditions == nil {
		arg.Conditions = []string{}
	}
	_, err := q.db.Exec(ctx, `
		INSERT INTO user_feed_items
			(user_id, item_type, title, body, lang, tags, risk_level, conditions, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		arg.UserID, arg.ItemType, arg.Title, arg.Body, arg.Lang,
		arg.Tags, arg.RiskLevel, arg.Conditions, arg.Source,
	)
	if err != nil {
		return fmt.Errorf("database: create feed item: %w", err)
	}
	return nil
}

// UpsertFeedDaily records the day's headline, one row per user per date.
func (q *Queries) UpsertFeedDaily(ctx context.Context, userID pgtype.UUID, feedDate time.Time, lang, headline string) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO user_feed_daily (user_id, feed_date, lang, headline)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, feed_date) DO UPDATE
		SET lang = EXCLUDED.lang, headline = EXCLUDED.headline`,
		userID, pgtype.Date{Time: feedDate, Valid: true}, lang, headline,
	)
	if err != nil {
		return fmt.Errorf("database: upsert feed daily: %w", err)
	}
	return nil
}

// ListFeedItems returns a user's most recent feed rows, newest first.
func (q *Queries) ListFeedItems(ctx context.Context, userID pgtype.UUID, limit int32) ([]model.FeedItem, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, user_id, item_type, title, body, lang, tags, risk_level,
			conditions, source, created_at
		FROM user_feed_items WHERE user_id = $1
		ORDER BY created_at DESC, id DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("database: list feed items: %w", err)
	}
	defer rows.Close()

	var out []model.FeedItem
	for rows.Next() {
		var (
			it        model.FeedItem
			uid       pgtype.UUID
			createdAt pgtype.Timestamptz
		)
		err := rows.Scan(&it.ID, &uid, &it.ItemType, &it.Title, &it.Body,
			&it.Lang, &it.Tags, &it.RiskLevel, &it.Conditions, &it.Source, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("database: scan feed item: %w", err)
		}
		it.UserID = uuid.UUID(uid.Bytes)
		it.CreatedAt = createdAt.Time
		out = append(out, it)
	}
	return out, rows.Err()
}
