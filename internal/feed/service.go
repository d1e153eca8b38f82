package feed

import (
	"context"
	"fmt"
	"log"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/sehatlink/sehat/internal/database"
)

// Service ties profile, vitals, the generator and storage together.
type Service struct {
	db  *database.Queries
	llm Generator
}

// NewService returns a feed service over db and llm.
func NewService(db *database.Queries, llm Generator) *Service {
	return &Service{db: db, llm: llm}
}

// RefreshUserFeed regenerates one user's feed and returns how many rows were
// stored.
func (s *Service) RefreshUserFeed(ctx context.Context, userID uuid.UUID, lang string) (int, error) {
	pgID := pgtype.UUID{Bytes: userID, Valid: true}

	profile, err := s.db.GetProfile(ctx, pgID)
	if err != nil {
		return 0, fmt.Errorf("internal/feed: profile not found: %w", err)
	}

	vitals, err := LatestVitals(ctx, s.db, pgID)
	if err != nil {
		return 0, err
	}

	rules := Seeds(profile, vitals, lang)

	content, err := s.llm.Complete(ctx, systemSafety, BuildPrompt(profile, vitals, rules))
	if err != nil {
		return 0, err
	}

	doc, err := ParseDocument(content)
	if err != nil {
		return 0, err
	}

	// Merge rule tags into every item, deduplicated and sorted.
	for i := range doc.Items {
		doc.Items[i].Tags = mergeTags(doc.Items[i].Tags, rules.Tags)
	}

	storedLang := profile.Language
	if storedLang == "" {
		storedLang = rules.Lang
	}

	for _, it := range doc.Items {
		err := s.db.CreateFeedItem(ctx, database.CreateFeedItemParams{
			UserID:     pgID,
			ItemType:   it.ItemType,
			Title:      it.Title,
			Body:       it.Body,
			Lang:       storedLang,
			Tags:       it.Tags,
			RiskLevel:  profile.RiskLevel,
			Conditions: profile.Conditions,
			Source:     "ai+rules",
		})
		if err != nil {
			return 0, err
		}
	}

	err = s.db.UpsertFeedDaily(ctx, pgID, time.Now().UTC(), storedLang, doc.Headline)
	if err != nil {
		return 0, err
	}

	return len(doc.Items), nil
}

// Report summarizes a bulk refresh.
type Report struct {
	Requested int      `json:"requested"`
	Refreshed int      `json:"refreshed"`
	Errors    []string `json:"errors"`
	Message   string   `json:"message,omitempty"`
}

// RefreshAll regenerates feeds for a page of users. Per-user failures are
// collected, not fatal; the error list is capped at 50 entries.
func (s *Service) RefreshAll(ctx context.Context, limit, offset int32) (Report, error) {
	ids, err := s.db.ListProfileIDs(ctx, limit, offset)
	if err != nil {
		return Report{}, fmt.Errorf("internal/feed: list profiles: %w", err)
	}

	if len(ids) == 0 {
		return Report{Errors: []string{}, Message: "No users in range"}, nil
	}

	report := Report{Requested: len(ids), Errors: []string{}}
	for _, id := range ids {
		if _, err := s.RefreshUserFeed(ctx, id, ""); err != nil {
			log.Printf("feed refresh failed for user %s: %v", id, err)
			if len(report.Errors) < 50 {
				report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", id, err))
			}
			continue
		}
		report.Refreshed++
	}

	return report, nil
}

func mergeTags(itemTags, ruleTags []string) []string {
	seen := make(map[string]bool, len(itemTags)+len(ruleTags))
	for _, t := range itemTags {
		seen[t] = true
	}
	for _, t := range ruleTags {
		seen[t] = true
	}

	merged := make([]string, 0, len(seen))
	for t := range seen {
		merged = append(merged, t)
	}
	slices.Sort(merged)
	return merged
}
