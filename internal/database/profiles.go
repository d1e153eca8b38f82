package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/sehatlink/sehat/internal/model"
)

const profileColumns = `id, name, phone, age, gender, language, risk_level,
	conditions, state, district, meal_preference, assigned_worker_id, created_at`

// UpsertProfileParams carry every editable profile column.
type UpsertProfileParams struct {
	ID               pgtype.UUID
	Name             string
	Phone            string
	Age              int32
	Gender           string
	Language         string
	RiskLevel        string
	Conditions       []string
	State            string
	District         string
	MealPreference   string
	AssignedWorkerID pgtype.UUID
}

// UpsertProfile creates or replaces the profile attached to a user.
func (q *Queries) UpsertProfile(ctx context.Context, arg UpsertProfileParams) (model.Profile, error) {
	if arg.Conditions == nil {
		arg.Conditions = []string{}
	}
	row := q.db.QueryRow(ctx, `
		INSERT INTO profiles (id, name, phone, age, gender, language, risk_level,
			conditions, state, district, meal_preference, assigned_worker_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			phone = EXCLUDED.phone,
			age = EXCLUDED.age,
			gender = EXCLUDED.gender,
			language = EXCLUDED.language,
			risk_level = EXCLUDED.risk_level,
			conditions = EXCLUDED.conditions,
			state = EXCLUDED.state,
			district = EXCLUDED.district,
			meal_preference = EXCLUDED.meal_preference,
			assigned_worker_id = EXCLUDED.assigned_worker_id
		RETURNING `+profileColumns,
		arg.ID, arg.Name, arg.Phone, arg.Age, arg.Gender, arg.Language,
		arg.RiskLevel, arg.Conditions, arg.State, arg.District,
		arg.MealPreference, arg.AssignedWorkerID,
	)
	return scanProfile(row)
}

func (q *Queries) GetProfile(ctx context.Context, id pgtype.UUID) (model.Profile, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
	return scanProfile(row)
}

// ListProfileIDs pages all profile ids for bulk feed refresh.
func (q *Queries) ListProfileIDs(ctx context.Context, limit, offset int32) ([]uuid.UUID, error) {
	rows, err := q.db.Query(ctx,
		`SELECT id FROM profiles ORDER BY created_at LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("database: list profile ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id pgtype.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("database: scan profile id: %w", err)
		}
		ids = append(ids, uuid.UUID(id.Bytes))
	}
	return ids, rows.Err()
}

// ListProfiles returns all profiles, used by the reminder sweep.
func (q *Queries) ListProfiles(ctx context.Context) ([]model.Profile, error) {
	rows, err := q.db.Query(ctx, `SELECT `+profileColumns+` FROM profiles`)
	if err != nil {
		return nil, fmt.Errorf("database: list profiles: %w", err)
	}
	defer rows.Close()
	return collectProfiles(rows)
}

// ListProfilesByIDs fetches specific profiles, used to join appointment
// reminders against patient contact details.
func (q *Queries) ListProfilesByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Profile, error) {
	pgIDs := make([]pgtype.UUID, 0, len(ids))
	for _, id := range ids {
		pgIDs = append(pgIDs, pgtype.UUID{Bytes: id, Valid: true})
	}

	rows, err := q.db.Query(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = ANY($1)`, pgIDs)
	if err != nil {
		return nil, fmt.Errorf("database: list profiles by ids: %w", err)
	}
	defer rows.Close()
	return collectProfiles(rows)
}

func collectProfiles(rows pgx.Rows) ([]model.Profile, error) {
	var out []model.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanProfile(row rowScanner) (model.Profile, error) {
	var (
		p         model.Profile
		id        pgtype.UUID
		worker    pgtype.UUID
		createdAt pgtype.Timestamptz
	)
	err := row.Scan(&id, &p.Name, &p.Phone, &p.Age, &p.Gender, &p.Language,
		&p.RiskLevel, &p.Conditions, &p.State, &p.District,
		&p.MealPreference, &worker, &createdAt)
	if err != nil {
		return model.Profile{}, fmt.Errorf("database: scan profile: %w", err)
	}
	p.ID = uuid.UUID(id.Bytes)
	p.CreatedAt = createdAt.Time
	if worker.Valid {
		w := uuid.UUID(worker.Bytes)
		p.AssignedWorkerID = &w
	}
	return p, nil
}
