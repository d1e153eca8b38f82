package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/sehatlink/sehat/internal/model"
)

// CreateVitalParams is one measurement to record.
type CreateVitalParams struct {
	PatientID  pgtype.UUID
	Type       string
	Value      string
	Unit       string
	MeasuredAt pgtype.Timestamptz
}

func (q *Queries) CreateVital(ctx context.Context, arg CreateVitalParams) (model.Vital, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO vitals (patient_id, type, value, unit, measured_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, patient_id, type, value, unit, measured_at, created_at`,
		arg.PatientID, arg.Type, arg.Value, arg.Unit, arg.MeasuredAt,
	)
	return scanVital(row)
}

// ListVitals returns a patient's measurements, newest first, capped at limit.
func (q *Queries) ListVitals(ctx context.Context, patientID pgtype.UUID, limit int32) ([]model.Vital, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, patient_id, type, value, unit, measured_at, created_at
		FROM vitals WHERE patient_id = $1
		ORDER BY measured_at DESC LIMIT $2`,
		patientID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("database: list vitals: %w", err)
	}
	defer rows.Close()

	var out []model.Vital
	for rows.Next() {
		v, err := scanVital(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func scanVital(row rowScanner) (model.Vital, error) {
	var (
		v          model.Vital
		patientID  pgtype.UUID
		measuredAt pgtype.Timestamptz
		createdAt  pgtype.Timestamptz
	)
	err := row.Scan(&v.ID, &patientID, &v.Type, &v.Value, &v.Unit, &measuredAt, &createdAt)
	if err != nil {
		return model.Vital{}, fmt.Errorf("database: scan vital: %w", err)
	}
	v.PatientID = uuid.UUID(patientID.Bytes)
	v.MeasuredAt = measuredAt.Time
	v.CreatedAt = createdAt.Time
	return v, nil
}
