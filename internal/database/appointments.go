package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/sehatlink/sehat/internal/model"
)

// CreateAppointmentParams books one visit.
type CreateAppointmentParams struct {
	ID            pgtype.UUID
	PatientID     pgtype.UUID
	WorkerID      pgtype.UUID
	ScheduledTime pgtype.Timestamptz
}

func (q *Queries) CreateAppointment(ctx context.Context, arg CreateAppointmentParams) (model.Appointment, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO appointments (id, patient_id, worker_id, scheduled_time)
		VALUES ($1, $2, $3, $4)
		RETURNING id, patient_id, worker_id, scheduled_time, created_at`,
		arg.ID, arg.PatientID, arg.WorkerID, arg.ScheduledTime,
	)
	return scanAppointment(row)
}

// ListUpcomingAppointments returns a patient's future visits in time order.
func (q *Queries) ListUpcomingAppointments(ctx context.Context, patientID pgtype.UUID) ([]model.Appointment, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, patient_id, worker_id, scheduled_time, created_at
		FROM appointments
		WHERE patient_id = $1 AND scheduled_time >= now()
		ORDER BY scheduled_time`,
		patientID,
	)
	if err != nil {
		return nil, fmt.Errorf("database: list upcoming appointments: %w", err)
	}
	defer rows.Close()
	return collectAppointments(rows)
}

// ListAppointmentsBetween returns visits inside [from, to), used by the
// appointment reminder sweep.
func (q *Queries) ListAppointmentsBetween(ctx context.Context, from, to pgtype.Timestamptz) ([]model.Appointment, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, patient_id, worker_id, scheduled_time, created_at
		FROM appointments
		WHERE scheduled_time >= $1 AND scheduled_time < $2
		ORDER BY scheduled_time`,
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("database: list appointments between: %w", err)
	}
	defer rows.Close()
	return collectAppointments(rows)
}

func collectAppointments(rows interface {
	rowScanner
	Next() bool
	Err() error
}) ([]model.Appointment, error) {
	var out []model.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAppointment(row rowScanner) (model.Appointment, error) {
	var (
		a         model.Appointment
		id        pgtype.UUID
		patientID pgtype.UUID
		workerID  pgtype.UUID
		schedule  pgtype.Timestamptz
		createdAt pgtype.Timestamptz
	)
	err := row.Scan(&id, &patientID, &workerID, &schedule, &createdAt)
	if err != nil {
		return model.Appointment{}, fmt.Errorf("database: scan appointment: %w", err)
	}
	a.ID = uuid.UUID(id.Bytes)
	a.PatientID = uuid.UUID(patientID.Bytes)
	a.WorkerID = uuid.UUID(workerID.Bytes)
	a.ScheduledTime = schedule.Time
	a.CreatedAt = createdAt.Time
	return a, nil
}
