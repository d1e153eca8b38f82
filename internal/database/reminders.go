package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
)

// CreateReminder logs one sent SMS.
func (q *Queries) CreateReminder(ctx context.Context, patientID pgtype.UUID, message string) error {
	_, err := q.db.Exec(ctx,
		`INSERT INTO reminders (patient_id, message) VALUES ($1, $2)`,
		patientID, message)
	if err != nil {
		return fmt.Errorf("database: create reminder: %w", err)
	}
	return nil
}
