package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/sehatlink/sehat/internal/model"
)

// CreateMessageParams is one chat frame to persist.
type CreateMessageParams struct {
	RoomID    string
	PatientID pgtype.UUID
	HelperID  pgtype.UUID
	Sender    string
	Text      string
}

func (q *Queries) CreateMessage(ctx context.Context, arg CreateMessageParams) (model.Message, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO messages (room_id, patient_id, helper_id, sender, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, room_id, patient_id, helper_id, sender, message, created_at`,
		arg.RoomID, arg.PatientID, arg.HelperID, arg.Sender, arg.Text,
	)
	return scanMessage(row)
}

// ListMessagesByRoom returns a room's history in creation order.
func (q *Queries) ListMessagesByRoom(ctx context.Context, roomID string) ([]model.Message, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, room_id, patient_id, helper_id, sender, message, created_at
		FROM messages WHERE room_id = $1
		ORDER BY created_at, id`,
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("database: list messages: %w", err)
	}
	defer rows.Close()

	var out []model.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanMessage(row rowScanner) (model.Message, error) {
	var (
		m         model.Message
		patientID pgtype.UUID
		helperID  pgtype.UUID
		sender    string
		createdAt pgtype.Timestamptz
	)
	err := row.Scan(&m.ID, &m.RoomID, &patientID, &helperID, &sender, &m.Text, &createdAt)
	if err != nil {
		return model.Message{}, fmt.Errorf("database: scan message: %w", err)
	}
	m.PatientID = uuid.UUID(patientID.Bytes)
	m.HelperID = uuid.UUID(helperID.Bytes)
	m.Sender = model.Role(sender)
	m.CreatedAt = createdAt.Time
	return m, nil
}
