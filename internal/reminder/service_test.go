package reminder

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

// recordingSender captures every outbound SMS; failFor makes sends to one
// number fail.
type recordingSender struct {
	sent    []string
	bodies  []string
	failFor string
}

func (s *recordingSender) Send(to, body string) error {
	if s.failFor != "" && to == s.failFor {
		return errors.New("carrier rejected")
	}
	s.sent = append(s.sent, to)
	s.bodies = append(s.bodies, body)
	return nil
}

func createPatient(t *testing.T, queries *database.Queries, phone string) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	userID := uuid.New()

	_, err := queries.CreateUser(ctx, database.CreateUserParams{
		UserID:         pgtype.UUID{Bytes: userID, Valid: true},
		Phone:          fmt.Sprintf("+91%d", time.Now().UnixNano()),
		HashedPassword: "dummy-hash",
	})
	require.NoError(t, err)

	_, err = queries.UpsertProfile(ctx, database.UpsertProfileParams{
		ID:    pgtype.UUID{Bytes: userID, Valid: true},
		Name:  "Asha",
		Phone: phone,
	})
	require.NoError(t, err)
	return userID
}

func TestSendVitalsReminders(t *testing.T) {
	db, dbForGoose, migDir := testutil.DbInit(t)
	testutil.DbGooseUp(t, dbForGoose, migDir)
	defer testutil.DbCleanup(t, db, migDir)

	queries := database.New(db)

	createPatient(t, queries, "9876543210")
	createPatient(t, queries, "") // no phone, skipped
	createPatient(t, queries, "9111111111; 9222222222")

	sender := &recordingSender{}
	svc := NewService(queries, sender)

	report, err := svc.SendVitalsReminders(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.Sent)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 0, report.Failed)
	assert.ElementsMatch(t,
		[]string{"+919876543210", "+919111111111", "+919222222222"}, sender.sent)
	for _, body := range sender.bodies {
		assert.Contains(t, body, "today's vitals")
	}
}

func TestSendVitalsRemindersFailure(t *testing.T) {
	db, dbForGoose, migDir := testutil.DbInit(t)
	testutil.DbGooseUp(t, dbForGoose, migDir)
	defer testutil.DbCleanup(t, db, migDir)

	queries := database.New(db)
	createPatient(t, queries, "9876543210")

	sender := &recordingSender{failFor: "+919876543210"}
	svc := NewService(queries, sender)

	report, err := svc.SendVitalsReminders(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, report.Sent)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Details, 1)
	assert.Equal(t, "failed", report.Details[0].Status)
	assert.Contains(t, report.Details[0].Error, "carrier rejected")
}

func TestSendAppointmentReminders(t *testing.T) {
	db, dbForGoose, migDir := testutil.DbInit(t)
	testutil.DbGooseUp(t, dbForGoose, migDir)
	defer testutil.DbCleanup(t, db, migDir)

	queries := database.New(db)
	ctx := context.Background()

	inWindow := createPatient(t, queries, "9876543210")
	outOfWindow := createPatient(t, queries, "9123456789")

	book := func(patientID uuid.UUID, when time.Time) uuid.UUID {
		apptID := uuid.New()
		_, err := queries.CreateAppointment(ctx, database.CreateAppointmentParams{
			ID:            pgtype.UUID{Bytes: apptID, Valid: true},
			PatientID:     pgtype.UUID{Bytes: patientID, Valid: true},
			WorkerID:      pgtype.UUID{Bytes: uuid.New(), Valid: true},
			ScheduledTime: pgtype.Timestamptz{Time: when, Valid: true},
		})
		require.NoError(t, err)
		return apptID
	}

	now := time.Now().UTC()
	apptID := book(inWindow, now.Add(30*time.Minute))
	book(outOfWindow, now.Add(5*time.Hour))

	sender := &recordingSender{}
	svc := NewService(queries, sender)

	report, err := svc.SendAppointmentReminders(ctx, 90*time.Minute)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Sent)
	assert.Equal(t, 0, report.Skipped)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "+919876543210", sender.sent[0])
	assert.Contains(t, sender.bodies[0], "(APPT:"+apptID.String()+")")
	assert.Contains(t, sender.bodies[0], "IST")
}

func TestSendAppointmentRemindersEmptyWindow(t *testing.T) {
	db, dbForGoose, migDir := testutil.DbInit(t)
	testutil.DbGooseUp(t, dbForGoose, migDir)
	defer testutil.DbCleanup(t, db, migDir)

	svc := NewService(database.New(db), &recordingSender{})

	report, err := svc.SendAppointmentReminders(context.Background(), 90*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Sent)
	assert.Empty(t, report.Details)
}
