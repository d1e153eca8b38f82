package reminder

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/sehatlink/sehat/internal/database"
	"github.com/sehatlink/sehat/internal/model"
)

// Detail records the outcome of one attempted send.
type Detail struct {
	PatientID string `json:"patient_id"`
	ApptID    string `json:"appt_id,omitempty"`
	To        string `json:"to,omitempty"`
	Status    string `json:"status"`
	Reason    string `json:"reason,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Report summarizes a reminder sweep.
type Report struct {
	Sent    int      `json:"sent"`
	Skipped int      `json:"skipped"`
	Failed  int      `json:"failed"`
	Details []Detail `json:"details"`
}

// Sender matches sms.Sender; redeclared here so the service depends on the
// capability, not the package.
type Sender interface {
	Send(to, body string) error
}

// Service runs the SMS sweeps.
type Service struct {
	db  *database.Queries
	sms Sender
}

// NewService returns a reminder service over db and sms.
func NewService(db *database.Queries, sms Sender) *Service {
	return &Service{db: db, sms: sms}
}

// SendVitalsReminders messages every profile with a usable phone number and
// logs each successful send to the reminders table.
func (s *Service) SendVitalsReminders(ctx context.Context) (Report, error) {
	profiles, err := s.db.ListProfiles(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("internal/reminder: fetch profiles: %w", err)
	}

	report := Report{Details: []Detail{}}
	for _, p := range profiles {
		numbers := SplitAndCleanNumbers(p.Phone)
		if len(numbers) == 0 {
			report.Skipped++
			report.Details = append(report.Details, Detail{
				PatientID: p.ID.String(), Status: "skipped", Reason: "no valid phone",
			})
			continue
		}

		body := VitalsMessage(BestName(p))
		for _, to := range numbers {
			s.deliver(ctx, &report, p.ID, "", to, body)
		}
	}

	return report, nil
}

// SendAppointmentReminders messages patients whose appointment falls inside
// [now, now+window).
func (s *Service) SendAppointmentReminders(ctx context.Context, window time.Duration) (Report, error) {
	now := time.Now().UTC()

	appts, err := s.db.ListAppointmentsBetween(ctx,
		pgtype.Timestamptz{Time: now, Valid: true},
		pgtype.Timestamptz{Time: now.Add(window), Valid: true},
	)
	if err != nil {
		return Report{}, fmt.Errorf("internal/reminder: fetch appointments: %w", err)
	}

	report := Report{Details: []Detail{}}
	if len(appts) == 0 {
		return report, nil
	}

	ids := make([]uuid.UUID, 0, len(appts))
	for _, a := range appts {
		ids = append(ids, a.PatientID)
	}

	profiles, err := s.db.ListProfilesByIDs(ctx, ids)
	if err != nil {
		return Report{}, fmt.Errorf("internal/reminder: fetch profiles: %w", err)
	}
	byID := make(map[uuid.UUID]model.Profile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}

	for _, a := range appts {
		prof, ok := byID[a.PatientID]
		if !ok {
			report.Skipped++
			report.Details = append(report.Details, Detail{
				ApptID: a.ID.String(), PatientID: a.PatientID.String(),
				Status: "skipped", Reason: "no profile",
			})
			continue
		}

		numbers := SplitAndCleanNumbers(prof.Phone)
		if len(numbers) == 0 {
			report.Skipped++
			report.Details = append(report.Details, Detail{
				ApptID: a.ID.String(), PatientID: a.PatientID.String(),
				Status: "skipped", Reason: "no valid phone",
			})
			continue
		}

		body := AppointmentMessage(BestName(prof), FormatIST(a.ScheduledTime), a.ID.String())
		for _, to := range numbers {
			s.deliver(ctx, &report, a.PatientID, a.ID.String(), to, body)
		}
	}

	return report, nil
}

func (s *Service) deliver(ctx context.Context, report *Report, patientID uuid.UUID, apptID, to, body string) {
	if err := s.sms.Send(to, body); err != nil {
		report.Failed++
		report.Details = append(report.Details, Detail{
			PatientID: patientID.String(), ApptID: apptID, To: to,
			Status: "failed", Error: err.Error(),
		})
		return
	}

	err := s.db.CreateReminder(ctx, pgtype.UUID{Bytes: patientID, Valid: true}, body)
	if err != nil {
		// The SMS went out; a failed log row is not a failed send.
		log.Printf("%v", err)
	}

	report.Sent++
	report.Details = append(report.Details, Detail{
		PatientID: patientID.String(), ApptID: apptID, To: to, Status: "sent",
	})
}
