package model

import (
	"time"

	"github.com/google/uuid"
)

// User is an account row. Phone is the login identity, matching the
// OTP-first sign-in flow.
type User struct {
	UserID         uuid.UUID
	Phone          string
	HashedPassword string
	CreatedAt      time.Time
}

// Profile holds the health profile attached to a user account.
type Profile struct {
	ID               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	Phone            string     `json:"phone"`
	Age              int32      `json:"age"`
	Gender           string     `json:"gender"`
	Language         string     `json:"language"`
	RiskLevel        string     `json:"risk_level"`
	Conditions       []string   `json:"conditions"`
	State            string     `json:"state"`
	District         string     `json:"district"`
	MealPreference   string     `json:"meal_preference"`
	AssignedWorkerID *uuid.UUID `json:"assigned_worker_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Vital is one measurement row. The table is type/value/unit rather than one
// column per measurement, so new vital types need no schema change.
type Vital struct {
	ID         int64     `json:"id"`
	PatientID  uuid.UUID `json:"patient_id"`
	Type       string    `json:"type"`
	Value      string    `json:"value"`
	Unit       string    `json:"unit"`
	MeasuredAt time.Time `json:"measured_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// Appointment is a booked visit between a patient and a health worker.
// ScheduledTime is stored in UTC.
type Appointment struct {
	ID            uuid.UUID `json:"id"`
	PatientID     uuid.UUID `json:"patient_id"`
	WorkerID      uuid.UUID `json:"worker_id"`
	ScheduledTime time.Time `json:"scheduled_time"`
	CreatedAt     time.Time `json:"created_at"`
}

// FeedItem is one generated content row for a user's daily feed.
type FeedItem struct {
	ID         int64     `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	ItemType   string    `json:"item_type"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	Lang       string    `json:"lang"`
	Tags       []string  `json:"tags"`
	RiskLevel  string    `json:"risk_level"`
	Conditions []string  `json:"conditions"`
	Source     string    `json:"source"`
	CreatedAt  time.Time `json:"created_at"`
}

// Reminder logs one SMS sent to a patient.
type Reminder struct {
	ID        int64     `json:"id"`
	PatientID uuid.UUID `json:"patient_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Message is a persisted chat frame. PatientID and HelperID are recovered
// from the room id, which is the composite {patientID}_{helperID}.
type Message struct {
	ID        int64     `json:"id"`
	RoomID    string    `json:"room_id"`
	PatientID uuid.UUID `json:"patient_id"`
	HelperID  uuid.UUID `json:"helper_id"`
	Sender    Role      `json:"sender"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Room is the resolver's answer for a counterpart lookup.
type Room struct {
	RoomID   string    `json:"room_id"`
	HelperID uuid.UUID `json:"helper_id"`
}
