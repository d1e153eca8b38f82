// Package model defines data structures shared by the relay server and the
// chat client SDK.
package model

// Role identifies the party a chat frame originates from.
type Role string

const (
	RolePatient Role = "patient"
	RoleHelper  Role = "helper"

	// RoleSystem marks locally generated entries such as connection
	// announcements. It never goes on the wire.
	RoleSystem Role = "system"
)

// Valid reports whether r is a transmittable role.
func (r Role) Valid() bool {
	return r == RolePatient || r == RoleHelper
}

// Counterpart returns the other transmittable role.
func (r Role) Counterpart() Role {
	if r == RolePatient {
		return RoleHelper
	}
	return RolePatient
}

// Envelope is the wire-level unit of chat communication. ClientID is assigned
// by the sending side and is only used to recognize the relay echoing a frame
// back to its sender; frames not originated by this session carry none.
type Envelope struct {
	Sender   Role   `json:"sender"`
	Text     string `json:"text"`
	ClientID int64  `json:"clientId,omitempty"`
}
