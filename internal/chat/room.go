// Package chat is the room-scoped relay: one hub fans every inbound frame
// out to all members of the frame's room, the sender included. Clients are
// expected to suppress their own echo; the relay stays a naive broadcast so
// multi-device sessions keep working.
package chat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var ErrBadRoomID = errors.New("internal/chat: malformed room id")

// ComposeRoomID builds the canonical room id for a patient and the helper
// assigned to them.
func ComposeRoomID(patientID, helperID uuid.UUID) string {
	return patientID.String() + "_" + helperID.String()
}

// SplitRoomID recovers both party ids from a composite room id.
func SplitRoomID(roomID string) (patientID, helperID uuid.UUID, err error) {
	parts := strings.SplitN(roomID, "_", 2)
	if len(parts) != 2 {
		return uuid.UUID{}, uuid.UUID{}, ErrBadRoomID
	}

	patientID, err = uuid.Parse(parts[0])
	if err != nil {
		return uuid.UUID{}, uuid.UUID{}, fmt.Errorf("%w: %v", ErrBadRoomID, err)
	}

	helperID, err = uuid.Parse(parts[1])
	if err != nil {
		return uuid.UUID{}, uuid.UUID{}, fmt.Errorf("%w: %v", ErrBadRoomID, err)
	}

	return patientID, helperID, nil
}
