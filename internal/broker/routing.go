// Package broker provides the JetStream fan-out between relay instances.
package broker

// A subject per room keeps consumers cheap to filter.
var (
	StreamName      = "CHAT"
	SubjectAllRooms = StreamName + ".room.>"
)

// RoomSubject returns the stream subject for one room.
func RoomSubject(roomID string) string {
	return StreamName + ".room." + roomID
}
