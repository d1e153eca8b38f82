package chatclient

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/sehatlink/sehat/internal/model"
)

// RoomResolver maps a patient id to a chat room by asking the server which
// health worker is assigned to that patient.
type RoomResolver struct {
	http *resty.Client
}

// NewRoomResolver builds a resolver against the server's HTTP base URL,
// e.g. "http://localhost:8003".
func NewRoomResolver(baseURL string) *RoomResolver {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second)
	return &RoomResolver{http: client}
}

type roomResponse struct {
	RoomID   string    `json:"room_id"`
	HelperID uuid.UUID `json:"helper_id"`
	Error    string    `json:"error"`
}

// Resolve returns the room for the given patient. The server reports
// unassigned patients in-band on a 200 response, so both transport errors
// and application errors collapse into ErrResolutionFailed.
func (r *RoomResolver) Resolve(ctx context.Context, patientID uuid.UUID) (model.Room, error) {
	var body roomResponse
	resp, err := r.http.R().
		SetContext(ctx).
		SetResult(&body).
		Get("/chat/room/" + patientID.String())
	if err != nil {
		return model.Room{}, fmt.Errorf("%w: %v", ErrResolutionFailed, err)
	}
	if resp.IsError() {
		return model.Room{}, fmt.Errorf("%w: status %d", ErrResolutionFailed, resp.StatusCode())
	}
	if body.Error != "" {
		return model.Room{}, fmt.Errorf("%w: %s", ErrResolutionFailed, body.Error)
	}
	if body.RoomID == "" {
		return model.Room{}, fmt.Errorf("%w: empty room id", ErrResolutionFailed)
	}
	return model.Room{RoomID: body.RoomID, HelperID: body.HelperID}, nil
}
