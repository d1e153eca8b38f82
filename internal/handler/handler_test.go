package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sehatlink/sehat/internal/chat"
	"github.com/sehatlink/sehat/internal/config"
	"github.com/sehatlink/sehat/internal/database"
	"github.com/sehatlink/sehat/internal/model"
	"github.com/sehatlink/sehat/internal/sms"
	"github.com/sehatlink/sehat/internal/testutil"
	"github.com/sehatlink/sehat/pkg/chatclient"
)

func newTestServer(db *database.Queries, hub *chat.Hub) *httptest.Server {
	jwtCfg := config.JWTConfig{
		Secret:     "handler-test-secret",
		Issuer:     "sehat",
		AccessTTL:  5 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}
	router := NewRouter(db, hub, nil, nil, sms.LogSender{}, jwtCfg)
	return httptest.NewServer(router)
}

func TestRootRoute(t *testing.T) {
	srv := newTestServer(nil, chat.NewHub(nil, nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "ok", got["message"])
}

func TestFeedRoutesUnavailableWithoutGenerator(t *testing.T) {
	srv := newTestServer(nil, chat.NewHub(nil, nil))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/feed/refresh_all", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestResolveRoomInvalidPatientID(t *testing.T) {
	srv := newTestServer(nil, chat.NewHub(nil, nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/chat/room/not-a-uuid")
	require.NoError(t, err)
	defer resp.Body.Close()

	// Errors are reported in-band on a 200 response.
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "Invalid patient id.", got["error"])
}

func createPatient(t *testing.T, queries *database.Queries, worker *uuid.UUID) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	userID := uuid.New()

	_, err := queries.CreateUser(ctx, database.CreateUserParams{
		UserID:         pgtype.UUID{Bytes: userID, Valid: true},
		Phone:          fmt.Sprintf("+91%d", time.Now().UnixNano()),
		HashedPassword: "dummy-hash",
	})
	require.NoError(t, err)

	params := database.UpsertProfileParams{
		ID:   pgtype.UUID{Bytes: userID, Valid: true},
		Name: "Asha",
	}
	if worker != nil {
		params.AssignedWorkerID = pgtype.UUID{Bytes: *worker, Valid: true}
	}
	_, err = queries.UpsertProfile(ctx, params)
	require.NoError(t, err)
	return userID
}

func TestResolveRoom(t *testing.T) {
	db, dbForGoose, migDir := testutil.DbInit(t)
	testutil.DbGooseUp(t, dbForGoose, migDir)
	defer testutil.DbCleanup(t, db, migDir)

	queries := database.New(db)
	srv := newTestServer(queries, chat.NewHub(nil, queries))
	defer srv.Close()

	helperID := uuid.New()
	assigned := createPatient(t, queries, &helperID)
	unassigned := createPatient(t, queries, nil)

	t.Run("assigned patient", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/chat/room/" + assigned.String())
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		var room model.Room
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&room))
		assert.Equal(t, chat.ComposeRoomID(assigned, helperID), room.RoomID)
		assert.Equal(t, helperID, room.HelperID)
	})

	t.Run("unassigned patient", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/chat/room/" + unassigned.String())
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		var got map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, "No helper assigned to this patient.", got["error"])
	})
}

// TestChatEndToEnd runs the whole path: resolution over HTTP, the websocket
// relay, optimistic echo with suppression on both clients, and persistence.
func TestChatEndToEnd(t *testing.T) {
	db, dbForGoose, migDir := testutil.DbInit(t)
	testutil.DbGooseUp(t, dbForGoose, migDir)
	defer testutil.DbCleanup(t, db, migDir)

	queries := database.New(db)

	hubCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := chat.NewHub(nil, queries)
	go hub.Run(hubCtx, nil)

	srv := newTestServer(queries, hub)
	defer srv.Close()

	helperID := uuid.New()
	patientID := createPatient(t, queries, &helperID)
	roomID := chat.ComposeRoomID(patientID, helperID)

	ctx := context.Background()

	patient := chatclient.NewController(model.RolePatient, srv.URL)
	require.NoError(t, patient.Start(ctx, chatclient.Peer{ID: patientID, Name: "Ravi"}))
	defer patient.End()
	assert.Equal(t, roomID, patient.RoomID())

	helper := chatclient.NewController(model.RoleHelper, srv.URL)
	helper.StartWithRoom(ctx, patientID, helperID, "Asha")
	defer helper.End()

	require.Eventually(t, func() bool {
		return patient.State() == chatclient.StateOpen && helper.State() == chatclient.StateOpen
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, helper.SendText(ctx, "Take your medicine"))

	require.Eventually(t, func() bool {
		return len(patient.Log()) >= 2
	}, 5*time.Second, 10*time.Millisecond)

	patientLog := patient.Log()
	assert.Equal(t, model.RoleHelper, patientLog[1].Sender)
	assert.Equal(t, "Take your medicine", patientLog[1].Text)

	// The helper's own echo came back over the relay and was suppressed.
	helperLog := helper.Log()
	require.Len(t, helperLog, 2)
	assert.Equal(t, "Take your medicine", helperLog[1].Text)

	require.NoError(t, patient.SendText(ctx, "Okay, thanks"))
	require.Eventually(t, func() bool {
		return len(helper.Log()) >= 3
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, model.RolePatient, helper.Log()[2].Sender)

	// Both frames landed in the history the /messages endpoint serves.
	require.Eventually(t, func() bool {
		msgs, err := queries.ListMessagesByRoom(ctx, roomID)
		return err == nil && len(msgs) == 2
	}, 5*time.Second, 50*time.Millisecond)

	msgs, err := queries.ListMessagesByRoom(ctx, roomID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleHelper, msgs[0].Sender)
	assert.Equal(t, "Take your medicine", msgs[0].Text)
	assert.Equal(t, model.RolePatient, msgs[1].Sender)
	assert.Equal(t, patientID, msgs[0].PatientID)
	assert.Equal(t, helperID, msgs[0].HelperID)
}
