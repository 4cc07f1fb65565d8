package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/argentmirror/argent-core/internal/assistant"
	"github.com/argentmirror/argent-core/internal/assistant/dispatch"
	"github.com/argentmirror/argent-core/internal/assistant/intent"
	"github.com/argentmirror/argent-core/internal/home"
	"github.com/argentmirror/argent-core/internal/infrastructure/config"
	"github.com/argentmirror/argent-core/internal/infrastructure/logging"
)

const testJWTSecret = "test-secret-at-least-32-characters-long"

// stubRepository backs the registry with fixed rooms and records state
// writes. Implements home.Repository.
type stubRepository struct {
	rooms  []*home.Room
	writes []string
}

func (r *stubRepository) CreateRoom(_ context.Context, room *home.Room) error {
	if room.ID == "" {
		room.ID = home.GenerateID()
	}
	if room.Slug == "" {
		room.Slug = home.GenerateSlug(room.Name)
	}
	for _, existing := range r.rooms {
		if existing.Slug == room.Slug {
			return home.ErrRoomExists
		}
	}
	r.rooms = append(r.rooms, room.DeepCopy())
	return nil
}

func (r *stubRepository) GetRoom(_ context.Context, id string) (*home.Room, error) {
	for _, room := range r.rooms {
		if room.ID == id {
			return room.DeepCopy(), nil
		}
	}
	return nil, home.ErrRoomNotFound
}

func (r *stubRepository) ListRooms(_ context.Context) ([]*home.Room, error) {
	out := make([]*home.Room, len(r.rooms))
	for i, room := range r.rooms {
		out[i] = room.DeepCopy()
	}
	return out, nil
}

func (r *stubRepository) UpdateRoom(_ context.Context, room *home.Room) error {
	for _, existing := range r.rooms {
		if existing.ID == room.ID {
			existing.Name = room.Name
			existing.Slug = room.Slug
			existing.SortOrder = room.SortOrder
			return nil
		}
	}
	return home.ErrRoomNotFound
}

func (r *stubRepository) DeleteRoom(_ context.Context, id string) error {
	for i, room := range r.rooms {
		if room.ID == id {
			r.rooms = append(r.rooms[:i], r.rooms[i+1:]...)
			return nil
		}
	}
	return home.ErrRoomNotFound
}

func (r *stubRepository) CreateDevice(_ context.Context, device *home.Device) error {
	if device.ID == "" {
		device.ID = home.GenerateID()
	}
	for _, room := range r.rooms {
		if room.ID == device.RoomID {
			room.Devices = append(room.Devices, *device.DeepCopy())
			return nil
		}
	}
	return home.ErrRoomNotFound
}

func (r *stubRepository) GetDevice(_ context.Context, id string) (*home.Device, error) {
	for _, room := range r.rooms {
		for i := range room.Devices {
			if room.Devices[i].ID == id {
				return room.Devices[i].DeepCopy(), nil
			}
		}
	}
	return nil, home.ErrDeviceNotFound
}

func (r *stubRepository) ListDevices(_ context.Context, _ string) ([]*home.Device, error) {
	return nil, nil
}

func (r *stubRepository) UpdateDeviceState(_ context.Context, id string, _ home.StateChange) error {
	r.writes = append(r.writes, id)
	return nil
}

func (r *stubRepository) DeleteDevice(_ context.Context, id string) error {
	for _, room := range r.rooms {
		for i := range room.Devices {
			if room.Devices[i].ID == id {
				room.Devices = append(room.Devices[:i], room.Devices[i+1:]...)
				return nil
			}
		}
	}
	return home.ErrDeviceNotFound
}

// stubFallback answers every conversational request with a fixed line.
type stubFallback struct{}

func (stubFallback) Ask(_ context.Context, _ string) string {
	return "I can help with your smart home."
}

func testRooms() []*home.Room {
	return []*home.Room{
		{
			ID:   "room-living",
			Name: "Living Room",
			Slug: "living-room",
			Devices: []home.Device{
				{ID: "dev-light-1", RoomID: "room-living", Name: "Ceiling Light", Type: home.DeviceTypeLight, On: false},
				{ID: "dev-ac-1", RoomID: "room-living", Name: "AC Unit", Type: home.DeviceTypeAirConditioner, On: false},
			},
		},
	}
}

// newTestServer builds a server wired to an in-memory registry and a
// stub fallback, and returns its router.
func newTestServer(t *testing.T) (*Server, http.Handler, *stubRepository) {
	t.Helper()

	repo := &stubRepository{rooms: testRooms()}
	registry := home.NewRegistry(repo)
	if err := registry.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	log := logging.Default()
	parser := intent.NewParser(registry, 0.6)
	dispatcher := dispatch.New(registry, log, 0.6)
	svc := assistant.New(parser, dispatcher, stubFallback{}, log, 0.8)

	srv, err := New(Deps{
		Config:    config.APIConfig{Host: "127.0.0.1", Port: 8080},
		WS:        config.WebSocketConfig{MaxMessageSize: 8192, PingInterval: 30, PongTimeout: 10},
		Security:  config.SecurityConfig{JWT: config.JWTConfig{Secret: testJWTSecret, AccessTokenTTL: 60}},
		Logger:    log,
		Registry:  registry,
		Assistant: svc,
		Version:   "test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return srv, srv.buildRouter(), repo
}

// login performs the login flow and returns a bearer token.
func login(t *testing.T, router http.Handler) string {
	t.Helper()

	t.Setenv("ARGENT_KIOSK_USERNAME", "kiosk")
	t.Setenv("ARGENT_KIOSK_PASSWORD", "mirror-pass")

	body := `{"username":"kiosk","password":"mirror-pass"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding login response: %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatal("login returned empty access token")
	}
	return resp.AccessToken
}

func authedRequest(method, target, token string, body []byte) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestHandleHealth(t *testing.T) {
	_, router, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %s, want status ok", rec.Body.String())
	}
}

func TestAuthRequired(t *testing.T) {
	_, router, _ := newTestServer(t)

	paths := []struct {
		method string
		target string
	}{
		{http.MethodGet, "/api/v1/rooms"},
		{http.MethodPost, "/api/v1/assistant/command"},
		{http.MethodPut, "/api/v1/devices/dev-light-1/state"},
	}

	for _, p := range paths {
		req := httptest.NewRequest(p.method, p.target, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s status = %d, want %d", p.method, p.target, rec.Code, http.StatusUnauthorized)
		}
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	_, router, _ := newTestServer(t)

	t.Setenv("ARGENT_KIOSK_USERNAME", "kiosk")
	t.Setenv("ARGENT_KIOSK_PASSWORD", "mirror-pass")

	body := `{"username":"kiosk","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestLoginRejectsWhenCredentialsUnset(t *testing.T) {
	_, router, _ := newTestServer(t)

	t.Setenv("ARGENT_KIOSK_USERNAME", "")
	t.Setenv("ARGENT_KIOSK_PASSWORD", "")

	body := `{"username":"","password":""}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestAuthRejectsForgedToken(t *testing.T) {
	_, router, _ := newTestServer(t)

	req := authedRequest(http.MethodGet, "/api/v1/rooms", "not-a-real-token", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestAssistantCommand(t *testing.T) {
	_, router, repo := newTestServer(t)
	token := login(t, router)

	body := []byte(`{"text":"turn on the lights in the living room"}`)
	req := authedRequest(http.MethodPost, "/api/v1/assistant/command", token, body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	var reply assistant.Reply
	if err := json.Unmarshal(rec.Body.Bytes(), &reply); err != nil {
		t.Fatalf("decoding reply: %v", err)
	}
	if reply.Source != assistant.SourceIntent {
		t.Errorf("Source = %q, want %q", reply.Source, assistant.SourceIntent)
	}
	if reply.Changed != 1 {
		t.Errorf("Changed = %d, want 1", reply.Changed)
	}
	if len(repo.writes) != 1 || repo.writes[0] != "dev-light-1" {
		t.Errorf("repository writes = %v, want [dev-light-1]", repo.writes)
	}
}

func TestAssistantCommandRequiresText(t *testing.T) {
	_, router, _ := newTestServer(t)
	token := login(t, router)

	req := authedRequest(http.MethodPost, "/api/v1/assistant/command", token, []byte(`{"text":"  "}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestListRooms(t *testing.T) {
	_, router, _ := newTestServer(t)
	token := login(t, router)

	req := authedRequest(http.MethodGet, "/api/v1/rooms", token, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "Living Room") {
		t.Errorf("body = %s, want Living Room listed", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "dev-light-1") {
		t.Errorf("body = %s, want devices embedded", rec.Body.String())
	}
}

func TestGetDevice(t *testing.T) {
	_, router, _ := newTestServer(t)
	token := login(t, router)

	req := authedRequest(http.MethodGet, "/api/v1/devices/dev-light-1", token, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var device home.Device
	if err := json.Unmarshal(rec.Body.Bytes(), &device); err != nil {
		t.Fatalf("decoding device: %v", err)
	}
	if device.Name != "Ceiling Light" {
		t.Errorf("Name = %q, want %q", device.Name, "Ceiling Light")
	}
}

func TestGetDeviceNotFound(t *testing.T) {
	_, router, _ := newTestServer(t)
	token := login(t, router)

	req := authedRequest(http.MethodGet, "/api/v1/devices/no-such-device", token, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestSetDeviceState(t *testing.T) {
	_, router, repo := newTestServer(t)
	token := login(t, router)

	req := authedRequest(http.MethodPut, "/api/v1/devices/dev-light-1/state", token, []byte(`{"on":true}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	var device home.Device
	if err := json.Unmarshal(rec.Body.Bytes(), &device); err != nil {
		t.Fatalf("decoding device: %v", err)
	}
	if !device.On {
		t.Error("device On = false, want true after state write")
	}
	if device.Sync != home.SyncPendingWrite {
		t.Errorf("Sync = %q, want %q", device.Sync, home.SyncPendingWrite)
	}
	if len(repo.writes) != 1 {
		t.Errorf("repository writes = %v, want one", repo.writes)
	}
}

func TestSetDeviceStateEmptyChange(t *testing.T) {
	_, router, _ := newTestServer(t)
	token := login(t, router)

	req := authedRequest(http.MethodPut, "/api/v1/devices/dev-light-1/state", token, []byte(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestSetDeviceStateUnknownDevice(t *testing.T) {
	_, router, _ := newTestServer(t)
	token := login(t, router)

	req := authedRequest(http.MethodPut, "/api/v1/devices/no-such-device/state", token, []byte(`{"on":true}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestCreateRoom(t *testing.T) {
	_, router, _ := newTestServer(t)
	token := login(t, router)

	req := authedRequest(http.MethodPost, "/api/v1/rooms", token, []byte(`{"name":"Bedroom","sort_order":2}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var room home.Room
	if err := json.Unmarshal(rec.Body.Bytes(), &room); err != nil {
		t.Fatalf("decoding room: %v", err)
	}
	if room.ID == "" || room.Slug != "bedroom" {
		t.Errorf("room = %+v, want generated ID and slug", room)
	}

	// The new room is listed immediately.
	req = authedRequest(http.MethodGet, "/api/v1/rooms", token, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if !strings.Contains(rec.Body.String(), "Bedroom") {
		t.Errorf("rooms list = %s, want Bedroom included", rec.Body.String())
	}
}

func TestCreateRoom_Invalid(t *testing.T) {
	_, router, _ := newTestServer(t)
	token := login(t, router)

	req := authedRequest(http.MethodPost, "/api/v1/rooms", token, []byte(`{"name":"  "}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestCreateRoom_Duplicate(t *testing.T) {
	_, router, _ := newTestServer(t)
	token := login(t, router)

	req := authedRequest(http.MethodPost, "/api/v1/rooms", token, []byte(`{"name":"Living Room"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestUpdateRoom(t *testing.T) {
	_, router, _ := newTestServer(t)
	token := login(t, router)

	req := authedRequest(http.MethodPut, "/api/v1/rooms/room-living", token, []byte(`{"name":"Lounge","sort_order":1}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	// The rename feeds straight into voice commands.
	body := []byte(`{"text":"turn on the lights in the lounge"}`)
	req = authedRequest(http.MethodPost, "/api/v1/assistant/command", token, body)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var reply assistant.Reply
	if err := json.Unmarshal(rec.Body.Bytes(), &reply); err != nil {
		t.Fatalf("decoding reply: %v", err)
	}
	if reply.Source != assistant.SourceIntent || reply.Changed != 1 {
		t.Errorf("reply = %+v, want local dispatch mutating 1 device in the renamed room", reply)
	}
}

func TestDeleteRoom(t *testing.T) {
	_, router, _ := newTestServer(t)
	token := login(t, router)

	req := authedRequest(http.MethodDelete, "/api/v1/rooms/room-living", token, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}

	// Devices disappear with their room.
	req = authedRequest(http.MethodGet, "/api/v1/devices/dev-light-1", token, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("device status = %d after room delete, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestCreateDevice(t *testing.T) {
	_, router, repo := newTestServer(t)
	token := login(t, router)

	body := []byte(`{"name":"Reading Lamp","type":"light","brightness":50}`)
	req := authedRequest(http.MethodPost, "/api/v1/rooms/room-living/devices", token, body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var device home.Device
	if err := json.Unmarshal(rec.Body.Bytes(), &device); err != nil {
		t.Fatalf("decoding device: %v", err)
	}
	if device.ID == "" || device.RoomID != "room-living" {
		t.Errorf("device = %+v, want generated ID in room-living", device)
	}
	if device.Brightness == nil || *device.Brightness != 50 {
		t.Errorf("Brightness = %v, want 50", device.Brightness)
	}

	// The assistant can control the new device immediately: both
	// living-room lights get switched on.
	cmd := []byte(`{"text":"turn on the lights in the living room"}`)
	req = authedRequest(http.MethodPost, "/api/v1/assistant/command", token, cmd)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var reply assistant.Reply
	if err := json.Unmarshal(rec.Body.Bytes(), &reply); err != nil {
		t.Fatalf("decoding reply: %v", err)
	}
	if reply.Changed != 2 {
		t.Errorf("Changed = %d, want 2 (existing light plus the new lamp)", reply.Changed)
	}
	if len(repo.writes) != 2 {
		t.Errorf("repository writes = %v, want two state writes", repo.writes)
	}
}

func TestCreateDevice_UnknownRoom(t *testing.T) {
	_, router, _ := newTestServer(t)
	token := login(t, router)

	body := []byte(`{"name":"Orphan","type":"light"}`)
	req := authedRequest(http.MethodPost, "/api/v1/rooms/no-such-room/devices", token, body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestCreateDevice_Invalid(t *testing.T) {
	_, router, _ := newTestServer(t)
	token := login(t, router)

	req := authedRequest(http.MethodPost, "/api/v1/rooms/room-living/devices", token, []byte(`{"name":"No Type"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestDeleteDevice(t *testing.T) {
	_, router, _ := newTestServer(t)
	token := login(t, router)

	req := authedRequest(http.MethodDelete, "/api/v1/devices/dev-light-1", token, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}

	req = authedRequest(http.MethodGet, "/api/v1/devices/dev-light-1", token, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d after delete, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestDeleteDevice_NotFound(t *testing.T) {
	_, router, _ := newTestServer(t)
	token := login(t, router)

	req := authedRequest(http.MethodDelete, "/api/v1/devices/no-such-device", token, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestWSTicketSingleUse(t *testing.T) {
	store := newTicketStore()

	ticket := store.issue()
	if ticket == "" {
		t.Fatal("issue() returned empty ticket")
	}
	if !store.consume(ticket) {
		t.Fatal("first consume() = false, want true")
	}
	if store.consume(ticket) {
		t.Error("second consume() = true, want false (single use)")
	}
	if store.consume("never-issued") {
		t.Error("consume() of unknown ticket = true, want false")
	}
}

func TestWebSocketRequiresTicket(t *testing.T) {
	_, router, _ := newTestServer(t)
	token := login(t, router)

	req := authedRequest(http.MethodGet, "/api/v1/ws", token, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
