package api

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mkshb/ha-av-scenes/internal/activity"
	"github.com/mkshb/ha-av-scenes/internal/infrastructure/config"
	"github.com/mkshb/ha-av-scenes/internal/infrastructure/logging"
)

// ─── Test Fixtures ─────────────────────────────────────────────────

// mockRepository is an in-memory activity.Repository.
type mockRepository struct {
	mu          sync.Mutex
	rooms       map[string]activity.Room
	activities  map[string]map[string]activity.Activity
	transitions []activity.Transition
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		rooms:      make(map[string]activity.Room),
		activities: make(map[string]map[string]activity.Activity),
	}
}

func (m *mockRepository) GetRoom(_ context.Context, id string) (*activity.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[id]
	if !ok {
		return nil, activity.ErrRoomNotFound
	}
	return room.DeepCopy(), nil
}

func (m *mockRepository) ListRooms(_ context.Context) ([]activity.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rooms := make([]activity.Room, 0, len(m.rooms))
	for _, room := range m.rooms {
		rooms = append(rooms, room)
	}
	return rooms, nil
}

func (m *mockRepository) CreateRoom(_ context.Context, room *activity.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[room.ID]; ok {
		return activity.ErrRoomExists
	}
	m.rooms[room.ID] = *room.DeepCopy()
	return nil
}

func (m *mockRepository) UpdateRoom(_ context.Context, room *activity.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[room.ID]; !ok {
		return activity.ErrRoomNotFound
	}
	m.rooms[room.ID] = *room.DeepCopy()
	return nil
}

func (m *mockRepository) DeleteRoom(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[id]; !ok {
		return activity.ErrRoomNotFound
	}
	delete(m.rooms, id)
	delete(m.activities, id)
	return nil
}

func (m *mockRepository) GetActivity(_ context.Context, roomID, name string) (*activity.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.activities[roomID][name]
	if !ok {
		return nil, activity.ErrActivityNotFound
	}
	return a.DeepCopy(), nil
}

func (m *mockRepository) ListActivities(_ context.Context, roomID string) ([]activity.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	activities := make([]activity.Activity, 0, len(m.activities[roomID]))
	for _, a := range m.activities[roomID] {
		activities = append(activities, a)
	}
	return activities, nil
}

func (m *mockRepository) CreateActivity(_ context.Context, a *activity.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.activities[a.RoomID][a.Name]; ok {
		return activity.ErrActivityExists
	}
	if m.activities[a.RoomID] == nil {
		m.activities[a.RoomID] = make(map[string]activity.Activity)
	}
	m.activities[a.RoomID][a.Name] = *a.DeepCopy()
	return nil
}

func (m *mockRepository) UpdateActivity(_ context.Context, a *activity.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.activities[a.RoomID][a.Name]; !ok {
		return activity.ErrActivityNotFound
	}
	m.activities[a.RoomID][a.Name] = *a.DeepCopy()
	return nil
}

func (m *mockRepository) DeleteActivity(_ context.Context, roomID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.activities[roomID][name]; !ok {
		return activity.ErrActivityNotFound
	}
	delete(m.activities[roomID], name)
	return nil
}

func (m *mockRepository) RecordTransition(_ context.Context, transition *activity.Transition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitions = append(m.transitions, *transition)
	return nil
}

func (m *mockRepository) ListTransitions(_ context.Context, roomID string, limit int) ([]activity.Transition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []activity.Transition
	for _, tr := range m.transitions {
		if tr.RoomID == roomID {
			result = append(result, tr)
		}
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// mockEngine records transition-control calls.
type mockEngine struct {
	mu       sync.Mutex
	calls    []string
	called   chan struct{}
	statuses map[string]activity.RoomStatus
}

func newMockEngine() *mockEngine {
	return &mockEngine{
		called:   make(chan struct{}, 10),
		statuses: make(map[string]activity.RoomStatus),
	}
}

func (m *mockEngine) StartActivity(_ context.Context, roomID, activityName string) error {
	m.mu.Lock()
	m.calls = append(m.calls, "start "+roomID+" "+activityName)
	m.mu.Unlock()
	m.called <- struct{}{}
	return nil
}

func (m *mockEngine) StopActivity(_ context.Context, roomID string) error {
	m.mu.Lock()
	m.calls = append(m.calls, "stop "+roomID)
	m.mu.Unlock()
	m.called <- struct{}{}
	return nil
}

func (m *mockEngine) Status(roomID string) activity.RoomStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	if status, ok := m.statuses[roomID]; ok {
		return status
	}
	return activity.RoomStatus{RoomID: roomID, State: activity.StateIdle}
}

func (m *mockEngine) Subscribe(_ activity.StateListener) {}

func (m *mockEngine) getCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	cpy := make([]string, len(m.calls))
	copy(cpy, m.calls)
	return cpy
}

func testLogger() *logging.Logger {
	return logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stdout"}, "test")
}

const testJWTSecret = "test-secret-key-at-least-32-characters-long"

// testServer creates a Server with a real activity registry backed by an
// in-memory repository, seeded with a living room and a movie activity.
func testServer(t *testing.T) (*Server, *mockEngine) {
	t.Helper()

	repo := newMockRepository()
	registry := activity.NewRegistry(repo)
	if err := registry.RefreshCache(context.Background()); err != nil {
		t.Fatalf("RefreshCache: %v", err)
	}

	if err := registry.CreateRoom(context.Background(), &activity.Room{
		ID:   "living_room",
		Name: "Living Room",
	}); err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if err := registry.CreateActivity(context.Background(), &activity.Activity{
		RoomID: "living_room",
		Name:   "movie",
		DeviceStates: map[string]activity.DeviceTarget{
			"player.tv": {Player: &activity.PlayerTarget{
				InputSource:        "HDMI1",
				IsVolumeController: true,
				VolumeLevel:        0.6,
			}},
			"light.lamp": {Light: &activity.LightTarget{Brightness: 51}},
		},
		DeviceOrder: []string{"player.tv", "light.lamp"},
	}); err != nil {
		t.Fatalf("CreateActivity: %v", err)
	}

	engine := newMockEngine()

	srv, err := New(Deps{
		Config: config.APIConfig{
			Host: "127.0.0.1",
			Port: 0,
			Timeouts: config.APITimeoutConfig{
				Read:  5,
				Write: 5,
				Idle:  5,
			},
		},
		WS: config.WebSocketConfig{
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Security: config.SecurityConfig{
			JWT: config.JWTConfig{
				Secret:         testJWTSecret,
				AccessTokenTTL: 15,
			},
			Admin: config.AdminConfig{
				Username: "admin",
				Password: "admin",
			},
		},
		Logger:   testLogger(),
		Registry: registry,
		Engine:   engine,
		Repo:     repo,
		Version:  "test",
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	// Initialise hub for handler tests that bypass Start()
	srv.hub = NewHub(srv.wsCfg, srv.logger)
	go srv.hub.Run(context.Background())

	return srv, engine
}

// login authenticates against the router and returns a bearer token.
func login(t *testing.T, router http.Handler) string {
	t.Helper()

	body := `{"username": "admin", "password": "admin"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d; body: %s", w.Code, w.Body.String())
	}

	var resp loginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal login response: %v", err)
	}
	return resp.AccessToken
}

// doRequest issues an authenticated request against the router.
func doRequest(t *testing.T, router http.Handler, token, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ─── Health Endpoint Tests ─────────────────────────────────────────

func TestHealth(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	w := doRequest(t, router, "", http.MethodGet, "/api/v1/health", "")

	if w.Code != http.StatusOK {
		t.Errorf("health status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if resp["status"] != "ok" {
		t.Errorf("status = %v, want ok", resp["status"])
	}
	if resp["version"] != "test" {
		t.Errorf("version = %v, want test", resp["version"])
	}

	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
}

// ─── Middleware Tests ──────────────────────────────────────────────

func TestRequestID_Generated(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	w := doRequest(t, router, "", http.MethodGet, "/api/v1/health", "")

	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header to be set")
	}
}

func TestRequestID_PreservesClient(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-Request-ID", "client-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "client-123" {
		t.Errorf("X-Request-ID = %q, want %q", got, "client-123")
	}
}

func TestCORS_Preflight(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want %d", w.Code, http.StatusNoContent)
	}

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("ACAO = %q, want %q", got, "http://localhost:3000")
	}
}

// hijackRecorder is a ResponseRecorder that also supports hijacking,
// standing in for the real server connection under the logging middleware.
type hijackRecorder struct {
	httptest.ResponseRecorder
	hijacked bool
}

func (h *hijackRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h.hijacked = true
	return nil, nil, nil
}

func TestStatusWriter_HijackPassthrough(t *testing.T) {
	rec := &hijackRecorder{}
	wrapped := &statusWriter{ResponseWriter: rec, status: http.StatusOK}

	if _, _, err := wrapped.Hijack(); err != nil {
		t.Fatalf("Hijack() error = %v", err)
	}
	if !rec.hijacked {
		t.Error("hijack was not delegated to the underlying writer")
	}

	if got := wrapped.Unwrap(); got != rec {
		t.Error("Unwrap() did not return the underlying writer")
	}
}

func TestStatusWriter_HijackUnsupported(t *testing.T) {
	wrapped := &statusWriter{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK}

	if _, _, err := wrapped.Hijack(); err == nil {
		t.Error("expected error when the underlying writer cannot hijack")
	}
}

func TestNotFound(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	w := doRequest(t, router, "", http.MethodGet, "/api/v1/nonexistent", "")

	if w.Code != http.StatusNotFound {
		t.Errorf("unknown route status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

// ─── Auth Tests ────────────────────────────────────────────────────

func TestLogin_Success(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	body := `{"username": "admin", "password": "admin"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp loginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if resp.AccessToken == "" {
		t.Error("expected access_token to be non-empty")
	}
	if resp.TokenType != "Bearer" {
		t.Errorf("token_type = %q, want Bearer", resp.TokenType)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	body := `{"username": "admin", "password": "wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestLogin_NotConfigured(t *testing.T) {
	srv, _ := testServer(t)
	srv.secCfg.Admin = config.AdminConfig{}
	router := srv.buildRouter()

	// With no configured credential, even an all-empty login must fail.
	body := `{"username": "", "password": ""}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestProtectedRoute_RequiresToken(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	w := doRequest(t, router, "", http.MethodGet, "/api/v1/rooms", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status without token = %d, want %d", w.Code, http.StatusUnauthorized)
	}

	w = doRequest(t, router, "garbage-token", http.MethodGet, "/api/v1/rooms", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status with garbage token = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestProtectedRoute_ValidToken(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	token := login(t, router)
	w := doRequest(t, router, token, http.MethodGet, "/api/v1/rooms", "")

	if w.Code != http.StatusOK {
		t.Errorf("status with valid token = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
	}
}

func TestWSTicket_SingleUse(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	token := login(t, router)
	w := doRequest(t, router, token, http.MethodPost, "/api/v1/auth/ws-ticket", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	ticket, ok := resp["ticket"].(string)
	if !ok || ticket == "" {
		t.Fatal("expected ticket to be a non-empty string")
	}

	if !srv.tickets.consume(ticket) {
		t.Error("ticket should be valid on first use")
	}
	if srv.tickets.consume(ticket) {
		t.Error("ticket should not be valid on second use")
	}
}

func TestWSTicket_Expiry(t *testing.T) {
	store := newTicketStore()
	store.mu.Lock()
	store.tickets["stale"] = time.Now().Add(-1 * time.Second)
	store.mu.Unlock()

	if store.consume("stale") {
		t.Error("expired ticket should not be valid")
	}
}

// ─── WebSocket Hub Tests ───────────────────────────────────────────

func TestHub_BroadcastToSubscribed(t *testing.T) {
	hub := NewHub(config.WebSocketConfig{MaxMessageSize: 8192, PingInterval: 30, PongTimeout: 10}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	client := &WSClient{
		hub:           hub,
		send:          make(chan []byte, wsSendBufferSize),
		subscriptions: map[string]struct{}{stateChangedChannel: {}},
	}
	hub.Register(client)

	hub.Broadcast(stateChangedChannel, activity.RoomStatus{
		RoomID:   "living_room",
		State:    activity.StateActive,
		Activity: "movie",
	})

	select {
	case msg := <-client.send:
		var wsMsg WSMessage
		if err := json.Unmarshal(msg, &wsMsg); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if wsMsg.EventType != stateChangedChannel {
			t.Errorf("event_type = %q, want %q", wsMsg.EventType, stateChangedChannel)
		}
	case <-time.After(time.Second):
		t.Error("timed out waiting for broadcast message")
	}
}

func TestHub_NoMessageForUnsubscribed(t *testing.T) {
	hub := NewHub(config.WebSocketConfig{MaxMessageSize: 8192, PingInterval: 30, PongTimeout: 10}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	client := &WSClient{
		hub:           hub,
		send:          make(chan []byte, wsSendBufferSize),
		subscriptions: map[string]struct{}{"other.channel": {}},
	}
	hub.Register(client)

	hub.Broadcast(stateChangedChannel, activity.RoomStatus{RoomID: "living_room"})

	select {
	case <-client.send:
		t.Error("unsubscribed client should not receive message")
	case <-time.After(100 * time.Millisecond):
		// OK — no message received
	}
}

func TestHub_ClientCount(t *testing.T) {
	hub := NewHub(config.WebSocketConfig{MaxMessageSize: 8192, PingInterval: 30, PongTimeout: 10}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	if hub.ClientCount() != 0 {
		t.Errorf("initial client count = %d, want 0", hub.ClientCount())
	}

	client := &WSClient{
		hub:           hub,
		send:          make(chan []byte, wsSendBufferSize),
		subscriptions: make(map[string]struct{}),
	}
	hub.Register(client)

	if hub.ClientCount() != 1 {
		t.Errorf("after register count = %d, want 1", hub.ClientCount())
	}

	hub.Unregister(client)

	if hub.ClientCount() != 0 {
		t.Errorf("after unregister count = %d, want 0", hub.ClientCount())
	}
}

// ─── WebSocket Integration Tests ───────────────────────────────────

func TestWebSocket_FullConnection(t *testing.T) {
	srv, _ := testServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	// Run the real router on a test listener. The hub started in testServer
	// is reused; handleWebSocket only needs a consumable ticket.
	ts := httptest.NewServer(srv.buildRouter())
	t.Cleanup(ts.Close)
	go srv.tickets.cleanLoop(ctx)

	ticket := srv.tickets.issue()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws?ticket=" + ticket
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial failed: %v", err)
	}
	defer ws.Close()

	// Subscribe to lifecycle updates
	if err := ws.WriteJSON(WSMessage{
		Type:    WSTypeSubscribe,
		ID:      "sub-1",
		Payload: WSSubscribePayload{Channels: []string{stateChangedChannel}},
	}); err != nil {
		t.Fatalf("write subscribe: %v", err)
	}

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var resp WSMessage
	if err := ws.ReadJSON(&resp); err != nil {
		t.Fatalf("read subscribe response: %v", err)
	}
	if resp.Type != WSTypeResponse || resp.ID != "sub-1" {
		t.Errorf("subscribe response = %+v", resp)
	}

	// A broadcast should now reach the client
	srv.hub.Broadcast(stateChangedChannel, activity.RoomStatus{
		RoomID: "living_room",
		State:  activity.StateStarting,
	})

	if err := ws.ReadJSON(&resp); err != nil {
		t.Fatalf("read broadcast: %v", err)
	}
	if resp.Type != WSTypeEvent || resp.EventType != stateChangedChannel {
		t.Errorf("broadcast = %+v", resp)
	}
}

func TestWebSocket_NoTicket(t *testing.T) {
	srv, _ := testServer(t)
	ts := httptest.NewServer(srv.buildRouter())
	t.Cleanup(ts.Close)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("expected error connecting without ticket")
	}
	if resp != nil && resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestWebSocket_InvalidTicket(t *testing.T) {
	srv, _ := testServer(t)
	ts := httptest.NewServer(srv.buildRouter())
	t.Cleanup(ts.Close)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws?ticket=invalid"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("expected error connecting with invalid ticket")
	}
	if resp != nil && resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

// ─── Server Lifecycle Tests ────────────────────────────────────────

func TestServer_StartAndClose(t *testing.T) {
	srv, _ := testServer(t)
	srv.hub = nil // Start creates its own
	srv.cfg.Port = 19090

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	addr := fmt.Sprintf("127.0.0.1:%d", srv.cfg.Port)
	resp, err := http.Get("http://" + addr + "/api/v1/health")
	if err != nil {
		t.Fatalf("health check failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("health check status = %d, want 200", resp.StatusCode)
	}

	if err := srv.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error: %v", err)
	}

	if err := srv.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}

	time.Sleep(100 * time.Millisecond)
	if _, err := http.Get("http://" + addr + "/api/v1/health"); err == nil {
		t.Error("server still responding after Close()")
	}
}
