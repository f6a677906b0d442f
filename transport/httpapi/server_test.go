package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/X1ag/ShuttleScheduler/internal/domain"
	"github.com/X1ag/ShuttleScheduler/internal/logging"
	"github.com/X1ag/ShuttleScheduler/internal/repository/memory"
	"github.com/X1ag/ShuttleScheduler/internal/usecase"
)

func newTestServer(t *testing.T, opts Options) (*Server, *DigestHub) {
	t.Helper()
	tt, err := domain.ParseTimetable([]string{"09:15", "11:15"})
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	names := domain.NameResolverFunc(func(_ context.Context, id string) (string, error) { return "user" + id, nil })
	rides := usecase.NewRideUsecase(memory.NewRideRepository(), names, nil, usecase.RideConfig{
		Timetable: tt,
		Clock:     func() time.Time { return now },
	}, logging.Discard())
	hub := NewDigestHub(logging.Discard())
	return NewServer(rides, hub, opts, logging.Discard()), hub
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRideAPI(t *testing.T) {
	s, _ := newTestServer(t, Options{})
	body := `{"requester_id":"42","origin":"Library","destination":"Dorm","slot_time":"09:15","purpose":"class"}`

	rec := do(t, s, http.MethodPost, "/api/v1/rides", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d body = %s", rec.Code, rec.Body)
	}
	var created rideResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}
	if created.ID != 1 || created.SlotTime != "09:15" || created.Status != "pending" {
		t.Errorf("created = %+v", created)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}

	if rec := do(t, s, http.MethodPost, "/api/v1/rides", body); rec.Code != http.StatusConflict {
		t.Errorf("duplicate status = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/api/v1/rides/1", ""); rec.Code != http.StatusOK {
		t.Errorf("get status = %d", rec.Code)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/rides/due", "")
	var due []rideResponse
	_ = json.NewDecoder(rec.Body).Decode(&due)
	if rec.Code != http.StatusOK || len(due) != 1 {
		t.Errorf("due = %d %v", rec.Code, due)
	}

	if rec := do(t, s, http.MethodPost, "/api/v1/rides/1/complete", ""); rec.Code != http.StatusNoContent {
		t.Errorf("complete status = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/api/v1/rides/1/complete", ""); rec.Code != http.StatusConflict {
		t.Errorf("complete twice status = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodDelete, "/api/v1/rides/1", ""); rec.Code != http.StatusConflict {
		t.Errorf("cancel completed status = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodDelete, "/api/v1/rides/9", ""); rec.Code != http.StatusNotFound {
		t.Errorf("cancel unknown status = %d", rec.Code)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/requesters/42/rides?status=completed", "")
	var done []rideResponse
	_ = json.NewDecoder(rec.Body).Decode(&done)
	if len(done) != 1 {
		t.Errorf("completed rides = %v", done)
	}
	if rec := do(t, s, http.MethodGet, "/api/v1/requesters/42/rides?status=lost", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad status filter = %d", rec.Code)
	}
}

func TestCreateRideValidation(t *testing.T) {
	s, _ := newTestServer(t, Options{})
	tests := map[string]string{
		"bad json":     `{`,
		"bad time":     `{"requester_id":"1","origin":"A","destination":"B","slot_time":"9am","purpose":"class"}`,
		"past slot":    `{"requester_id":"1","origin":"A","destination":"B","slot_time":"07:00","purpose":"class"}`,
		"bad purpose":  `{"requester_id":"1","origin":"A","destination":"B","slot_time":"10:00","purpose":"party"}`,
		"missing from": `{"requester_id":"1","destination":"B","slot_time":"10:00","purpose":"class"}`,
	}
	for name, body := range tests {
		if rec := do(t, s, http.MethodPost, "/api/v1/rides", body); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d", name, rec.Code)
		}
	}
}

func TestOpsEndpoints(t *testing.T) {
	s, _ := newTestServer(t, Options{Ready: func(context.Context) error { return errors.New("db down") }})

	if rec := do(t, s, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Errorf("healthz = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/ready", ""); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("ready = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/metrics", ""); rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "shuttle_") {
		t.Errorf("metrics = %d", rec.Code)
	}
	rec := do(t, s, http.MethodGet, "/api/v1/timetable", "")
	if !strings.Contains(rec.Body.String(), `"09:15"`) {
		t.Errorf("timetable body = %s", rec.Body)
	}
	if rec := do(t, s, http.MethodGet, "/api/v1/rides/digest", ""); rec.Code != http.StatusNotFound {
		t.Errorf("digest before first broadcast = %d", rec.Code)
	}
}

func TestWebhookRoute(t *testing.T) {
	hit := false
	s, _ := newTestServer(t, Options{
		WebhookPath: "/telegram/hook",
		Webhook:     http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { hit = true }),
	})
	do(t, s, http.MethodPost, "/telegram/hook", "{}")
	if !hit {
		t.Error("webhook handler not routed")
	}
}

func TestDigestWebsocket(t *testing.T) {
	s, hub := newTestServer(t, Options{})
	hub.Broadcast(DigestMessage{Kind: "changed", Text: "first", Total: 1})

	srv := httptest.NewServer(s)
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/digest"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var got DigestMessage
	if err := conn.ReadJSON(&got); err != nil || got.Text != "first" {
		t.Fatalf("replayed digest = %+v, %v", got, err)
	}

	hub.Broadcast(DigestMessage{Kind: "unchanged", Text: "second"})
	if err := conn.ReadJSON(&got); err != nil || got.Text != "second" {
		t.Fatalf("broadcast digest = %+v, %v", got, err)
	}
}
