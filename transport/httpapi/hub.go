package httpapi

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/X1ag/ShuttleScheduler/internal/observability"
	"github.com/X1ag/ShuttleScheduler/internal/usecase"
)

const writeWait = 5 * time.Second

// DigestMessage is what dashboards receive over the websocket.
type DigestMessage struct {
	Kind   string   `json:"kind"`
	Text   string   `json:"text"`
	High   []string `json:"high,omitempty"`
	Medium []string `json:"medium,omitempty"`
	Low    []string `json:"low,omitempty"`
	Total  int      `json:"total"`
	At     string   `json:"at"`
}

func NewDigestMessage(n usecase.DigestNotice, at time.Time) DigestMessage {
	m := DigestMessage{Kind: string(n.Kind), Text: n.Text, At: at.UTC().Format(time.RFC3339)}
	if n.Digest != nil {
		m.High, m.Medium, m.Low, m.Total = n.Digest.High, n.Digest.Medium, n.Digest.Low, n.Digest.Total
	}
	return m
}

type session struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *session) send(msg DigestMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(msg)
}

// DigestHub keeps dashboard connections and the last digest sent, so a new
// subscriber sees the current state right away.
type DigestHub struct {
	mu       sync.RWMutex
	sessions map[*session]struct{}
	last     *DigestMessage
	logger   *slog.Logger
}

func NewDigestHub(logger *slog.Logger) *DigestHub {
	return &DigestHub{sessions: make(map[*session]struct{}), logger: logger}
}

func (h *DigestHub) Add(conn *websocket.Conn) {
	s := &session{conn: conn}
	h.mu.Lock()
	h.sessions[s] = struct{}{}
	last := h.last
	n := len(h.sessions)
	h.mu.Unlock()
	observability.DigestSubscribers.Set(float64(n))

	if last != nil {
		if err := s.send(*last); err != nil {
			h.remove(s)
			return
		}
	}
	go h.readLoop(s)
}

// readLoop drains control frames and notices when the peer goes away.
func (h *DigestHub) readLoop(s *session) {
	defer h.remove(s)
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *DigestHub) remove(s *session) {
	h.mu.Lock()
	if _, ok := h.sessions[s]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.sessions, s)
	n := len(h.sessions)
	h.mu.Unlock()
	observability.DigestSubscribers.Set(float64(n))
	_ = s.conn.Close()
}

// Broadcast implements the worker's digest sink.
func (h *DigestHub) Broadcast(msg DigestMessage) {
	h.mu.Lock()
	h.last = &msg
	targets := make([]*session, 0, len(h.sessions))
	for s := range h.sessions {
		targets = append(targets, s)
	}
	h.mu.Unlock()

	for _, s := range targets {
		if err := s.send(msg); err != nil {
			h.logger.Warn("ws digest send failed", "error", err)
			h.remove(s)
		}
	}
}

func (h *DigestHub) Last() (DigestMessage, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.last == nil {
		return DigestMessage{}, false
	}
	return *h.last, true
}
