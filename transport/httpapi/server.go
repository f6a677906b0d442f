package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/X1ag/ShuttleScheduler/internal/domain"
	"github.com/X1ag/ShuttleScheduler/internal/usecase"
)

type Options struct {
	// Ready reports whether dependencies are reachable; nil means always ready.
	Ready       func(ctx context.Context) error
	WebhookPath string
	Webhook     http.Handler
}

type Server struct {
	rides  *usecase.RideUsecase
	hub    *DigestHub
	opts   Options
	mux    *mux.Router
	logger *slog.Logger
}

func NewServer(rides *usecase.RideUsecase, hub *DigestHub, opts Options, logger *slog.Logger) *Server {
	s := &Server{rides: rides, hub: hub, opts: opts, mux: mux.NewRouter(), logger: logger}
	s.registerMiddleware()
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	s.mux.HandleFunc("/ready", s.handleReady).Methods("GET")
	s.mux.Handle("/metrics", promhttp.Handler())
	s.mux.HandleFunc("/ws/digest", s.handleDigestWS)

	if s.opts.Webhook != nil && s.opts.WebhookPath != "" {
		s.mux.Handle(s.opts.WebhookPath, s.opts.Webhook).Methods("POST")
	}

	api := s.mux.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/timetable", s.handleTimetable).Methods("GET")
	api.HandleFunc("/rides", s.handleCreateRide).Methods("POST")
	api.HandleFunc("/rides/due", s.handleDue).Methods("GET")
	api.HandleFunc("/rides/digest", s.handleLastDigest).Methods("GET")
	api.HandleFunc("/rides/{id:[0-9]+}", s.handleGetRide).Methods("GET")
	api.HandleFunc("/rides/{id:[0-9]+}", s.handleCancelRide).Methods("DELETE")
	api.HandleFunc("/rides/{id:[0-9]+}/complete", s.handleCompleteRide).Methods("POST")
	api.HandleFunc("/requesters/{requester}/rides", s.handleRequesterRides).Methods("GET")
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.mux.ServeHTTP(w, r) }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.opts.Ready != nil {
		if err := s.opts.Ready(r.Context()); err != nil {
			http.Error(w, "not ready: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}

var upgrader = websocket.Upgrader{}

func (s *Server) handleDigestWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("ws upgrade failed", "error", err)
		return
	}
	s.hub.Add(conn)
}

type createRideRequest struct {
	RequesterID string `json:"requester_id"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	SlotTime    string `json:"slot_time"`
	Purpose     string `json:"purpose"`
}

type rideResponse struct {
	ID          int64  `json:"id"`
	RequesterID string `json:"requester_id"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	SlotTime    string `json:"slot_time"`
	Purpose     string `json:"purpose"`
	Status      string `json:"status"`
}

func toResponse(r *domain.RideRequest) rideResponse {
	return rideResponse{
		ID:          r.ID,
		RequesterID: r.RequesterID,
		Origin:      r.Origin,
		Destination: r.Destination,
		SlotTime:    r.SlotTime.String(),
		Purpose:     string(r.Purpose),
		Status:      string(r.Status),
	}
}

func toResponses(rides []*domain.RideRequest) []rideResponse {
	out := make([]rideResponse, 0, len(rides))
	for _, r := range rides {
		out = append(out, toResponse(r))
	}
	return out
}

func (s *Server) handleCreateRide(w http.ResponseWriter, r *http.Request) {
	var req createRideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	slot, err := domain.ParseTimeOfDay(req.SlotTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	purpose, ok := domain.ParsePurpose(req.Purpose)
	if !ok {
		purpose = domain.Purpose(req.Purpose)
	}
	ride, err := s.rides.Create(r.Context(), usecase.CreateRide{
		RequesterID: req.RequesterID,
		Origin:      req.Origin,
		Destination: req.Destination,
		SlotTime:    slot,
		Purpose:     purpose,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toResponse(ride))
}

func (s *Server) handleGetRide(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	ride, err := s.rides.Get(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(ride))
}

func (s *Server) handleCancelRide(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err := s.rides.Cancel(r.Context(), id); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCompleteRide(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err := s.rides.Complete(r.Context(), id); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDue(w http.ResponseWriter, r *http.Request) {
	rides, err := s.rides.PendingDueBy(r.Context(), s.rides.Now())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponses(rides))
}

func (s *Server) handleLastDigest(w http.ResponseWriter, r *http.Request) {
	msg, ok := s.hub.Last()
	if !ok {
		writeError(w, http.StatusNotFound, "no digest yet")
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

func (s *Server) handleRequesterRides(w http.ResponseWriter, r *http.Request) {
	requester := mux.Vars(r)["requester"]
	var (
		rides []*domain.RideRequest
		err   error
	)
	switch status := r.URL.Query().Get("status"); status {
	case "", string(domain.StatusPending):
		rides, err = s.rides.ListPendingForRequester(r.Context(), requester)
	case string(domain.StatusCompleted):
		rides, err = s.rides.ListCompletedForRequester(r.Context(), requester)
	default:
		writeError(w, http.StatusBadRequest, "status must be pending or completed")
		return
	}
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponses(rides))
}

func (s *Server) handleTimetable(w http.ResponseWriter, r *http.Request) {
	slots := s.rides.Timetable().Slots()
	out := make([]string, 0, len(slots))
	for _, t := range slots {
		out = append(out, t.String())
	}
	writeJSON(w, http.StatusOK, map[string]any{"departures": out})
}

func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrDuplicateBooking), errors.Is(err, domain.ErrAlreadyCompleted):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrRideNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		s.logger.Error("request failed", "route", routeTemplate(r), "request_id", requestIDFromContext(r.Context()), "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
