package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/benmeehan/gps-tracker/internal/models"
	"github.com/benmeehan/gps-tracker/internal/services"
	"github.com/benmeehan/gps-tracker/pkg/track"
)

// errorResponse is the body of every non-2xx reply.
type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, track.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, services.ErrNoFix), errors.Is(err, services.ErrServiceNotRunning):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("Failed to write response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
	} else {
		s.logger.Debug().Err(err).Str("path", r.URL.Path).Int("status", status).Msg("Request rejected")
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) snapshot(session track.Session) models.TrackSnapshot {
	return models.NewTrackSnapshot(s.tracker.DeviceID(), session, s.now().UTC())
}

func (s *Server) healthHandler(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) sessionHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	session, err := s.tracker.Snapshot(ctx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.snapshot(session))
}

func (s *Server) listSessionsHandler(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.tracker.Sessions())
}

func (s *Server) getSessionHandler(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	record, ok := s.tracker.Session(id)
	if !ok {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "session " + id + " not found"})
		return
	}
	s.writeJSON(w, http.StatusOK, record)
}

func (s *Server) startHandler(w http.ResponseWriter, r *http.Request) {
	s.applySession(w, r, s.tracker.StartRecording)
}

func (s *Server) resetHandler(w http.ResponseWriter, r *http.Request) {
	s.applySession(w, r, s.tracker.Reset)
}

func (s *Server) applySession(w http.ResponseWriter, r *http.Request, action func(context.Context) (track.Session, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	session, err := action(ctx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.snapshot(session))
}

func (s *Server) stopHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	record, err := s.tracker.StopRecording(ctx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, record)
}
