package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Veraticus/medicoder/internal/catalog"
	"github.com/Veraticus/medicoder/internal/engine"
	"github.com/Veraticus/medicoder/internal/model"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

type messageRequest struct {
	Text string `json:"text"`
}

type replyResponse struct {
	ID       string      `json:"id"`
	Stage    model.Stage `json:"stage"`
	Messages []string    `json:"messages"`
	Done     bool        `json:"done"`
}

type sessionResponse struct {
	CreatedAt time.Time                `json:"created_at"`
	State     *model.ConversationState `json:"state"`
	ID        string                   `json:"id"`
}

type codeResponse struct {
	Code        string `json:"code"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) createSession(w http.ResponseWriter, _ *http.Request) {
	if s.newEngine == nil {
		writeError(w, http.StatusServiceUnavailable, "no engine configured")
		return
	}
	sess := s.sessions.add(s.newEngine())
	reply := sess.engine.Start()
	s.logger.Info("Session started", "session", sess.id)
	writeJSON(w, http.StatusCreated, newReplyResponse(sess.id, reply))
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		ID:        sess.id,
		CreatedAt: sess.createdAt,
		State:     sess.engine.State(),
	})
}

func (s *Server) postMessage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	var req messageRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, err := sess.engine.Handle(r.Context(), req.Text)
	if err != nil {
		s.logger.Error("Turn failed", "session", sess.id, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if reply.Done {
		s.sessions.remove(sess.id)
		s.logger.Info("Session ended", "session", sess.id)
	}
	writeJSON(w, http.StatusOK, newReplyResponse(sess.id, reply))
}

func (s *Server) resetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newReplyResponse(sess.id, sess.engine.Reset()))
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.sessions.remove(id) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	s.logger.Info("Session deleted", "session", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) lookupCode(w http.ResponseWriter, r *http.Request) {
	result := s.catalog.Lookup(chi.URLParam(r, "code"))
	if !result.Found() {
		writeError(w, http.StatusNotFound, result.Describe())
		return
	}

	resp := codeResponse{Code: result.Code, Kind: string(result.Kind)}
	switch result.Kind {
	case catalog.KindDiagnosis:
		resp.Description = result.Diagnosis.Disease
		resp.Category = result.Diagnosis.Category
	case catalog.KindProcedure:
		resp.Description = result.Procedure.Procedure
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) lookupSession(w http.ResponseWriter, r *http.Request) (*session, bool) {
	sess, ok := s.sessions.get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	return sess, true
}

func newReplyResponse(id string, reply engine.Reply) replyResponse {
	messages := reply.Messages
	if messages == nil {
		messages = []string{}
	}
	return replyResponse{
		ID:       id,
		Stage:    reply.Stage,
		Messages: messages,
		Done:     reply.Done,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
