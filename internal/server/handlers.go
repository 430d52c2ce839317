package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	apperrors "ecommerce-chatbot/internal/common/errors"
	"ecommerce-chatbot/internal/common/metrics"
	"ecommerce-chatbot/internal/models"
	"ecommerce-chatbot/internal/nlu"
	"ecommerce-chatbot/internal/session"
)

const sessionCookieName = "chat_session"

// responseInternalError is what the user sees when the core faults; the
// turn's context mutation is discarded in that case.
const responseInternalError = "Sorry, I encountered an internal error. Please try again."

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"sessionId,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badReq := apperrors.NewRequestInvalidError(err.Error())
		s.logger.Warn("rejected chat request", map[string]interface{}{
			"code":    string(badReq.Code),
			"details": badReq.Details,
		})
		writeJSON(w, http.StatusBadRequest, chatResponse{Response: responseInternalError})
		return
	}

	sess, err := s.loadOrCreateSession(w, r)
	if err != nil {
		s.logger.WithError(err).Error("session unavailable", nil)
		writeJSON(w, http.StatusInternalServerError, chatResponse{Response: responseInternalError})
		return
	}

	// One turn in flight per session: the dialogue core performs no
	// internal synchronization.
	unlock := s.locker.Lock(sess.ID)
	defer unlock()

	response, newCtx, err := s.processTurn(sess.Context, req.Message)
	if err != nil {
		stdErr := apperrors.Normalize(err)
		s.logger.Error("turn processing faulted", map[string]interface{}{
			"sessionId": sess.ID,
			"code":      string(stdErr.Code),
			"details":   stdErr.Details,
		})
		writeJSON(w, http.StatusInternalServerError, chatResponse{Response: responseInternalError})
		return
	}

	intent := nlu.Recognize(req.Message).Intent
	metrics.ChatTurnsTotal.WithLabelValues(string(intent)).Inc()

	// A queued prompt means the turn wants generative augmentation. The
	// prompt never survives into the next turn's context.
	final := response
	if prompt := newCtx.TakePrompt(); prompt != "" {
		generated := s.augmentor.Generate(r.Context(), prompt)
		final = response + "\n\n" + generated
	}

	sess.Context = newCtx
	if err := s.store.Save(r.Context(), sess); err != nil {
		s.logger.WithError(err).Error("session save failed", map[string]interface{}{"sessionId": sess.ID})
		writeJSON(w, http.StatusInternalServerError, chatResponse{Response: responseInternalError})
		return
	}

	elapsed := time.Since(start)
	metrics.ChatTurnDuration.WithLabelValues(string(intent)).Observe(elapsed.Seconds())
	if s.obs != nil {
		s.obs.RecordTurn(r.Context(), string(intent))
		s.obs.RecordTurnDuration(r.Context(), elapsed, string(intent))
	}

	writeJSON(w, http.StatusOK, chatResponse{Response: final, SessionID: sess.ID})
}

// processTurn shields the transport from any unexpected fault in the core:
// a panic is converted into an error and no context mutation is kept.
func (s *Server) processTurn(convCtx models.ConversationContext, message string) (response string, newCtx models.ConversationContext, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			response = ""
			newCtx = models.ConversationContext{}
			err = apperrors.NewInternalError(fmt.Errorf("panic in dialogue core: %v", rec))
		}
	}()

	response, newCtx = s.dialogue.Process(convCtx, message)
	return response, newCtx, nil
}

func (s *Server) handleSessionReset(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		if err := s.store.Delete(r.Context(), cookie.Value); err != nil {
			s.logger.WithError(err).Warn("session delete failed", map[string]interface{}{"sessionId": cookie.Value})
		}
		s.locker.Forget(cookie.Value)
	}

	sess, err := s.store.Create(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("session create failed", nil)
		writeJSON(w, http.StatusInternalServerError, chatResponse{Response: responseInternalError})
		return
	}
	s.setSessionCookie(w, sess.ID)

	writeJSON(w, http.StatusOK, chatResponse{SessionID: sess.ID})
}

// loadOrCreateSession resolves the conversation for this request. A missing
// or expired session silently starts a fresh conversation.
func (s *Server) loadOrCreateSession(w http.ResponseWriter, r *http.Request) (*models.Session, error) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		sess, err := s.store.Get(r.Context(), cookie.Value)
		if err == nil {
			return sess, nil
		}
		if !errors.Is(err, session.ErrNotFound) {
			return nil, err
		}
	}

	sess, err := s.store.Create(r.Context())
	if err != nil {
		return nil, err
	}
	s.setSessionCookie(w, sess.ID)
	return sess, nil
}

func (s *Server) setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
