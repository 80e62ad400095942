package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"hookedAPI/middleware"
	"hookedAPI/services"
)

type SessionHandler struct {
	sessionService *services.SessionService
}

func NewSessionHandler(sessionService *services.SessionService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
	}
}

func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid session id")
		return
	}

	sess, err := h.sessionService.GetSession(ctx, id)
	if err != nil {
		respondWithError(w, statusFromError(err), "Session not found")
		return
	}

	catches, err := h.sessionService.GetSessionCatches(ctx, id)
	if err != nil {
		log.Printf("GetSession Handler: Failed to load catches: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to load session catches")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"session": sess,
		"catches": catches,
	})
}

// CompleteSession marks the session finished and feeds its catches through the
// segment effort pipeline.
func (h *SessionHandler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid session id")
		return
	}

	sess, err := h.sessionService.CompleteSession(ctx, id, userID)
	if err != nil {
		log.Printf("CompleteSession Handler: Service error: %v", err)
		respondWithError(w, statusFromError(err), err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"message": "Session completed successfully",
		"session": sess,
	})
}
