package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/lazobello/cvagent/internal/api"
)

type ChatService interface {
	ProcessMessage(ctx context.Context, question, sessionID string) (string, error)
}

type ChatHandler struct {
	svc ChatService
}

func NewChatHandler(svc ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

type ChatRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"sessionId"`
}

type ChatResponse struct {
	Answer string `json:"answer"`
}

// Ask handles POST /chat: one user message in, one assistant answer out.
func (h *ChatHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Question) == "" {
		api.Error(w, http.StatusBadRequest, "question is required")
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		api.Error(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	answer, err := h.svc.ProcessMessage(r.Context(), req.Question, req.SessionID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, ChatResponse{Answer: answer})
}
