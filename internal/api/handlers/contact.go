package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/lazobello/cvagent/internal/api"
	"github.com/lazobello/cvagent/internal/domain"
	"github.com/lazobello/cvagent/internal/service"
)

type ContactService interface {
	CreateDirect(ctx context.Context, input service.CreateContactInput) (*domain.ContactRequest, error)
}

type ContactHandler struct {
	svc ContactService
}

func NewContactHandler(svc ContactService) *ContactHandler {
	return &ContactHandler{svc: svc}
}

type CreateContactRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	MeetingDatetime string `json:"meeting_datetime"`
	Message         string `json:"message,omitempty"`
}

type ContactResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	MeetingDatetime string `json:"meeting_datetime"`
	Message         string `json:"message,omitempty"`
	Status          string `json:"status"`
	CreatedAt       string `json:"created_at"`
}

func contactToResponse(req *domain.ContactRequest) *ContactResponse {
	return &ContactResponse{
		ID:              req.ID,
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		MeetingDatetime: req.ContactDate,
		Message:         req.Message,
		Status:          string(req.Status),
		CreatedAt:       req.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Create handles POST /contact: the one-shot contact form.
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.MeetingDatetime = strings.TrimSpace(req.MeetingDatetime)
	req.Message = strings.TrimSpace(req.Message)

	if req.Name == "" {
		api.Error(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Email == "" {
		api.Error(w, http.StatusBadRequest, "email is required")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid email address")
		return
	}
	if req.Phone == "" {
		api.Error(w, http.StatusBadRequest, "phone is required")
		return
	}
	if req.MeetingDatetime == "" {
		api.Error(w, http.StatusBadRequest, "meeting_datetime is required")
		return
	}

	input := service.CreateContactInput{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		MeetingDatetime: req.MeetingDatetime,
		Message:         req.Message,
	}

	contact, err := h.svc.CreateDirect(r.Context(), input)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, contactToResponse(contact))
}
