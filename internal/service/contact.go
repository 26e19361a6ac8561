package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/lazobello/cvagent/internal/domain"
)

// Fixed user-visible strings of the contact flow. The locale is Spanish
// across the whole assistant.
const (
	promptEmail = "Entendido. ¿Cuál es tu correo electrónico?"
	promptDate  = "¿Qué fecha y hora te gustaría para la reunión? (Ej: Lunes 15 a las 10am)"

	msgFlowCompleted = "¡Excelente! He registrado tus datos. Te hemos enviado un correo de confirmación y Enrique se pondrá en contacto contigo pronto."
	msgAlreadyDone   = "Tu solicitud ya ha sido procesada anteriormente."
)

func promptPhone(name string) string {
	return fmt.Sprintf("Gracias, %s. ¿A qué número de celular te podemos contactar?", name)
}

// ContactRepository defines the persistence operations the contact flow needs.
type ContactRepository interface {
	Create(ctx context.Context, req *domain.ContactRequest) error
	Update(ctx context.Context, req *domain.ContactRequest) error
	GetActiveBySession(ctx context.Context, sessionID string) (*domain.ContactRequest, error)
	MarkNotified(ctx context.Context, id string) error
}

// Notifier sends the confirmation e-mail. It reports success as a bool
// and never returns an error; delivery is best-effort by contract.
type Notifier interface {
	SendConfirmation(ctx context.Context, payload domain.ContactNotification) bool
}

// UUIDGenerator generates unique identifiers
type UUIDGenerator interface {
	NewString() string
}

// ContactService owns every mutation of contact requests: the sequential
// chat flow (name -> phone -> email -> date) and the one-shot form path.
type ContactService struct {
	repo     ContactRepository
	notifier Notifier
	uuidGen  UUIDGenerator
}

// NewContactService creates a new ContactService instance.
func NewContactService(repo ContactRepository, notifier Notifier, uuidGen UUIDGenerator) *ContactService {
	return &ContactService{
		repo:     repo,
		notifier: notifier,
		uuidGen:  uuidGen,
	}
}

// GetActive returns the session's PENDING contact request, or nil when
// the session has no open flow.
func (s *ContactService) GetActive(ctx context.Context, sessionID string) (*domain.ContactRequest, error) {
	req, err := s.repo.GetActiveBySession(ctx, sessionID)
	if err != nil {
		if err == domain.ErrContactNotFound {
			return nil, nil
		}
		return nil, err
	}
	return req, nil
}

// Start opens a new PENDING contact flow for the session. The session_id
// unique constraint makes concurrent duplicate starts safe: on conflict
// the already-created active request is returned instead.
func (s *ContactService) Start(ctx context.Context, sessionID string) (*domain.ContactRequest, error) {
	now := time.Now().UTC()
	req := &domain.ContactRequest{
		ID:        s.uuidGen.NewString(),
		SessionID: sessionID,
		Status:    domain.ContactStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, req); err != nil {
		if err == domain.ErrContactAlreadyExists {
			existing, getErr := s.repo.GetActiveBySession(ctx, sessionID)
			if getErr == nil {
				return existing, nil
			}
		}
		return nil, err
	}

	log.Printf("contact: new flow started for session %s", sessionID)
	return req, nil
}

// Advance feeds one user message into the flow: the first unset field is
// set to the trimmed message, the request is persisted, and the next
// question (or the final confirmation) is returned. Called after
// completion it is an idempotent no-op returning a fixed message.
// Persistence errors propagate; notification errors never do.
func (s *ContactService) Advance(ctx context.Context, req *domain.ContactRequest, message string) (string, error) {
	value := strings.TrimSpace(message)

	switch req.Stage() {
	case domain.StageCollectingName:
		req.Name = value
		if err := s.save(ctx, req); err != nil {
			return "", err
		}
		return promptPhone(req.Name), nil

	case domain.StageCollectingPhone:
		req.Phone = value
		if err := s.save(ctx, req); err != nil {
			return "", err
		}
		return promptEmail, nil

	case domain.StageCollectingEmail:
		req.Email = value
		if err := s.save(ctx, req); err != nil {
			return "", err
		}
		return promptDate, nil

	case domain.StageCollectingDate:
		req.ContactDate = value
		req.Status = domain.ContactStatusCompleted
		if err := s.save(ctx, req); err != nil {
			return "", err
		}
		s.triggerConfirmation(ctx, req)
		return msgFlowCompleted, nil

	default:
		return msgAlreadyDone, nil
	}
}

// CreateContactInput carries the contact form fields.
type CreateContactInput struct {
	Name            string
	Email           string
	Phone           string
	MeetingDatetime string
	Message         string
}

// CreateDirect creates a request from the contact form: a fresh synthetic
// session, all fields at once, COMPLETED immediately, same best-effort
// confirmation as the chat flow.
func (s *ContactService) CreateDirect(ctx context.Context, input CreateContactInput) (*domain.ContactRequest, error) {
	now := time.Now().UTC()
	req := &domain.ContactRequest{
		ID:          s.uuidGen.NewString(),
		SessionID:   s.uuidGen.NewString(),
		Name:        input.Name,
		Email:       input.Email,
		Phone:       input.Phone,
		ContactDate: input.MeetingDatetime,
		Message:     input.Message,
		Status:      domain.ContactStatusCompleted,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := domain.ValidateContactRequest(req); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid contact request", err)
	}

	if err := s.repo.Create(ctx, req); err != nil {
		return nil, err
	}

	s.triggerConfirmation(ctx, req)

	return req, nil
}

// triggerConfirmation sends the confirmation e-mail and records delivery.
// Failures are logged and swallowed; the background worker retries them.
func (s *ContactService) triggerConfirmation(ctx context.Context, req *domain.ContactRequest) {
	if s.notifier == nil {
		return
	}

	if ok := s.notifier.SendConfirmation(ctx, req.NotificationPayload()); !ok {
		log.Printf("contact: confirmation email failed for session %s, will retry in background", req.SessionID)
		return
	}

	if err := s.repo.MarkNotified(ctx, req.ID); err != nil {
		log.Printf("contact: could not mark notification sent for %s: %v", req.ID, err)
		return
	}

	log.Printf("contact: confirmation email sent for session %s", req.SessionID)
}

func (s *ContactService) save(ctx context.Context, req *domain.ContactRequest) error {
	req.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, req)
}
