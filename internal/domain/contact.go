package domain

import (
	"fmt"
	"time"
)

// ContactStatus represents the lifecycle status of a contact request
type ContactStatus string

const (
	ContactStatusPending    ContactStatus = "PENDING"
	ContactStatusInProgress ContactStatus = "IN_PROGRESS"
	ContactStatusCompleted  ContactStatus = "COMPLETED"
	ContactStatusCancelled  ContactStatus = "CANCELLED"
)

// ContactStage identifies which piece of information the conversational
// flow collects next. It is derived from the first unset field, in the
// fixed order name -> phone -> email -> contact date.
type ContactStage string

const (
	StageCollectingName  ContactStage = "collecting_name"
	StageCollectingPhone ContactStage = "collecting_phone"
	StageCollectingEmail ContactStage = "collecting_email"
	StageCollectingDate  ContactStage = "collecting_date"
	StageCompleted       ContactStage = "completed"
)

// ContactRequest represents a prospect's request to be contacted, captured
// either turn by turn through the chat flow or at once through the contact
// form. Empty string means the field has not been collected yet.
type ContactRequest struct {
	ID          string
	SessionID   string
	Name        string
	Phone       string
	Email       string
	ContactDate string
	Message     string
	Status      ContactStatus

	// Confirmation e-mail delivery bookkeeping. Delivery is best-effort
	// and never blocks the flow; failed sends are retried in background.
	NotificationSent     bool
	NotificationAttempts int32

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Stage returns the explicit flow stage encoded by the field population
// order. Fields are only ever set front to back, so the first empty field
// determines the next question.
func (c *ContactRequest) Stage() ContactStage {
	switch {
	case c.Name == "":
		return StageCollectingName
	case c.Phone == "":
		return StageCollectingPhone
	case c.Email == "":
		return StageCollectingEmail
	case c.ContactDate == "":
		return StageCollectingDate
	default:
		return StageCompleted
	}
}

// IsComplete reports whether all four collected fields are set.
func (c *ContactRequest) IsComplete() bool {
	return c.Stage() == StageCompleted
}

// ValidateContactRequest validates a ContactRequest instance
func ValidateContactRequest(c *ContactRequest) error {
	if c == nil {
		return fmt.Errorf("contact request cannot be nil")
	}

	if c.ID == "" {
		return fmt.Errorf("contact request ID is required")
	}

	if c.SessionID == "" {
		return fmt.Errorf("contact request SessionID is required")
	}

	if !isValidContactStatus(c.Status) {
		return fmt.Errorf("contact request Status is invalid: %s", c.Status)
	}

	if c.Status == ContactStatusCompleted && !c.IsComplete() {
		return fmt.Errorf("contact request cannot be COMPLETED with unset fields")
	}

	return nil
}

func isValidContactStatus(s ContactStatus) bool {
	switch s {
	case ContactStatusPending, ContactStatusInProgress,
		ContactStatusCompleted, ContactStatusCancelled:
		return true
	}
	return false
}

// ContactNotification is the payload handed to the notification sender.
// It deliberately mirrors only the fields the confirmation e-mail needs.
type ContactNotification struct {
	Name        string
	Email       string
	Phone       string
	ContactDate string
	Message     string
}

// NotificationPayload builds the confirmation payload for this request.
func (c *ContactRequest) NotificationPayload() ContactNotification {
	return ContactNotification{
		Name:        c.Name,
		Email:       c.Email,
		Phone:       c.Phone,
		ContactDate: c.ContactDate,
		Message:     c.Message,
	}
}
