package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lazobello/cvagent/internal/domain"
)

const uniqueViolationCode = "23505"

// ContactRepository handles persistence of contact requests.
type ContactRepository struct {
	pool *pgxpool.Pool
}

func NewContactRepository(pool *pgxpool.Pool) *ContactRepository {
	return &ContactRepository{pool: pool}
}

func (r *ContactRepository) Create(ctx context.Context, req *domain.ContactRequest) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO contact_requests
			(id, session_id, name, phone, email, contact_date, message, status,
			 notification_sent, notification_attempts, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		req.ID, req.SessionID,
		nullableString(req.Name), nullableString(req.Phone), nullableString(req.Email),
		nullableString(req.ContactDate), nullableString(req.Message),
		req.Status, req.NotificationSent, req.NotificationAttempts,
		req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return domain.ErrContactAlreadyExists
		}
		return err
	}
	return nil
}

func (r *ContactRepository) Update(ctx context.Context, req *domain.ContactRequest) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE contact_requests
		 SET name = $1, phone = $2, email = $3, contact_date = $4, message = $5,
		     status = $6, notification_sent = $7, notification_attempts = $8, updated_at = $9
		 WHERE id = $10`,
		nullableString(req.Name), nullableString(req.Phone), nullableString(req.Email),
		nullableString(req.ContactDate), nullableString(req.Message),
		req.Status, req.NotificationSent, req.NotificationAttempts, req.UpdatedAt,
		req.ID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrContactNotFound
	}
	return nil
}

func (r *ContactRepository) GetByID(ctx context.Context, id string) (*domain.ContactRequest, error) {
	row := r.pool.QueryRow(ctx, selectContactQuery+` WHERE id = $1`, id)
	return scanContactRow(row)
}

// GetActiveBySession returns the session's PENDING request.
func (r *ContactRepository) GetActiveBySession(ctx context.Context, sessionID string) (*domain.ContactRequest, error) {
	row := r.pool.QueryRow(ctx,
		selectContactQuery+` WHERE session_id = $1 AND status = $2`,
		sessionID, domain.ContactStatusPending,
	)
	return scanContactRow(row)
}

// MarkNotified records a successful confirmation delivery.
func (r *ContactRepository) MarkNotified(ctx context.Context, id string) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE contact_requests SET notification_sent = TRUE, updated_at = now() WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrContactNotFound
	}
	return nil
}

// IncrementNotificationAttempts bumps the retry counter after a failed send.
func (r *ContactRepository) IncrementNotificationAttempts(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE contact_requests
		 SET notification_attempts = notification_attempts + 1, updated_at = now()
		 WHERE id = $1`,
		id,
	)
	return err
}

// ListPendingNotifications returns completed requests whose confirmation
// e-mail has not been delivered and that still have retries left.
func (r *ContactRepository) ListPendingNotifications(ctx context.Context, maxAttempts int32, limit int) ([]*domain.ContactRequest, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.pool.Query(ctx,
		selectContactQuery+`
		 WHERE status = $1 AND notification_sent = FALSE AND notification_attempts < $2
		 ORDER BY updated_at ASC
		 LIMIT $3`,
		domain.ContactStatusCompleted, maxAttempts, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []*domain.ContactRequest
	for rows.Next() {
		req, err := scanContactRow(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

const selectContactQuery = `
	SELECT id, session_id, name, phone, email, contact_date, message, status,
	       notification_sent, notification_attempts, created_at, updated_at
	FROM contact_requests`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContactRow(row rowScanner) (*domain.ContactRequest, error) {
	var req domain.ContactRequest
	var name, phone, email, contactDate, message *string

	err := row.Scan(
		&req.ID, &req.SessionID, &name, &phone, &email, &contactDate, &message,
		&req.Status, &req.NotificationSent, &req.NotificationAttempts,
		&req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrContactNotFound
		}
		return nil, err
	}

	req.Name = derefString(name)
	req.Phone = derefString(phone)
	req.Email = derefString(email)
	req.ContactDate = derefString(contactDate)
	req.Message = derefString(message)

	return &req, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
