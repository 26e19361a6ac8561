//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lazobello/cvagent/internal/domain"
	"github.com/lazobello/cvagent/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPendingContact(sessionID string) *domain.ContactRequest {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.ContactRequest{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Status:    domain.ContactStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestContactRepository_CreateAndGetByID(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewContactRepository(pool)

	req := newPendingContact("session-1")
	req.Name = "Ana García"
	require.NoError(t, repo.Create(ctx, req))

	retrieved, err := repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, req.ID, retrieved.ID)
	assert.Equal(t, "session-1", retrieved.SessionID)
	assert.Equal(t, "Ana García", retrieved.Name)
	assert.Equal(t, "", retrieved.Phone)
	assert.Equal(t, domain.ContactStatusPending, retrieved.Status)
	assert.False(t, retrieved.NotificationSent)
	assert.Equal(t, int32(0), retrieved.NotificationAttempts)
}

func TestContactRepository_Create_DuplicateSession(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewContactRepository(pool)

	require.NoError(t, repo.Create(ctx, newPendingContact("session-dup")))

	err := repo.Create(ctx, newPendingContact("session-dup"))
	assert.ErrorIs(t, err, domain.ErrContactAlreadyExists)
}

func TestContactRepository_GetActiveBySession(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewContactRepository(pool)

	req := newPendingContact("session-active")
	require.NoError(t, repo.Create(ctx, req))

	active, err := repo.GetActiveBySession(ctx, "session-active")
	require.NoError(t, err)
	assert.Equal(t, req.ID, active.ID)

	_, err = repo.GetActiveBySession(ctx, "session-unknown")
	assert.ErrorIs(t, err, domain.ErrContactNotFound)
}

func TestContactRepository_GetActiveBySession_IgnoresCompleted(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewContactRepository(pool)

	req := newPendingContact("session-done")
	req.Name = "Ana"
	req.Phone = "987654321"
	req.Email = "ana@example.com"
	req.ContactDate = "Lunes a las 10am"
	req.Status = domain.ContactStatusCompleted
	require.NoError(t, repo.Create(ctx, req))

	_, err := repo.GetActiveBySession(ctx, "session-done")
	assert.ErrorIs(t, err, domain.ErrContactNotFound)
}

func TestContactRepository_Update(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewContactRepository(pool)

	req := newPendingContact("session-update")
	require.NoError(t, repo.Create(ctx, req))

	req.Name = "Ana"
	req.Phone = "987654321"
	req.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, repo.Update(ctx, req))

	retrieved, err := repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", retrieved.Name)
	assert.Equal(t, "987654321", retrieved.Phone)
	assert.Equal(t, domain.StageCollectingEmail, retrieved.Stage())
}

func TestContactRepository_Update_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewContactRepository(pool)

	req := newPendingContact("session-ghost")
	err := repo.Update(ctx, req)
	assert.ErrorIs(t, err, domain.ErrContactNotFound)
}

func TestContactRepository_NotificationLifecycle(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewContactRepository(pool)

	completed := newPendingContact("session-notify")
	completed.Name = "Ana"
	completed.Phone = "987654321"
	completed.Email = "ana@example.com"
	completed.ContactDate = "Lunes a las 10am"
	completed.Status = domain.ContactStatusCompleted
	require.NoError(t, repo.Create(ctx, completed))

	pending, err := repo.ListPendingNotifications(ctx, 3, 20)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, completed.ID, pending[0].ID)

	require.NoError(t, repo.IncrementNotificationAttempts(ctx, completed.ID))
	require.NoError(t, repo.IncrementNotificationAttempts(ctx, completed.ID))

	pending, err = repo.ListPendingNotifications(ctx, 3, 20)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, int32(2), pending[0].NotificationAttempts)

	// A third failure exhausts the retry budget.
	require.NoError(t, repo.IncrementNotificationAttempts(ctx, completed.ID))
	pending, err = repo.ListPendingNotifications(ctx, 3, 20)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestContactRepository_MarkNotified(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewContactRepository(pool)

	completed := newPendingContact("session-sent")
	completed.Name = "Ana"
	completed.Phone = "987654321"
	completed.Email = "ana@example.com"
	completed.ContactDate = "Lunes a las 10am"
	completed.Status = domain.ContactStatusCompleted
	require.NoError(t, repo.Create(ctx, completed))

	require.NoError(t, repo.MarkNotified(ctx, completed.ID))

	pending, err := repo.ListPendingNotifications(ctx, 3, 20)
	require.NoError(t, err)
	assert.Empty(t, pending)

	retrieved, err := repo.GetByID(ctx, completed.ID)
	require.NoError(t, err)
	assert.True(t, retrieved.NotificationSent)
}

func TestContactRepository_MarkNotified_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewContactRepository(pool)

	err := repo.MarkNotified(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrContactNotFound)
}
