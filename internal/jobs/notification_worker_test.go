package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/lazobello/cvagent/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) ListPendingNotifications(ctx context.Context, maxAttempts int32, limit int) ([]*domain.ContactRequest, error) {
	args := m.Called(ctx, maxAttempts, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ContactRequest), args.Error(1)
}

func (m *MockNotificationRepository) MarkNotified(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockNotificationRepository) IncrementNotificationAttempts(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendConfirmation(ctx context.Context, payload domain.ContactNotification) bool {
	args := m.Called(ctx, payload)
	return args.Bool(0)
}

func TestNotificationWorker_ProcessJobs_Empty(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockNotificationRepository)
	mockNotifier := new(MockNotifier)
	mockRepo.On("ListPendingNotifications", ctx, int32(MaxNotificationAttempts), notificationBatchSize).
		Return([]*domain.ContactRequest{}, nil)

	worker := NewNotificationWorker(mockRepo, mockNotifier)

	err := worker.ProcessJobs(ctx)

	require.NoError(t, err)
	mockNotifier.AssertNotCalled(t, "SendConfirmation", mock.Anything, mock.Anything)
}

func TestNotificationWorker_ProcessJobs_SendsAndMarks(t *testing.T) {
	ctx := context.Background()
	pending := []*domain.ContactRequest{
		{ID: "req-1", Email: "a@example.com", Name: "Ana", Status: domain.ContactStatusCompleted},
		{ID: "req-2", Email: "b@example.com", Name: "Bruno", Status: domain.ContactStatusCompleted},
	}

	mockRepo := new(MockNotificationRepository)
	mockNotifier := new(MockNotifier)
	mockRepo.On("ListPendingNotifications", ctx, int32(MaxNotificationAttempts), notificationBatchSize).
		Return(pending, nil)
	mockNotifier.On("SendConfirmation", ctx, mock.MatchedBy(func(p domain.ContactNotification) bool {
		return p.Email == "a@example.com"
	})).Return(true)
	mockNotifier.On("SendConfirmation", ctx, mock.MatchedBy(func(p domain.ContactNotification) bool {
		return p.Email == "b@example.com"
	})).Return(false)
	mockRepo.On("MarkNotified", ctx, "req-1").Return(nil)
	mockRepo.On("IncrementNotificationAttempts", ctx, "req-2").Return(nil)

	worker := NewNotificationWorker(mockRepo, mockNotifier)

	err := worker.ProcessJobs(ctx)

	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockNotifier.AssertExpectations(t)
	mockRepo.AssertNotCalled(t, "MarkNotified", ctx, "req-2")
}

func TestNotificationWorker_ProcessJobs_ListError(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockNotificationRepository)
	mockNotifier := new(MockNotifier)
	mockRepo.On("ListPendingNotifications", ctx, mock.Anything, mock.Anything).
		Return(nil, errors.New("db down"))

	worker := NewNotificationWorker(mockRepo, mockNotifier)

	err := worker.ProcessJobs(ctx)

	assert.Error(t, err)
}
