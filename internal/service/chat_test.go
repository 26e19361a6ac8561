package service

import (
	"context"
	"errors"
	"testing"

	"github.com/lazobello/cvagent/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockContactFlow struct {
	mock.Mock
}

func (m *MockContactFlow) GetActive(ctx context.Context, sessionID string) (*domain.ContactRequest, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ContactRequest), args.Error(1)
}

func (m *MockContactFlow) Start(ctx context.Context, sessionID string) (*domain.ContactRequest, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ContactRequest), args.Error(1)
}

func (m *MockContactFlow) Advance(ctx context.Context, req *domain.ContactRequest, message string) (string, error) {
	args := m.Called(ctx, req, message)
	return args.String(0), args.Error(1)
}

type MockContextRetriever struct {
	mock.Mock
}

func (m *MockContextRetriever) RelevantContext(ctx context.Context, question string) (string, error) {
	args := m.Called(ctx, question)
	return args.String(0), args.Error(1)
}

type MockCompletionClient struct {
	mock.Mock
}

func (m *MockCompletionClient) Complete(ctx context.Context, systemPrompt, question string) (string, error) {
	args := m.Called(ctx, systemPrompt, question)
	return args.String(0), args.Error(1)
}

func TestChatService_ActiveFlowTakesPrecedence(t *testing.T) {
	ctx := context.Background()
	contacts := new(MockContactFlow)
	retriever := new(MockContextRetriever)
	completions := new(MockCompletionClient)

	// Name already collected, phone pending: the message is flow input.
	active := &domain.ContactRequest{
		ID:        "req-1",
		SessionID: "session-1",
		Name:      "Ana",
		Status:    domain.ContactStatusPending,
	}
	contacts.On("GetActive", ctx, "session-1").Return(active, nil)
	contacts.On("Advance", ctx, active, "987654321").Return("Entendido. ¿Cuál es tu correo electrónico?", nil)

	svc := NewChatService(contacts, retriever, completions)

	answer, err := svc.ProcessMessage(ctx, "987654321", "session-1")

	require.NoError(t, err)
	assert.Equal(t, "Entendido. ¿Cuál es tu correo electrónico?", answer)
	retriever.AssertNotCalled(t, "RelevantContext", mock.Anything, mock.Anything)
	completions.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
	contacts.AssertExpectations(t)
}

func TestChatService_ContactIntentStartsFlow(t *testing.T) {
	ctx := context.Background()
	contacts := new(MockContactFlow)
	retriever := new(MockContextRetriever)
	completions := new(MockCompletionClient)

	contacts.On("GetActive", ctx, "session-1").Return(nil, nil)
	contacts.On("Start", ctx, "session-1").Return(&domain.ContactRequest{ID: "req-1"}, nil)

	svc := NewChatService(contacts, retriever, completions)

	answer, err := svc.ProcessMessage(ctx, "Me gustaría agendar una reunión", "session-1")

	require.NoError(t, err)
	assert.Equal(t, "¡Claro! Me encantaría ponerte en contacto con Enrique. Para empezar, ¿cuál es tu nombre?", answer)
	retriever.AssertNotCalled(t, "RelevantContext", mock.Anything, mock.Anything)
	contacts.AssertExpectations(t)
}

func TestChatService_StartFailurePropagates(t *testing.T) {
	ctx := context.Background()
	contacts := new(MockContactFlow)
	retriever := new(MockContextRetriever)
	completions := new(MockCompletionClient)

	startErr := errors.New("db down")
	contacts.On("GetActive", ctx, "session-1").Return(nil, nil)
	contacts.On("Start", ctx, "session-1").Return(nil, startErr)

	svc := NewChatService(contacts, retriever, completions)

	answer, err := svc.ProcessMessage(ctx, "Quiero contactar a Enrique", "session-1")

	assert.Empty(t, answer)
	assert.Equal(t, startErr, err)
}

func TestChatService_RAGAnswer(t *testing.T) {
	ctx := context.Background()
	contacts := new(MockContactFlow)
	retriever := new(MockContextRetriever)
	completions := new(MockCompletionClient)

	contacts.On("GetActive", ctx, "session-1").Return(nil, nil)
	retriever.On("RelevantContext", mock.Anything, "¿Qué lenguajes sabes?").Return("Go, TypeScript", nil)
	completions.On("Complete", mock.Anything, BuildSystemPrompt("Go, TypeScript"), "¿Qué lenguajes sabes?").
		Return("Enrique domina Go y TypeScript.", nil)

	svc := NewChatService(contacts, retriever, completions)

	answer, err := svc.ProcessMessage(ctx, "¿Qué lenguajes sabes?", "session-1")

	require.NoError(t, err)
	assert.Equal(t, "Enrique domina Go y TypeScript.", answer)
	retriever.AssertExpectations(t)
	completions.AssertExpectations(t)
}

func TestChatService_RetrieverErrorFallsBack(t *testing.T) {
	ctx := context.Background()
	contacts := new(MockContactFlow)
	retriever := new(MockContextRetriever)
	completions := new(MockCompletionClient)

	contacts.On("GetActive", ctx, "session-1").Return(nil, nil)
	retriever.On("RelevantContext", mock.Anything, mock.Anything).
		Return("", domain.NewDomainError(domain.ErrCodeProvider, "embedding failed"))

	svc := NewChatService(contacts, retriever, completions)

	answer, err := svc.ProcessMessage(ctx, "¿Dónde trabajas?", "session-1")

	require.NoError(t, err)
	assert.Equal(t, "Lo siento, tuve un problema interno al buscar esa información. ¿Podrías intentar de nuevo?", answer)
	completions.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
}

func TestChatService_CompletionErrorFallsBack(t *testing.T) {
	ctx := context.Background()
	contacts := new(MockContactFlow)
	retriever := new(MockContextRetriever)
	completions := new(MockCompletionClient)

	contacts.On("GetActive", ctx, "session-1").Return(nil, nil)
	retriever.On("RelevantContext", mock.Anything, mock.Anything).Return("contexto", nil)
	completions.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Return("", domain.NewDomainError(domain.ErrCodeProvider, "upstream timeout"))

	svc := NewChatService(contacts, retriever, completions)

	answer, err := svc.ProcessMessage(ctx, "¿Dónde trabajas?", "session-1")

	require.NoError(t, err)
	assert.Equal(t, "Lo siento, tuve un problema interno al buscar esa información. ¿Podrías intentar de nuevo?", answer)
}

func TestChatService_GetActiveErrorPropagates(t *testing.T) {
	ctx := context.Background()
	contacts := new(MockContactFlow)
	retriever := new(MockContextRetriever)
	completions := new(MockCompletionClient)

	repoErr := errors.New("db down")
	contacts.On("GetActive", ctx, "session-1").Return(nil, repoErr)

	svc := NewChatService(contacts, retriever, completions)

	answer, err := svc.ProcessMessage(ctx, "hola", "session-1")

	assert.Empty(t, answer)
	assert.Equal(t, repoErr, err)
}
