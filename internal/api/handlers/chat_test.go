package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) ProcessMessage(ctx context.Context, question, sessionID string) (string, error) {
	args := m.Called(ctx, question, sessionID)
	return args.String(0), args.Error(1)
}

func TestChatHandler_Ask(t *testing.T) {
	mockSvc := new(MockChatService)
	mockSvc.On("ProcessMessage", mock.Anything, "¿Qué lenguajes sabes?", "session-1").
		Return("Enrique domina Go y TypeScript.", nil)

	handler := NewChatHandler(mockSvc)

	body := `{"question": "¿Qué lenguajes sabes?", "sessionId": "session-1"}`
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.Ask(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "Enrique domina Go y TypeScript.", data["answer"])
	mockSvc.AssertExpectations(t)
}

func TestChatHandler_Ask_InvalidBody(t *testing.T) {
	handler := NewChatHandler(new(MockChatService))

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader("{not json"))
	w := httptest.NewRecorder()

	handler.Ask(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatHandler_Ask_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing question", `{"sessionId": "session-1"}`},
		{"blank question", `{"question": "   ", "sessionId": "session-1"}`},
		{"missing session", `{"question": "hola"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(MockChatService)
			handler := NewChatHandler(mockSvc)

			req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.Ask(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			mockSvc.AssertNotCalled(t, "ProcessMessage", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestChatHandler_Ask_ServiceError(t *testing.T) {
	mockSvc := new(MockChatService)
	mockSvc.On("ProcessMessage", mock.Anything, mock.Anything, mock.Anything).
		Return("", assert.AnError)

	handler := NewChatHandler(mockSvc)

	body := `{"question": "hola", "sessionId": "session-1"}`
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.Ask(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
