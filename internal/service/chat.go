package service

import (
	"context"
	"log"
	"time"

	"github.com/lazobello/cvagent/internal/domain"
	"github.com/lazobello/cvagent/internal/telemetry"
)

// Fixed user-visible strings of the message router.
const (
	msgContactInvitation = "¡Claro! Me encantaría ponerte en contacto con Enrique. Para empezar, ¿cuál es tu nombre?"
	msgRAGFallback       = "Lo siento, tuve un problema interno al buscar esa información. ¿Podrías intentar de nuevo?"

	// defaultProviderTimeout bounds the embedding and completion calls.
	// A timeout is handled like any other provider failure.
	defaultProviderTimeout = 30 * time.Second
)

// ContactFlow is the slice of the contact service the router consumes.
type ContactFlow interface {
	GetActive(ctx context.Context, sessionID string) (*domain.ContactRequest, error)
	Start(ctx context.Context, sessionID string) (*domain.ContactRequest, error)
	Advance(ctx context.Context, req *domain.ContactRequest, message string) (string, error)
}

// ContextRetriever fetches relevant CV context for a question.
type ContextRetriever interface {
	RelevantContext(ctx context.Context, question string) (string, error)
}

// CompletionClient generates the final answer from prompt and question.
type CompletionClient interface {
	Complete(ctx context.Context, systemPrompt, question string) (string, error)
}

// ChatService routes each inbound message: continue an open contact flow,
// start a new one on detected intent, or answer from the knowledge base.
// It owns no state of its own.
type ChatService struct {
	contacts        ContactFlow
	retriever       ContextRetriever
	completions     CompletionClient
	providerTimeout time.Duration
}

// NewChatService creates a new ChatService instance.
func NewChatService(contacts ContactFlow, retriever ContextRetriever, completions CompletionClient) *ChatService {
	return &ChatService{
		contacts:        contacts,
		retriever:       retriever,
		completions:     completions,
		providerTimeout: defaultProviderTimeout,
	}
}

// ProcessMessage handles one inbound (question, sessionID) pair and
// returns the answer text. An active contact flow takes precedence over
// everything; mid-flow messages are flow input, not CV questions.
// Contact persistence errors propagate, RAG-path errors never do.
func (s *ChatService) ProcessMessage(ctx context.Context, question, sessionID string) (string, error) {
	log.Printf("chat: processing message for session %s", sessionID)

	active, err := s.contacts.GetActive(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if active != nil {
		return s.contacts.Advance(ctx, active, question)
	}

	if DetectContactIntent(question) {
		if _, err := s.contacts.Start(ctx, sessionID); err != nil {
			return "", err
		}
		return msgContactInvitation, nil
	}

	return s.answerFromKnowledge(ctx, question), nil
}

// answerFromKnowledge runs the RAG path. Any failure (embedding,
// search, completion, timeout) is logged, captured, and reduced to the
// fixed fallback answer so no provider error ever reaches transport.
func (s *ChatService) answerFromKnowledge(ctx context.Context, question string) string {
	ctx, cancel := context.WithTimeout(ctx, s.providerTimeout)
	defer cancel()

	ragContext, err := s.retriever.RelevantContext(ctx, question)
	if err != nil {
		log.Printf("chat: context retrieval failed: %v", err)
		telemetry.CaptureError(ctx, err)
		return msgRAGFallback
	}

	answer, err := s.completions.Complete(ctx, BuildSystemPrompt(ragContext), question)
	if err != nil {
		log.Printf("chat: answer generation failed: %v", err)
		telemetry.CaptureError(ctx, err)
		return msgRAGFallback
	}

	return answer
}
