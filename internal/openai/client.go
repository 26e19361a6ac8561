// Package openai wraps the completion provider used for embeddings and
// answer generation. Requests go through an OpenAI-compatible endpoint
// (OpenRouter by default) so the chat model and the embedding model can
// come from different upstreams.
package openai

import (
	"context"
	"errors"

	"github.com/lazobello/cvagent/internal/domain"
	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultBaseURL points at OpenRouter's OpenAI-compatible API.
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	// DefaultChatModel is the model used for answer generation.
	DefaultChatModel = "google/gemma-3-12b-it"
	// DefaultEmbeddingModel is the model used for query embeddings.
	DefaultEmbeddingModel = openai.SmallEmbedding3

	chatTemperature = 0.7

	// noContentFallback is returned when the model yields an empty choice.
	noContentFallback = "Could not generate a coherent response."
)

// ErrEmptyText is returned when text to embed is empty
var ErrEmptyText = errors.New("text cannot be empty")

// ChatAPI is the slice of the upstream client the wrapper depends on.
type ChatAPI interface {
	CreateEmbeddings(ctx context.Context, req openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Config holds provider configuration.
type Config struct {
	APIKey         string
	BaseURL        string
	ChatModel      string
	EmbeddingModel openai.EmbeddingModel
}

// Client implements the embedding and completion operations the chat
// service consumes. All failures surface as PROVIDER_ERROR domain errors.
type Client struct {
	api            ChatAPI
	chatModel      string
	embeddingModel openai.EmbeddingModel
}

// NewClient creates a provider client from config, applying defaults.
func NewClient(cfg Config) *Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL
	if clientCfg.BaseURL == "" {
		clientCfg.BaseURL = DefaultBaseURL
	}

	chatModel := cfg.ChatModel
	if chatModel == "" {
		chatModel = DefaultChatModel
	}

	embeddingModel := cfg.EmbeddingModel
	if embeddingModel == "" {
		embeddingModel = DefaultEmbeddingModel
	}

	return &Client{
		api:            openai.NewClientWithConfig(clientCfg),
		chatModel:      chatModel,
		embeddingModel: embeddingModel,
	}
}

// ResolveEmbeddingModel maps a configured model name to the provider
// type, falling back to the default when unset.
func ResolveEmbeddingModel(name string) openai.EmbeddingModel {
	if name == "" {
		return DefaultEmbeddingModel
	}
	return openai.EmbeddingModel(name)
}

// NewClientWithAPI creates a Client on top of an existing API implementation.
func NewClientWithAPI(api ChatAPI, chatModel string, embeddingModel openai.EmbeddingModel) *Client {
	if chatModel == "" {
		chatModel = DefaultChatModel
	}
	if embeddingModel == "" {
		embeddingModel = DefaultEmbeddingModel
	}
	return &Client{api: api, chatModel: chatModel, embeddingModel: embeddingModel}
}

// CreateEmbedding turns text into an embedding vector.
func (c *Client) CreateEmbedding(ctx context.Context, text string) ([]float64, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: c.embeddingModel,
	})
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeProvider, "failed to create embedding", err)
	}

	if len(resp.Data) == 0 {
		return nil, domain.NewDomainError(domain.ErrCodeProvider, "no embedding data returned")
	}

	raw := resp.Data[0].Embedding
	embedding := make([]float64, len(raw))
	for i, v := range raw {
		embedding[i] = float64(v)
	}

	return embedding, nil
}

// Complete generates an answer for the user question under the given
// system prompt.
func (c *Client) Complete(ctx context.Context, systemPrompt, question string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.chatModel,
		Temperature: chatTemperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: question},
		},
	})
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeProvider, "completion request failed", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return noContentFallback, nil
	}

	return resp.Choices[0].Message.Content, nil
}
