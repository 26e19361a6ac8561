package service

import (
	"context"

	"github.com/lazobello/cvagent/internal/corpus"
)

// EmbeddingClient turns text into an embedding vector.
type EmbeddingClient interface {
	CreateEmbedding(ctx context.Context, text string) ([]float64, error)
}

// RagService binds the corpus store to the embedding provider: knowledge
// base replacement and retrieval of the most relevant fragments for a
// question.
type RagService struct {
	store    *corpus.Store
	embedder EmbeddingClient
	topK     int
}

// NewRagService creates a RagService with the default topK.
func NewRagService(store *corpus.Store, embedder EmbeddingClient) *RagService {
	return &RagService{
		store:    store,
		embedder: embedder,
		topK:     corpus.DefaultTopK,
	}
}

// ReplaceKnowledgeBase swaps the corpus for the uploaded JSON payload and
// returns the number of fragments loaded.
func (s *RagService) ReplaceKnowledgeBase(ctx context.Context, raw []byte) (int, error) {
	return s.store.Replace(ctx, raw)
}

// ClearKnowledgeBase purges the corpus from memory and snapshot.
func (s *RagService) ClearKnowledgeBase(ctx context.Context) {
	s.store.Clear(ctx)
}

// RelevantContext returns the concatenated texts of the fragments most
// similar to the question. An empty corpus short-circuits to "" without
// calling the embedding provider.
func (s *RagService) RelevantContext(ctx context.Context, question string) (string, error) {
	if s.store.Len() == 0 {
		return "", nil
	}

	embedding, err := s.embedder.CreateEmbedding(ctx, question)
	if err != nil {
		return "", err
	}

	return s.store.Search(embedding, s.topK)
}
