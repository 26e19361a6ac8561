// Package corpus holds the in-memory knowledge base the assistant answers
// from: résumé fragments with precomputed embeddings, replaced in bulk and
// searched by cosine similarity. Memory is authoritative; a snapshot
// mirror (local file or S3) is kept best-effort so restarts can warm up.
package corpus

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/lazobello/cvagent/internal/domain"
)

const (
	// DefaultTopK is the number of fragments retrieved per query.
	DefaultTopK = 3

	// FragmentSeparator joins retrieved fragment texts into one context block.
	FragmentSeparator = "\n\n---\n\n"
)

// Mirror persists a snapshot of the corpus outside process memory.
// Implementations: FileMirror (local disk) and storage.SnapshotMirror (S3).
type Mirror interface {
	Load(ctx context.Context) ([]byte, error)
	Store(ctx context.Context, data []byte) error
	Delete(ctx context.Context) error
}

// ErrMirrorNotFound is returned by Mirror.Load when no snapshot exists.
var ErrMirrorNotFound = errors.New("corpus snapshot not found")

// Store is the in-memory fragment store. Replace swaps the whole corpus
// atomically; readers see either the old or the new corpus, never a mix.
type Store struct {
	mu        sync.RWMutex
	fragments []domain.KnowledgeFragment
	mirror    Mirror
}

// NewStore creates an empty Store backed by the given mirror.
// A nil mirror disables snapshotting.
func NewStore(mirror Mirror) *Store {
	return &Store{mirror: mirror}
}

// LoadFromMirror warms the store from its snapshot. A missing snapshot is
// not an error; a corrupt one leaves the store empty and reports the
// problem so the caller can log it. Never fatal to startup.
func (s *Store) LoadFromMirror(ctx context.Context) error {
	if s.mirror == nil {
		return nil
	}

	data, err := s.mirror.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrMirrorNotFound) {
			return nil
		}
		return err
	}

	var fragments []domain.KnowledgeFragment
	if err := json.Unmarshal(data, &fragments); err != nil {
		return err
	}

	s.mu.Lock()
	s.fragments = fragments
	s.mu.Unlock()

	log.Printf("corpus: loaded %d fragments from snapshot", len(fragments))
	return nil
}

// Replace parses raw as a JSON array of fragments, validates it, and swaps
// the entire in-memory corpus. Returns the number of fragments loaded.
// The snapshot write is best-effort: a mirror failure is logged and
// swallowed because memory remains authoritative.
func (s *Store) Replace(ctx context.Context, raw []byte) (int, error) {
	fragments, err := parseFragments(raw)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	s.fragments = fragments
	s.mu.Unlock()

	if s.mirror != nil {
		if err := s.mirror.Store(ctx, raw); err != nil {
			log.Printf("corpus: could not persist snapshot (keeping in-memory corpus): %v", err)
		}
	}

	return len(fragments), nil
}

// Clear empties the corpus and removes the snapshot if present. Snapshot
// deletion failures are logged and swallowed.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.fragments = nil
	s.mu.Unlock()

	if s.mirror != nil {
		if err := s.mirror.Delete(ctx); err != nil && !errors.Is(err, ErrMirrorNotFound) {
			log.Printf("corpus: could not delete snapshot: %v", err)
		}
	}
}

// Len returns the number of fragments currently loaded.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.fragments)
}

// Search scores every fragment by cosine similarity against the query
// embedding, sorts descending, and joins the topK fragment texts with
// FragmentSeparator. Equal scores keep their original corpus order. An
// empty corpus yields the empty string.
func (s *Store) Search(query []float64, topK int) (string, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.fragments) == 0 {
		return "", nil
	}

	if len(query) != len(s.fragments[0].Embedding) {
		return "", domain.ErrQueryDimensionMismatch
	}

	type scored struct {
		text  string
		score float64
	}

	ranked := make([]scored, len(s.fragments))
	for i, f := range s.fragments {
		ranked[i] = scored{text: f.Text, score: CosineSimilarity(query, f.Embedding)}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if topK > len(ranked) {
		topK = len(ranked)
	}

	texts := make([]string, topK)
	for i := 0; i < topK; i++ {
		texts[i] = ranked[i].text
	}

	return strings.Join(texts, FragmentSeparator), nil
}

// CosineSimilarity computes dot(a,b) / (|a|*|b|). Returns 0 when either
// vector has zero norm, as a safe default rather than a true similarity.
func CosineSimilarity(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// fragmentPayload mirrors the upload wire format. Embedding stays a raw
// message so a missing or non-array value can be told apart from an
// empty one.
type fragmentPayload struct {
	ID        string          `json:"id"`
	Text      string          `json:"text"`
	Embedding json.RawMessage `json:"embedding"`
}

func parseFragments(raw []byte) ([]domain.KnowledgeFragment, error) {
	if !json.Valid(raw) {
		return nil, domain.ErrCorpusNotJSON
	}

	var payload []fragmentPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, domain.ErrCorpusNotArray
	}

	fragments := make([]domain.KnowledgeFragment, 0, len(payload))
	dimension := -1
	for _, p := range payload {
		if p.Text == "" || len(p.Embedding) == 0 || string(p.Embedding) == "null" {
			return nil, domain.ErrCorpusInvalidFragment
		}

		var embedding []float64
		if err := json.Unmarshal(p.Embedding, &embedding); err != nil || embedding == nil {
			return nil, domain.ErrCorpusInvalidFragment
		}

		if dimension == -1 {
			dimension = len(embedding)
		} else if len(embedding) != dimension {
			return nil, domain.ErrCorpusDimensionMismatch
		}

		fragments = append(fragments, domain.KnowledgeFragment{
			ID:        p.ID,
			Text:      p.Text,
			Embedding: embedding,
		})
	}

	return fragments, nil
}
