package storage

import (
	"context"
	"fmt"

	"github.com/lazobello/cvagent/internal/corpus"
)

const snapshotContentType = "application/json"

// SnapshotMirror persists the corpus snapshot in an S3-compatible
// bucket instead of the local filesystem. It satisfies corpus.Mirror.
type SnapshotMirror struct {
	client *S3Client
	key    string
}

// NewSnapshotMirror creates a mirror storing the snapshot under key.
func NewSnapshotMirror(client *S3Client, key string) *SnapshotMirror {
	return &SnapshotMirror{client: client, key: key}
}

func (m *SnapshotMirror) Load(ctx context.Context) ([]byte, error) {
	data, err := m.client.GetObject(ctx, m.key)
	if err != nil {
		if IsNotFound(err) {
			return nil, corpus.ErrMirrorNotFound
		}
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return data, nil
}

func (m *SnapshotMirror) Store(ctx context.Context, data []byte) error {
	if err := m.client.PutObject(ctx, m.key, data, snapshotContentType); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}
	return nil
}

func (m *SnapshotMirror) Delete(ctx context.Context) error {
	if err := m.client.DeleteObject(ctx, m.key); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}
