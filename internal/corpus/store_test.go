package corpus

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lazobello/cvagent/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validCorpus = `[
	{"id":"f1","text":"Experiencia en Go y sistemas distribuidos","embedding":[1,0,0]},
	{"id":"f2","text":"Lideró un equipo de cinco desarrolladores","embedding":[0,1,0]},
	{"id":"f3","text":"Certificado en arquitectura cloud","embedding":[0.9,0.1,0]}
]`

func newFileStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "cv-embeddings.json")
	return NewStore(NewFileMirror(path)), path
}

func TestStore_Replace_Valid(t *testing.T) {
	ctx := context.Background()
	store, path := newFileStore(t)

	count, err := store.Replace(ctx, []byte(validCorpus))
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, 3, store.Len())

	// snapshot written with parent dirs created
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, validCorpus, string(data))
}

func TestStore_Replace_DiscardsOldCorpus(t *testing.T) {
	ctx := context.Background()
	store, _ := newFileStore(t)

	_, err := store.Replace(ctx, []byte(validCorpus))
	require.NoError(t, err)

	count, err := store.Replace(ctx, []byte(`[{"id":"n1","text":"nuevo","embedding":[0,0,1]}]`))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	result, err := store.Search([]float64{0, 0, 1}, 3)
	require.NoError(t, err)
	assert.Equal(t, "nuevo", result)
}

func TestStore_Replace_Invalid(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		raw     string
		wantErr *domain.DomainError
	}{
		{"malformed json", `{not json`, domain.ErrCorpusNotJSON},
		{"not an array", `{"text":"x","embedding":[1]}`, domain.ErrCorpusNotArray},
		{"missing embedding", `[{"id":"a","text":"x"}]`, domain.ErrCorpusInvalidFragment},
		{"null embedding", `[{"text":"x","embedding":null}]`, domain.ErrCorpusInvalidFragment},
		{"embedding not array", `[{"text":"x","embedding":"vector"}]`, domain.ErrCorpusInvalidFragment},
		{"missing text", `[{"id":"a","embedding":[1,2]}]`, domain.ErrCorpusInvalidFragment},
		{"dimension mismatch", `[{"text":"a","embedding":[1,2]},{"text":"b","embedding":[1,2,3]}]`, domain.ErrCorpusDimensionMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _ := newFileStore(t)
			_, err := store.Replace(ctx, []byte(tt.raw))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 0, store.Len())
		})
	}
}

func TestStore_Search_OrdersByCosineSimilarity(t *testing.T) {
	ctx := context.Background()
	store, _ := newFileStore(t)

	_, err := store.Replace(ctx, []byte(validCorpus))
	require.NoError(t, err)

	// query aligned with f1; f3 is the closest runner-up, f2 orthogonal
	result, err := store.Search([]float64{1, 0, 0}, 3)
	require.NoError(t, err)

	expected := "Experiencia en Go y sistemas distribuidos" + FragmentSeparator +
		"Certificado en arquitectura cloud" + FragmentSeparator +
		"Lideró un equipo de cinco desarrolladores"
	assert.Equal(t, expected, result)
}

func TestStore_Search_RespectsTopK(t *testing.T) {
	ctx := context.Background()
	store, _ := newFileStore(t)

	_, err := store.Replace(ctx, []byte(validCorpus))
	require.NoError(t, err)

	result, err := store.Search([]float64{1, 0, 0}, 1)
	require.NoError(t, err)
	assert.Equal(t, "Experiencia en Go y sistemas distribuidos", result)
}

func TestStore_Search_EmptyStore(t *testing.T) {
	store, _ := newFileStore(t)

	result, err := store.Search([]float64{1, 2, 3}, 3)
	require.NoError(t, err)
	assert.Equal(t, "", result)
}

func TestStore_Search_QueryDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	store, _ := newFileStore(t)

	_, err := store.Replace(ctx, []byte(validCorpus))
	require.NoError(t, err)

	_, err = store.Search([]float64{1, 0}, 3)
	assert.ErrorIs(t, err, domain.ErrQueryDimensionMismatch)
}

func TestStore_Search_StableTieBreak(t *testing.T) {
	ctx := context.Background()
	store, _ := newFileStore(t)

	// f1 and f2 score identically against the query; original order wins
	_, err := store.Replace(ctx, []byte(`[
		{"id":"f1","text":"primero","embedding":[1,1]},
		{"id":"f2","text":"segundo","embedding":[2,2]},
		{"id":"f3","text":"tercero","embedding":[-1,-1]}
	]`))
	require.NoError(t, err)

	result, err := store.Search([]float64{1, 1}, 2)
	require.NoError(t, err)
	assert.Equal(t, "primero"+FragmentSeparator+"segundo", result)
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	store, path := newFileStore(t)

	_, err := store.Replace(ctx, []byte(validCorpus))
	require.NoError(t, err)

	store.Clear(ctx)
	assert.Equal(t, 0, store.Len())

	_, err = os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	// clearing again must not error even though the snapshot is gone
	store.Clear(ctx)
}

func TestStore_LoadFromMirror(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cv-embeddings.json")
	require.NoError(t, os.WriteFile(path, []byte(validCorpus), 0o644))

	store := NewStore(NewFileMirror(path))
	require.NoError(t, store.LoadFromMirror(ctx))
	assert.Equal(t, 3, store.Len())
}

func TestStore_LoadFromMirror_Missing(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewFileMirror(filepath.Join(t.TempDir(), "nope.json")))

	require.NoError(t, store.LoadFromMirror(ctx))
	assert.Equal(t, 0, store.Len())
}

func TestStore_LoadFromMirror_Corrupt(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cv-embeddings.json")
	require.NoError(t, os.WriteFile(path, []byte("{corrupt"), 0o644))

	store := NewStore(NewFileMirror(path))
	err := store.LoadFromMirror(ctx)
	assert.Error(t, err)
	assert.Equal(t, 0, store.Len())
}

type failingMirror struct{}

func (failingMirror) Load(context.Context) ([]byte, error) { return nil, ErrMirrorNotFound }
func (failingMirror) Store(context.Context, []byte) error { return errors.New("disk full") }
func (failingMirror) Delete(context.Context) error { return errors.New("permission denied") }

func TestStore_MirrorFailuresAreSwallowed(t *testing.T) {
	ctx := context.Background()
	store := NewStore(failingMirror{})

	count, err := store.Replace(ctx, []byte(validCorpus))
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, 3, store.Len())

	store.Clear(ctx)
	assert.Equal(t, 0, store.Len())
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float64{1, 2, 3}, []float64{1, 2, 3}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float64{1, 0}, []float64{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float64{1, 1}, []float64{-1, -1}), 1e-9)
}

func TestCosineSimilarity_ZeroVector(t *testing.T) {
	assert.Equal(t, 0.0, CosineSimilarity([]float64{1, 2, 3}, []float64{0, 0, 0}))
	assert.Equal(t, 0.0, CosineSimilarity([]float64{0, 0, 0}, []float64{4, 5, 6}))
}
