package chromemdb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskbot/internal/config"
)

const testKey = "0123456789abcdef0123456789abcdef"

func newManager(t *testing.T, cfg config.RAGConfig) *VectorDBManager {
	t.Helper()
	m, err := NewVectorDBManager(&cfg, nil)
	require.NoError(t, err)
	require.NoError(t, m.Open(context.Background()))
	return m
}

func docs() []Document {
	return []Document{
		{ID: "d1_0", Content: "salary 120k", Metadata: map[string]string{"doc_id": "d1"}, Embedding: []float32{1, 0}},
		{ID: "d1_1", Content: "ssn 123-45-6789", Metadata: map[string]string{"doc_id": "d1"}, Embedding: []float32{0, 1}},
	}
}

func TestCreateGetDelete(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, config.RAGConfig{InMemory: true, CollectionName: "documents", DBPath: t.TempDir()})

	require.NoError(t, m.CreateDocs(ctx, nil))
	require.NoError(t, m.CreateDocs(ctx, docs()))
	assert.Equal(t, 2, m.Count())

	d, ok, err := m.GetByID(ctx, "d1_1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ssn 123-45-6789", d.Content)
	assert.Equal(t, "d1", d.Metadata["doc_id"])

	_, ok, err = m.GetByID(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.DeleteByIDs(ctx, "d1_0", "never-existed"))
	assert.Equal(t, 1, m.Count())
	require.NoError(t, m.DeleteByIDs(ctx))
}

func TestPersistentDB(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cfg := config.RAGConfig{CollectionName: "documents", DBPath: dir}

	m := newManager(t, cfg)
	require.NoError(t, m.CreateDocs(ctx, docs()))
	require.NoError(t, m.Close(ctx))

	reopened := newManager(t, cfg)
	assert.Equal(t, 2, reopened.Count())
}

func TestInMemorySnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	cfg := config.RAGConfig{
		InMemory:       true,
		CollectionName: "documents",
		ExportPath:     filepath.Join(t.TempDir(), "snap", "documents.gob.enc"),
		EncryptionKey:  testKey,
	}

	m := newManager(t, cfg)
	require.NoError(t, m.CreateDocs(ctx, docs()))
	require.NoError(t, m.Close(ctx))
	assert.FileExists(t, cfg.ExportPath)

	restored := newManager(t, cfg)
	assert.Equal(t, 2, restored.Count())
	d, ok, err := restored.GetByID(ctx, "d1_0")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "salary 120k", d.Content)

	// snapshot is unreadable with another key
	cfg.EncryptionKey = "fedcba9876543210fedcba9876543210"
	other, err := NewVectorDBManager(&cfg, nil)
	require.NoError(t, err)
	assert.Error(t, other.Open(ctx))
}

func TestInMemoryWithoutExportPathLeavesNoSnapshot(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	t.Chdir(dir)
	cfg := config.RAGConfig{InMemory: true, CollectionName: "documents"}

	m := newManager(t, cfg)
	require.NoError(t, m.CreateDocs(ctx, docs()))
	require.NoError(t, m.Close(ctx))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	fresh := newManager(t, cfg)
	assert.Equal(t, 0, fresh.Count())
}

func TestExportWithoutCollection(t *testing.T) {
	m, err := NewVectorDBManager(&config.RAGConfig{InMemory: true, CollectionName: "documents"}, nil)
	require.NoError(t, err)
	assert.Error(t, m.Export(context.Background()))
}
