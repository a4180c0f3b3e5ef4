package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"riskbot/internal/config"
)

func TestSnapshotPath(t *testing.T) {
	rag := &config.RAGConfig{DBPath: "./vectordb", CollectionName: "documents"}
	assert.Equal(t, filepath.Join("vectordb", "documents.chromem"), snapshotPath(rag, ""))

	rag.ExportPath = "/var/lib/riskbot/snap.gob"
	assert.Equal(t, "/var/lib/riskbot/snap.gob", snapshotPath(rag, ""))
	assert.Equal(t, "out.gob", snapshotPath(rag, "out.gob"))
}
