package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"GROQ_API_KEY", "RISKBOT_ADDR", "RISKBOT_DATA_DIR", "RISKBOT_DB_DIR", "OLLAMA_BASE_URL"} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, 1000, cfg.RAG.ChunkSize)
	assert.Equal(t, 200, cfg.RAG.ChunkOverlap)
	assert.Equal(t, 4000, cfg.RAG.ContextBudget)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.ChatLLM.Model)
}

func TestLoadConfigYAMLOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9000"
  llm_timeout: 30s
rag:
  chunk_size: 500
chat_llm:
  provider: ollama
  model: llama3.1:8b
database:
  driver: Postgres
  dsn: postgres://riskbot@localhost:5432/riskbot
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Server.LLMTimeout)
	assert.Equal(t, "./data", cfg.Server.DataDir)
	assert.Equal(t, 500, cfg.RAG.ChunkSize)
	assert.Equal(t, 100, cfg.RAG.ChunkOverlap)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigSmallChunks(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	path := filepath.Join(dir, "small.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rag:\n  chunk_size: 100\n"), 0o644))
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.RAG.ChunkSize)
	assert.Equal(t, 20, cfg.RAG.ChunkOverlap)
	assert.NoError(t, cfg.Validate())

	path = filepath.Join(dir, "explicit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rag:\n  chunk_size: 100\n  chunk_overlap: 0\n"), 0o644))
	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.RAG.ChunkOverlap)
	assert.NoError(t, cfg.Validate())

	path = filepath.Join(dir, "overlap.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rag:\n  chunk_size: 100\n  chunk_overlap: 150\n"), 0o644))
	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Error(t, cfg.Validate())

	path = filepath.Join(dir, "no_rag.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":9000\"\n"), 0o644))
	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.RAG.ChunkSize)
	assert.Equal(t, 200, cfg.RAG.ChunkOverlap)
}

func TestLoadConfigBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GROQ_API_KEY", "gsk_test")
	t.Setenv("RISKBOT_ADDR", ":7000")
	t.Setenv("RISKBOT_DATA_DIR", "/tmp/uploads")
	t.Setenv("OLLAMA_BASE_URL", "http://ollama:11434")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "gsk_test", cfg.ChatLLM.Key)
	// ollama providers take no key
	assert.Empty(t, cfg.ExtractLLM.Key)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, "/tmp/uploads", cfg.Server.DataDir)
	assert.Equal(t, "http://ollama:11434", cfg.EmbedLLM.BaseURL)
	assert.Equal(t, "http://ollama:11434", cfg.ExtractLLM.BaseURL)
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.ChatLLM.BaseURL)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := Default()
		c.ChatLLM.Key = "gsk_test"
		return c
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing key", func(c *Config) { c.ChatLLM.Key = "" }, "chat_llm: missing API key (set GROQ_API_KEY or chat_llm.key)"},
		{"overlap equals size", func(c *Config) { c.RAG.ChunkOverlap = c.RAG.ChunkSize }, "rag.chunk_overlap"},
		{"zero chunk size", func(c *Config) { c.RAG.ChunkSize = 0 }, "rag.chunk_size"},
		{"unknown provider", func(c *Config) { c.EmbedLLM.Provider = "cohere" }, "embed_llm: unknown provider"},
		{"missing model", func(c *Config) { c.ExtractLLM.Model = "" }, "extract_llm: model is required"},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, "database.driver"},
		{"short encryption key", func(c *Config) { c.RAG.EncryptionKey = "short" }, "32 bytes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
