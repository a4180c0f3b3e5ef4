package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

type Config struct {
	Server     ServerConfig   `yaml:"server"`
	RAG        RAGConfig      `yaml:"rag"`
	EmbedLLM   LLMConfig      `yaml:"embed_llm"`
	ExtractLLM LLMConfig      `yaml:"extract_llm"`
	ChatLLM    LLMConfig      `yaml:"chat_llm"`
	Database   DatabaseConfig `yaml:"database"`
	Log        LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	DataDir      string        `yaml:"data_dir"`
	StaticDir    string        `yaml:"static_dir"`
	BodyLimit    string        `yaml:"body_limit"`
	LLMTimeout   time.Duration `yaml:"llm_timeout"`
	ShutdownWait time.Duration `yaml:"shutdown_wait"`
}

// RAGConfig covers chunking, the vector collection and the extraction budget.
type RAGConfig struct {
	ChunkSize      int    `yaml:"chunk_size"`
	ChunkOverlap   int    `yaml:"chunk_overlap"`
	ContextBudget  int    `yaml:"context_budget"`
	DBPath         string `yaml:"db_path"`
	CollectionName string `yaml:"collection_name"`
	InMemory       bool   `yaml:"in_memory"`
	Compress       bool   `yaml:"compress"`
	ExportPath     string `yaml:"export_path"`
	EncryptionKey  string `yaml:"encryption_key"`
}

type LLMConfig struct {
	Provider    string  `yaml:"provider"`
	BaseURL     string  `yaml:"base_url"`
	Key         string  `yaml:"key"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
}

// DatabaseConfig selects the document registry backend: "sqlite" or "postgres".
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
	Password string `yaml:"password"`
	Debug    bool   `yaml:"debug"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// LoadConfig reads the yaml file at path, applies defaults and environment
// overrides. A missing file is not an error; defaults are used instead.
func LoadConfig(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
			if !overlapSet(data) {
				cfg.RAG.ChunkOverlap = cfg.RAG.ChunkSize / overlapRatio
			}
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

// overlapRatio ties an omitted rag.chunk_overlap to rag.chunk_size.
const overlapRatio = 5

func overlapSet(data []byte) bool {
	var raw struct {
		RAG struct {
			ChunkOverlap *int `yaml:"chunk_overlap"`
		} `yaml:"rag"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return true
	}
	return raw.RAG.ChunkOverlap != nil
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":8000",
			DataDir:      "./data",
			StaticDir:    "./static",
			BodyLimit:    "20M",
			LLMTimeout:   2 * time.Minute,
			ShutdownWait: 10 * time.Second,
		},
		RAG: RAGConfig{
			ChunkSize:      1000,
			ChunkOverlap:   200,
			ContextBudget:  4000,
			DBPath:         "./db",
			CollectionName: "documents",
		},
		EmbedLLM: LLMConfig{
			Provider: ProviderOllama,
			BaseURL:  "http://localhost:11434",
			Model:    "nomic-embed-text",
		},
		ExtractLLM: LLMConfig{
			Provider:    ProviderOllama,
			BaseURL:     "http://localhost:11434",
			Model:       "llama3.1:8b",
			Temperature: 0.2,
		},
		ChatLLM: LLMConfig{
			Provider:    ProviderOpenAI,
			BaseURL:     "https://api.groq.com/openai/v1",
			Model:       "llama-3.3-70b-versatile",
			Temperature: 0.2,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "./db/registry.db",
		},
		Log: LogConfig{Level: "debug"},
	}
}

func (c *Config) applyEnv() {
	if key, ok := os.LookupEnv("GROQ_API_KEY"); ok && key != "" {
		for _, l := range []*LLMConfig{&c.ChatLLM, &c.ExtractLLM} {
			if l.Provider == ProviderOpenAI && l.Key == "" {
				l.Key = key
			}
		}
	}
	if v, ok := os.LookupEnv("RISKBOT_ADDR"); ok && v != "" {
		c.Server.Addr = v
	}
	if v, ok := os.LookupEnv("RISKBOT_DATA_DIR"); ok && v != "" {
		c.Server.DataDir = v
	}
	if v, ok := os.LookupEnv("RISKBOT_DB_DIR"); ok && v != "" {
		c.RAG.DBPath = v
	}
	if v, ok := os.LookupEnv("OLLAMA_BASE_URL"); ok && v != "" {
		for _, l := range []*LLMConfig{&c.EmbedLLM, &c.ExtractLLM, &c.ChatLLM} {
			if l.Provider == ProviderOllama {
				l.BaseURL = v
			}
		}
	}
}

// applyDefaults fills zero values left behind by a partial yaml file.
func (c *Config) applyDefaults() {
	d := Default()
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if c.Server.DataDir == "" {
		c.Server.DataDir = d.Server.DataDir
	}
	if c.Server.BodyLimit == "" {
		c.Server.BodyLimit = d.Server.BodyLimit
	}
	if c.Server.ShutdownWait == 0 {
		c.Server.ShutdownWait = d.Server.ShutdownWait
	}
	if c.RAG.ChunkSize == 0 {
		c.RAG.ChunkSize = d.RAG.ChunkSize
		if c.RAG.ChunkOverlap == 0 {
			c.RAG.ChunkOverlap = d.RAG.ChunkOverlap
		}
	}
	if c.RAG.ContextBudget == 0 {
		c.RAG.ContextBudget = d.RAG.ContextBudget
	}
	if c.RAG.DBPath == "" {
		c.RAG.DBPath = d.RAG.DBPath
	}
	if c.RAG.CollectionName == "" {
		c.RAG.CollectionName = d.RAG.CollectionName
	}
	if c.Database.Driver == "" {
		c.Database.Driver = d.Database.Driver
	}
	if c.Database.DSN == "" && c.Database.Driver == "sqlite" {
		c.Database.DSN = d.Database.DSN
	}
	c.Database.Driver = strings.ToLower(c.Database.Driver)
}

// Validate reports configuration that would make the service unusable.
// A hosted model without a credential is one of them.
func (c *Config) Validate() error {
	if c.RAG.ChunkSize <= 0 {
		return fmt.Errorf("rag.chunk_size must be positive, got %d", c.RAG.ChunkSize)
	}
	if c.RAG.ChunkOverlap < 0 || c.RAG.ChunkOverlap >= c.RAG.ChunkSize {
		return fmt.Errorf("rag.chunk_overlap must be in [0, %d), got %d", c.RAG.ChunkSize, c.RAG.ChunkOverlap)
	}
	llms := []struct {
		name string
		cfg  LLMConfig
	}{{"embed_llm", c.EmbedLLM}, {"extract_llm", c.ExtractLLM}, {"chat_llm", c.ChatLLM}}
	for _, l := range llms {
		name := l.name
		switch l.cfg.Provider {
		case ProviderOllama:
		case ProviderOpenAI:
			if l.cfg.Key == "" {
				return fmt.Errorf("%s: missing API key (set GROQ_API_KEY or %s.key)", name, name)
			}
		default:
			return fmt.Errorf("%s: unknown provider %q", name, l.cfg.Provider)
		}
		if l.cfg.Model == "" {
			return fmt.Errorf("%s: model is required", name)
		}
	}
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("database.driver: unknown driver %q", c.Database.Driver)
	}
	if c.RAG.EncryptionKey != "" && len(c.RAG.EncryptionKey) != 32 {
		return fmt.Errorf("rag.encryption_key must be 32 bytes long")
	}
	return nil
}
