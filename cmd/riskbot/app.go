package main

import (
	"context"

	"github.com/rs/zerolog/log"

	"riskbot/internal/chromemdb"
	"riskbot/internal/db"
	"riskbot/internal/embedding"
	"riskbot/internal/index"
	"riskbot/internal/ingest"
	"riskbot/internal/llmservice"
	"riskbot/internal/rag"
)

type app struct {
	store     *index.Store
	detector  *rag.Detector
	responder *rag.Responder
	pipeline  *ingest.Pipeline
}

// mustBuildApp wires every component from cfg. Configuration and storage
// problems are fatal.
func mustBuildApp(ctx context.Context) *app {
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	log.Debug().Str("chat_model", cfg.ChatLLM.Model).Str("extract_model", cfg.ExtractLLM.Model).
		Str("embed_model", cfg.EmbedLLM.Model).Msg("Loaded config")

	embedder, err := embedding.NewEmbedder(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	vectors, err := chromemdb.NewVectorDBManager(&cfg.RAG, embedder.EmbedQuery)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating vector database manager")
	}
	registry, err := db.OpenRegistry(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Error opening document registry")
	}
	store := index.NewStore(vectors, registry, embedder)
	if err := store.Open(ctx); err != nil {
		log.Fatal().Err(err).Msg("Error opening vector collection")
	}

	extractLLM, err := llmservice.NewModel(&cfg.ExtractLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing extraction model")
	}
	chatLLM, err := llmservice.NewModel(&cfg.ChatLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing chat model")
	}

	detector := rag.NewDetector(store, extractLLM, cfg)
	return &app{
		store:     store,
		detector:  detector,
		responder: rag.NewResponder(store, chatLLM, cfg),
		pipeline:  ingest.NewPipeline(cfg, store, detector),
	}
}

func (a *app) close(ctx context.Context) {
	if err := a.store.Close(ctx); err != nil {
		log.Error().Err(err).Msg("Error closing store")
	}
}
