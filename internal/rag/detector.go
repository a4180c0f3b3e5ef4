package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"

	"riskbot/internal/config"
	"riskbot/internal/helper"
	"riskbot/internal/llmservice"
	"riskbot/internal/metrics"
	"riskbot/internal/models"
)

// FindingStore is the part of the index the detector reads from and writes to.
type FindingStore interface {
	LoadContext(ctx context.Context, docID string) (string, error)
	PutFindings(ctx context.Context, docID string, findings []models.Finding) error
}

// Detector asks the extraction model to tag HRCI and NPPI spans.
type Detector struct {
	store       FindingStore
	llm         llms.Model
	temperature float64
	budget      int
	timeout     time.Duration
}

func NewDetector(store FindingStore, llm llms.Model, cfg *config.Config) *Detector {
	return &Detector{
		store:       store,
		llm:         llm,
		temperature: cfg.ExtractLLM.Temperature,
		budget:      cfg.RAG.ContextBudget,
		timeout:     cfg.Server.LLMTimeout,
	}
}

// Detect runs extraction over the stored text of docID and saves the result.
// Failures are logged and yield an empty list; a failed save still returns
// what was parsed.
func (d *Detector) Detect(ctx context.Context, docID string) []models.Finding {
	text, err := d.store.LoadContext(ctx, docID)
	if err != nil {
		log.Error().Err(err).Str("doc_id", docID).Msg("Failed to load document context")
		return []models.Finding{}
	}
	if strings.TrimSpace(text) == "" {
		log.Info().Str("doc_id", docID).Msg("No text found for document")
		return []models.Finding{}
	}

	findings, err := d.extract(ctx, helper.Truncate(text, d.budget))
	if err != nil {
		log.Error().Err(err).Str("doc_id", docID).Msg("Extraction model call failed")
		return []models.Finding{}
	}

	if err := d.store.PutFindings(ctx, docID, findings); err != nil {
		log.Error().Err(err).Str("doc_id", docID).Msg("Failed to store findings")
	}
	for _, f := range findings {
		metrics.Findings.WithLabelValues(string(f.Type)).Inc()
	}
	log.Info().Str("doc_id", docID).Int("findings", len(findings)).Msg("Detection finished")
	return findings
}

// DetectText runs extraction over arbitrary text without touching the store.
func (d *Detector) DetectText(ctx context.Context, text string) []models.Finding {
	text = strings.TrimSpace(text)
	if text == "" {
		return []models.Finding{}
	}
	findings, err := d.extract(ctx, helper.Truncate(text, d.budget))
	if err != nil {
		log.Error().Err(err).Msg("Extraction model call failed")
		return []models.Finding{}
	}
	return findings
}

func (d *Detector) extract(ctx context.Context, text string) ([]models.Finding, error) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := llmservice.GenerateContent(ctx, d.llm,
		models.DetectSystemPrompt,
		fmt.Sprintf(models.DetectPromptTemplate, text),
		d.temperature,
	)
	metrics.ObserveLLM(metrics.PurposeDetect, start, err)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("raw", raw).Msg("Extraction model output")
	return ParseFindings(raw), nil
}
