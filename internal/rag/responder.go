package rag

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"

	"riskbot/internal/config"
	"riskbot/internal/llmservice"
	"riskbot/internal/metrics"
	"riskbot/internal/models"
)

// ErrNotFound means the document has nothing to answer from.
var ErrNotFound = errors.New("no document found")

// Source picks what an answer is grounded on.
type Source string

const (
	SourceContext  Source = "context"
	SourceFindings Source = "findings"
)

// ParseSource maps a request value to a Source. Empty means SourceContext.
func ParseSource(s string) (Source, error) {
	switch Source(strings.ToLower(strings.TrimSpace(s))) {
	case "", SourceContext:
		return SourceContext, nil
	case SourceFindings:
		return SourceFindings, nil
	default:
		return "", fmt.Errorf("unknown source %q", s)
	}
}

type AnswerStore interface {
	LoadContext(ctx context.Context, docID string) (string, error)
	LoadFindings(ctx context.Context, docID string) ([]models.Finding, bool, error)
}

// Responder answers questions about one document with the chat model.
type Responder struct {
	store       AnswerStore
	llm         llms.Model
	temperature float64
	timeout     time.Duration
}

func NewResponder(store AnswerStore, llm llms.Model, cfg *config.Config) *Responder {
	return &Responder{
		store:       store,
		llm:         llm,
		temperature: cfg.ChatLLM.Temperature,
		timeout:     cfg.Server.LLMTimeout,
	}
}

// Answer returns the model reply verbatim. ErrNotFound is returned when the
// selected source holds nothing for docID.
func (r *Responder) Answer(ctx context.Context, docID, question string, source Source) (string, error) {
	prompt, err := r.buildPrompt(ctx, docID, question, source)
	if err != nil {
		return "", err
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	answer, err := llmservice.GenerateContent(ctx, r.llm, models.ChatSystemPrompt, prompt, r.temperature)
	metrics.ObserveLLM(metrics.PurposeAnswer, start, err)
	if err != nil {
		return "", fmt.Errorf("chat model: %w", err)
	}
	log.Debug().Str("doc_id", docID).Str("source", string(source)).Msg("Answered question")
	return answer, nil
}

func (r *Responder) buildPrompt(ctx context.Context, docID, question string, source Source) (string, error) {
	switch source {
	case SourceFindings:
		findings, ok, err := r.store.LoadFindings(ctx, docID)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", ErrNotFound
		}
		payload, err := json.MarshalIndent(findings, "", "  ")
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(models.FindingsChatPromptTemplate, payload, question), nil
	default:
		text, err := r.store.LoadContext(ctx, docID)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(text) == "" {
			return "", ErrNotFound
		}
		return fmt.Sprintf(models.ContextChatPromptTemplate, text, question), nil
	}
}
