package rag

import (
	"encoding/json"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"riskbot/internal/models"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ParseFindings pulls a findings array out of a model reply. The whole reply
// is tried first, then the text between the first '[' and the last ']'.
// Elements that do not match the finding schema are dropped. The result is
// never nil.
func ParseFindings(raw string) []models.Finding {
	items, ok := decodeArray(strings.TrimSpace(raw))
	if !ok {
		start := strings.Index(raw, "[")
		end := strings.LastIndex(raw, "]")
		if start != -1 && end > start {
			items, ok = decodeArray(raw[start : end+1])
		}
	}
	if !ok {
		log.Warn().Msg("No JSON array in model output")
		return []models.Finding{}
	}

	findings := make([]models.Finding, 0, len(items))
	for i, item := range items {
		var f models.Finding
		if err := json.Unmarshal(item, &f); err != nil {
			log.Debug().Err(err).Int("item", i).Msg("Dropping undecodable finding")
			continue
		}
		f.Normalize()
		if err := validate.Struct(f); err != nil {
			log.Debug().Err(err).Int("item", i).Msg("Dropping invalid finding")
			continue
		}
		findings = append(findings, f)
	}
	return findings
}

func decodeArray(s string) ([]json.RawMessage, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		return nil, false
	}
	return items, true
}
