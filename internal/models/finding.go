package models

import "strings"

// FindingType tags a span as HR-confidential or personal-financial.
type FindingType string

const (
	FindingHRCI FindingType = "HRCI"
	FindingNPPI FindingType = "NPPI"
)

// Finding is a single span the model tagged as HRCI or NPPI. Nothing checks
// that TextSnippet actually occurs in the source document.
type Finding struct {
	Type        FindingType `json:"type" validate:"required,oneof=HRCI NPPI"`
	TextSnippet string      `json:"text_snippet" validate:"required"`
	Category    string      `json:"category"`
	Confidence  float64     `json:"confidence" validate:"gte=0,lte=1"`
}

// Normalize trims the free-text fields and upper-cases the type so that
// "hrci" from a sloppy model still validates.
func (f *Finding) Normalize() {
	f.Type = FindingType(strings.ToUpper(strings.TrimSpace(string(f.Type))))
	f.TextSnippet = strings.TrimSpace(f.TextSnippet)
	f.Category = strings.TrimSpace(f.Category)
}
