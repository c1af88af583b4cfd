// Package oracle adapts an external structured-text-generation capability to
// the pipeline: prompt (and optional image) in, typed fields out. The pipeline
// depends only on the Client interface so tests can inject fakes.
package oracle

import (
	"context"
	"errors"
	"fmt"
)

// Request describes one structured-generation call.
type Request struct {
	Prompt      string
	Image       []byte // optional PNG bytes for multimodal prompts
	Temperature float64
	Model       string // optional per-call model override
}

// Client is the language oracle contract. out must be a pointer to one of
// Resolution, Relevance, Routing, or Synthesis; the adapter enforces the
// matching response schema and decodes the model's JSON into it.
type Client interface {
	GenerateStructured(ctx context.Context, req Request, out any) error
}

// Resolution rewrites a follow-up question into a standalone query.
type Resolution struct {
	ResolvedQuery string `json:"resolved_query"`
}

// Relevance classifies whether a query is within the supported domain.
type Relevance struct {
	DomainRelevant  bool   `json:"is_domain_relevant"`
	RejectionReason string `json:"rejection_reason"`
}

// Routing carries the normalization decision: canonical lookup key, whether a
// catalog lookup is needed at all, and key validity.
type Routing struct {
	LookupKey      string `json:"lookup_key"`
	NeedsLookup    bool   `json:"needs_lookup"`
	KeyValid       bool   `json:"is_key_valid"`
	ValidationHint string `json:"validation_hint"`
}

// Synthesis is the final-answer decision: answer text, at most one selected
// catalog record, and requested media kinds. The synthesis stage clamps the
// attach flags against the selected record before trusting them.
type Synthesis struct {
	Text                string `json:"final_text"`
	SelectedRecordID    string `json:"selected_record_id"`
	AttachDiagram       bool   `json:"attach_diagram"`
	AttachPronunciation bool   `json:"attach_pronunciation"`
}

// Error is the oracle failure surface. Transient errors (overload, rate
// limit) are retried by the adapter itself; the bit is exposed so callers can
// distinguish exhausted retries from permanent failures.
type Error struct {
	Transient bool
	Status    int
	Message   string
}

func (e *Error) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	if e.Status != 0 {
		return fmt.Sprintf("oracle error (%s, status %d): %s", kind, e.Status, e.Message)
	}
	return fmt.Sprintf("oracle error (%s): %s", kind, e.Message)
}

// IsTransient reports whether err is a transient oracle error.
func IsTransient(err error) bool {
	var oerr *Error
	return errors.As(err, &oerr) && oerr.Transient
}
