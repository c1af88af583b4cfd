package types

import (
	"time"

	"github.com/google/uuid"
)

// Turn is one resolved user request and its final answer within a
// conversation thread. A Turn is fully populated by a single pipeline run and
// appended to its thread afterwards; it is never mutated once stored.
type Turn struct {
	ID              uuid.UUID      `json:"id"`
	RawText         string         `json:"raw_text,omitempty"`
	RawImage        []byte         `json:"raw_image,omitempty"`
	ResolvedQuery   string         `json:"resolved_query"`
	DomainRelevant  bool           `json:"is_domain_relevant"`
	RejectionReason string         `json:"rejection_reason,omitempty"`
	LookupKey       string         `json:"lookup_key,omitempty"`
	NeedsLookup     bool           `json:"needs_lookup"`
	KeyValid        bool           `json:"is_key_valid"`
	ValidationHint  string         `json:"validation_hint,omitempty"`
	LookupResults   []LookupResult `json:"lookup_results,omitempty"`
	Answer          FinalAnswer    `json:"final_answer"`
	CreatedAt       time.Time      `json:"created_at"`
}

// LookupResult is one catalog record surfaced by a lookup, ordered by
// descending relevance score.
type LookupResult struct {
	RecordID    string  `json:"record_id"`
	DisplayName string  `json:"display_name"`
	Formula     string  `json:"formula"`
	Category    string  `json:"category"`
	Score       float64 `json:"relevance_score"`
	DiagramURL  string  `json:"diagram_url,omitempty"`
	AudioURL    string  `json:"audio_url,omitempty"`
}

// HasDiagram reports whether the result exposes a structural diagram.
func (r LookupResult) HasDiagram() bool { return r.DiagramURL != "" }

// HasPronunciation reports whether the result exposes pronunciation audio.
func (r LookupResult) HasPronunciation() bool { return r.AudioURL != "" }

// FinalAnswer is the terminal output of a pipeline run.
//
// Invariant: AttachDiagram/AttachPronunciation are true only when
// SelectedRecordID is set and the referenced record exposes that media kind;
// the synthesis stage clamps them before the answer leaves the pipeline.
type FinalAnswer struct {
	Text                string `json:"text"`
	SelectedRecordID    string `json:"selected_record_id,omitempty"`
	AttachDiagram       bool   `json:"attach_diagram"`
	AttachPronunciation bool   `json:"attach_pronunciation"`
	DiagramURL          string `json:"diagram_url,omitempty"`
	PronunciationURL    string `json:"pronunciation_url,omitempty"`
}
