package pipeline

import (
	"context"

	"github.com/Namenomeaning/chemistry-chatbot/oracle"
	"github.com/Namenomeaning/chemistry-chatbot/types"
	"go.uber.org/zap"
)

// normalize expands the resolved query into a canonical lookup key, validates
// the chemical name or formula, and decides whether a catalog lookup is
// needed at all. General-knowledge questions skip retrieval.
func (p *Pipeline) normalize(ctx context.Context, turn *types.Turn) error {
	hasImage := len(turn.RawImage) > 0
	imageOnly := hasImage && (turn.RawText == "" || turn.ResolvedQuery == imageOnlyPlaceholder)

	var result oracle.Routing
	err := p.oracle.GenerateStructured(ctx, oracle.Request{
		Prompt:      routingPrompt(turn.ResolvedQuery, imageOnly),
		Image:       turn.RawImage,
		Temperature: 0.1,
	}, &result)
	if err != nil {
		return err
	}

	turn.LookupKey = result.LookupKey
	turn.NeedsLookup = result.NeedsLookup
	turn.KeyValid = result.KeyValid
	if !result.KeyValid {
		turn.ValidationHint = result.ValidationHint
		if turn.ValidationHint == "" {
			turn.ValidationHint = invalidKeyMessage
		}
	}
	// A compound identified from an image always needs the catalog for its
	// diagram and pronunciation media.
	if imageOnly {
		turn.NeedsLookup = true
	}
	// No lookup means there is no key to validate.
	if !turn.NeedsLookup {
		turn.LookupKey = ""
		turn.KeyValid = true
		turn.ValidationHint = ""
	}

	p.logger.Info("Normalization & routing",
		zap.String("lookup_key", turn.LookupKey),
		zap.Bool("needs_lookup", turn.NeedsLookup),
		zap.Bool("key_valid", turn.KeyValid))
	return nil
}
