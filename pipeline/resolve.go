package pipeline

import (
	"context"

	"github.com/Namenomeaning/chemistry-chatbot/oracle"
	"github.com/Namenomeaning/chemistry-chatbot/types"
	"go.uber.org/zap"
)

// resolve rewrites a follow-up into a standalone query by substituting
// pronouns with names from the previous turn. The first turn of a thread has
// no context to draw on, so the raw text passes through unchanged.
func (p *Pipeline) resolve(ctx context.Context, turn *types.Turn, history []types.Turn) error {
	if len(history) == 0 {
		turn.ResolvedQuery = turn.RawText
		if turn.ResolvedQuery == "" {
			turn.ResolvedQuery = imageOnlyPlaceholder
		}
		p.logger.Info("Query resolution (first turn)", zap.String("query", turn.ResolvedQuery))
		return nil
	}

	prev := history[len(history)-1]
	prevQuestion, prevAnswer := historyDigest(prev, p.cfg.HistoryAnswerMaxChars)

	var result oracle.Resolution
	err := p.oracle.GenerateStructured(ctx, oracle.Request{
		Prompt:      resolvePrompt(turn.RawText, prevQuestion, prevAnswer),
		Image:       turn.RawImage,
		Temperature: 0.1,
	}, &result)
	if err != nil {
		return err
	}

	turn.ResolvedQuery = result.ResolvedQuery
	if turn.ResolvedQuery == "" {
		turn.ResolvedQuery = turn.RawText
	}
	if turn.ResolvedQuery == "" {
		// Image-only follow-up with nothing usable from the model.
		turn.ResolvedQuery = imageOnlyPlaceholder
	}
	p.logger.Info("Query resolution (follow-up)",
		zap.String("original", turn.RawText),
		zap.String("resolved", turn.ResolvedQuery))
	return nil
}
