package pipeline

import (
	"context"

	"github.com/Namenomeaning/chemistry-chatbot/oracle"
	"github.com/Namenomeaning/chemistry-chatbot/types"
	"go.uber.org/zap"
)

// checkRelevance classifies the resolved query as in or out of the chemistry
// domain. Off-domain turns stop here: no lookup, no synthesis.
func (p *Pipeline) checkRelevance(ctx context.Context, turn *types.Turn) (bool, error) {
	hasImage := len(turn.RawImage) > 0
	query := turn.ResolvedQuery
	if query == imageOnlyPlaceholder && hasImage {
		query = ""
	}

	var result oracle.Relevance
	err := p.oracle.GenerateStructured(ctx, oracle.Request{
		Prompt:      relevancePrompt(query, hasImage),
		Image:       turn.RawImage,
		Temperature: 0.1,
		Model:       p.cfg.GeminiRelevanceModel,
	}, &result)
	if err != nil {
		return false, err
	}

	turn.DomainRelevant = result.DomainRelevant
	if !result.DomainRelevant {
		turn.RejectionReason = result.RejectionReason
		if turn.RejectionReason == "" {
			turn.RejectionReason = offDomainMessage
		}
		p.logger.Info("Query rejected as off-domain",
			zap.String("query", turn.ResolvedQuery),
			zap.String("reason", turn.RejectionReason))
	}
	return result.DomainRelevant, nil
}
