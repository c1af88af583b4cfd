package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/Namenomeaning/chemistry-chatbot/catalog"
	"github.com/Namenomeaning/chemistry-chatbot/config"
	"github.com/Namenomeaning/chemistry-chatbot/conversation"
	apperrors "github.com/Namenomeaning/chemistry-chatbot/errors"
	"github.com/Namenomeaning/chemistry-chatbot/lookup"
	"github.com/Namenomeaning/chemistry-chatbot/oracle"
	"github.com/Namenomeaning/chemistry-chatbot/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Terminal answers for turns the pipeline could not complete normally.
const (
	timeoutMessage    = "Timeout - vui lòng thử lại"
	oracleDownMessage = "Xin lỗi, hệ thống đang gặp sự cố. Vui lòng thử lại sau."
	offDomainMessage  = "Xin lỗi, mình chỉ hỗ trợ các câu hỏi về Hóa học."
	invalidKeyMessage = "Tên hoặc công thức hóa học không hợp lệ. Vui lòng kiểm tra lại."
)

// HybridLookup fuses dense and sparse rankings over the catalog.
type HybridLookup interface {
	Lookup(ctx context.Context, key string, limit int, threshold float64) ([]types.LookupResult, error)
}

// LexicalLookup matches formulas exactly and names fuzzily.
type LexicalLookup interface {
	Lookup(key string) []types.LookupResult
}

// Pipeline sequences a user turn through query resolution, the relevance
// gate, normalization and routing, catalog lookup, and answer synthesis.
// Threads are isolated: a turn only ever sees history from its own thread.
type Pipeline struct {
	oracle  oracle.Client
	store   conversation.Store
	hybrid  HybridLookup
	lexical LexicalLookup
	catalog *catalog.Catalog
	cfg     *config.Config
	logger  *zap.Logger
}

func New(client oracle.Client, store conversation.Store, hybrid HybridLookup, lexical LexicalLookup, cat *catalog.Catalog, cfg *config.Config, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		oracle:  client,
		store:   store,
		hybrid:  hybrid,
		lexical: lexical,
		catalog: cat,
		cfg:     cfg,
		logger:  logger,
	}
}

// Run processes one user turn for the given thread and returns the final
// answer. The turn is appended to the thread's history only when a final
// answer was produced; a timeout or an exhausted model leaves history
// untouched so the user can simply retry.
//
// Errors are returned only for an empty invocation and for conversation
// storage failures. Everything else, rejections and validation failures
// included, is a normal answer.
func (p *Pipeline) Run(ctx context.Context, threadID, text string, image []byte) (types.FinalAnswer, error) {
	if text == "" && len(image) == 0 {
		return types.FinalAnswer{}, apperrors.WrapError(apperrors.ErrInvalidInput, "text or image required")
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.PipelineTimeout)
	defer cancel()

	turn := types.Turn{
		ID:        uuid.New(),
		RawText:   text,
		RawImage:  image,
		CreatedAt: time.Now().UTC(),
	}

	history, err := p.store.GetRecent(ctx, threadID, 1)
	if err != nil {
		return types.FinalAnswer{}, apperrors.WrapError(err, "load conversation history")
	}

	if err := p.resolve(ctx, &turn, history); err != nil {
		return p.terminal(err), nil
	}

	relevant, err := p.checkRelevance(ctx, &turn)
	if err != nil {
		return p.terminal(err), nil
	}
	if !relevant {
		turn.Answer = types.FinalAnswer{Text: turn.RejectionReason}
		return p.finish(ctx, threadID, turn)
	}

	if err := p.normalize(ctx, &turn); err != nil {
		return p.terminal(err), nil
	}

	// An invalid key is not fatal: synthesis still runs, with no retrieved
	// records, and turns the validation hint into a corrective answer.
	if turn.NeedsLookup && turn.KeyValid {
		turn.LookupResults = p.retrieve(ctx, turn.LookupKey)
	}

	if err := p.synthesize(ctx, &turn, history); err != nil {
		return p.terminal(err), nil
	}
	return p.finish(ctx, threadID, turn)
}

// retrieve routes the lookup key to the matching searcher. Formula keys take
// the exact lexical path so that near-identical formulas never cross-match;
// name keys take the hybrid path, falling back to lexical fuzzy matching when
// the hybrid backends fail.
func (p *Pipeline) retrieve(ctx context.Context, key string) []types.LookupResult {
	if lookup.IsFormulaQuery(key) {
		return p.lexical.Lookup(key)
	}

	results, err := p.hybrid.Lookup(ctx, key, p.cfg.RAGTopK, p.cfg.RAGScoreThreshold)
	if err != nil {
		p.logger.Warn("Hybrid lookup failed, falling back to lexical",
			zap.String("key", key), zap.Error(err))
		return p.lexical.Lookup(key)
	}
	return results
}

// finish appends the completed turn and returns its answer. A history append
// failure surfaces as a storage error even though the answer was produced:
// a thread with silently missing turns would corrupt follow-up resolution.
func (p *Pipeline) finish(ctx context.Context, threadID string, turn types.Turn) (types.FinalAnswer, error) {
	if err := p.store.Append(ctx, threadID, turn); err != nil {
		return types.FinalAnswer{}, apperrors.WrapError(err, "append turn")
	}
	return turn.Answer, nil
}

// terminal maps a model-stage failure to a retry-style answer. These turns
// are not recorded: the thread history keeps only turns that were answered.
func (p *Pipeline) terminal(err error) types.FinalAnswer {
	if errors.Is(err, context.DeadlineExceeded) {
		p.logger.Warn("Pipeline timed out", zap.Error(err))
		return types.FinalAnswer{Text: timeoutMessage}
	}
	p.logger.Error("Model stage failed", zap.Error(err))
	return types.FinalAnswer{Text: oracleDownMessage}
}
