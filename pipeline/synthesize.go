package pipeline

import (
	"context"

	"github.com/Namenomeaning/chemistry-chatbot/oracle"
	"github.com/Namenomeaning/chemistry-chatbot/types"
	"go.uber.org/zap"
)

// synthesize produces the final answer from the retrieved records. The model
// picks at most one record to answer about and proposes media flags; the
// flags are then clamped so media is only ever attached from a record that
// was actually retrieved this turn and actually carries the asset.
func (p *Pipeline) synthesize(ctx context.Context, turn *types.Turn, history []types.Turn) error {
	records := make([]retrievedRecord, 0, len(turn.LookupResults))
	for _, res := range turn.LookupResults {
		rec, ok := p.catalog.ByID(res.RecordID)
		if !ok {
			p.logger.Warn("Lookup result missing from catalog", zap.String("record_id", res.RecordID))
			continue
		}
		records = append(records, retrievedRecord{Record: rec, Score: res.Score})
	}

	var prevQuestion, prevAnswer string
	if len(history) > 0 {
		prevQuestion, prevAnswer = historyDigest(history[len(history)-1], p.cfg.HistoryAnswerMaxChars)
	}

	var result oracle.Synthesis
	err := p.oracle.GenerateStructured(ctx, oracle.Request{
		Prompt:      synthesisPrompt(turn.ResolvedQuery, records, turn.ValidationHint, prevQuestion, prevAnswer),
		Temperature: 0.3,
	}, &result)
	if err != nil {
		return err
	}

	answer := types.FinalAnswer{
		Text:             result.Text,
		SelectedRecordID: result.SelectedRecordID,
	}

	if result.SelectedRecordID != "" {
		selected := false
		for _, rec := range records {
			if rec.Record.DocID != result.SelectedRecordID {
				continue
			}
			selected = true
			if result.AttachDiagram && rec.Record.HasDiagram() {
				answer.AttachDiagram = true
				answer.DiagramURL = rec.Record.ImageURL
			}
			if result.AttachPronunciation && rec.Record.HasPronunciation() {
				answer.AttachPronunciation = true
				answer.PronunciationURL = rec.Record.AudioURL
			}
			break
		}
		// The model may only select from what was retrieved this turn.
		if !selected {
			answer.SelectedRecordID = ""
		}
	}

	turn.Answer = answer
	p.logger.Info("Answer synthesized",
		zap.String("selected_record_id", answer.SelectedRecordID),
		zap.Bool("attach_diagram", answer.AttachDiagram),
		zap.Bool("attach_pronunciation", answer.AttachPronunciation))
	return nil
}
