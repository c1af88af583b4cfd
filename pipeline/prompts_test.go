package pipeline

import (
	"strings"
	"testing"

	"github.com/Namenomeaning/chemistry-chatbot/types"
)

func TestHistoryDigestTruncatesLongAnswers(t *testing.T) {
	turn := types.Turn{
		RawText: "Ethanol là gì?",
		Answer:  types.FinalAnswer{Text: strings.Repeat("rất dài ", 200)},
	}

	question, answer := historyDigest(turn, 400)
	if question != "Ethanol là gì?" {
		t.Errorf("question = %q", question)
	}
	if got := len([]rune(answer)); got > 403 {
		t.Errorf("digest answer is %d runes, want at most 400 plus ellipsis", got)
	}
	if !strings.HasSuffix(answer, "...") {
		t.Error("truncated answer missing ellipsis")
	}
}

func TestHistoryDigestImageOnlyTurn(t *testing.T) {
	turn := types.Turn{
		RawImage: []byte{0x89},
		Answer:   types.FinalAnswer{Text: "Đây là ethanol."},
	}

	question, answer := historyDigest(turn, 400)
	if question != imageOnlyPlaceholder {
		t.Errorf("question = %q, want placeholder", question)
	}
	if answer != "Đây là ethanol." {
		t.Errorf("answer = %q", answer)
	}
}

func TestSynthesisPromptWithoutRecords(t *testing.T) {
	prompt := synthesisPrompt("Liên kết ion là gì?", nil, "", "", "")
	if !strings.Contains(prompt, "KHÔNG có dữ liệu") {
		t.Error("empty retrieval context not marked in prompt")
	}
}

func TestSynthesisPromptCarriesHintAndHistory(t *testing.T) {
	prompt := synthesisPrompt("C2H5OX là gì?", nil,
		"Có phải bạn muốn hỏi C2H5OH?", "Ethanol là gì?", "Ethanol là một alcohol.")
	if !strings.Contains(prompt, "Có phải bạn muốn hỏi C2H5OH?") {
		t.Error("validation hint missing from prompt")
	}
	if !strings.Contains(prompt, "Ethanol là gì?") {
		t.Error("prior question missing from prompt")
	}
}
