package pipeline

import (
	"fmt"
	"strings"

	"github.com/Namenomeaning/chemistry-chatbot/catalog"
	"github.com/Namenomeaning/chemistry-chatbot/types"
)

// imageOnlyPlaceholder stands in for the user text when a turn carries only
// an image. Downstream prompts key off it to pick the vision variant.
const imageOnlyPlaceholder = "(hình ảnh)"

func resolvePrompt(current, prevQuestion, prevAnswer string) string {
	if current == "" {
		current = imageOnlyPlaceholder
	}
	return fmt.Sprintf(`Bạn là chuyên gia xử lý ngữ cảnh hội thoại.

Hãy chuyển câu hỏi thành dạng độc lập bằng cách thay đại từ với tên cụ thể từ lịch sử.

Input:
- Hiện tại: %s
- Trước: Q: %s | A: %s

Output:
- resolved_query: Câu hỏi độc lập (thay đại từ nếu có, giữ nguyên nếu đã rõ)
`, current, prevQuestion, prevAnswer)
}

func relevancePrompt(query string, hasImage bool) string {
	switch {
	case hasImage && query == "":
		return `Bạn là chuyên gia phân loại nội dung Hóa học.

Hãy kiểm tra hình có liên quan Hóa học lớp 11 không.

Input: Hình ảnh

Output:
- is_domain_relevant: true nếu là cấu trúc phân tử/công thức/phản ứng/thiết bị, false nếu không
- rejection_reason: Thông báo nếu false, null nếu true
`
	case hasImage:
		return fmt.Sprintf(`Bạn là chuyên gia phân loại nội dung Hóa học.

Hãy kiểm tra câu hỏi + hình có liên quan Hóa học lớp 11 không.

Input: %s (kèm hình)

Output:
- is_domain_relevant: true nếu về hợp chất/phản ứng/công thức/tính chất, false nếu không
- rejection_reason: Thông báo nếu false, null nếu true
`, query)
	default:
		return fmt.Sprintf(`Bạn là chuyên gia phân loại nội dung Hóa học.

Hãy kiểm tra câu hỏi có liên quan Hóa học lớp 11 không.

Input: %s

Câu hỏi liên quan Hóa học bao gồm:
- Nguyên tố/hợp chất (tên, ký hiệu, công thức)
- Phát âm tên Hóa học (VD: "cách phát âm của sắt", "sodium đọc như thế nào")
- Tính chất, phản ứng, ứng dụng
- Công thức cấu tạo, phân tử
- Bất kỳ câu hỏi nào về chất Hóa học

Output:
- is_domain_relevant: true nếu liên quan Hóa học, false nếu không
- rejection_reason: Thông báo nếu false, null nếu true
`, query)
	}
}

func routingPrompt(query string, imageOnly bool) string {
	if imageOnly {
		return `Bạn là chuyên gia nhận dạng cấu trúc phân tử.

Hãy phân tích hình cấu trúc phân tử, nhận dạng hợp chất, mở rộng search keywords.

Input: Hình cấu trúc phân tử

Output:
- lookup_key: Tên IUPAC + tên EN/VI + công thức (mở rộng từ hình)
- needs_lookup: luôn true khi nhận dạng từ hình
- is_key_valid: true nếu nhận dạng được, false nếu không
- validation_hint: null hoặc lỗi nếu không nhận dạng được
`
	}
	return fmt.Sprintf(`Bạn là chuyên gia danh pháp hóa học.

Hãy mở rộng query với keywords và kiểm tra tên/công thức IUPAC.

Input: %s

Output:
- lookup_key: Tên EN + VI + công thức (mở rộng)
- needs_lookup: true nếu hỏi về hợp chất cụ thể (cần tra cứu hình/phát âm/chi tiết), false nếu là kiến thức tổng quát
- is_key_valid: true nếu IUPAC đúng, false nếu sai
- validation_hint: Gợi ý sửa nếu sai, null nếu đúng
`, query)
}

func synthesisPrompt(query string, records []retrievedRecord, validationHint, prevQuestion, prevAnswer string) string {
	var sb strings.Builder
	for i, rec := range records {
		fmt.Fprintf(&sb, "\nTài liệu %d (doc_id: '%s', điểm: %.3f):\n", i+1, rec.Record.DocID, rec.Score)
		fmt.Fprintf(&sb, "- Tên: %s\n", orNA(rec.Record.IUPACName))
		fmt.Fprintf(&sb, "- Tên thông thường: %s\n", strings.Join(rec.Record.CommonNames, ", "))
		fmt.Fprintf(&sb, "- Công thức: %s\n", orNA(rec.Record.Formula))
		fmt.Fprintf(&sb, "- Phân loại: %s\n", orNA(rec.Record.Class))
		fmt.Fprintf(&sb, "- Thông tin: %s\n", orNA(rec.Record.Info))
		fmt.Fprintf(&sb, "- Quy tắc đặt tên: %s\n", orNA(rec.Record.NamingRule))
	}
	context := sb.String()
	if context == "" {
		context = "- KHÔNG có dữ liệu"
	}

	var notes strings.Builder
	if validationHint != "" {
		fmt.Fprintf(&notes, "- Lưu ý: tên/công thức trong câu hỏi chưa hợp lệ. Gợi ý sửa: %s\n", validationHint)
	}
	if prevQuestion != "" || prevAnswer != "" {
		fmt.Fprintf(&notes, "- Lượt trước: Q: %s | A: %s (tránh lặp lại, chỉ bổ sung thông tin mới)\n", prevQuestion, prevAnswer)
	}

	return fmt.Sprintf(`Bạn là trợ lý Hóa học lớp 11.

Hãy trả lời câu hỏi dựa trên tài liệu từ CSDL.

Input:
- Câu hỏi: %s
%s%s

Output:
- final_text: Trả lời chi tiết (markdown) nếu có tài liệu khớp, "Xin lỗi, không tìm thấy thông tin trong CSDL." nếu không
- selected_record_id: doc_id của tài liệu khớp (null nếu không khớp/không có)
- attach_diagram: true nếu hỏi công thức/cấu trúc/tổng quan/thông tin chung về hợp chất, false chỉ khi hỏi câu hỏi cụ thể không cần hình (VD: "tên là gì?", "ứng dụng gì?")
- attach_pronunciation: true nếu hỏi phát âm/tên/tổng quan/thông tin chung về hợp chất, false chỉ khi hỏi câu hỏi cụ thể không liên quan phát âm
`, query, notes.String(), context)
}

// retrievedRecord pairs a catalog record with its retrieval score for the
// synthesis context.
type retrievedRecord struct {
	Record catalog.Record
	Score  float64
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// historyDigest compresses a prior turn into the Q/A pair fed to resolution.
// Answers are truncated so a verbose prior answer cannot crowd the prompt.
func historyDigest(turn types.Turn, maxAnswerChars int) (question, answer string) {
	question = turn.RawText
	if question == "" {
		question = imageOnlyPlaceholder
	}
	answer = turn.Answer.Text
	if maxAnswerChars > 0 {
		runes := []rune(answer)
		if len(runes) > maxAnswerChars {
			answer = string(runes[:maxAnswerChars]) + "..."
		}
	}
	return question, answer
}
