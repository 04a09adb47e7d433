package services

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// FallbackAnswer trả về khi mọi backend AI đều lỗi
const FallbackAnswer = "Xin lỗi, trợ lý học tập đang quá tải. Bạn vui lòng thử lại sau ít phút nhé."

// Các model thử lần lượt theo thứ tự ưu tiên, dùng kết quả đầu tiên thành công
var geminiModels = []string{"gemini-2.0-flash", "gemini-1.5-flash", "gemini-1.5-pro"}

// Danh sách từ khóa học thuật: câu hỏi phải chứa ít nhất một từ
// mới được gửi đến AI (chặn chủ đề ngoài phạm vi học tập).
var academicKeywords = []string{
	"học", "bài", "môn", "đề", "thi", "điểm", "công thức", "định lý", "giải",
	"chương", "toán", "lý", "hóa", "sinh", "anh văn", "lập trình", "thuật toán",
	"study", "exam", "subject", "syllabus", "semester", "assignment", "lecture",
	"math", "physics", "chemistry", "algorithm", "program", "engineering",
	"theorem", "formula", "homework", "notes", "question", "solve", "explain",
	"definition", "concept", "chapter", "course", "degree", "university", "college",
}

// IsAcademicPrompt kiểm tra câu hỏi có thuộc phạm vi học tập không
func IsAcademicPrompt(prompt string) bool {
	lower := strings.ToLower(prompt)
	for _, kw := range academicKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// GeminiGenerateText gọi lần lượt các model theo thứ tự ưu tiên,
// trả kết quả đầu tiên thành công; mọi model đều lỗi thì trả FallbackAnswer.
func GeminiGenerateText(ctx context.Context, prompt string) string {
	client, err := genai.NewClient(ctx, option.WithAPIKey(os.Getenv("GEMINI_API_KEY")))
	if err != nil {
		return FallbackAnswer
	}
	defer client.Close()

	for _, name := range geminiModels {
		model := client.GenerativeModel(name)
		resp, err := model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			continue
		}
		if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
			continue
		}
		return fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])
	}
	return FallbackAnswer
}
