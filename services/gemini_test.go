package services

import "testing"

func TestIsAcademicPrompt(t *testing.T) {
	academic := []string{
		"Giải thích định lý Pythagoras",
		"How do I solve this algorithm problem?",
		"Tóm tắt chương 3 môn Cấu trúc dữ liệu",
		"What is the syllabus for semester 3?",
	}
	for _, p := range academic {
		if !IsAcademicPrompt(p) {
			t.Fatalf("expected academic: %q", p)
		}
	}

	offTopic := []string{
		"Tell me a joke about cats",
		"Kết quả trận bóng tối qua",
		"best pizza in town",
	}
	for _, p := range offTopic {
		if IsAcademicPrompt(p) {
			t.Fatalf("expected off-topic: %q", p)
		}
	}
}
