package utils

import "testing"

func TestValidateUploadExtensions(t *testing.T) {
	if err := ValidateUpload(CategoryNotes, "bai-giang.pdf", 1*mb); err != nil {
		t.Fatalf("pdf note should pass: %v", err)
	}
	if err := ValidateUpload(CategoryNotes, "virus.exe", 1*mb); err == nil {
		t.Fatalf("exe must be rejected")
	}
	if err := ValidateUpload(CategoryVideos, "lecture.mp4", 100*mb); err != nil {
		t.Fatalf("mp4 video should pass: %v", err)
	}
	if err := ValidateUpload(CategoryVideos, "lecture.pdf", 1*mb); err == nil {
		t.Fatalf("pdf is not a video")
	}
	if err := ValidateUpload(CategoryNotes, "BaiGiang.PDF", 1*mb); err != nil {
		t.Fatalf("extension check must be case-insensitive: %v", err)
	}
}

func TestValidateUploadSizeCeilings(t *testing.T) {
	cases := []struct {
		category FileCategory
		filename string
		size     int64
		ok       bool
	}{
		{CategoryNotes, "a.pdf", 20 * mb, true},
		{CategoryNotes, "a.pdf", 21 * mb, false},
		{CategorySyllabus, "a.docx", 20 * mb, true},
		{CategoryPYQs, "a.pdf", 25 * mb, false},
		{CategoryVideos, "a.mp4", 200 * mb, true},
		{CategoryVideos, "a.mp4", 201 * mb, false},
		{CategoryMisc, "a.png", 5 * mb, true},
		{CategoryMisc, "a.png", 6 * mb, false},
	}
	for _, tc := range cases {
		err := ValidateUpload(tc.category, tc.filename, tc.size)
		if tc.ok && err != nil {
			t.Fatalf("%s %s %d should pass: %v", tc.category, tc.filename, tc.size, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%s %s %d should be rejected", tc.category, tc.filename, tc.size)
		}
	}
}

func TestValidateUploadUnknownCategory(t *testing.T) {
	if err := ValidateUpload(FileCategory("music"), "a.mp3", 1*mb); err == nil {
		t.Fatalf("unknown category must error")
	}
}
