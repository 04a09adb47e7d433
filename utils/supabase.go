package utils

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	storage "github.com/supabase-community/storage-go"
)

// Category lưu trữ quyết định thư mục, đuôi file cho phép và giới hạn dung lượng
type FileCategory string

const (
	CategoryNotes    FileCategory = "notes"
	CategorySyllabus FileCategory = "syllabus"
	CategoryVideos   FileCategory = "videos"
	CategoryPYQs     FileCategory = "pyqs"
	CategoryMisc     FileCategory = "misc"
)

type categoryRule struct {
	exts    []string
	maxSize int64
}

const mb = int64(1 << 20)

var docExts = []string{".pdf", ".doc", ".docx", ".ppt", ".pptx", ".txt"}

var categoryRules = map[FileCategory]categoryRule{
	CategoryNotes:    {exts: docExts, maxSize: 20 * mb},
	CategorySyllabus: {exts: docExts, maxSize: 20 * mb},
	CategoryPYQs:     {exts: docExts, maxSize: 20 * mb},
	CategoryVideos:   {exts: []string{".mp4", ".mkv", ".webm", ".mov"}, maxSize: 200 * mb},
	CategoryMisc:     {exts: []string{".pdf", ".jpg", ".jpeg", ".png", ".txt"}, maxSize: 5 * mb},
}

// ValidateUpload kiểm tra đuôi file và dung lượng theo category trước khi upload
func ValidateUpload(category FileCategory, filename string, size int64) error {
	rule, ok := categoryRules[category]
	if !ok {
		return fmt.Errorf("category không hợp lệ: %s", category)
	}
	ext := strings.ToLower(filepath.Ext(filename))
	allowed := false
	for _, e := range rule.exts {
		if ext == e {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("định dạng %s không được phép cho %s", ext, category)
	}
	if size > rule.maxSize {
		return fmt.Errorf("file vượt quá giới hạn %dMB của %s", rule.maxSize/mb, category)
	}
	return nil
}

// UploadFileToSupabase upload file theo category lên Supabase Storage.
// Path: uploads/<category>/<fileID>.<ext>, trả về public URL.
func UploadFileToSupabase(fileHeader *multipart.FileHeader, category FileCategory, fileID string) (string, error) {
	if err := ValidateUpload(category, fileHeader.Filename, fileHeader.Size); err != nil {
		return "", err
	}

	supabaseURL := os.Getenv("SUPABASE_URL")
	supabaseKey := os.Getenv("SUPABASE_KEY")

	storageClient := storage.NewClient(supabaseURL+"/storage/v1", supabaseKey, nil)

	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	ext := filepath.Ext(fileHeader.Filename)
	objectPath := fmt.Sprintf("%s/%s%s", category, fileID, ext) // path dưới bucket uploads

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return "", err
	}

	contentType := fileHeader.Header.Get("Content-Type")
	options := storage.FileOptions{
		ContentType: &contentType,
	}

	_, err = storageClient.UploadFile("uploads", objectPath, &buf, options)
	if err != nil {
		return "", err
	}

	publicURL := fmt.Sprintf("%s/storage/v1/object/public/uploads/%s", supabaseURL, objectPath)
	return publicURL, nil
}

// DeleteFileFromSupabase nhận public URL và gọi API Supabase Storage để xóa object.
// Idempotent: URL rỗng hoặc object không tồn tại (404) coi như đã xóa xong.
func DeleteFileFromSupabase(publicURL string) error {
	if publicURL == "" {
		return nil
	}

	supabaseURL := os.Getenv("SUPABASE_URL")
	supabaseKey := os.Getenv("SUPABASE_KEY")
	if supabaseURL == "" || supabaseKey == "" {
		return fmt.Errorf("SUPABASE_URL hoặc SUPABASE_KEY chưa cấu hình")
	}

	// Tìm phần "/storage/v1/object/" trong URL
	idx := strings.Index(publicURL, "/storage/v1/object/")
	if idx == -1 {
		return fmt.Errorf("không xác định được đường dẫn object trong URL: %s", publicURL)
	}

	rest := publicURL[idx+len("/storage/v1/object/"):]
	rest = strings.TrimPrefix(rest, "public/")

	// rest => "<bucket>/<path/to/object...>"
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) < 2 {
		return fmt.Errorf("không parse được bucket/object từ URL: %s", publicURL)
	}
	bucket := parts[0]
	object := parts[1]
	if qIdx := strings.Index(object, "?"); qIdx != -1 {
		object = object[:qIdx]
	}
	if u, err := url.PathUnescape(object); err == nil {
		object = u
	}

	deleteURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", strings.TrimRight(supabaseURL, "/"), bucket, object)

	req, err := http.NewRequest("DELETE", deleteURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+supabaseKey)
	req.Header.Set("apikey", supabaseKey)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	// 404 = object đã không còn, không coi là lỗi
	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("xóa file Supabase thất bại: status=%d body=%s", resp.StatusCode, string(body))
	}
	return nil
}
