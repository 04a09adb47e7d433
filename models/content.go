package models

import "github.com/google/uuid"

// ContentItem là interface chung cho 4 loại tài nguyên học tập
// (note, syllabus, video, pyq). Verify/like/rate/download dùng chung
// qua interface này thay vì switch theo chuỗi content type.
type ContentItem interface {
	ContentKind() string
	GetID() uuid.UUID
	GetOwnerID() uuid.UUID
	GetSubjectID() uuid.UUID
	GetTitle() string
	GetFileURL() string
	Verified() bool
}

// NewContentItem trả về struct rỗng tương ứng với content kind,
// dùng cho các handler dùng chung. ok=false nếu kind không hợp lệ.
func NewContentItem(kind string) (ContentItem, bool) {
	switch kind {
	case "note":
		return &Note{}, true
	case "syllabus":
		return &Syllabus{}, true
	case "video":
		return &Video{}, true
	case "pyq":
		return &PYQ{}, true
	}
	return nil, false
}

// DefaultVerified: nội dung do teacher/admin đăng được duyệt sẵn,
// sinh viên đăng thì chờ duyệt.
func DefaultVerified(role UserRole) bool {
	return role == RoleTeacher || role == RoleAdmin
}
