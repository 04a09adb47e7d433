package policy

import (
	"strconv"

	"gorm.io/gorm"

	"github.com/vnkhanh/campus-share-backend/models"
)

// ListQuery là các tham số lọc thô lấy từ query string (rỗng = không truyền).
type ListQuery struct {
	Branch   string
	Year     string
	Semester string
	Subject  string // subject_id
}

// ContentFilter là predicate đã chuẩn hóa áp lên listing của mọi loại content.
// Giá trị zero = không lọc theo trường đó.
type ContentFilter struct {
	Branch    string
	Year      int
	Semester  int
	SubjectID string
}

// BuildVisibilityFilter dựng filter hiển thị theo vai trò:
//   - sinh viên: mặc định lọc theo ngành/năm/kỳ trong hồ sơ, nhưng tham số
//     query truyền tường minh sẽ ghi đè từng trường (cho phép xem cohort khác)
//   - teacher/admin: không có filter ngầm, chỉ áp tham số tường minh
//
// Trạng thái duyệt (is_verified) không tham gia filter — nội dung chưa duyệt
// vẫn hiển thị, client tự đánh dấu.
func BuildVisibilityFilter(actor *models.User, q ListQuery) ContentFilter {
	var f ContentFilter

	if actor.Role == models.RoleStudent {
		if actor.Branch != nil {
			f.Branch = *actor.Branch
		}
		if actor.Year != nil {
			f.Year = *actor.Year
		}
		if actor.Semester != nil {
			f.Semester = *actor.Semester
		}
	}

	if q.Branch != "" {
		f.Branch = q.Branch
	}
	if q.Year != "" {
		if y, err := strconv.Atoi(q.Year); err == nil {
			f.Year = y
		}
	}
	if q.Semester != "" {
		if s, err := strconv.Atoi(q.Semester); err == nil {
			f.Semester = s
		}
	}

	// Lọc theo môn luôn là AND, bất kể vai trò
	f.SubjectID = q.Subject

	return f
}

// Apply gắn filter vào query GORM.
func (f ContentFilter) Apply(db *gorm.DB) *gorm.DB {
	if f.Branch != "" {
		db = db.Where("branch = ?", f.Branch)
	}
	if f.Year != 0 {
		db = db.Where("year = ?", f.Year)
	}
	if f.Semester != 0 {
		db = db.Where("semester = ?", f.Semester)
	}
	if f.SubjectID != "" {
		db = db.Where("subject_id = ?", f.SubjectID)
	}
	return db
}
