package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	RoleAdmin   UserRole = "admin"   // Quản trị hệ thống
	RoleTeacher UserRole = "teacher" // Giảng viên
	RoleStudent UserRole = "student" // Sinh viên
)

// StudentProfile: thông tin bắt buộc riêng cho sinh viên
type StudentProfile struct {
	Branch   string `json:"branch" binding:"required"`
	Year     int    `json:"year" binding:"required,min=1,max=6"`
	Semester int    `json:"semester" binding:"required,min=1,max=12"`
}

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FullName string    `gorm:"size:150;not null" json:"full_name"`
	Email    string    `gorm:"size:150;uniqueIndex;not null" json:"email"`
	Phone    string    `gorm:"size:20" json:"phone"`
	Password string    `gorm:"type:text;not null" json:"-"`
	Role     UserRole  `gorm:"type:varchar(20);not null;default:'student'" json:"role"`

	// Chỉ sinh viên mới có (nil với teacher/admin)
	Branch   *string `gorm:"size:100" json:"branch,omitempty"`
	Year     *int    `json:"year,omitempty"`
	Semester *int    `json:"semester,omitempty"`

	IsVerified   bool       `gorm:"default:false" json:"is_verified"`
	PushToken    *string    `gorm:"type:text" json:"-"`
	LastActiveAt *time.Time `json:"last_active_at,omitempty"`

	EnrolledSubjects []Subject `gorm:"many2many:user_subjects" json:"enrolled_subjects,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

var (
	ErrStudentProfileRequired = errors.New("sinh viên bắt buộc phải có ngành, năm và học kỳ")
	ErrStudentProfileInvalid  = errors.New("chỉ sinh viên mới có hồ sơ sinh viên")
	ErrInvalidRole            = errors.New("vai trò không hợp lệ")
)

// NewUser dựng user theo role: sinh viên bắt buộc kèm StudentProfile,
// teacher/admin thì không được có. Validate ngay khi dựng thay vì check từng field.
func NewUser(fullName, email, phone, hashedPassword string, role UserRole, profile *StudentProfile) (*User, error) {
	u := &User{
		FullName: fullName,
		Email:    email,
		Phone:    phone,
		Password: hashedPassword,
		Role:     role,
	}
	switch role {
	case RoleStudent:
		if profile == nil {
			return nil, ErrStudentProfileRequired
		}
		u.Branch = &profile.Branch
		u.Year = &profile.Year
		u.Semester = &profile.Semester
	case RoleTeacher, RoleAdmin:
		if profile != nil {
			return nil, ErrStudentProfileInvalid
		}
	default:
		return nil, ErrInvalidRole
	}
	return u, nil
}

// ChangeRole đổi vai trò và đồng bộ hồ sơ sinh viên theo role mới:
// lên teacher/admin thì xóa ngành/năm/học kỳ; về student thì phải có hồ sơ
// (gửi kèm hoặc đã có sẵn trên user).
func (u *User) ChangeRole(role UserRole, profile *StudentProfile) error {
	switch role {
	case RoleStudent:
		if profile != nil {
			u.Branch = &profile.Branch
			u.Year = &profile.Year
			u.Semester = &profile.Semester
		} else if u.Branch == nil || u.Year == nil || u.Semester == nil {
			return ErrStudentProfileRequired
		}
	case RoleTeacher, RoleAdmin:
		if profile != nil {
			return ErrStudentProfileInvalid
		}
		u.Branch, u.Year, u.Semester = nil, nil, nil
	default:
		return ErrInvalidRole
	}
	u.Role = role
	return nil
}
