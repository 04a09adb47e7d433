package models

import (
	"time"

	"github.com/google/uuid"
)

const AudienceAll = "All"

type Announcement struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedBy uuid.UUID `gorm:"type:uuid;not null" json:"created_by"`
	Creator   User      `gorm:"foreignKey:CreatedBy;constraint:OnDelete:CASCADE;" json:"creator,omitempty"`

	// Đối tượng nhận: giá trị cụ thể hoặc "All" (nil với year/semester = tất cả)
	TargetBranch   string `gorm:"size:100;default:'All'" json:"target_branch"`
	TargetRole     string `gorm:"size:20;default:'All'" json:"target_role"`
	TargetYear     *int   `json:"target_year,omitempty"`
	TargetSemester *int   `json:"target_semester,omitempty"`

	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Expired: thông báo hết hạn vẫn nằm trong DB, chỉ bị lọc lúc đọc
func (a *Announcement) Expired(now time.Time) bool {
	return a.ExpiresAt != nil && now.After(*a.ExpiresAt)
}

// MatchesUser kiểm tra user có thuộc đối tượng nhận của thông báo không
func (a *Announcement) MatchesUser(u *User) bool {
	if a.TargetRole != AudienceAll && a.TargetRole != string(u.Role) {
		return false
	}
	if a.TargetBranch != AudienceAll {
		if u.Branch == nil || *u.Branch != a.TargetBranch {
			return false
		}
	}
	if a.TargetYear != nil {
		if u.Year == nil || *u.Year != *a.TargetYear {
			return false
		}
	}
	if a.TargetSemester != nil {
		if u.Semester == nil || *u.Semester != *a.TargetSemester {
			return false
		}
	}
	return true
}
