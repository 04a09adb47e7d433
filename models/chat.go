package models

import (
	"time"

	"github.com/google/uuid"
)

type Chat struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string    `gorm:"size:255" json:"name"` // tên nhóm (rỗng với chat 1-1)
	IsGroupChat bool      `gorm:"default:false" json:"is_group_chat"`
	IsPublic    bool      `gorm:"default:false" json:"is_public"` // nhóm public thì có thể tự join

	Users []User `gorm:"many2many:chat_users" json:"users,omitempty"`

	// Chỉ nhóm mới có admin; chat 1-1 thì nil
	GroupAdminID *uuid.UUID `gorm:"type:uuid" json:"group_admin_id,omitempty"`
	GroupAdmin   *User      `gorm:"foreignKey:GroupAdminID" json:"group_admin,omitempty"`

	// Phạm vi để tìm nhóm public theo môn/ngành/năm/kỳ
	SubjectID *uuid.UUID `gorm:"type:uuid" json:"subject_id,omitempty"`
	Subject   *Subject   `gorm:"foreignKey:SubjectID" json:"subject,omitempty"`
	Branch    *string    `gorm:"size:100" json:"branch,omitempty"`
	Year      *int       `json:"year,omitempty"`
	Semester  *int       `json:"semester,omitempty"`

	LatestMessageID *uuid.UUID `gorm:"type:uuid" json:"latest_message_id,omitempty"`
	LatestMessage   *Message   `gorm:"foreignKey:LatestMessageID" json:"latest_message,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// HasMember kiểm tra user có trong danh sách thành viên đã preload không
func (c *Chat) HasMember(userID uuid.UUID) bool {
	for _, u := range c.Users {
		if u.ID == userID {
			return true
		}
	}
	return false
}

// IsGroupAdmin: user có phải admin của nhóm này không
func (c *Chat) IsGroupAdmin(userID uuid.UUID) bool {
	return c.GroupAdminID != nil && *c.GroupAdminID == userID
}
