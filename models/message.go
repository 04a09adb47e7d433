package models

import (
	"time"

	"github.com/google/uuid"
)

// DeletedPlaceholder thay cho nội dung khi tin nhắn bị thu hồi
const DeletedPlaceholder = "Tin nhắn đã bị thu hồi"

type Message struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ChatID   uuid.UUID `gorm:"type:uuid;not null;index" json:"chat_id"`
	Chat     Chat      `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	SenderID uuid.UUID `gorm:"type:uuid;not null;index" json:"sender_id"`
	Sender   User      `gorm:"foreignKey:SenderID" json:"sender,omitempty"`

	Content string `gorm:"type:text" json:"content"`
	FileURL string `gorm:"type:text" json:"file_url,omitempty"` // đính kèm (nếu có)

	// Người gửi luôn nằm trong ReadBy ngay khi tạo
	ReadBy []User `gorm:"many2many:message_reads" json:"read_by,omitempty"`

	IsDeleted bool `gorm:"default:false" json:"is_deleted"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
