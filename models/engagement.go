package models

import (
	"time"

	"github.com/google/uuid"
)

// ContentLike: nguồn sự thật cho lượt thích; like_count trên content chỉ là cache
type ContentLike struct {
	ContentType string    `gorm:"size:20;primaryKey" json:"content_type"`
	ContentID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"content_id"`
	UserID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`

	User User `gorm:"constraint:OnDelete:CASCADE;" json:"user,omitempty"`
}

// ContentRating: mỗi user chỉ có một đánh giá cho một content,
// đánh giá lại thì ghi đè điểm và thời gian
type ContentRating struct {
	ContentType string    `gorm:"size:20;primaryKey" json:"content_type"`
	ContentID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"content_id"`
	UserID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Score       int       `gorm:"not null" json:"score"` // 1..5
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	User User `gorm:"constraint:OnDelete:CASCADE;" json:"user,omitempty"`
}

// AverageScore tính trung bình cộng của tập điểm hiện có (0 nếu rỗng)
func AverageScore(scores []int) float64 {
	if len(scores) == 0 {
		return 0
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	return float64(sum) / float64(len(scores))
}
