package models

import (
	"time"

	"github.com/google/uuid"
)

type Subject struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Code      string    `gorm:"size:50;uniqueIndex;not null" json:"code"` // mã môn học, vd: CS201
	Slug      string    `gorm:"size:255;uniqueIndex" json:"slug"`         // slug cho URL thân thiện
	Branch    string    `gorm:"size:100" json:"branch"`
	Year      int       `json:"year"`
	Semester  int       `json:"semester"`
	Status    bool      `gorm:"default:true;not null" json:"status"` // trạng thái (true: active, false: inactive)
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
