package models

import (
	"time"

	"github.com/google/uuid"
)

// Video: bài giảng video, có thể là file upload hoặc link ngoài (youtube...)
type Video struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	SubjectID   uuid.UUID `gorm:"type:uuid;not null;index" json:"subject_id"`
	Subject     Subject   `gorm:"constraint:OnDelete:CASCADE;" json:"subject,omitempty"`
	Branch      string    `gorm:"size:100;index" json:"branch"`
	Year        int       `gorm:"index" json:"year"`
	Semester    int       `gorm:"index" json:"semester"`

	// Một trong hai: file đã upload hoặc link video ngoài
	FileURL     string `gorm:"type:text" json:"file_url"`
	FileName    string `gorm:"size:255" json:"file_name"`
	FileSize    int64  `json:"file_size"`
	ExternalURL string `gorm:"type:text" json:"external_url"`

	UploadedBy uuid.UUID `gorm:"type:uuid;not null" json:"uploaded_by"`
	Uploader   User      `gorm:"foreignKey:UploadedBy;constraint:OnDelete:CASCADE;" json:"uploader,omitempty"`
	IsVerified bool      `gorm:"default:false" json:"is_verified"`

	ViewCount     int     `gorm:"default:0" json:"view_count"`
	DownloadCount int     `gorm:"default:0" json:"download_count"`
	LikeCount     int     `gorm:"default:0" json:"like_count"`
	AverageRating float64 `gorm:"default:0" json:"average_rating"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (v *Video) ContentKind() string     { return "video" }
func (v *Video) GetID() uuid.UUID        { return v.ID }
func (v *Video) GetOwnerID() uuid.UUID   { return v.UploadedBy }
func (v *Video) GetSubjectID() uuid.UUID { return v.SubjectID }
func (v *Video) GetTitle() string        { return v.Title }
func (v *Video) GetFileURL() string      { return v.FileURL }
func (v *Video) Verified() bool          { return v.IsVerified }

// WatchURL: ưu tiên link ngoài nếu có
func (v *Video) WatchURL() string {
	if v.ExternalURL != "" {
		return v.ExternalURL
	}
	return v.FileURL
}
