package models

import (
	"time"

	"github.com/google/uuid"
)

// Syllabus: đề cương môn học, chỉ teacher/admin được đăng
type Syllabus struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	SubjectID   uuid.UUID `gorm:"type:uuid;not null;index" json:"subject_id"`
	Subject     Subject   `gorm:"constraint:OnDelete:CASCADE;" json:"subject,omitempty"`
	Branch      string    `gorm:"size:100;index" json:"branch"`
	Year        int       `gorm:"index" json:"year"`
	Semester    int       `gorm:"index" json:"semester"`

	FileURL  string `gorm:"type:text;not null" json:"file_url"`
	FileName string `gorm:"size:255" json:"file_name"`
	FileSize int64  `json:"file_size"`

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

func (s *Syllabus) ContentKind() string     { return "syllabus" }
func (s *Syllabus) GetID() uuid.UUID        { return s.ID }
func (s *Syllabus) GetOwnerID() uuid.UUID   { return s.UploadedBy }
func (s *Syllabus) GetSubjectID() uuid.UUID { return s.SubjectID }
func (s *Syllabus) GetTitle() string        { return s.Title }
func (s *Syllabus) GetFileURL() string      { return s.FileURL }
func (s *Syllabus) Verified() bool          { return s.IsVerified }
