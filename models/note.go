package models

import (
	"time"

	"github.com/google/uuid"
)

type Note struct {
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
	FileSize int64  `json:"file_size"` // bytes

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

func (n *Note) ContentKind() string      { return "note" }
func (n *Note) GetID() uuid.UUID         { return n.ID }
func (n *Note) GetOwnerID() uuid.UUID    { return n.UploadedBy }
func (n *Note) GetSubjectID() uuid.UUID  { return n.SubjectID }
func (n *Note) GetTitle() string         { return n.Title }
func (n *Note) GetFileURL() string       { return n.FileURL }
func (n *Note) Verified() bool           { return n.IsVerified }
