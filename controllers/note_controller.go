package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/campus-share-backend/models"
	"github.com/vnkhanh/campus-share-backend/policy"
	"github.com/vnkhanh/campus-share-backend/utils"
)

// POST /api/notes — upload tài liệu (multipart, bắt buộc có file)
func CreateNote(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	actor, err := currentUser(c, db)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Không tìm thấy người dùng"})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Không có file đính kèm"})
		return
	}

	title := c.PostForm("title")
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Thiếu tiêu đề"})
		return
	}

	subjectID, err := uuid.Parse(c.PostForm("subject_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "subject_id không hợp lệ"})
		return
	}
	var subject models.Subject
	if err := db.First(&subject, "id = ?", subjectID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Môn học không tồn tại"})
		return
	}

	branch, year, semester := contentScope(c, actor, &subject)

	fileURL, err := utils.UploadFileToSupabase(file, utils.CategoryNotes, uuid.New().String())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Không thể upload file", "details": err.Error()})
		return
	}

	note := models.Note{
		Title:       title,
		Description: c.PostForm("description"),
		SubjectID:   subjectID,
		Branch:      branch,
		Year:        year,
		Semester:    semester,
		FileURL:     fileURL,
		FileName:    file.Filename,
		FileSize:    file.Size,
		UploadedBy:  actor.ID,
		// Sinh viên đăng thì chờ duyệt, teacher/admin thì duyệt sẵn
		IsVerified: models.DefaultVerified(actor.Role),
	}

	if err := db.Create(&note).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo tài liệu"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Tạo tài liệu thành công", "note": note})
}

// GET /api/notes — listing áp visibility filter theo vai trò
func GetNotes(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	actor, err := currentUser(c, db)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Không tìm thấy người dùng"})
		return
	}

	filter := policy.BuildVisibilityFilter(actor, listQueryFromContext(c))
	query := filter.Apply(db.Model(&models.Note{}))

	if search := c.Query("search"); search != "" {
		query = query.Where("title ILIKE ?", "%"+search+"%")
	}

	page, limit := parsePagination(c)
	offset := (page - 1) * limit

	var total int64
	query.Count(&total)

	var notes []models.Note
	if err := query.Preload("Subject").Preload("Uploader").
		Offset(offset).Limit(limit).Order(sortOrder(c)).Find(&notes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách tài liệu"})
		return
	}

	for i := range notes {
		notes[i].Uploader.Password = ""
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       notes,
		"total":      total,
		"page":       page,
		"limit":      limit,
		"totalPages": (total + int64(limit) - 1) / int64(limit),
	})
}

// GET /api/notes/:id — mỗi lần xem là một lượt view (không khử trùng lặp)
func GetNoteDetail(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	noteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Note ID không hợp lệ"})
		return
	}

	var note models.Note
	if err := db.Preload("Subject").Preload("Uploader").
		First(&note, "id = ?", noteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Tài liệu không tồn tại"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi lấy tài liệu"})
		return
	}

	db.Model(&note).UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	note.ViewCount++
	note.Uploader.Password = ""

	c.JSON(http.StatusOK, note)
}

// PUT /api/notes/:id — chủ sở hữu hoặc admin
func UpdateNote(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	actorID, _ := uuid.Parse(c.GetString("user_id"))
	actorRole := models.UserRole(c.GetString("role"))

	noteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Note ID không hợp lệ"})
		return
	}

	var note models.Note
	if err := db.First(&note, "id = ?", noteID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tài liệu không tồn tại"})
		return
	}

	if err := policy.CanModifyResource(actorID, actorRole, note.UploadedBy); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}

	var input struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if input.Title != "" {
		updates["title"] = input.Title
	}
	if input.Description != "" {
		updates["description"] = input.Description
	}

	if len(updates) > 0 {
		if err := db.Model(&note).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật tài liệu"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cập nhật tài liệu thành công", "note": note})
}

// DELETE /api/notes/:id — xóa bản ghi + file đã lưu (best-effort)
func DeleteNote(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	actorID, _ := uuid.Parse(c.GetString("user_id"))
	actorRole := models.UserRole(c.GetString("role"))

	noteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Note ID không hợp lệ"})
		return
	}

	var note models.Note
	if err := db.First(&note, "id = ?", noteID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tài liệu không tồn tại"})
		return
	}

	if err := policy.CanModifyResource(actorID, actorRole, note.UploadedBy); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}

	if err := db.Delete(&note).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể xóa tài liệu"})
		return
	}

	// File mất sẵn trên storage không phải là lỗi
	if err := utils.DeleteFileFromSupabase(note.FileURL); err != nil {
		log.Println("Không xóa được file trên storage:", err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Xóa tài liệu thành công"})
}

// contentScope xác định ngành/năm/kỳ cho content mới: ưu tiên form,
// rồi đến hồ sơ sinh viên của người đăng, cuối cùng là môn học
func contentScope(c *gin.Context, actor *models.User, subject *models.Subject) (string, int, int) {
	branch := c.PostForm("branch")
	year := 0
	semester := 0
	if y := c.PostForm("year"); y != "" {
		if v, err := strconv.Atoi(y); err == nil {
			year = v
		}
	}
	if s := c.PostForm("semester"); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			semester = v
		}
	}

	if branch == "" {
		if actor.Branch != nil {
			branch = *actor.Branch
		} else {
			branch = subject.Branch
		}
	}
	if year == 0 {
		if actor.Year != nil {
			year = *actor.Year
		} else {
			year = subject.Year
		}
	}
	if semester == 0 {
		if actor.Semester != nil {
			semester = *actor.Semester
		} else {
			semester = subject.Semester
		}
	}
	return branch, year, semester
}
