package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/campus-share-backend/models"
	"github.com/vnkhanh/campus-share-backend/policy"
	"github.com/vnkhanh/campus-share-backend/utils"
)

// POST /api/syllabi — chỉ teacher/admin được đăng đề cương
func CreateSyllabus(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	actor, err := currentUser(c, db)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Không tìm thấy người dùng"})
		return
	}

	if err := policy.CanCreateSyllabus(actor.Role); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Chỉ giảng viên hoặc admin được đăng đề cương"})
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

	fileURL, err := utils.UploadFileToSupabase(file, utils.CategorySyllabus, uuid.New().String())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Không thể upload file", "details": err.Error()})
		return
	}

	syllabus := models.Syllabus{
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
		// Người đăng luôn là teacher/admin nên đề cương duyệt sẵn
		IsVerified: true,
	}

	if err := db.Create(&syllabus).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo đề cương"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Tạo đề cương thành công", "syllabus": syllabus})
}

// GET /api/syllabi
func GetSyllabi(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	actor, err := currentUser(c, db)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Không tìm thấy người dùng"})
		return
	}

	filter := policy.BuildVisibilityFilter(actor, listQueryFromContext(c))
	query := filter.Apply(db.Model(&models.Syllabus{}))

	if search := c.Query("search"); search != "" {
		query = query.Where("title ILIKE ?", "%"+search+"%")
	}

	page, limit := parsePagination(c)
	offset := (page - 1) * limit

	var total int64
	query.Count(&total)

	var syllabi []models.Syllabus
	if err := query.Preload("Subject").Preload("Uploader").
		Offset(offset).Limit(limit).Order(sortOrder(c)).Find(&syllabi).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách đề cương"})
		return
	}

	for i := range syllabi {
		syllabi[i].Uploader.Password = ""
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       syllabi,
		"total":      total,
		"page":       page,
		"limit":      limit,
		"totalPages": (total + int64(limit) - 1) / int64(limit),
	})
}

// GET /api/syllabi/:id
func GetSyllabusDetail(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	syllabusID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Syllabus ID không hợp lệ"})
		return
	}

	var syllabus models.Syllabus
	if err := db.Preload("Subject").Preload("Uploader").
		First(&syllabus, "id = ?", syllabusID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Đề cương không tồn tại"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi lấy đề cương"})
		return
	}

	db.Model(&syllabus).UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	syllabus.ViewCount++
	syllabus.Uploader.Password = ""

	c.JSON(http.StatusOK, syllabus)
}

// PUT /api/syllabi/:id
func UpdateSyllabus(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	actorID, _ := uuid.Parse(c.GetString("user_id"))
	actorRole := models.UserRole(c.GetString("role"))

	syllabusID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Syllabus ID không hợp lệ"})
		return
	}

	var syllabus models.Syllabus
	if err := db.First(&syllabus, "id = ?", syllabusID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Đề cương không tồn tại"})
		return
	}

	if err := policy.CanModifyResource(actorID, actorRole, syllabus.UploadedBy); err != nil {
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
		if err := db.Model(&syllabus).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật đề cương"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cập nhật đề cương thành công", "syllabus": syllabus})
}

// DELETE /api/syllabi/:id
func DeleteSyllabus(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	actorID, _ := uuid.Parse(c.GetString("user_id"))
	actorRole := models.UserRole(c.GetString("role"))

	syllabusID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Syllabus ID không hợp lệ"})
		return
	}

	var syllabus models.Syllabus
	if err := db.First(&syllabus, "id = ?", syllabusID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Đề cương không tồn tại"})
		return
	}

	if err := policy.CanModifyResource(actorID, actorRole, syllabus.UploadedBy); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}

	if err := db.Delete(&syllabus).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể xóa đề cương"})
		return
	}

	if err := utils.DeleteFileFromSupabase(syllabus.FileURL); err != nil {
		log.Println("Không xóa được file trên storage:", err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Xóa đề cương thành công"})
}
