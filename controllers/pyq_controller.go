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

// POST /api/pyqs — đề thi năm trước, bắt buộc kèm năm thi
func CreatePYQ(c *gin.Context) {
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

	examYear, err := strconv.Atoi(c.PostForm("exam_year"))
	if err != nil || examYear < 1900 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "exam_year không hợp lệ"})
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

	fileURL, err := utils.UploadFileToSupabase(file, utils.CategoryPYQs, uuid.New().String())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Không thể upload file", "details": err.Error()})
		return
	}

	pyq := models.PYQ{
		Title:       title,
		Description: c.PostForm("description"),
		SubjectID:   subjectID,
		ExamYear:    examYear,
		Branch:      branch,
		Year:        year,
		Semester:    semester,
		FileURL:     fileURL,
		FileName:    file.Filename,
		FileSize:    file.Size,
		UploadedBy:  actor.ID,
		IsVerified:  models.DefaultVerified(actor.Role),
	}

	if err := db.Create(&pyq).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo đề thi"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Tạo đề thi thành công", "pyq": pyq})
}

// GET /api/pyqs — lọc thêm theo exam_year nếu client truyền vào
func GetPYQs(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	actor, err := currentUser(c, db)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Không tìm thấy người dùng"})
		return
	}

	filter := policy.BuildVisibilityFilter(actor, listQueryFromContext(c))
	query := filter.Apply(db.Model(&models.PYQ{}))

	if search := c.Query("search"); search != "" {
		query = query.Where("title ILIKE ?", "%"+search+"%")
	}
	if examYear := c.Query("exam_year"); examYear != "" {
		if v, err := strconv.Atoi(examYear); err == nil {
			query = query.Where("exam_year = ?", v)
		}
	}

	page, limit := parsePagination(c)
	offset := (page - 1) * limit

	var total int64
	query.Count(&total)

	var pyqs []models.PYQ
	if err := query.Preload("Subject").Preload("Uploader").
		Offset(offset).Limit(limit).Order(sortOrder(c)).Find(&pyqs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách đề thi"})
		return
	}

	for i := range pyqs {
		pyqs[i].Uploader.Password = ""
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       pyqs,
		"total":      total,
		"page":       page,
		"limit":      limit,
		"totalPages": (total + int64(limit) - 1) / int64(limit),
	})
}

// GET /api/pyqs/:id
func GetPYQDetail(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	pyqID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "PYQ ID không hợp lệ"})
		return
	}

	var pyq models.PYQ
	if err := db.Preload("Subject").Preload("Uploader").
		First(&pyq, "id = ?", pyqID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Đề thi không tồn tại"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi lấy đề thi"})
		return
	}

	db.Model(&pyq).UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	pyq.ViewCount++
	pyq.Uploader.Password = ""

	c.JSON(http.StatusOK, pyq)
}

// PUT /api/pyqs/:id
func UpdatePYQ(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	actorID, _ := uuid.Parse(c.GetString("user_id"))
	actorRole := models.UserRole(c.GetString("role"))

	pyqID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "PYQ ID không hợp lệ"})
		return
	}

	var pyq models.PYQ
	if err := db.First(&pyq, "id = ?", pyqID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Đề thi không tồn tại"})
		return
	}

	if err := policy.CanModifyResource(actorID, actorRole, pyq.UploadedBy); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}

	var input struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		ExamYear    int    `json:"exam_year"`
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
	if input.ExamYear >= 1900 {
		updates["exam_year"] = input.ExamYear
	}

	if len(updates) > 0 {
		if err := db.Model(&pyq).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật đề thi"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cập nhật đề thi thành công", "pyq": pyq})
}

// DELETE /api/pyqs/:id
func DeletePYQ(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	actorID, _ := uuid.Parse(c.GetString("user_id"))
	actorRole := models.UserRole(c.GetString("role"))

	pyqID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "PYQ ID không hợp lệ"})
		return
	}

	var pyq models.PYQ
	if err := db.First(&pyq, "id = ?", pyqID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Đề thi không tồn tại"})
		return
	}

	if err := policy.CanModifyResource(actorID, actorRole, pyq.UploadedBy); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}

	if err := db.Delete(&pyq).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể xóa đề thi"})
		return
	}

	if err := utils.DeleteFileFromSupabase(pyq.FileURL); err != nil {
		log.Println("Không xóa được file trên storage:", err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Xóa đề thi thành công"})
}
