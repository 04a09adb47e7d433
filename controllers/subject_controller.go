package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/vnkhanh/campus-share-backend/models"
)

type SubjectInput struct {
	Name     string `json:"name" binding:"required"`
	Code     string `json:"code" binding:"required"`
	Branch   string `json:"branch"`
	Year     int    `json:"year"`
	Semester int    `json:"semester"`
}

// POST /api/admin/subjects
func CreateSubject(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var input SubjectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Check mã môn trùng
	var existing models.Subject
	if err := db.Where("code = ?", input.Code).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Mã môn học đã tồn tại"})
		return
	}

	subject := models.Subject{
		Name:     input.Name,
		Code:     input.Code,
		Slug:     slug.Make(input.Code + "-" + input.Name),
		Branch:   input.Branch,
		Year:     input.Year,
		Semester: input.Semester,
	}

	if err := db.Create(&subject).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo môn học"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Tạo môn học thành công", "subject": subject})
}

// GET /api/subjects
func GetSubjects(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	query := db.Model(&models.Subject{}).Where("status = true")

	if search := c.Query("search"); search != "" {
		query = query.Where("name ILIKE ? OR code ILIKE ?", "%"+search+"%", "%"+search+"%")
	}
	if branch := c.Query("branch"); branch != "" {
		query = query.Where("branch = ?", branch)
	}
	if year := c.Query("year"); year != "" {
		query = query.Where("year = ?", year)
	}
	if semester := c.Query("semester"); semester != "" {
		query = query.Where("semester = ?", semester)
	}

	page, limit := parsePagination(c)
	offset := (page - 1) * limit

	var total int64
	query.Count(&total)

	var subjects []models.Subject
	if err := query.Offset(offset).Limit(limit).Order("name ASC").Find(&subjects).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách môn học"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       subjects,
		"total":      total,
		"page":       page,
		"limit":      limit,
		"totalPages": (total + int64(limit) - 1) / int64(limit),
	})
}

// GET /api/subjects/:id
func GetSubjectDetail(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	subjectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Subject ID không hợp lệ"})
		return
	}

	var subject models.Subject
	if err := db.First(&subject, "id = ?", subjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Môn học không tồn tại"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi lấy môn học"})
		return
	}

	c.JSON(http.StatusOK, subject)
}

// PUT /api/admin/subjects/:id
func UpdateSubject(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	subjectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Subject ID không hợp lệ"})
		return
	}

	var subject models.Subject
	if err := db.First(&subject, "id = ?", subjectID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Môn học không tồn tại"})
		return
	}

	var input SubjectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Mã mới không được đụng môn khác
	var other models.Subject
	if err := db.Where("code = ? AND id != ?", input.Code, subjectID).First(&other).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Mã môn học đã tồn tại"})
		return
	}

	subject.Name = input.Name
	subject.Code = input.Code
	subject.Slug = slug.Make(input.Code + "-" + input.Name)
	subject.Branch = input.Branch
	subject.Year = input.Year
	subject.Semester = input.Semester

	if err := db.Save(&subject).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật môn học"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cập nhật môn học thành công", "subject": subject})
}

// PATCH /api/admin/subjects/:id/toggle-status
func ToggleSubjectStatus(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	subjectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Subject ID không hợp lệ"})
		return
	}

	var subject models.Subject
	if err := db.First(&subject, "id = ?", subjectID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Môn học không tồn tại"})
		return
	}

	if err := db.Model(&subject).Update("status", !subject.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể đổi trạng thái môn học"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Đổi trạng thái thành công", "status": !subject.Status})
}

// DELETE /api/admin/subjects/:id
func DeleteSubject(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	subjectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Subject ID không hợp lệ"})
		return
	}

	var subject models.Subject
	if err := db.First(&subject, "id = ?", subjectID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Môn học không tồn tại"})
		return
	}

	if err := db.Delete(&subject).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể xóa môn học"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Xóa môn học thành công"})
}
