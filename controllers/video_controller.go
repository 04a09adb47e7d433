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

// POST /api/videos — nhận file upload hoặc link ngoài (YouTube...), ít nhất một trong hai
func CreateVideo(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	actor, err := currentUser(c, db)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Không tìm thấy người dùng"})
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

	externalURL := c.PostForm("external_url")

	video := models.Video{
		Title:       title,
		Description: c.PostForm("description"),
		SubjectID:   subjectID,
		ExternalURL: externalURL,
		UploadedBy:  actor.ID,
		IsVerified:  models.DefaultVerified(actor.Role),
	}
	video.Branch, video.Year, video.Semester = contentScope(c, actor, &subject)

	if file, err := c.FormFile("file"); err == nil {
		fileURL, err := utils.UploadFileToSupabase(file, utils.CategoryVideos, uuid.New().String())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Không thể upload video", "details": err.Error()})
			return
		}
		video.FileURL = fileURL
		video.FileName = file.Filename
		video.FileSize = file.Size
	} else if externalURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cần file video hoặc external_url"})
		return
	}

	if err := db.Create(&video).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo video"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Tạo video thành công", "video": video})
}

// GET /api/videos
func GetVideos(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	actor, err := currentUser(c, db)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Không tìm thấy người dùng"})
		return
	}

	filter := policy.BuildVisibilityFilter(actor, listQueryFromContext(c))
	query := filter.Apply(db.Model(&models.Video{}))

	if search := c.Query("search"); search != "" {
		query = query.Where("title ILIKE ?", "%"+search+"%")
	}

	page, limit := parsePagination(c)
	offset := (page - 1) * limit

	var total int64
	query.Count(&total)

	var videos []models.Video
	if err := query.Preload("Subject").Preload("Uploader").
		Offset(offset).Limit(limit).Order(sortOrder(c)).Find(&videos).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách video"})
		return
	}

	for i := range videos {
		videos[i].Uploader.Password = ""
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       videos,
		"total":      total,
		"page":       page,
		"limit":      limit,
		"totalPages": (total + int64(limit) - 1) / int64(limit),
	})
}

// GET /api/videos/:id
func GetVideoDetail(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Video ID không hợp lệ"})
		return
	}

	var video models.Video
	if err := db.Preload("Subject").Preload("Uploader").
		First(&video, "id = ?", videoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Video không tồn tại"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi lấy video"})
		return
	}

	db.Model(&video).UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	video.ViewCount++
	video.Uploader.Password = ""

	c.JSON(http.StatusOK, gin.H{"video": video, "watch_url": video.WatchURL()})
}

// PUT /api/videos/:id
func UpdateVideo(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	actorID, _ := uuid.Parse(c.GetString("user_id"))
	actorRole := models.UserRole(c.GetString("role"))

	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Video ID không hợp lệ"})
		return
	}

	var video models.Video
	if err := db.First(&video, "id = ?", videoID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Video không tồn tại"})
		return
	}

	if err := policy.CanModifyResource(actorID, actorRole, video.UploadedBy); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}

	var input struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		ExternalURL string `json:"external_url"`
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
	if input.ExternalURL != "" {
		updates["external_url"] = input.ExternalURL
	}

	if len(updates) > 0 {
		if err := db.Model(&video).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật video"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cập nhật video thành công", "video": video})
}

// DELETE /api/videos/:id
func DeleteVideo(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	actorID, _ := uuid.Parse(c.GetString("user_id"))
	actorRole := models.UserRole(c.GetString("role"))

	videoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Video ID không hợp lệ"})
		return
	}

	var video models.Video
	if err := db.First(&video, "id = ?", videoID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Video không tồn tại"})
		return
	}

	if err := policy.CanModifyResource(actorID, actorRole, video.UploadedBy); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}

	if err := db.Delete(&video).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể xóa video"})
		return
	}

	if err := utils.DeleteFileFromSupabase(video.FileURL); err != nil {
		log.Println("Không xóa được file trên storage:", err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Xóa video thành công"})
}
