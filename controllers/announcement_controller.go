package controllers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/campus-share-backend/models"
	"github.com/vnkhanh/campus-share-backend/policy"
	"github.com/vnkhanh/campus-share-backend/services"
)

// POST /api/announcements — chỉ teacher/admin; phát push cho đúng đối tượng nhận
func CreateAnnouncement(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	actorID, _ := uuid.Parse(c.GetString("user_id"))
	actorRole := models.UserRole(c.GetString("role"))

	if err := policy.CanManageAnnouncements(actorRole); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Chỉ giảng viên hoặc admin được tạo thông báo"})
		return
	}

	var input struct {
		Title          string     `json:"title" binding:"required"`
		Content        string     `json:"content" binding:"required"`
		TargetBranch   string     `json:"target_branch"`
		TargetRole     string     `json:"target_role"`
		TargetYear     *int       `json:"target_year"`
		TargetSemester *int       `json:"target_semester"`
		ExpiresAt      *time.Time `json:"expires_at"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.ExpiresAt != nil && input.ExpiresAt.Before(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expires_at phải ở tương lai"})
		return
	}

	announcement := models.Announcement{
		Title:          input.Title,
		Content:        input.Content,
		CreatedBy:      actorID,
		TargetBranch:   input.TargetBranch,
		TargetRole:     input.TargetRole,
		TargetYear:     input.TargetYear,
		TargetSemester: input.TargetSemester,
		ExpiresAt:      input.ExpiresAt,
	}
	if announcement.TargetBranch == "" {
		announcement.TargetBranch = models.AudienceAll
	}
	if announcement.TargetRole == "" {
		announcement.TargetRole = models.AudienceAll
	}

	if err := db.Create(&announcement).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo thông báo"})
		return
	}

	// Push chạy nền, lỗi gửi không chặn response
	go func(a models.Announcement) {
		audience := services.PushAudience{
			Year:     a.TargetYear,
			Semester: a.TargetSemester,
		}
		if a.TargetBranch != models.AudienceAll {
			audience.Branch = &a.TargetBranch
		}
		if a.TargetRole != models.AudienceAll {
			audience.Role = &a.TargetRole
		}
		result, err := services.SendPushToAudience(db, audience, a.Title, a.Content,
			map[string]interface{}{"type": "announcement", "announcement_id": a.ID.String()})
		if err != nil {
			log.Println("Gửi push thông báo thất bại:", err)
			return
		}
		log.Printf("Push thông báo %s: %d gửi, %d lỗi", a.ID, result.Succeeded, result.Failed)
	}(announcement)

	c.JSON(http.StatusCreated, gin.H{"message": "Tạo thông báo thành công", "announcement": announcement})
}

// GET /api/announcements — chỉ những thông báo còn hạn và khớp đối tượng với user
func GetAnnouncements(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	actor, err := currentUser(c, db)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Không tìm thấy người dùng"})
		return
	}

	now := time.Now()
	query := db.Model(&models.Announcement{}).
		Where("expires_at IS NULL OR expires_at > ?", now)

	// Admin xem tất cả để quản lý, người khác chỉ xem phần dành cho mình
	if actor.Role != models.RoleAdmin {
		query = query.Where("target_role = ? OR target_role = ?", models.AudienceAll, string(actor.Role))
		if actor.Branch != nil {
			query = query.Where("target_branch = ? OR target_branch = ?", models.AudienceAll, *actor.Branch)
		} else {
			query = query.Where("target_branch = ?", models.AudienceAll)
		}
		if actor.Year != nil {
			query = query.Where("target_year IS NULL OR target_year = ?", *actor.Year)
		} else {
			query = query.Where("target_year IS NULL")
		}
		if actor.Semester != nil {
			query = query.Where("target_semester IS NULL OR target_semester = ?", *actor.Semester)
		} else {
			query = query.Where("target_semester IS NULL")
		}
	}

	page, limit := parsePagination(c)
	offset := (page - 1) * limit

	var total int64
	query.Count(&total)

	var announcements []models.Announcement
	if err := query.Preload("Creator").
		Offset(offset).Limit(limit).Order("created_at DESC").Find(&announcements).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy thông báo"})
		return
	}

	for i := range announcements {
		announcements[i].Creator.Password = ""
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  announcements,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// PUT /api/announcements/:id — người tạo hoặc admin
func UpdateAnnouncement(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	actorID, _ := uuid.Parse(c.GetString("user_id"))
	actorRole := models.UserRole(c.GetString("role"))

	announcementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Announcement ID không hợp lệ"})
		return
	}

	var announcement models.Announcement
	if err := db.First(&announcement, "id = ?", announcementID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Thông báo không tồn tại"})
		return
	}

	if err := policy.CanModifyResource(actorID, actorRole, announcement.CreatedBy); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}

	var input struct {
		Title     string     `json:"title"`
		Content   string     `json:"content"`
		ExpiresAt *time.Time `json:"expires_at"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if input.Title != "" {
		updates["title"] = input.Title
	}
	if input.Content != "" {
		updates["content"] = input.Content
	}
	if input.ExpiresAt != nil {
		updates["expires_at"] = input.ExpiresAt
	}

	if len(updates) > 0 {
		if err := db.Model(&announcement).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật thông báo"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cập nhật thông báo thành công", "announcement": announcement})
}

// DELETE /api/announcements/:id
func DeleteAnnouncement(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	actorID, _ := uuid.Parse(c.GetString("user_id"))
	actorRole := models.UserRole(c.GetString("role"))

	announcementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Announcement ID không hợp lệ"})
		return
	}

	var announcement models.Announcement
	if err := db.First(&announcement, "id = ?", announcementID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Thông báo không tồn tại"})
		return
	}

	if err := policy.CanModifyResource(actorID, actorRole, announcement.CreatedBy); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}

	if err := db.Delete(&announcement).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể xóa thông báo"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Xóa thông báo thành công"})
}
