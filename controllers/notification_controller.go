package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/campus-share-backend/models"
	"github.com/vnkhanh/campus-share-backend/ws"
)

// GET /api/notifications
func GetNotifications(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	actorID, _ := uuid.Parse(c.GetString("user_id"))

	page, limit := parsePagination(c)
	offset := (page - 1) * limit

	query := db.Model(&models.Notification{}).Where("user_id = ?", actorID)
	if c.Query("unread") == "true" {
		query = query.Where("is_read = false")
	}

	var total int64
	query.Count(&total)

	var notifications []models.Notification
	if err := query.Offset(offset).Limit(limit).
		Order("created_at DESC").Find(&notifications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy thông báo"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  notifications,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// GET /api/notifications/unread-count
func GetUnreadNotificationCount(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	actorID, _ := uuid.Parse(c.GetString("user_id"))

	var count int64
	db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = false", actorID).Count(&count)

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// PUT /api/notifications/:id/read
func MarkNotificationRead(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	actorID, _ := uuid.Parse(c.GetString("user_id"))

	notifID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Notification ID không hợp lệ"})
		return
	}

	var notif models.Notification
	if err := db.First(&notif, "id = ? AND user_id = ?", notifID, actorID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Thông báo không tồn tại"})
		return
	}

	if !notif.IsRead {
		now := time.Now()
		if err := db.Model(&notif).Updates(map[string]interface{}{
			"is_read": true,
			"read_at": now,
		}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật thông báo"})
			return
		}
		pushBadgeUpdate(db, actorID)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Đã đánh dấu đã đọc"})
}

// PUT /api/notifications/read-all
func MarkAllNotificationsRead(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	actorID, _ := uuid.Parse(c.GetString("user_id"))

	now := time.Now()
	if err := db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = false", actorID).
		Updates(map[string]interface{}{"is_read": true, "read_at": now}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật thông báo"})
		return
	}

	ws.SendBadgeUpdate(actorID.String(), 0)
	c.JSON(http.StatusOK, gin.H{"message": "Đã đánh dấu tất cả đã đọc"})
}

// DELETE /api/notifications/:id
func DeleteNotification(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	actorID, _ := uuid.Parse(c.GetString("user_id"))

	notifID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Notification ID không hợp lệ"})
		return
	}

	result := db.Where("id = ? AND user_id = ?", notifID, actorID).
		Delete(&models.Notification{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể xóa thông báo"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Thông báo không tồn tại"})
		return
	}

	pushBadgeUpdate(db, actorID)
	c.JSON(http.StatusOK, gin.H{"message": "Xóa thông báo thành công"})
}

func pushBadgeUpdate(db *gorm.DB, userID uuid.UUID) {
	var unread int64
	db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = false", userID).Count(&unread)
	ws.SendBadgeUpdate(userID.String(), unread)
}
