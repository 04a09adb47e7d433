package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/campus-share-backend/models"
	"github.com/vnkhanh/campus-share-backend/policy"
)

// POST /api/content/:type/:id/comments — bình luận hoặc trả lời bình luận
func CreateComment(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userID, _ := uuid.Parse(c.GetString("user_id"))

	kind := c.Param("type")
	item, err := findContent(db, kind, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Nội dung không tồn tại"})
		return
	}

	var input struct {
		Content  string  `json:"content" binding:"required"`
		ParentID *string `json:"parent_id"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Thiếu nội dung bình luận"})
		return
	}

	comment := models.Comment{
		ContentType: kind,
		ContentID:   item.GetID(),
		UserID:      userID,
		Content:     input.Content,
	}

	if input.ParentID != nil && *input.ParentID != "" {
		parentID, err := uuid.Parse(*input.ParentID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "parent_id không hợp lệ"})
			return
		}
		// Reply phải trỏ về bình luận gốc trên cùng một nội dung
		var parent models.Comment
		if err := db.First(&parent, "id = ? AND content_type = ? AND content_id = ?",
			parentID, kind, item.GetID()).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Bình luận gốc không tồn tại"})
			return
		}
		comment.ParentID = &parentID
	}

	if err := db.Create(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo bình luận"})
		return
	}

	db.Preload("User").First(&comment, "id = ?", comment.ID)
	comment.User.Password = ""

	// Báo cho người đăng nội dung, trừ khi tự bình luận bài mình
	if item.GetOwnerID() != userID {
		notifyUploader(db, item,
			"Bình luận mới",
			comment.User.FullName+" đã bình luận về \""+item.GetTitle()+"\"",
			"comment")
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Bình luận thành công", "comment": comment})
}

// GET /api/content/:type/:id/comments — bình luận gốc kèm replies lồng một cấp
func GetComments(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	kind := c.Param("type")
	item, err := findContent(db, kind, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Nội dung không tồn tại"})
		return
	}

	page, limit := parsePagination(c)
	offset := (page - 1) * limit

	query := db.Model(&models.Comment{}).
		Where("content_type = ? AND content_id = ? AND parent_id IS NULL", kind, item.GetID())

	var total int64
	query.Count(&total)

	var comments []models.Comment
	if err := query.Preload("User").Preload("Replies.User").
		Offset(offset).Limit(limit).Order("created_at DESC").Find(&comments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy bình luận"})
		return
	}

	for i := range comments {
		comments[i].User.Password = ""
		for j := range comments[i].Replies {
			comments[i].Replies[j].User.Password = ""
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  comments,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// DELETE /api/comments/:id — chủ bình luận hoặc admin; replies rơi theo (CASCADE)
func DeleteComment(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	actorID, _ := uuid.Parse(c.GetString("user_id"))
	actorRole := models.UserRole(c.GetString("role"))

	commentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Comment ID không hợp lệ"})
		return
	}

	var comment models.Comment
	if err := db.First(&comment, "id = ?", commentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Bình luận không tồn tại"})
		return
	}

	if err := policy.CanModifyResource(actorID, actorRole, comment.UserID); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}

	if err := db.Delete(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể xóa bình luận"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Xóa bình luận thành công"})
}
