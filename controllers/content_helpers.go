package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/campus-share-backend/models"
	"github.com/vnkhanh/campus-share-backend/policy"
	"github.com/vnkhanh/campus-share-backend/ws"
)

// currentUser load user đầy đủ từ context (cần cho visibility filter)
func currentUser(c *gin.Context, db *gorm.DB) (*models.User, error) {
	userIDStr := c.GetString("user_id")
	var user models.User
	if err := db.First(&user, "id = ?", userIDStr).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// parsePagination đọc page/limit từ query, mặc định page=1 limit=10
func parsePagination(c *gin.Context) (page, limit int) {
	page = 1
	limit = 10
	if p := c.Query("page"); p != "" {
		if _, err := fmt.Sscanf(p, "%d", &page); err != nil || page < 1 {
			page = 1
		}
	}
	if l := c.Query("limit"); l != "" {
		if _, err := fmt.Sscanf(l, "%d", &limit); err != nil || limit < 1 {
			limit = 10
		}
	}
	return page, limit
}

// sortOrder chỉ cho phép một số cột sắp xếp cố định
func sortOrder(c *gin.Context) string {
	switch c.Query("sort") {
	case "views":
		return "view_count DESC"
	case "likes":
		return "like_count DESC"
	case "rating":
		return "average_rating DESC"
	case "oldest":
		return "created_at ASC"
	default:
		return "created_at DESC"
	}
}

// listQueryFromContext gom tham số lọc thô từ query string
func listQueryFromContext(c *gin.Context) policy.ListQuery {
	return policy.ListQuery{
		Branch:   c.Query("branch"),
		Year:     c.Query("year"),
		Semester: c.Query("semester"),
		Subject:  c.Query("subject"),
	}
}

// findContent load một content item theo kind + id qua capability interface
func findContent(db *gorm.DB, kind, idStr string) (models.ContentItem, error) {
	item, ok := models.NewContentItem(kind)
	if !ok {
		return nil, fmt.Errorf("content kind không hợp lệ: %s", kind)
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("ID không hợp lệ")
	}
	if err := db.First(item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// notifyUploader lưu notification + đẩy realtime (best-effort, sau khi đã commit)
func notifyUploader(db *gorm.DB, item models.ContentItem, title, message, notifType string) {
	kind := item.ContentKind()
	contentID := item.GetID()
	notif := models.Notification{
		UserID:      item.GetOwnerID(),
		Title:       title,
		Message:     message,
		Type:        notifType,
		ContentType: &kind,
		ContentID:   &contentID,
	}
	db.Create(&notif)

	ws.NotifyUser(item.GetOwnerID().String(), map[string]interface{}{
		"type":         notifType,
		"title":        title,
		"message":      message,
		"content_type": kind,
		"content_id":   contentID.String(),
	})

	var count int64
	db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = false", item.GetOwnerID()).
		Count(&count)
	ws.SendBadgeUpdate(item.GetOwnerID().String(), count)
}

// VerifyContent duyệt nội dung: chỉ teacher/admin, một chiều unverified -> verified.
// Notification gửi cho người đăng là best-effort sau khi đã lưu DB.
func VerifyContent(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		db := c.MustGet("db").(*gorm.DB)
		role := models.UserRole(c.GetString("role"))

		if err := policy.CanVerifyContent(role); err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}

		item, err := findContent(db, kind, c.Param("id"))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy nội dung"})
			} else {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			}
			return
		}

		if item.Verified() {
			c.JSON(http.StatusOK, gin.H{"message": "Nội dung đã được duyệt trước đó"})
			return
		}

		if err := db.Model(item).Update("is_verified", true).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể duyệt nội dung"})
			return
		}

		notifyUploader(db, item,
			"Tài liệu của bạn đã được duyệt",
			fmt.Sprintf("\"%s\" đã được duyệt và hiển thị cho mọi người", item.GetTitle()),
			"content_verified")

		c.JSON(http.StatusOK, gin.H{"message": "Duyệt nội dung thành công"})
	}
}

// likeExists phân biệt "chưa like" với lỗi truy vấn thật sự
func likeExists(db *gorm.DB, kind string, contentID, userID uuid.UUID) (bool, error) {
	var like models.ContentLike
	err := db.Where("content_type = ? AND content_id = ? AND user_id = ?",
		kind, contentID, userID).First(&like).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ToggleLike: bảng content_likes là nguồn sự thật, like_count chỉ là cache
// cộng/trừ kèm chặn dưới 0 (theo kiểu favorite của hệ thống cũ)
func ToggleLike(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		db := c.MustGet("db").(*gorm.DB)
		userID, err := uuid.Parse(c.GetString("user_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
			return
		}

		item, err := findContent(db, kind, c.Param("id"))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy nội dung"})
			} else {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			}
			return
		}

		liked, err := likeExists(db, kind, item.GetID(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể kiểm tra lượt thích"})
			return
		}

		tx := db.Begin()
		if !liked {
			// Chưa like -> thêm like
			newLike := models.ContentLike{
				ContentType: kind,
				ContentID:   item.GetID(),
				UserID:      userID,
			}
			if err := tx.Create(&newLike).Error; err != nil {
				tx.Rollback()
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể thêm lượt thích"})
				return
			}
			if err := tx.Model(item).
				UpdateColumn("like_count", gorm.Expr("like_count + ?", 1)).Error; err != nil {
				tx.Rollback()
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật lượt thích"})
				return
			}
			tx.Commit()
			c.JSON(http.StatusOK, gin.H{"message": "Đã thích", "liked": true})
			return
		}

		// Đã like -> bỏ like, không cho like_count nhỏ hơn 0
		if err := tx.Where("content_type = ? AND content_id = ? AND user_id = ?",
			kind, item.GetID(), userID).Delete(&models.ContentLike{}).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể bỏ lượt thích"})
			return
		}
		if err := tx.Model(item).
			Where("like_count > 0").
			UpdateColumn("like_count", gorm.Expr("like_count - ?", 1)).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật lượt thích"})
			return
		}
		tx.Commit()
		c.JSON(http.StatusOK, gin.H{"message": "Đã bỏ thích", "liked": false})
	}
}

type rateInput struct {
	Score int `json:"score" binding:"required,min=1,max=5"`
}

// RateContent: mỗi (content, user) chỉ một đánh giá — đánh giá lại thì ghi đè,
// average_rating tính lại từ toàn bộ tập điểm mỗi lần thay đổi
func RateContent(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		db := c.MustGet("db").(*gorm.DB)
		userID, err := uuid.Parse(c.GetString("user_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
			return
		}

		var input rateInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		item, err := findContent(db, kind, c.Param("id"))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy nội dung"})
			} else {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			}
			return
		}

		tx := db.Begin()

		var rating models.ContentRating
		err = tx.Where("content_type = ? AND content_id = ? AND user_id = ?",
			kind, item.GetID(), userID).First(&rating).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			rating = models.ContentRating{
				ContentType: kind,
				ContentID:   item.GetID(),
				UserID:      userID,
				Score:       input.Score,
			}
			err = tx.Create(&rating).Error
		} else if err == nil {
			err = tx.Model(&rating).Update("score", input.Score).Error
		}
		if err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lưu đánh giá"})
			return
		}

		// Tính lại trung bình từ tập điểm hiện có
		var scores []int
		if err := tx.Model(&models.ContentRating{}).
			Where("content_type = ? AND content_id = ?", kind, item.GetID()).
			Pluck("score", &scores).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tính điểm trung bình"})
			return
		}
		avg := models.AverageScore(scores)
		if err := tx.Model(item).UpdateColumn("average_rating", avg).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật điểm trung bình"})
			return
		}

		tx.Commit()
		c.JSON(http.StatusOK, gin.H{
			"message":        "Đánh giá thành công",
			"score":          input.Score,
			"average_rating": avg,
		})
	}
}

// DownloadContent redirect đến file đã lưu và tăng download_count
// trong cùng request (không khử trùng lặp — mỗi lần tải là một lượt)
func DownloadContent(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		db := c.MustGet("db").(*gorm.DB)

		item, err := findContent(db, kind, c.Param("id"))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy nội dung"})
			} else {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			}
			return
		}

		if item.GetFileURL() == "" {
			c.JSON(http.StatusNotFound, gin.H{"error": "Nội dung này không có file để tải"})
			return
		}

		db.Model(item).UpdateColumn("download_count", gorm.Expr("download_count + ?", 1))

		c.Redirect(http.StatusFound, item.GetFileURL())
	}
}
