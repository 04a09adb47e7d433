package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/campus-share-backend/models"
	"github.com/vnkhanh/campus-share-backend/policy"
	"github.com/vnkhanh/campus-share-backend/services"
	"github.com/vnkhanh/campus-share-backend/utils"
	"github.com/vnkhanh/campus-share-backend/ws"
)

// POST /api/chats/:id/messages — gửi tin nhắn (text và/hoặc file đính kèm)
func SendMessage(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	actorID, _ := uuid.Parse(c.GetString("user_id"))

	chatID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Chat ID không hợp lệ"})
		return
	}

	var chat models.Chat
	if err := db.Preload("Users").First(&chat, "id = ?", chatID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Chat không tồn tại"})
		return
	}
	if !chat.HasMember(actorID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Bạn không phải thành viên của chat này"})
		return
	}

	content := c.PostForm("content")
	fileURL := ""
	if file, err := c.FormFile("file"); err == nil {
		fileURL, err = utils.UploadFileToSupabase(file, utils.CategoryMisc, uuid.New().String())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Không thể upload file", "details": err.Error()})
			return
		}
	}
	if content == "" && fileURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tin nhắn trống"})
		return
	}

	var sender models.User
	if err := db.First(&sender, "id = ?", actorID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Không tìm thấy người dùng"})
		return
	}

	message := models.Message{
		ChatID:   chatID,
		SenderID: actorID,
		Content:  content,
		FileURL:  fileURL,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&message).Error; err != nil {
			return err
		}
		// Người gửi đã đọc tin của chính mình
		if err := tx.Model(&message).Association("ReadBy").Append(&sender); err != nil {
			return err
		}
		return tx.Model(&chat).Update("latest_message_id", message.ID).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể gửi tin nhắn"})
		return
	}

	db.Preload("Sender").Preload("ReadBy").First(&message, "id = ?", message.ID)
	message.Sender.Password = ""
	for i := range message.ReadBy {
		message.ReadBy[i].Password = ""
	}

	ws.SendChatEvent(chatID.String(), map[string]interface{}{
		"type": "new_message", "chat_id": chatID, "message": message,
	})

	// Push cho thành viên offline; người đang mở app nhận qua ws rồi
	var offlineIDs []string
	for _, u := range chat.Users {
		if u.ID == actorID || ws.H.IsOnline(u.ID.String()) {
			continue
		}
		offlineIDs = append(offlineIDs, u.ID.String())
	}
	if len(offlineIDs) > 0 {
		go func() {
			preview := content
			if preview == "" {
				preview = "Đã gửi một file"
			}
			pushTitle := sender.FullName
			if chat.IsGroupChat {
				pushTitle = chat.Name
				preview = sender.FullName + ": " + preview
			}
			if _, err := services.SendPushToUsers(db, offlineIDs, pushTitle, preview,
				map[string]interface{}{"type": "message", "chat_id": chatID.String()}); err != nil {
				log.Println("Gửi push tin nhắn thất bại:", err)
			}
		}()
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Gửi tin nhắn thành công", "data": message})
}

// GET /api/chats/:id/messages — trang tin nhắn, đồng thời đánh dấu đã đọc
func GetMessages(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	actorID, _ := uuid.Parse(c.GetString("user_id"))

	chatID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Chat ID không hợp lệ"})
		return
	}

	var chat models.Chat
	if err := db.Preload("Users").First(&chat, "id = ?", chatID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Chat không tồn tại"})
		return
	}
	if !chat.HasMember(actorID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Bạn không phải thành viên của chat này"})
		return
	}

	page, limit := parsePagination(c)
	offset := (page - 1) * limit

	var total int64
	db.Model(&models.Message{}).Where("chat_id = ?", chatID).Count(&total)

	var messages []models.Message
	if err := db.Preload("Sender").Preload("ReadBy").
		Where("chat_id = ?", chatID).
		Offset(offset).Limit(limit).Order("created_at DESC").
		Find(&messages).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy tin nhắn"})
		return
	}

	for i := range messages {
		messages[i].Sender.Password = ""
		for j := range messages[i].ReadBy {
			messages[i].ReadBy[j].Password = ""
		}
	}

	// Mở trang tin nhắn = đã đọc toàn bộ chat
	marked, err := markChatMessagesRead(db, chatID, actorID)
	if err == nil && marked > 0 {
		ws.SendChatEvent(chatID.String(), map[string]interface{}{
			"type": "messages_read", "chat_id": chatID, "user_id": actorID,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  messages,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// DELETE /api/messages/:id — thu hồi: giữ bản ghi, thay nội dung bằng placeholder
func DeleteMessage(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	actorID, _ := uuid.Parse(c.GetString("user_id"))
	actorRole := models.UserRole(c.GetString("role"))

	messageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message ID không hợp lệ"})
		return
	}

	var message models.Message
	if err := db.First(&message, "id = ?", messageID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tin nhắn không tồn tại"})
		return
	}

	if err := policy.CanDeleteMessage(actorID, actorRole, message.SenderID); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}

	if message.IsDeleted {
		c.JSON(http.StatusOK, gin.H{"message": "Tin nhắn đã được thu hồi"})
		return
	}

	fileURL := message.FileURL
	if err := db.Model(&message).Updates(map[string]interface{}{
		"content":    models.DeletedPlaceholder,
		"file_url":   "",
		"is_deleted": true,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể thu hồi tin nhắn"})
		return
	}

	if err := utils.DeleteFileFromSupabase(fileURL); err != nil {
		log.Println("Không xóa được file trên storage:", err)
	}

	ws.SendChatEvent(message.ChatID.String(), map[string]interface{}{
		"type": "message_deleted", "chat_id": message.ChatID, "message_id": message.ID,
	})

	c.JSON(http.StatusOK, gin.H{"message": "Thu hồi tin nhắn thành công"})
}

// GET /api/chats/unread — số tin chưa đọc theo từng chat và tổng
func GetUnreadCounts(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	actorID, _ := uuid.Parse(c.GetString("user_id"))

	rows, total, err := unreadMessageCounts(db, actorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể đếm tin chưa đọc"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rows, "total": total})
}

// markChatMessagesRead ghi đã-đọc cho toàn bộ tin nhắn trong chat
// (set-union, đọc lại vô hại), trả về số tin vừa được đánh dấu.
func markChatMessagesRead(db *gorm.DB, chatID, userID uuid.UUID) (int64, error) {
	res := db.Exec(`
		INSERT INTO message_reads (message_id, user_id)
		SELECT m.id, ? FROM messages m
		WHERE m.chat_id = ?
		  AND NOT EXISTS (
			SELECT 1 FROM message_reads r
			WHERE r.message_id = m.id AND r.user_id = ?
		  )`, userID, chatID, userID)
	return res.RowsAffected, res.Error
}

type chatUnread struct {
	ChatID uuid.UUID `json:"chat_id"`
	Count  int64     `json:"count"`
}

// unreadMessageCounts đếm tin chưa đọc theo từng chat user là thành viên,
// bỏ qua tin của chính mình và tin đã thu hồi.
func unreadMessageCounts(db *gorm.DB, userID uuid.UUID) ([]chatUnread, int64, error) {
	var rows []chatUnread
	err := db.Table("messages").
		Select("messages.chat_id AS chat_id, COUNT(*) AS count").
		Joins("JOIN chat_users ON chat_users.chat_id = messages.chat_id AND chat_users.user_id = ?", userID).
		Where("messages.sender_id <> ?", userID).
		Where("messages.is_deleted = false").
		Where("NOT EXISTS (SELECT 1 FROM message_reads WHERE message_reads.message_id = messages.id AND message_reads.user_id = ?)", userID).
		Group("messages.chat_id").
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	var total int64
	for _, r := range rows {
		total += r.Count
	}
	return rows, total, nil
}
