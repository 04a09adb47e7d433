package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/campus-share-backend/models"
	"github.com/vnkhanh/campus-share-backend/policy"
	"github.com/vnkhanh/campus-share-backend/ws"
)

// POST /api/chats — truy cập chat 1-1: có rồi thì trả về, chưa có thì tạo
func AccessChat(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	actorID, _ := uuid.Parse(c.GetString("user_id"))

	var input struct {
		UserID string `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Thiếu user_id"})
		return
	}

	otherID, err := uuid.Parse(input.UserID)
	if err != nil || otherID == actorID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return
	}

	var other models.User
	if err := db.First(&other, "id = ?", otherID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Người dùng không tồn tại"})
		return
	}

	// Tìm chat 1-1 đã có giữa hai người
	var chat models.Chat
	err = db.Preload("Users").Preload("LatestMessage").
		Where("is_group_chat = false").
		Where("id IN (?)",
			db.Table("chat_users").Select("chat_id").Where("user_id = ?", actorID)).
		Where("id IN (?)",
			db.Table("chat_users").Select("chat_id").Where("user_id = ?", otherID)).
		First(&chat).Error

	if err == nil {
		sanitizeChat(&chat)
		c.JSON(http.StatusOK, gin.H{"chat": chat, "created": false})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi tìm chat"})
		return
	}

	var me models.User
	if err := db.First(&me, "id = ?", actorID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Không tìm thấy người dùng"})
		return
	}

	chat = models.Chat{IsGroupChat: false}
	if err := db.Create(&chat).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo chat"})
		return
	}
	if err := db.Model(&chat).Association("Users").Append(&me, &other); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể thêm thành viên"})
		return
	}

	db.Preload("Users").First(&chat, "id = ?", chat.ID)
	sanitizeChat(&chat)
	c.JSON(http.StatusCreated, gin.H{"chat": chat, "created": true})
}

// POST /api/chats/group — tạo nhóm, người tạo là group admin
func CreateGroupChat(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	actorID, _ := uuid.Parse(c.GetString("user_id"))

	var input struct {
		Name     string   `json:"name" binding:"required"`
		UserIDs  []string `json:"user_ids"`
		IsPublic bool     `json:"is_public"`
		Subject  string   `json:"subject_id"`
		Branch   *string  `json:"branch"`
		Year     *int     `json:"year"`
		Semester *int     `json:"semester"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Thiếu tên nhóm"})
		return
	}

	chat := models.Chat{
		Name:         input.Name,
		IsGroupChat:  true,
		IsPublic:     input.IsPublic,
		GroupAdminID: &actorID,
		Branch:       input.Branch,
		Year:         input.Year,
		Semester:     input.Semester,
	}
	if input.Subject != "" {
		subjectID, err := uuid.Parse(input.Subject)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "subject_id không hợp lệ"})
			return
		}
		chat.SubjectID = &subjectID
	}

	if err := db.Create(&chat).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo nhóm"})
		return
	}

	// Gom ID thành viên ban đầu (bỏ trùng, luôn gồm người tạo)
	memberIDs := map[uuid.UUID]bool{actorID: true}
	for _, raw := range input.UserIDs {
		if id, err := uuid.Parse(raw); err == nil {
			memberIDs[id] = true
		}
	}
	ids := make([]uuid.UUID, 0, len(memberIDs))
	for id := range memberIDs {
		ids = append(ids, id)
	}

	var members []models.User
	if err := db.Where("id IN ?", ids).Find(&members).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy thành viên"})
		return
	}
	if err := db.Model(&chat).Association("Users").Append(&members); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể thêm thành viên"})
		return
	}

	for _, m := range members {
		if m.ID == actorID {
			continue
		}
		notifyChatMember(db, m.ID, chat.ID, "Nhóm mới", "Bạn được thêm vào nhóm \""+chat.Name+"\"")
	}

	db.Preload("Users").Preload("GroupAdmin").First(&chat, "id = ?", chat.ID)
	sanitizeChat(&chat)
	c.JSON(http.StatusCreated, gin.H{"message": "Tạo nhóm thành công", "chat": chat})
}

// GET /api/chats — các chat mình tham gia, mới nhắn gần nhất lên đầu
func GetChats(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	actorID, _ := uuid.Parse(c.GetString("user_id"))

	var chats []models.Chat
	if err := db.Preload("Users").Preload("GroupAdmin").Preload("LatestMessage").Preload("LatestMessage.Sender").
		Where("id IN (?)",
			db.Table("chat_users").Select("chat_id").Where("user_id = ?", actorID)).
		Order("updated_at DESC").Find(&chats).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách chat"})
		return
	}

	for i := range chats {
		sanitizeChat(&chats[i])
	}

	c.JSON(http.StatusOK, gin.H{"data": chats})
}

// GET /api/chats/public — nhóm public theo phạm vi, để sinh viên tự tìm và join
func GetPublicGroups(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	query := db.Model(&models.Chat{}).
		Where("is_group_chat = true AND is_public = true")

	if branch := c.Query("branch"); branch != "" {
		query = query.Where("branch = ?", branch)
	}
	if year := c.Query("year"); year != "" {
		if v, err := strconv.Atoi(year); err == nil {
			query = query.Where("year = ?", v)
		}
	}
	if semester := c.Query("semester"); semester != "" {
		if v, err := strconv.Atoi(semester); err == nil {
			query = query.Where("semester = ?", v)
		}
	}
	if subject := c.Query("subject_id"); subject != "" {
		if id, err := uuid.Parse(subject); err == nil {
			query = query.Where("subject_id = ?", id)
		}
	}

	var chats []models.Chat
	if err := query.Preload("Subject").Preload("GroupAdmin").
		Order("created_at DESC").Find(&chats).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách nhóm"})
		return
	}

	for i := range chats {
		sanitizeChat(&chats[i])
	}

	c.JSON(http.StatusOK, gin.H{"data": chats})
}

// PUT /api/chats/:id — đổi tên / đổi phạm vi / đổi public (group admin hoặc app admin)
func UpdateGroup(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	actorID, _ := uuid.Parse(c.GetString("user_id"))
	actorRole := models.UserRole(c.GetString("role"))

	chat, ok := loadGroupChat(c, db)
	if !ok {
		return
	}

	if err := policy.CanManageGroup(actorID, actorRole, chat); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}

	var input struct {
		Name     string  `json:"name"`
		IsPublic *bool   `json:"is_public"`
		Subject  *string `json:"subject_id"`
		Branch   *string `json:"branch"`
		Year     *int    `json:"year"`
		Semester *int    `json:"semester"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if input.Name != "" {
		updates["name"] = input.Name
	}
	if input.IsPublic != nil {
		updates["is_public"] = *input.IsPublic
	}
	if input.Subject != nil {
		if *input.Subject == "" {
			updates["subject_id"] = nil
		} else {
			subjectID, err := uuid.Parse(*input.Subject)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "subject_id không hợp lệ"})
				return
			}
			updates["subject_id"] = subjectID
		}
	}
	if input.Branch != nil {
		updates["branch"] = input.Branch
	}
	if input.Year != nil {
		updates["year"] = input.Year
	}
	if input.Semester != nil {
		updates["semester"] = input.Semester
	}

	if len(updates) > 0 {
		if err := db.Model(chat).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật nhóm"})
			return
		}
	}

	ws.SendChatEvent(chat.ID.String(), map[string]interface{}{
		"type": "group_updated", "chat_id": chat.ID,
	})

	c.JSON(http.StatusOK, gin.H{"message": "Cập nhật nhóm thành công", "chat": chat})
}

// POST /api/chats/:id/members — thêm thành viên; thêm người đã có là no-op
func AddGroupMember(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	actorID, _ := uuid.Parse(c.GetString("user_id"))
	actorRole := models.UserRole(c.GetString("role"))

	chat, ok := loadGroupChat(c, db)
	if !ok {
		return
	}

	if err := policy.CanManageGroup(actorID, actorRole, chat); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}

	var input struct {
		UserID string `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Thiếu user_id"})
		return
	}
	targetID, err := uuid.Parse(input.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return
	}

	var target models.User
	if err := db.First(&target, "id = ?", targetID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Người dùng không tồn tại"})
		return
	}

	alreadyMember := chat.HasMember(targetID)
	// Append trên many2many là set-union nên gọi lại không tạo bản ghi trùng
	if err := db.Model(chat).Association("Users").Append(&target); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể thêm thành viên"})
		return
	}

	if !alreadyMember {
		notifyChatMember(db, targetID, chat.ID, "Nhóm mới", "Bạn được thêm vào nhóm \""+chat.Name+"\"")
		ws.SendChatEvent(chat.ID.String(), map[string]interface{}{
			"type": "member_added", "chat_id": chat.ID, "user_id": targetID,
		})
	}

	c.JSON(http.StatusOK, gin.H{"message": "Thêm thành viên thành công"})
}

// DELETE /api/chats/:id/members/:userId — không được gỡ group admin (trừ app admin)
func RemoveGroupMember(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	actorID, _ := uuid.Parse(c.GetString("user_id"))
	actorRole := models.UserRole(c.GetString("role"))

	chat, ok := loadGroupChat(c, db)
	if !ok {
		return
	}

	targetID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID không hợp lệ"})
		return
	}

	if err := policy.CanRemoveMember(actorID, actorRole, chat, targetID); err != nil {
		status := http.StatusForbidden
		if errors.Is(err, policy.ErrTargetNotMember) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	var target models.User
	if err := db.First(&target, "id = ?", targetID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Người dùng không tồn tại"})
		return
	}
	if err := db.Model(chat).Association("Users").Delete(&target); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể gỡ thành viên"})
		return
	}

	// App admin gỡ chính group admin thì nhóm cần admin mới
	if chat.IsGroupAdmin(targetID) {
		reassignGroupAdmin(db, chat, targetID)
	}

	ws.SendChatEvent(chat.ID.String(), map[string]interface{}{
		"type": "member_removed", "chat_id": chat.ID, "user_id": targetID,
	})

	c.JSON(http.StatusOK, gin.H{"message": "Gỡ thành viên thành công"})
}

// POST /api/chats/:id/join — chỉ nhóm public
func JoinGroup(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	actorID, _ := uuid.Parse(c.GetString("user_id"))

	chat, ok := loadGroupChat(c, db)
	if !ok {
		return
	}

	if err := policy.CanJoinGroup(chat, actorID); err != nil {
		status := http.StatusForbidden
		if errors.Is(err, policy.ErrAlreadyMember) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	var me models.User
	if err := db.First(&me, "id = ?", actorID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Không tìm thấy người dùng"})
		return
	}
	if err := db.Model(chat).Association("Users").Append(&me); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tham gia nhóm"})
		return
	}

	// Báo cho group admin có người mới tham gia
	if chat.GroupAdminID != nil {
		notifyChatMember(db, *chat.GroupAdminID, chat.ID, "Thành viên mới",
			me.FullName+" đã tham gia nhóm \""+chat.Name+"\"")
	}
	ws.SendChatEvent(chat.ID.String(), map[string]interface{}{
		"type": "member_joined", "chat_id": chat.ID, "user_id": actorID,
	})

	c.JSON(http.StatusOK, gin.H{"message": "Tham gia nhóm thành công"})
}

// POST /api/chats/:id/leave — group admin phải chuyển quyền trước khi rời
func LeaveGroup(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	actorID, _ := uuid.Parse(c.GetString("user_id"))

	chat, ok := loadGroupChat(c, db)
	if !ok {
		return
	}

	if err := policy.CanLeaveGroup(chat, actorID); err != nil {
		status := http.StatusForbidden
		if errors.Is(err, policy.ErrNotMember) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	var me models.User
	if err := db.First(&me, "id = ?", actorID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Không tìm thấy người dùng"})
		return
	}
	if err := db.Model(chat).Association("Users").Delete(&me); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể rời nhóm"})
		return
	}

	ws.SendChatEvent(chat.ID.String(), map[string]interface{}{
		"type": "member_left", "chat_id": chat.ID, "user_id": actorID,
	})

	c.JSON(http.StatusOK, gin.H{"message": "Rời nhóm thành công"})
}

// POST /api/chats/:id/transfer — chuyển quyền group admin cho một thành viên
func TransferGroupOwnership(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	actorID, _ := uuid.Parse(c.GetString("user_id"))
	actorRole := models.UserRole(c.GetString("role"))

	chat, ok := loadGroupChat(c, db)
	if !ok {
		return
	}

	var input struct {
		UserID string `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Thiếu user_id"})
		return
	}
	targetID, err := uuid.Parse(input.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return
	}

	if err := policy.CanTransferOwnership(actorID, actorRole, chat, targetID); err != nil {
		status := http.StatusForbidden
		if errors.Is(err, policy.ErrTargetNotMember) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	if err := db.Model(chat).Update("group_admin_id", targetID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể chuyển quyền"})
		return
	}

	notifyChatMember(db, targetID, chat.ID, "Quyền quản trị nhóm",
		"Bạn là quản trị viên mới của nhóm \""+chat.Name+"\"")
	ws.SendChatEvent(chat.ID.String(), map[string]interface{}{
		"type": "admin_changed", "chat_id": chat.ID, "user_id": targetID,
	})

	c.JSON(http.StatusOK, gin.H{"message": "Chuyển quyền thành công"})
}

// DELETE /api/chats/:id — giải tán nhóm (group admin hoặc app admin)
func DeleteGroup(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	actorID, _ := uuid.Parse(c.GetString("user_id"))
	actorRole := models.UserRole(c.GetString("role"))

	chat, ok := loadGroupChat(c, db)
	if !ok {
		return
	}

	if err := policy.CanManageGroup(actorID, actorRole, chat); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}

	// Gỡ con trỏ latest message trước để khỏi vướng FK khi xóa message
	db.Model(chat).Update("latest_message_id", nil)
	db.Where("chat_id = ?", chat.ID).Delete(&models.Message{})
	if err := db.Model(chat).Association("Users").Clear(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể giải tán nhóm"})
		return
	}
	if err := db.Delete(chat).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể giải tán nhóm"})
		return
	}

	ws.SendChatEvent(chat.ID.String(), map[string]interface{}{
		"type": "group_deleted", "chat_id": chat.ID,
	})

	c.JSON(http.StatusOK, gin.H{"message": "Giải tán nhóm thành công"})
}

// loadGroupChat đọc :id, preload thành viên và đảm bảo đây là nhóm
func loadGroupChat(c *gin.Context, db *gorm.DB) (*models.Chat, bool) {
	chatID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Chat ID không hợp lệ"})
		return nil, false
	}

	var chat models.Chat
	if err := db.Preload("Users").First(&chat, "id = ?", chatID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Chat không tồn tại"})
		return nil, false
	}
	if !chat.IsGroupChat {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Không phải nhóm chat"})
		return nil, false
	}
	return &chat, true
}

// reassignGroupAdmin chọn thành viên còn lại lâu năm nhất làm admin mới;
// nhóm không còn ai thì giải tán luôn, không để nhóm treo không admin
func reassignGroupAdmin(db *gorm.DB, chat *models.Chat, removedID uuid.UUID) {
	var next models.User
	err := db.Joins("JOIN chat_users ON chat_users.user_id = users.id").
		Where("chat_users.chat_id = ? AND users.id <> ?", chat.ID, removedID).
		Order("users.created_at ASC").First(&next).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		dissolveGroup(db, chat)
		return
	}
	if err != nil {
		return
	}
	db.Model(chat).Update("group_admin_id", next.ID)
}

// dissolveGroup xóa nhóm cùng tin nhắn và liên kết thành viên
func dissolveGroup(db *gorm.DB, chat *models.Chat) {
	db.Model(chat).Update("latest_message_id", nil)
	db.Where("chat_id = ?", chat.ID).Delete(&models.Message{})
	db.Model(chat).Association("Users").Clear()
	db.Delete(chat)

	ws.SendChatEvent(chat.ID.String(), map[string]interface{}{
		"type": "group_deleted", "chat_id": chat.ID,
	})
}

func notifyChatMember(db *gorm.DB, userID, chatID uuid.UUID, title, message string) {
	notif := models.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    "chat",
		ChatID:  &chatID,
	}
	if err := db.Create(&notif).Error; err != nil {
		return
	}
	ws.NotifyUser(userID.String(), map[string]interface{}{
		"type": "notification", "notification": notif,
	})
	var unread int64
	db.Model(&models.Notification{}).Where("user_id = ? AND is_read = false", userID).Count(&unread)
	ws.SendBadgeUpdate(userID.String(), unread)
}

func sanitizeChat(chat *models.Chat) {
	for i := range chat.Users {
		chat.Users[i].Password = ""
	}
	if chat.GroupAdmin != nil {
		chat.GroupAdmin.Password = ""
	}
	if chat.LatestMessage != nil {
		chat.LatestMessage.Sender.Password = ""
	}
}
