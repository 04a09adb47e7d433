package controllers

import (
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/vnkhanh/campus-share-backend/models"
)

func TestReassignGroupAdminPicksOldestMember(t *testing.T) {
	db := testDB(t)
	older := seedStudent(t, db, "cu")
	admin := seedStudent(t, db, "truong-nhom")
	chat := seedGroupChat(t, db, admin, older)

	if err := db.Exec("DELETE FROM chat_users WHERE chat_id = ? AND user_id = ?", chat.ID, admin.ID).Error; err != nil {
		t.Fatalf("không gỡ được admin khỏi nhóm: %v", err)
	}
	reassignGroupAdmin(db, chat, admin.ID)

	var got models.Chat
	if err := db.First(&got, "id = ?", chat.ID).Error; err != nil {
		t.Fatalf("nhóm còn thành viên thì không được xóa: %v", err)
	}
	if got.GroupAdminID == nil || *got.GroupAdminID != older.ID {
		t.Fatalf("group_admin_id = %v, want %s", got.GroupAdminID, older.ID)
	}
}

func TestReassignGroupAdminDissolvesEmptyGroup(t *testing.T) {
	db := testDB(t)
	admin := seedStudent(t, db, "truong-nhom")
	chat := seedGroupChat(t, db, admin)
	seedMessage(t, db, chat, admin, "tin cuối", false)

	if err := db.Exec("DELETE FROM chat_users WHERE chat_id = ? AND user_id = ?", chat.ID, admin.ID).Error; err != nil {
		t.Fatalf("không gỡ được admin khỏi nhóm: %v", err)
	}
	reassignGroupAdmin(db, chat, admin.ID)

	// Nhóm không còn ai thì giải tán luôn, không để nhóm treo không admin
	var got models.Chat
	err := db.First(&got, "id = ?", chat.ID).Error
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("nhóm rỗng phải bị xóa, got %v (chat %+v)", err, got)
	}

	var remaining int64
	db.Model(&models.Message{}).Where("chat_id = ?", chat.ID).Count(&remaining)
	if remaining != 0 {
		t.Fatalf("tin nhắn của nhóm đã giải tán phải bị xóa, còn %d", remaining)
	}
}
