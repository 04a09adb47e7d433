package controllers

import (
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vnkhanh/campus-share-backend/models"
)

// testDB mở kết nối Postgres cho test tích hợp.
// Không có TEST_DATABASE_URL thì skip thay vì fail.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("cần TEST_DATABASE_URL trỏ tới Postgres để chạy test DB")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("không kết nối được DB test: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Chat{}, &models.Message{}, &models.ContentLike{}); err != nil {
		t.Fatalf("migrate thất bại: %v", err)
	}
	return db
}

func seedStudent(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()

	email := fmt.Sprintf("%s-%s@test.edu", name, uuid.New().String()[:8])
	u, err := models.NewUser(name, email, "", "hash", models.RoleStudent,
		&models.StudentProfile{Branch: "CNTT", Year: 2, Semester: 1})
	if err != nil {
		t.Fatalf("không dựng được user: %v", err)
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("không tạo được user: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM users WHERE id = ?", u.ID) })
	return u
}

func seedGroupChat(t *testing.T, db *gorm.DB, admin *models.User, members ...*models.User) *models.Chat {
	t.Helper()

	chat := &models.Chat{
		Name:         "Nhóm test",
		IsGroupChat:  true,
		GroupAdminID: &admin.ID,
	}
	chat.Users = append(chat.Users, *admin)
	for _, m := range members {
		chat.Users = append(chat.Users, *m)
	}
	if err := db.Create(chat).Error; err != nil {
		t.Fatalf("không tạo được chat: %v", err)
	}
	t.Cleanup(func() {
		db.Exec("DELETE FROM message_reads WHERE message_id IN (SELECT id FROM messages WHERE chat_id = ?)", chat.ID)
		db.Exec("UPDATE chats SET latest_message_id = NULL WHERE id = ?", chat.ID)
		db.Exec("DELETE FROM messages WHERE chat_id = ?", chat.ID)
		db.Exec("DELETE FROM chat_users WHERE chat_id = ?", chat.ID)
		db.Exec("DELETE FROM chats WHERE id = ?", chat.ID)
	})
	return chat
}

// seedMessage tạo tin nhắn và ghi người gửi vào read_by luôn, như SendMessage làm
func seedMessage(t *testing.T, db *gorm.DB, chat *models.Chat, sender *models.User, content string, deleted bool) *models.Message {
	t.Helper()

	msg := &models.Message{
		ChatID:   chat.ID,
		SenderID: sender.ID,
		Content:  content,
	}
	if deleted {
		msg.Content = models.DeletedPlaceholder
		msg.IsDeleted = true
	}
	if err := db.Create(msg).Error; err != nil {
		t.Fatalf("không tạo được tin nhắn: %v", err)
	}
	if err := db.Model(msg).Association("ReadBy").Append(sender); err != nil {
		t.Fatalf("không ghi được read_by cho người gửi: %v", err)
	}
	return msg
}

func TestUnreadCountsIgnoreOwnAndRecalled(t *testing.T) {
	db := testDB(t)
	a := seedStudent(t, db, "an")
	b := seedStudent(t, db, "binh")
	chat := seedGroupChat(t, db, a, b)

	seedMessage(t, db, chat, b, "tin 1", false)
	seedMessage(t, db, chat, b, "tin 2", false)
	seedMessage(t, db, chat, b, "tin bị thu hồi", true)
	seedMessage(t, db, chat, a, "tin của chính mình", false)

	rows, total, err := unreadMessageCounts(db, a.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Tin tự gửi và tin đã thu hồi không được tính
	if total != 2 {
		t.Fatalf("total = %d, want 2 (rows %+v)", total, rows)
	}
	if len(rows) != 1 || rows[0].ChatID != chat.ID || rows[0].Count != 2 {
		t.Fatalf("rows = %+v, want one row for chat %s with count 2", rows, chat.ID)
	}

	// Với B thì tin của A là tin chưa đọc duy nhất
	// (người gửi đã nằm sẵn trong read_by nên tin tự gửi không tính)
	_, totalB, err := unreadMessageCounts(db, b.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if totalB != 1 {
		t.Fatalf("total for B = %d, want 1", totalB)
	}
}

func TestPageFetchMarksWholeChatRead(t *testing.T) {
	db := testDB(t)
	a := seedStudent(t, db, "an")
	b := seedStudent(t, db, "binh")
	chat := seedGroupChat(t, db, a, b)
	other := seedGroupChat(t, db, b, a)

	for i := 0; i < 5; i++ {
		seedMessage(t, db, chat, b, fmt.Sprintf("tin %d", i), false)
	}
	seedMessage(t, db, other, b, "tin ở chat khác", false)

	marked, err := markChatMessagesRead(db, chat.ID, a.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if marked == 0 {
		t.Fatal("phải có tin được đánh dấu đã đọc")
	}

	rows, total, err := unreadMessageCounts(db, a.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Chat vừa mở về 0, chat khác giữ nguyên
	for _, r := range rows {
		if r.ChatID == chat.ID {
			t.Fatalf("chat vừa mở vẫn còn %d tin chưa đọc", r.Count)
		}
	}
	if total != 1 {
		t.Fatalf("total = %d, want 1 (chỉ còn chat kia)", total)
	}

	// Đọc lại vô hại: không có gì mới để đánh dấu
	marked, err = markChatMessagesRead(db, chat.ID, a.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if marked != 0 {
		t.Fatalf("đánh dấu lại phải là no-op, got %d", marked)
	}
}
