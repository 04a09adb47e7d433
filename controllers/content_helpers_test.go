package controllers

import (
	"os"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vnkhanh/campus-share-backend/models"
)

func TestLikeExists(t *testing.T) {
	db := testDB(t)
	user := seedStudent(t, db, "an")
	contentID := uuid.New()

	liked, err := likeExists(db, "note", contentID, user.ID)
	if err != nil {
		t.Fatalf("chưa like phải là (false, nil), got err %v", err)
	}
	if liked {
		t.Fatal("chưa like mà báo đã like")
	}

	like := models.ContentLike{ContentType: "note", ContentID: contentID, UserID: user.ID}
	if err := db.Create(&like).Error; err != nil {
		t.Fatalf("không tạo được like: %v", err)
	}
	t.Cleanup(func() {
		db.Exec("DELETE FROM content_likes WHERE content_id = ?", contentID)
	})

	liked, err = likeExists(db, "note", contentID, user.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !liked {
		t.Fatal("đã like mà báo chưa like")
	}
}

func TestLikeExistsReportsQueryError(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("cần TEST_DATABASE_URL trỏ tới Postgres để chạy test DB")
	}

	broken, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("không kết nối được DB test: %v", err)
	}
	sqlDB, err := broken.DB()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sqlDB.Close()

	// Lỗi truy vấn thật sự không được nhầm thành "chưa like"
	if _, err := likeExists(broken, "note", uuid.New(), uuid.New()); err == nil {
		t.Fatal("kết nối hỏng phải trả lỗi thay vì (false, nil)")
	}
}
