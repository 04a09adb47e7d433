package utils

import (
	"log"
	"time"

	"github.com/vnkhanh/campus-share-backend/config"
	"github.com/vnkhanh/campus-share-backend/models"
)

// CleanupExpiredOTPs xóa các mã OTP đã hết hạn hoặc đã sử dụng
func CleanupExpiredOTPs() {
	db := config.DB

	result := db.Where("expires_at < ? OR used = ?", time.Now(), true).
		Delete(&models.PasswordReset{})

	if result.Error != nil {
		log.Printf("Lỗi khi xóa password reset OTP: %v", result.Error)
		return
	}

	if result.RowsAffected > 0 {
		log.Printf("Đã xóa %d OTP hết hạn/đã dùng", result.RowsAffected)
	}
}

// StartCleanupJob chạy cleanup job định kỳ
func StartCleanupJob() {
	// Chạy cleanup ngay lần đầu khi khởi động
	CleanupExpiredOTPs()

	ticker := time.NewTicker(6 * time.Hour)

	go func() {
		defer ticker.Stop()
		for range ticker.C {
			CleanupExpiredOTPs()
		}
	}()

	log.Println("Cleanup job đã được khởi động (chạy mỗi 6 giờ)")
}
