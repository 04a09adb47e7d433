package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GET /health — kiểm tra server và kết nối DB
func HealthCheck(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	sqlDB, err := db.DB()
	if err != nil || sqlDB.Ping() != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"db":     "down",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"db":     "up",
		"time":   time.Now().Format(time.RFC3339),
	})
}
