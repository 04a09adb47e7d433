package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vnkhanh/campus-share-backend/services"
)

// POST /api/ai/ask — trợ lý học tập; từ chối câu hỏi ngoài phạm vi học thuật
func AskAI(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var input struct {
		Question    string `json:"question" binding:"required"`
		ContentType string `json:"content_type"`
		ContentID   string `json:"content_id"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Thiếu câu hỏi"})
		return
	}

	if !services.IsAcademicPrompt(input.Question) {
		c.JSON(http.StatusOK, gin.H{
			"answer":   "Mình chỉ hỗ trợ các câu hỏi liên quan đến học tập thôi. Bạn thử hỏi về môn học, bài giảng hoặc đề thi nhé!",
			"rejected": true,
		})
		return
	}

	prompt := "Bạn là trợ lý học tập cho sinh viên. Trả lời ngắn gọn, chính xác, bằng ngôn ngữ của câu hỏi.\n\nCâu hỏi: " + input.Question

	// Có chỉ định tài liệu thì nhét nội dung tài liệu vào ngữ cảnh
	if input.ContentType != "" && input.ContentID != "" {
		item, err := findContent(db, input.ContentType, input.ContentID)
		if err == nil && item.GetFileURL() != "" {
			text, err := services.ExtractTextFromURL(item.GetFileURL())
			if err != nil {
				log.Println("Không trích xuất được nội dung tài liệu:", err)
			} else if text != "" {
				prompt = "Bạn là trợ lý học tập cho sinh viên. Dựa vào tài liệu dưới đây để trả lời. " +
					"Trả lời ngắn gọn, chính xác, bằng ngôn ngữ của câu hỏi.\n\n" +
					"Tài liệu \"" + item.GetTitle() + "\":\n" + text +
					"\n\nCâu hỏi: " + input.Question
			}
		}
	}

	answer := services.GeminiGenerateText(c.Request.Context(), prompt)

	c.JSON(http.StatusOK, gin.H{"answer": answer, "rejected": false})
}
