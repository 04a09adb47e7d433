package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vnkhanh/campus-share-backend/controllers"
	"github.com/vnkhanh/campus-share-backend/middleware"
	"github.com/vnkhanh/campus-share-backend/ws"
)

func SetupRouter(r *gin.Engine, db *gorm.DB) *gin.Engine {
	r.Use(middleware.DBMiddleware(db))

	r.GET("/health", controllers.HealthCheck)

	// Route công khai, không cần token
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
		auth.POST("/google", controllers.GoogleLogin)
		auth.POST("/forgot-password", controllers.ForgotPassword)
		auth.POST("/reset-password", controllers.ResetPassword)
	}

	// Danh mục môn học xem được cả khi chưa đăng nhập
	subjects := r.Group("/api/subjects")
	subjects.Use(middleware.OptionalAuthMiddleware())
	{
		subjects.GET("", controllers.GetSubjects)
		subjects.GET("/:id", controllers.GetSubjectDetail)
	}

	// Route cần đăng nhập
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware())
	{
		api.POST("/auth/change-password", controllers.ChangePassword)

		// Hồ sơ cá nhân
		api.GET("/me", controllers.GetProfile)
		api.PUT("/me", controllers.UpdateProfile)
		api.PUT("/me/push-token", controllers.UpdatePushToken)
		api.POST("/me/subjects/:id", controllers.EnrollSubject)
		api.DELETE("/me/subjects/:id", controllers.UnenrollSubject)

		// Tài liệu
		notes := api.Group("/notes")
		{
			notes.POST("", controllers.CreateNote)
			notes.GET("", controllers.GetNotes)
			notes.GET("/:id", controllers.GetNoteDetail)
			notes.PUT("/:id", controllers.UpdateNote)
			notes.DELETE("/:id", controllers.DeleteNote)
			notes.GET("/:id/download", controllers.DownloadContent("note"))
			notes.POST("/:id/like", controllers.ToggleLike("note"))
			notes.POST("/:id/rate", controllers.RateContent("note"))
		}

		// Đề cương
		syllabi := api.Group("/syllabi")
		{
			syllabi.POST("", controllers.CreateSyllabus)
			syllabi.GET("", controllers.GetSyllabi)
			syllabi.GET("/:id", controllers.GetSyllabusDetail)
			syllabi.PUT("/:id", controllers.UpdateSyllabus)
			syllabi.DELETE("/:id", controllers.DeleteSyllabus)
			syllabi.GET("/:id/download", controllers.DownloadContent("syllabus"))
			syllabi.POST("/:id/like", controllers.ToggleLike("syllabus"))
			syllabi.POST("/:id/rate", controllers.RateContent("syllabus"))
		}

		// Video bài giảng
		videos := api.Group("/videos")
		{
			videos.POST("", controllers.CreateVideo)
			videos.GET("", controllers.GetVideos)
			videos.GET("/:id", controllers.GetVideoDetail)
			videos.PUT("/:id", controllers.UpdateVideo)
			videos.DELETE("/:id", controllers.DeleteVideo)
			videos.GET("/:id/download", controllers.DownloadContent("video"))
			videos.POST("/:id/like", controllers.ToggleLike("video"))
			videos.POST("/:id/rate", controllers.RateContent("video"))
		}

		// Đề thi năm trước
		pyqs := api.Group("/pyqs")
		{
			pyqs.POST("", controllers.CreatePYQ)
			pyqs.GET("", controllers.GetPYQs)
			pyqs.GET("/:id", controllers.GetPYQDetail)
			pyqs.PUT("/:id", controllers.UpdatePYQ)
			pyqs.DELETE("/:id", controllers.DeletePYQ)
			pyqs.GET("/:id/download", controllers.DownloadContent("pyq"))
			pyqs.POST("/:id/like", controllers.ToggleLike("pyq"))
			pyqs.POST("/:id/rate", controllers.RateContent("pyq"))
		}

		// Bình luận (đa hình theo loại nội dung)
		api.POST("/content/:type/:id/comments", controllers.CreateComment)
		api.GET("/content/:type/:id/comments", controllers.GetComments)
		api.DELETE("/comments/:id", controllers.DeleteComment)

		// Thông báo chung
		api.GET("/announcements", controllers.GetAnnouncements)

		// Chat
		chats := api.Group("/chats")
		{
			chats.POST("", controllers.AccessChat)
			chats.GET("", controllers.GetChats)
			chats.GET("/public", controllers.GetPublicGroups)
			chats.GET("/unread", controllers.GetUnreadCounts)
			chats.POST("/group", controllers.CreateGroupChat)
			chats.PUT("/:id", controllers.UpdateGroup)
			chats.POST("/:id/members", controllers.AddGroupMember)
			chats.DELETE("/:id/members/:userId", controllers.RemoveGroupMember)
			chats.POST("/:id/join", controllers.JoinGroup)
			chats.POST("/:id/leave", controllers.LeaveGroup)
			chats.POST("/:id/transfer", controllers.TransferGroupOwnership)
			chats.DELETE("/:id", controllers.DeleteGroup)
			chats.POST("/:id/messages", controllers.SendMessage)
			chats.GET("/:id/messages", controllers.GetMessages)
		}
		api.DELETE("/messages/:id", controllers.DeleteMessage)

		// Thông báo cá nhân
		notifications := api.Group("/notifications")
		{
			notifications.GET("", controllers.GetNotifications)
			notifications.GET("/unread-count", controllers.GetUnreadNotificationCount)
			notifications.PUT("/read-all", controllers.MarkAllNotificationsRead)
			notifications.PUT("/:id/read", controllers.MarkNotificationRead)
			notifications.DELETE("/:id", controllers.DeleteNotification)
		}

		// Trợ lý học tập
		api.POST("/ai/ask", controllers.AskAI)
	}

	// Route cho teacher/admin
	staff := r.Group("/api")
	staff.Use(middleware.AuthMiddleware(), middleware.RequireRoles("teacher", "admin"))
	{
		staff.POST("/announcements", controllers.CreateAnnouncement)
		staff.PUT("/announcements/:id", controllers.UpdateAnnouncement)
		staff.DELETE("/announcements/:id", controllers.DeleteAnnouncement)

		staff.POST("/notes/:id/verify", controllers.VerifyContent("note"))
		staff.POST("/syllabi/:id/verify", controllers.VerifyContent("syllabus"))
		staff.POST("/videos/:id/verify", controllers.VerifyContent("video"))
		staff.POST("/pyqs/:id/verify", controllers.VerifyContent("pyq"))
	}

	// Route chỉ dành cho admin
	admin := r.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRoles("admin"))
	{
		admin.POST("/users", controllers.AdminCreateStaff)
		admin.GET("/users", controllers.GetUsers)
		admin.PUT("/users/:id", controllers.AdminUpdateUser)
		admin.DELETE("/users/:id", controllers.AdminDeleteUser)

		admin.POST("/subjects", controllers.CreateSubject)
		admin.PUT("/subjects/:id", controllers.UpdateSubject)
		admin.PATCH("/subjects/:id/status", controllers.ToggleSubjectStatus)
		admin.DELETE("/subjects/:id", controllers.DeleteSubject)
	}

	// WebSocket (xác thực bằng token query param trong handler)
	r.GET("/ws/chat/:id", ws.HandleChatWebSocket)
	r.GET("/ws/user", ws.HandleUserWebSocket)

	return r
}
