package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/campus-share-backend/models"
	"github.com/vnkhanh/campus-share-backend/policy"
)

// Lấy hồ sơ của chính mình
func GetProfile(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var user models.User
	if err := db.Preload("EnrolledSubjects").
		First(&user, "id = ?", c.GetString("user_id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy người dùng"})
		return
	}

	user.Password = ""
	c.JSON(http.StatusOK, user)
}

type UpdateProfileInput struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`

	// Sinh viên được cập nhật hồ sơ cohort của mình
	StudentProfile *models.StudentProfile `json:"student_profile"`
}

// Tự cập nhật hồ sơ
func UpdateProfile(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := db.First(&user, "id = ?", c.GetString("user_id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy người dùng"})
		return
	}

	updates := map[string]interface{}{}
	if input.FullName != "" {
		updates["full_name"] = input.FullName
	}
	if input.Phone != "" {
		updates["phone"] = input.Phone
	}
	if input.StudentProfile != nil {
		if user.Role != models.RoleStudent {
			c.JSON(http.StatusBadRequest, gin.H{"error": models.ErrStudentProfileInvalid.Error()})
			return
		}
		updates["branch"] = input.StudentProfile.Branch
		updates["year"] = input.StudentProfile.Year
		updates["semester"] = input.StudentProfile.Semester
	}

	if len(updates) > 0 {
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi cập nhật hồ sơ"})
			return
		}
	}

	user.Password = ""
	c.JSON(http.StatusOK, gin.H{"message": "Cập nhật hồ sơ thành công", "user": user})
}

type PushTokenInput struct {
	PushToken string `json:"push_token" binding:"required"`
}

// Cập nhật push token cho thiết bị hiện tại
func UpdatePushToken(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var input PushTokenInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := db.Model(&models.User{}).
		Where("id = ?", c.GetString("user_id")).
		Update("push_token", input.PushToken).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật push token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cập nhật push token thành công"})
}

// Đăng ký / hủy đăng ký môn học
func EnrollSubject(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	subjectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Subject ID không hợp lệ"})
		return
	}

	var subject models.Subject
	if err := db.First(&subject, "id = ?", subjectID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy môn học"})
		return
	}

	var user models.User
	if err := db.First(&user, "id = ?", c.GetString("user_id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy người dùng"})
		return
	}

	// Append là set-union: đăng ký lại môn đã có không tạo bản ghi trùng
	if err := db.Model(&user).Association("EnrolledSubjects").Append(&subject); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể đăng ký môn học"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Đăng ký môn học thành công"})
}

func UnenrollSubject(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	subjectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Subject ID không hợp lệ"})
		return
	}

	var user models.User
	if err := db.First(&user, "id = ?", c.GetString("user_id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy người dùng"})
		return
	}

	if err := db.Model(&user).Association("EnrolledSubjects").
		Delete(&models.Subject{ID: subjectID}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể hủy đăng ký môn học"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Hủy đăng ký môn học thành công"})
}

// ==== ADMIN QUẢN LÝ NGƯỜI DÙNG ====

// GET /api/admin/users
func GetUsers(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	query := db.Model(&models.User{})

	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	if branch := c.Query("branch"); branch != "" {
		query = query.Where("branch = ?", branch)
	}
	if year := c.Query("year"); year != "" {
		query = query.Where("year = ?", year)
	}
	if semester := c.Query("semester"); semester != "" {
		query = query.Where("semester = ?", semester)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("full_name ILIKE ? OR email ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	page, limit := parsePagination(c)
	offset := (page - 1) * limit

	var total int64
	query.Count(&total)

	var users []models.User
	if err := query.Offset(offset).Limit(limit).Order("created_at DESC").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách người dùng"})
		return
	}

	for i := range users {
		users[i].Password = ""
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       users,
		"total":      total,
		"page":       page,
		"limit":      limit,
		"totalPages": (total + int64(limit) - 1) / int64(limit),
	})
}

type AdminUpdateUserInput struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
	Verified *bool  `json:"is_verified"`

	StudentProfile *models.StudentProfile `json:"student_profile"`
}

// PUT /api/admin/users/:id
func AdminUpdateUser(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID không hợp lệ"})
		return
	}

	var input AdminUpdateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy người dùng"})
		return
	}

	if input.FullName != "" {
		user.FullName = input.FullName
	}
	if input.Phone != "" {
		user.Phone = input.Phone
	}
	if input.Verified != nil {
		user.IsVerified = *input.Verified
	}

	// Đổi role (hoặc sửa hồ sơ sinh viên) đều đi qua ChangeRole để giữ
	// ràng buộc: student luôn có ngành/năm/học kỳ, teacher/admin thì không
	role := user.Role
	if input.Role != "" {
		role = models.UserRole(input.Role)
	}
	if err := user.ChangeRole(role, input.StudentProfile); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi cập nhật người dùng"})
		return
	}

	user.Password = ""
	c.JSON(http.StatusOK, gin.H{"message": "Cập nhật người dùng thành công", "user": user})
}

// DELETE /api/admin/users/:id — không bao giờ xóa admin cuối cùng
func AdminDeleteUser(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	actorRole := models.UserRole(c.GetString("role"))

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID không hợp lệ"})
		return
	}

	var target models.User
	if err := db.First(&target, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy người dùng"})
		return
	}

	var adminCount int64
	db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&adminCount)

	if err := policy.CanDeleteUser(actorRole, &target, adminCount); err != nil {
		if err == policy.ErrLastAdmin {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		}
		return
	}

	if err := db.Delete(&target).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi xóa người dùng"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Xóa người dùng thành công"})
}
