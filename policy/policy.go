// Package policy gom toàn bộ luật phân quyền thành các hàm quyết định thuần:
// nhận (actor, resource, action) và trả về nil (cho phép) hoặc lỗi (từ chối).
// Không có side effect; controller tự áp dụng kết quả trước khi ghi DB.
package policy

import (
	"errors"

	"github.com/google/uuid"

	"github.com/vnkhanh/campus-share-backend/models"
)

var (
	ErrNotAuthorized    = errors.New("không có quyền thực hiện thao tác này")
	ErrRoleRequired     = errors.New("chỉ giảng viên hoặc admin mới được phép")
	ErrAdminRequired    = errors.New("chỉ admin mới được phép")
	ErrLastAdmin        = errors.New("không thể xóa admin cuối cùng của hệ thống")
	ErrNotGroupChat     = errors.New("thao tác chỉ áp dụng cho nhóm chat")
	ErrNotMember        = errors.New("bạn không phải thành viên của nhóm này")
	ErrAlreadyMember    = errors.New("bạn đã là thành viên của nhóm này")
	ErrGroupNotPublic   = errors.New("nhóm này không công khai")
	ErrGroupAdminLeave  = errors.New("trưởng nhóm phải chuyển quyền trước khi rời nhóm")
	ErrRemoveGroupAdmin = errors.New("không thể xóa trưởng nhóm khỏi nhóm")
	ErrTargetNotMember  = errors.New("người được chọn không phải thành viên của nhóm")
)

// CanModifyResource: luật sở hữu — chủ sở hữu hoặc admin được sửa/xóa.
func CanModifyResource(actorID uuid.UUID, actorRole models.UserRole, ownerID uuid.UUID) error {
	if actorID == ownerID || actorRole == models.RoleAdmin {
		return nil
	}
	return ErrNotAuthorized
}

// CanCreateSyllabus: đề cương chỉ teacher/admin được đăng.
func CanCreateSyllabus(role models.UserRole) error {
	if role == models.RoleTeacher || role == models.RoleAdmin {
		return nil
	}
	return ErrRoleRequired
}

// CanVerifyContent: duyệt nội dung không phụ thuộc sở hữu, chỉ cần role.
func CanVerifyContent(role models.UserRole) error {
	if role == models.RoleTeacher || role == models.RoleAdmin {
		return nil
	}
	return ErrRoleRequired
}

// CanManageAnnouncements: tạo thông báo chung cần teacher/admin.
func CanManageAnnouncements(role models.UserRole) error {
	if role == models.RoleTeacher || role == models.RoleAdmin {
		return nil
	}
	return ErrRoleRequired
}

// CanManageUsers: quản lý tài khoản là đặc quyền của admin.
func CanManageUsers(role models.UserRole) error {
	if role == models.RoleAdmin {
		return nil
	}
	return ErrAdminRequired
}

// CanDeleteUser: luật "admin cuối cùng" — không cho xóa nếu hệ thống
// chỉ còn đúng một admin và target chính là admin đó.
func CanDeleteUser(actorRole models.UserRole, target *models.User, adminCount int64) error {
	if actorRole != models.RoleAdmin {
		return ErrAdminRequired
	}
	if target.Role == models.RoleAdmin && adminCount <= 1 {
		return ErrLastAdmin
	}
	return nil
}

// CanManageGroup: đổi tên, đổi phạm vi, thêm/xóa thành viên, chuyển quyền —
// trưởng nhóm hoặc admin hệ thống.
func CanManageGroup(actorID uuid.UUID, actorRole models.UserRole, chat *models.Chat) error {
	if !chat.IsGroupChat {
		return ErrNotGroupChat
	}
	if chat.IsGroupAdmin(actorID) || actorRole == models.RoleAdmin {
		return nil
	}
	return ErrNotAuthorized
}

// CanJoinGroup: chỉ nhóm public, và chưa là thành viên.
func CanJoinGroup(chat *models.Chat, userID uuid.UUID) error {
	if !chat.IsGroupChat {
		return ErrNotGroupChat
	}
	if !chat.IsPublic {
		return ErrGroupNotPublic
	}
	if chat.HasMember(userID) {
		return ErrAlreadyMember
	}
	return nil
}

// CanLeaveGroup: thành viên thường được rời; trưởng nhóm phải chuyển quyền trước.
func CanLeaveGroup(chat *models.Chat, userID uuid.UUID) error {
	if !chat.IsGroupChat {
		return ErrNotGroupChat
	}
	if !chat.HasMember(userID) {
		return ErrNotMember
	}
	if chat.IsGroupAdmin(userID) {
		return ErrGroupAdminLeave
	}
	return nil
}

// CanRemoveMember: người quản lý nhóm được xóa thành viên, nhưng trưởng nhóm
// chỉ admin hệ thống mới xóa được.
func CanRemoveMember(actorID uuid.UUID, actorRole models.UserRole, chat *models.Chat, targetID uuid.UUID) error {
	if err := CanManageGroup(actorID, actorRole, chat); err != nil {
		return err
	}
	if !chat.HasMember(targetID) {
		return ErrTargetNotMember
	}
	if chat.IsGroupAdmin(targetID) && actorRole != models.RoleAdmin {
		return ErrRemoveGroupAdmin
	}
	return nil
}

// CanTransferOwnership: chuyển quyền trưởng nhóm cho một thành viên hiện có.
func CanTransferOwnership(actorID uuid.UUID, actorRole models.UserRole, chat *models.Chat, targetID uuid.UUID) error {
	if err := CanManageGroup(actorID, actorRole, chat); err != nil {
		return err
	}
	if !chat.HasMember(targetID) {
		return ErrTargetNotMember
	}
	return nil
}

// CanDeleteMessage: người gửi hoặc admin hệ thống được thu hồi tin nhắn.
func CanDeleteMessage(actorID uuid.UUID, actorRole models.UserRole, senderID uuid.UUID) error {
	return CanModifyResource(actorID, actorRole, senderID)
}
