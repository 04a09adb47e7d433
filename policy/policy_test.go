package policy

import (
	"testing"

	"github.com/google/uuid"

	"github.com/vnkhanh/campus-share-backend/models"
)

func TestCanModifyResource(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()

	if err := CanModifyResource(owner, models.RoleStudent, owner); err != nil {
		t.Fatalf("owner should be allowed: %v", err)
	}
	if err := CanModifyResource(other, models.RoleAdmin, owner); err != nil {
		t.Fatalf("admin should be allowed: %v", err)
	}
	if err := CanModifyResource(other, models.RoleStudent, owner); err != ErrNotAuthorized {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
	if err := CanModifyResource(other, models.RoleTeacher, owner); err != ErrNotAuthorized {
		t.Fatalf("teacher without ownership should be denied, got %v", err)
	}
}

func TestRoleGates(t *testing.T) {
	if err := CanCreateSyllabus(models.RoleStudent); err != ErrRoleRequired {
		t.Fatalf("student must not create syllabus, got %v", err)
	}
	if err := CanCreateSyllabus(models.RoleTeacher); err != nil {
		t.Fatalf("teacher should create syllabus: %v", err)
	}
	if err := CanVerifyContent(models.RoleStudent); err != ErrRoleRequired {
		t.Fatalf("student must not verify, got %v", err)
	}
	if err := CanVerifyContent(models.RoleAdmin); err != nil {
		t.Fatalf("admin should verify: %v", err)
	}
	if err := CanManageUsers(models.RoleTeacher); err != ErrAdminRequired {
		t.Fatalf("teacher must not manage users, got %v", err)
	}
}

func TestLastAdminRule(t *testing.T) {
	admin := &models.User{Role: models.RoleAdmin}
	student := &models.User{Role: models.RoleStudent}

	if err := CanDeleteUser(models.RoleAdmin, admin, 1); err != ErrLastAdmin {
		t.Fatalf("deleting the last admin must fail, got %v", err)
	}
	if err := CanDeleteUser(models.RoleAdmin, admin, 2); err != nil {
		t.Fatalf("deleting one of two admins should pass: %v", err)
	}
	if err := CanDeleteUser(models.RoleAdmin, student, 1); err != nil {
		t.Fatalf("deleting a student never hits the last-admin rule: %v", err)
	}
	if err := CanDeleteUser(models.RoleTeacher, student, 5); err != ErrAdminRequired {
		t.Fatalf("only admin can delete users, got %v", err)
	}
}

func groupChat(adminID uuid.UUID, memberIDs ...uuid.UUID) *models.Chat {
	chat := &models.Chat{
		IsGroupChat:  true,
		GroupAdminID: &adminID,
	}
	chat.Users = append(chat.Users, models.User{ID: adminID})
	for _, id := range memberIDs {
		chat.Users = append(chat.Users, models.User{ID: id})
	}
	return chat
}

func TestCanJoinGroup(t *testing.T) {
	adminID := uuid.New()
	memberID := uuid.New()
	outsider := uuid.New()

	chat := groupChat(adminID, memberID)
	chat.IsPublic = true

	if err := CanJoinGroup(chat, outsider); err != nil {
		t.Fatalf("outsider should join public group: %v", err)
	}
	if err := CanJoinGroup(chat, memberID); err != ErrAlreadyMember {
		t.Fatalf("re-join must be rejected, got %v", err)
	}

	chat.IsPublic = false
	if err := CanJoinGroup(chat, outsider); err != ErrGroupNotPublic {
		t.Fatalf("private group must reject join, got %v", err)
	}

	direct := &models.Chat{IsGroupChat: false}
	if err := CanJoinGroup(direct, outsider); err != ErrNotGroupChat {
		t.Fatalf("direct chat must reject join, got %v", err)
	}
}

func TestCanLeaveGroup(t *testing.T) {
	adminID := uuid.New()
	memberID := uuid.New()
	outsider := uuid.New()
	chat := groupChat(adminID, memberID)

	if err := CanLeaveGroup(chat, memberID); err != nil {
		t.Fatalf("member should leave: %v", err)
	}
	if err := CanLeaveGroup(chat, adminID); err != ErrGroupAdminLeave {
		t.Fatalf("group admin must transfer first, got %v", err)
	}
	if err := CanLeaveGroup(chat, outsider); err != ErrNotMember {
		t.Fatalf("outsider cannot leave, got %v", err)
	}
}

func TestCanRemoveMember(t *testing.T) {
	adminID := uuid.New()
	memberID := uuid.New()
	otherMember := uuid.New()
	chat := groupChat(adminID, memberID, otherMember)

	// trưởng nhóm xóa thành viên thường
	if err := CanRemoveMember(adminID, models.RoleStudent, chat, memberID); err != nil {
		t.Fatalf("group admin should remove member: %v", err)
	}
	// thành viên thường không được xóa ai
	if err := CanRemoveMember(memberID, models.RoleStudent, chat, otherMember); err != ErrNotAuthorized {
		t.Fatalf("plain member must not remove, got %v", err)
	}
	// không ai xóa được trưởng nhóm, trừ admin hệ thống
	if err := CanRemoveMember(adminID, models.RoleStudent, chat, adminID); err != ErrRemoveGroupAdmin {
		t.Fatalf("group admin must not be removable, got %v", err)
	}
	if err := CanRemoveMember(uuid.New(), models.RoleAdmin, chat, adminID); err != nil {
		t.Fatalf("app admin may remove group admin: %v", err)
	}
	// target phải là thành viên
	if err := CanRemoveMember(adminID, models.RoleStudent, chat, uuid.New()); err != ErrTargetNotMember {
		t.Fatalf("expected ErrTargetNotMember, got %v", err)
	}
}

func TestCanTransferOwnership(t *testing.T) {
	adminID := uuid.New()
	memberID := uuid.New()
	chat := groupChat(adminID, memberID)

	if err := CanTransferOwnership(adminID, models.RoleStudent, chat, memberID); err != nil {
		t.Fatalf("transfer to member should pass: %v", err)
	}
	if err := CanTransferOwnership(adminID, models.RoleStudent, chat, uuid.New()); err != ErrTargetNotMember {
		t.Fatalf("transfer target must already be a member, got %v", err)
	}
	if err := CanTransferOwnership(memberID, models.RoleStudent, chat, adminID); err != ErrNotAuthorized {
		t.Fatalf("member cannot transfer, got %v", err)
	}
}

func TestGroupAdminAlwaysSingle(t *testing.T) {
	adminID := uuid.New()
	memberID := uuid.New()
	chat := groupChat(adminID, memberID)

	// sau khi chuyển quyền, admin cũ trở thành thành viên thường
	chat.GroupAdminID = &memberID
	if err := CanLeaveGroup(chat, adminID); err != nil {
		t.Fatalf("old admin should leave after transfer: %v", err)
	}
	if err := CanLeaveGroup(chat, memberID); err != ErrGroupAdminLeave {
		t.Fatalf("new admin is now blocked from leaving, got %v", err)
	}
}
