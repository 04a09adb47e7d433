package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func intPtr(v int) *int       { return &v }
func strPtr(s string) *string { return &s }

func TestNewUserStudentRequiresProfile(t *testing.T) {
	if _, err := NewUser("A", "a@test.edu", "", "hash", RoleStudent, nil); err != ErrStudentProfileRequired {
		t.Errorf("expected ErrStudentProfileRequired, got %v", err)
	}

	u, err := NewUser("A", "a@test.edu", "", "hash", RoleStudent,
		&StudentProfile{Branch: "CNTT", Year: 2, Semester: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Branch == nil || *u.Branch != "CNTT" || u.Year == nil || *u.Year != 2 {
		t.Errorf("student profile not applied: %+v", u)
	}
}

func TestNewUserStaffRejectsProfile(t *testing.T) {
	if _, err := NewUser("B", "b@test.edu", "", "hash", RoleTeacher,
		&StudentProfile{Branch: "CNTT", Year: 1, Semester: 1}); err != ErrStudentProfileInvalid {
		t.Errorf("expected ErrStudentProfileInvalid, got %v", err)
	}

	u, err := NewUser("B", "b@test.edu", "", "hash", RoleAdmin, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Branch != nil || u.Year != nil || u.Semester != nil {
		t.Errorf("staff user should have no cohort fields: %+v", u)
	}
}

func TestChangeRoleClearsCohortForStaff(t *testing.T) {
	u, _ := NewUser("A", "a@test.edu", "", "hash", RoleStudent,
		&StudentProfile{Branch: "CNTT", Year: 2, Semester: 1})

	if err := u.ChangeRole(RoleTeacher, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Role != RoleTeacher {
		t.Errorf("role not updated: %v", u.Role)
	}
	if u.Branch != nil || u.Year != nil || u.Semester != nil {
		t.Errorf("promotion must clear cohort fields: %+v", u)
	}
}

func TestChangeRoleToStudentNeedsProfile(t *testing.T) {
	u, _ := NewUser("B", "b@test.edu", "", "hash", RoleTeacher, nil)

	if err := u.ChangeRole(RoleStudent, nil); err != ErrStudentProfileRequired {
		t.Errorf("expected ErrStudentProfileRequired, got %v", err)
	}
	if u.Role != RoleTeacher {
		t.Errorf("failed change must not alter role: %v", u.Role)
	}

	if err := u.ChangeRole(RoleStudent, &StudentProfile{Branch: "CNTT", Year: 3, Semester: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Branch == nil || *u.Branch != "CNTT" || u.Year == nil || *u.Year != 3 {
		t.Errorf("profile not applied: %+v", u)
	}
}

func TestChangeRoleKeepsExistingCohort(t *testing.T) {
	u, _ := NewUser("C", "c@test.edu", "", "hash", RoleStudent,
		&StudentProfile{Branch: "DTVT", Year: 1, Semester: 1})

	// student -> student không gửi hồ sơ: giữ nguyên cohort cũ
	if err := u.ChangeRole(RoleStudent, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Branch == nil || *u.Branch != "DTVT" {
		t.Errorf("existing cohort lost: %+v", u)
	}

	if err := u.ChangeRole(RoleAdmin, &StudentProfile{Branch: "X", Year: 1, Semester: 1}); err != ErrStudentProfileInvalid {
		t.Errorf("expected ErrStudentProfileInvalid, got %v", err)
	}
	if err := u.ChangeRole(UserRole("superuser"), nil); err != ErrInvalidRole {
		t.Errorf("expected ErrInvalidRole, got %v", err)
	}
}

func TestNewUserUnknownRole(t *testing.T) {
	if _, err := NewUser("C", "c@test.edu", "", "hash", UserRole("superuser"), nil); err != ErrInvalidRole {
		t.Errorf("expected ErrInvalidRole, got %v", err)
	}
}

func TestNewContentItem(t *testing.T) {
	for _, kind := range []string{"note", "syllabus", "video", "pyq"} {
		item, ok := NewContentItem(kind)
		if !ok {
			t.Fatalf("kind %q not registered", kind)
		}
		if item.ContentKind() != kind {
			t.Errorf("kind %q: ContentKind() = %q", kind, item.ContentKind())
		}
	}
	if _, ok := NewContentItem("podcast"); ok {
		t.Error("unknown kind should not resolve")
	}
}

func TestDefaultVerified(t *testing.T) {
	if DefaultVerified(RoleStudent) {
		t.Error("student uploads must start unverified")
	}
	if !DefaultVerified(RoleTeacher) || !DefaultVerified(RoleAdmin) {
		t.Error("staff uploads must start verified")
	}
}

func TestAverageScore(t *testing.T) {
	if got := AverageScore(nil); got != 0 {
		t.Errorf("empty set: got %v, want 0", got)
	}
	if got := AverageScore([]int{4, 5, 3}); got != 4 {
		t.Errorf("got %v, want 4", got)
	}
	if got := AverageScore([]int{5, 4}); got != 4.5 {
		t.Errorf("got %v, want 4.5", got)
	}
}

func TestAnnouncementExpired(t *testing.T) {
	now := time.Now()

	a := Announcement{}
	if a.Expired(now) {
		t.Error("announcement without expires_at never expires")
	}

	past := now.Add(-time.Hour)
	a.ExpiresAt = &past
	if !a.Expired(now) {
		t.Error("past expires_at should be expired")
	}

	future := now.Add(time.Hour)
	a.ExpiresAt = &future
	if a.Expired(now) {
		t.Error("future expires_at should not be expired")
	}
}

func TestAnnouncementMatchesUser(t *testing.T) {
	student := &User{
		Role:     RoleStudent,
		Branch:   strPtr("CNTT"),
		Year:     intPtr(2),
		Semester: intPtr(1),
	}
	teacher := &User{Role: RoleTeacher}

	all := Announcement{TargetBranch: AudienceAll, TargetRole: AudienceAll}
	if !all.MatchesUser(student) || !all.MatchesUser(teacher) {
		t.Error("audience All must match everyone")
	}

	branchOnly := Announcement{TargetBranch: "CNTT", TargetRole: AudienceAll}
	if !branchOnly.MatchesUser(student) {
		t.Error("student in target branch should match")
	}
	if branchOnly.MatchesUser(teacher) {
		t.Error("user without branch must not match a branch-scoped announcement")
	}

	cohort := Announcement{
		TargetBranch:   "CNTT",
		TargetRole:     "student",
		TargetYear:     intPtr(2),
		TargetSemester: intPtr(1),
	}
	if !cohort.MatchesUser(student) {
		t.Error("student matching full cohort should match")
	}

	otherYear := Announcement{TargetBranch: AudienceAll, TargetRole: AudienceAll, TargetYear: intPtr(3)}
	if otherYear.MatchesUser(student) {
		t.Error("year mismatch must not match")
	}
}

func TestChatMembershipHelpers(t *testing.T) {
	admin := User{ID: uuid.MustParse("11111111-1111-1111-1111-111111111111")}
	member := User{ID: uuid.MustParse("22222222-2222-2222-2222-222222222222")}
	outsider := uuid.MustParse("33333333-3333-3333-3333-333333333333")

	chat := Chat{
		IsGroupChat:  true,
		Users:        []User{admin, member},
		GroupAdminID: &admin.ID,
	}

	if !chat.HasMember(member.ID) {
		t.Error("member should be found")
	}
	if chat.HasMember(outsider) {
		t.Error("outsider should not be a member")
	}
	if !chat.IsGroupAdmin(admin.ID) {
		t.Error("group admin not recognized")
	}
	if chat.IsGroupAdmin(member.ID) {
		t.Error("plain member is not group admin")
	}
}

func TestVideoWatchURL(t *testing.T) {
	v := Video{FileURL: "https://files/video.mp4"}
	if v.WatchURL() != "https://files/video.mp4" {
		t.Errorf("got %q", v.WatchURL())
	}
	v.ExternalURL = "https://youtube.com/watch?v=abc"
	if v.WatchURL() != "https://youtube.com/watch?v=abc" {
		t.Error("external link must win over stored file")
	}
}
