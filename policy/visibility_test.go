package policy

import (
	"testing"

	"github.com/vnkhanh/campus-share-backend/models"
)

func student(branch string, year, semester int) *models.User {
	return &models.User{
		Role:     models.RoleStudent,
		Branch:   &branch,
		Year:     &year,
		Semester: &semester,
	}
}

func TestStudentDefaultsToOwnCohort(t *testing.T) {
	f := BuildVisibilityFilter(student("CSE", 2, 3), ListQuery{})
	if f.Branch != "CSE" || f.Year != 2 || f.Semester != 3 {
		t.Fatalf("expected CSE/2/3, got %+v", f)
	}
}

func TestStudentExplicitQueryOverridesProfile(t *testing.T) {
	f := BuildVisibilityFilter(student("ECE", 1, 1), ListQuery{Branch: "CSE", Year: "2", Semester: "3"})
	if f.Branch != "CSE" || f.Year != 2 || f.Semester != 3 {
		t.Fatalf("explicit query must win over profile, got %+v", f)
	}

	// ghi đè từng trường, các trường còn lại vẫn theo hồ sơ
	f = BuildVisibilityFilter(student("ECE", 1, 1), ListQuery{Year: "4"})
	if f.Branch != "ECE" || f.Year != 4 || f.Semester != 1 {
		t.Fatalf("partial override broken, got %+v", f)
	}
}

func TestOAuthStudentIsScopedFromCreation(t *testing.T) {
	// Đăng nhập Google lần đầu cũng đi qua NewUser với hồ sơ bắt buộc,
	// nên mọi student đều có cohort và listing mặc định luôn bị khoanh vùng
	u, err := models.NewUser("SV Google", "sv@test.edu", "", "", models.RoleStudent,
		&models.StudentProfile{Branch: "CNTT", Year: 2, Semester: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f := BuildVisibilityFilter(u, ListQuery{})
	if f.Branch != "CNTT" || f.Year != 2 || f.Semester != 1 {
		t.Fatalf("student must never see an unscoped listing, got %+v", f)
	}
}

func TestStaffHasNoImplicitScope(t *testing.T) {
	teacher := &models.User{Role: models.RoleTeacher}
	f := BuildVisibilityFilter(teacher, ListQuery{})
	if f.Branch != "" || f.Year != 0 || f.Semester != 0 {
		t.Fatalf("teacher must be unscoped, got %+v", f)
	}

	admin := &models.User{Role: models.RoleAdmin}
	f = BuildVisibilityFilter(admin, ListQuery{Branch: "CSE"})
	if f.Branch != "CSE" || f.Year != 0 {
		t.Fatalf("admin applies only explicit filters, got %+v", f)
	}
}

func TestSubjectFilterAlwaysApplied(t *testing.T) {
	f := BuildVisibilityFilter(student("CSE", 2, 3), ListQuery{Subject: "abc-123"})
	if f.SubjectID != "abc-123" {
		t.Fatalf("subject filter missing, got %+v", f)
	}
	if f.Branch != "CSE" {
		t.Fatalf("subject filter must be additive, got %+v", f)
	}
}

func TestBadNumericQueryIgnored(t *testing.T) {
	f := BuildVisibilityFilter(student("CSE", 2, 3), ListQuery{Year: "abc"})
	if f.Year != 2 {
		t.Fatalf("non-numeric year should keep profile default, got %+v", f)
	}
}
