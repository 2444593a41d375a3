package middleware

import (
	"englishcenter_go/models"
	"testing"
)

func TestRoleAllowed(t *testing.T) {
	tests := []struct {
		name    string
		action  Action
		role    string
		allowed bool
	}{
		{name: "admin manages users", action: ActionUsersManage, role: models.RoleAdmin, allowed: true},
		{name: "academic cannot manage users", action: ActionUsersManage, role: models.RoleAcademicStaff, allowed: false},

		{name: "sales manages students", action: ActionStudentsManage, role: models.RoleSalesStaff, allowed: true},
		{name: "teacher reads students", action: ActionStudentsRead, role: models.RoleTeacher, allowed: true},
		{name: "teacher cannot manage students", action: ActionStudentsManage, role: models.RoleTeacher, allowed: false},

		{name: "teacher manages courses", action: ActionCoursesManage, role: models.RoleTeacher, allowed: true},
		{name: "sales cannot manage courses", action: ActionCoursesManage, role: models.RoleSalesStaff, allowed: false},

		// finance matrix: admin+finance full, academic read+create, sales read-only
		{name: "finance manages finance", action: ActionFinanceManage, role: models.RoleFinanceStaff, allowed: true},
		{name: "academic cannot manage finance", action: ActionFinanceManage, role: models.RoleAcademicStaff, allowed: false},
		{name: "academic creates payments", action: ActionFinanceCreate, role: models.RoleAcademicStaff, allowed: true},
		{name: "sales cannot create payments", action: ActionFinanceCreate, role: models.RoleSalesStaff, allowed: false},
		{name: "sales reads finance", action: ActionFinanceRead, role: models.RoleSalesStaff, allowed: true},
		{name: "teacher cannot read finance", action: ActionFinanceRead, role: models.RoleTeacher, allowed: false},

		{name: "only admin views reports", action: ActionReportsView, role: models.RoleFinanceStaff, allowed: false},
		{name: "admin views reports", action: ActionReportsView, role: models.RoleAdmin, allowed: true},

		{name: "students hold nothing", action: ActionStudentsRead, role: models.RoleStudent, allowed: false},
		{name: "unknown role denied", action: ActionStudentsRead, role: "ghost", allowed: false},
		{name: "unknown action denied", action: Action("nonexistent"), role: models.RoleAdmin, allowed: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := RoleAllowed(tc.action, tc.role); got != tc.allowed {
				t.Fatalf("RoleAllowed(%q, %q) = %v, want %v", tc.action, tc.role, got, tc.allowed)
			}
		})
	}
}

func TestIsStaff(t *testing.T) {
	if IsStaff(models.RoleStudent) {
		t.Fatalf("hocvien is not staff")
	}
	if IsStaff("") {
		t.Fatalf("empty role is not staff")
	}
	for _, role := range []string{models.RoleAdmin, models.RoleTeacher, models.RoleFinanceStaff} {
		if !IsStaff(role) {
			t.Fatalf("expected %q to be staff", role)
		}
	}
}
