package middleware

import (
	"englishcenter_go/models"

	"github.com/gofiber/fiber/v2"
)

// Action names a guarded capability. Routes declare the action they need;
// the table below decides which roles hold it.
type Action string

const (
	ActionUsersManage         Action = "users.manage"
	ActionStudentsManage      Action = "students.manage"
	ActionStudentsRead        Action = "students.read"
	ActionCoursesManage       Action = "courses.manage"
	ActionEnrollmentsManage   Action = "enrollments.manage"
	ActionFinanceManage       Action = "finance.manage"
	ActionFinanceCreate       Action = "finance.create"
	ActionFinanceRead         Action = "finance.read"
	ActionCRMManage           Action = "crm.manage"
	ActionNotificationsManage Action = "notifications.manage"
	ActionReportsView         Action = "reports.view"
)

// capabilities is the single authorization table. A role not listed under
// an action is denied that action.
var capabilities = map[Action][]string{
	ActionUsersManage: {models.RoleAdmin},

	ActionStudentsManage: {models.RoleAdmin, models.RoleAcademicStaff, models.RoleSalesStaff},
	ActionStudentsRead:   {models.RoleAdmin, models.RoleAcademicStaff, models.RoleSalesStaff, models.RoleTeacher},

	ActionCoursesManage: {models.RoleAdmin, models.RoleAcademicStaff, models.RoleTeacher},

	ActionEnrollmentsManage: {models.RoleAdmin, models.RoleAcademicStaff, models.RoleSalesStaff},

	ActionFinanceManage: {models.RoleAdmin, models.RoleFinanceStaff},
	ActionFinanceCreate: {models.RoleAdmin, models.RoleFinanceStaff, models.RoleAcademicStaff},
	ActionFinanceRead:   {models.RoleAdmin, models.RoleFinanceStaff, models.RoleAcademicStaff, models.RoleSalesStaff},

	ActionCRMManage:           {models.RoleAdmin, models.RoleAcademicStaff, models.RoleSalesStaff},
	ActionNotificationsManage: {models.RoleAdmin, models.RoleAcademicStaff, models.RoleSalesStaff},

	ActionReportsView: {models.RoleAdmin},
}

// RoleAllowed reports whether a role holds an action.
func RoleAllowed(action Action, role string) bool {
	for _, r := range capabilities[action] {
		if r == role {
			return true
		}
	}
	return false
}

// Require returns a handler that allows only roles holding the action.
// It must run after JWTMiddleware.
func Require(action Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals("claims").(*Claims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing user claims",
			})
		}

		if !RoleAllowed(action, claims.Role) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Insufficient permissions",
			})
		}

		return c.Next()
	}
}

// RequireStaffOrOwner allows any role holding the action through, and
// additionally lets a hocvien-role caller pass so the handler can apply
// ownership scoping itself.
func RequireStaffOrOwner(action Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals("claims").(*Claims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing user claims",
			})
		}

		if claims.Role == models.RoleStudent || RoleAllowed(action, claims.Role) {
			return c.Next()
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Insufficient permissions",
		})
	}
}

// IsStaff reports whether the role is any non-student role.
func IsStaff(role string) bool {
	return role != "" && role != models.RoleStudent
}
