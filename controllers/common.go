package controllers

import (
	"strconv"
	"strings"

	"englishcenter_go/database"
	"englishcenter_go/middleware"
	"englishcenter_go/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// applyOrdering applies a "-field" / "field" ordering parameter, ignoring
// anything outside the whitelist.
func applyOrdering(query *gorm.DB, ordering string, allowed map[string]bool) *gorm.DB {
	field := strings.TrimSpace(ordering)
	desc := strings.HasPrefix(field, "-")
	field = strings.TrimPrefix(field, "-")
	if !allowed[field] {
		return query.Order("created_at DESC")
	}
	if desc {
		return query.Order(field + " DESC")
	}
	return query.Order(field + " ASC")
}

// currentStudent resolves the Student record linked to the calling user.
func currentStudent(c *fiber.Ctx) (*models.Student, error) {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return nil, err
	}
	var student models.Student
	if err := database.DB.First(&student, "user_id = ?", user.ID).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

// canReadOwned reports whether the caller may read an owned row: staff
// holding the action pass, a hocvien passes only for their own rows.
func canReadOwned(c *fiber.Ctx, action middleware.Action, row models.Ownable) bool {
	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return false
	}
	if middleware.RoleAllowed(action, claims.Role) {
		return true
	}
	if claims.Role == models.RoleStudent {
		owner := row.OwnerUserID(database.DB)
		return owner != "" && owner == claims.UserID
	}
	return false
}

// paginationParams reads page/limit query parameters with sane bounds.
func paginationParams(c *fiber.Ctx) (page, limit, offset int) {
	page, _ = strconv.Atoi(c.Query("page", "1"))
	limit, _ = strconv.Atoi(c.Query("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit, (page - 1) * limit
}
