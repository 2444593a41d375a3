package controllers

import (
	"englishcenter_go/database"
	"englishcenter_go/middleware"
	"englishcenter_go/models"
	"englishcenter_go/services"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

type AttendanceController struct{}

// GetAttendances lists attendance records. Staff see everything; a hocvien
// caller is scoped to their own rows.
func (ac *AttendanceController) GetAttendances(c *fiber.Ctx) error {
	page, limit, offset := paginationParams(c)

	claims, err := middleware.GetCurrentClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Missing user claims",
		})
	}

	var records []models.Attendance
	var total int64

	query := database.DB.Model(&models.Attendance{})

	if claims.Role == models.RoleStudent {
		student, serr := currentStudent(c)
		if serr != nil {
			return c.JSON(fiber.Map{
				"attendances": []models.Attendance{},
				"pagination":  fiber.Map{"page": page, "limit": limit, "total": 0},
			})
		}
		query = query.Where("hoc_vien_id = ?", student.ID)
	}

	if slotID := c.Query("lich_hoc"); slotID != "" {
		query = query.Where("lich_hoc_id = ?", slotID)
	}
	if studentID := c.Query("hoc_vien"); studentID != "" {
		query = query.Where("hoc_vien_id = ?", studentID)
	}
	if status := c.Query("trang_thai"); status != "" {
		query = query.Where("trang_thai = ?", status)
	}

	query = query.Order("created_at DESC")
	query.Count(&total)

	if err := query.Preload("LichHoc").Preload("HocVien").
		Offset(offset).Limit(limit).Find(&records).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch attendance records",
		})
	}

	return c.JSON(fiber.Map{
		"attendances": records,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetAttendance returns one attendance record with owner-scoped access
func (ac *AttendanceController) GetAttendance(c *fiber.Ctx) error {
	var record models.Attendance
	if err := database.DB.Preload("LichHoc").Preload("HocVien").
		First(&record, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Attendance record not found",
		})
	}

	if !canReadOwned(c, middleware.ActionCoursesManage, &record) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Insufficient permissions",
		})
	}

	return c.JSON(fiber.Map{"attendance": record})
}

// BulkUpsert ingests a bulk attendance payload: a list, an {lich_hoc,
// items} envelope, or a map keyed by student id. Items are upserted on
// (slot, student); per-item failures never abort the batch.
func (ac *AttendanceController) BulkUpsert(c *fiber.Ctx) error {
	items, err := services.DecodeBulkAttendance(c.Body())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if len(items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No attendance items supplied",
		})
	}

	result := services.UpsertBulkAttendance(database.DB, items)

	message := fmt.Sprintf("%d created, %d updated, %d failed",
		len(result.Created), len(result.Updated), len(result.Errors))

	status := fiber.StatusCreated
	switch {
	case len(result.Created)+len(result.Updated) == 0:
		status = fiber.StatusBadRequest
	case len(result.Errors) > 0:
		status = fiber.StatusOK
	}

	middleware.LogActivity(c, "CREATE", "diemdanhs", "", fiber.Map{
		"created": len(result.Created),
		"updated": len(result.Updated),
		"errors":  len(result.Errors),
	})

	return c.Status(status).JSON(fiber.Map{
		"created": result.Created,
		"updated": result.Updated,
		"errors":  result.Errors,
		"message": message,
	})
}

// UpdateAttendance updates a single attendance record
func (ac *AttendanceController) UpdateAttendance(c *fiber.Ctx) error {
	var record models.Attendance
	if err := database.DB.First(&record, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Attendance record not found",
		})
	}

	var req struct {
		TrangThai string `json:"trang_thai"`
		GhiChu    string `json:"ghi_chu"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	updates := map[string]interface{}{}
	if req.TrangThai != "" {
		status, nerr := services.NormalizeAttendanceStatus(req.TrangThai)
		if nerr != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": nerr.Error(),
			})
		}
		updates["trang_thai"] = status
	}
	if req.GhiChu != "" {
		updates["ghi_chu"] = req.GhiChu
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&record).Updates(updates).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update attendance record",
			})
		}
	}

	middleware.LogActivity(c, "UPDATE", "diemdanhs", record.ID, updates)

	return c.JSON(fiber.Map{
		"message":    "Attendance updated successfully",
		"attendance": record,
	})
}

// DeleteAttendance removes an attendance record
func (ac *AttendanceController) DeleteAttendance(c *fiber.Ctx) error {
	var record models.Attendance
	if err := database.DB.First(&record, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Attendance record not found",
		})
	}

	if err := database.DB.Delete(&record).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete attendance record",
		})
	}

	middleware.LogActivity(c, "DELETE", "diemdanhs", record.ID, nil)

	return c.JSON(fiber.Map{
		"message": "Attendance deleted successfully",
	})
}
