package controllers

import (
	"englishcenter_go/database"
	"englishcenter_go/middleware"
	"englishcenter_go/models"
	"englishcenter_go/utils"

	"github.com/gofiber/fiber/v2"
)

type ScheduleSlotController struct{}

type SlotRequest struct {
	LopHoc     string `json:"lop_hoc" validate:"required"`
	NgayHoc    string `json:"ngay_hoc" validate:"required"`
	GioBatDau  string `json:"gio_bat_dau" validate:"required"`
	GioKetThuc string `json:"gio_ket_thuc" validate:"required"`
	PhongHoc   string `json:"phong_hoc"`
	NoiDung    string `json:"noi_dung"`
	Note       string `json:"note"`
}

// GetSlots lists schedule slots with section/day filters
func (slc *ScheduleSlotController) GetSlots(c *fiber.Ctx) error {
	page, limit, offset := paginationParams(c)

	var slots []models.ScheduleSlot
	var total int64

	query := database.DB.Model(&models.ScheduleSlot{})

	if sectionID := c.Query("lop_hoc"); sectionID != "" {
		query = query.Where("lop_hoc_id = ?", sectionID)
	}
	if day := c.Query("ngay_hoc"); day != "" {
		query = query.Where("ngay_hoc = ?", day)
	}

	query = query.Order("ngay_hoc ASC, gio_bat_dau ASC")
	query.Count(&total)

	if err := query.Preload("LopHoc").Preload("LopHoc.KhoaHoc").
		Offset(offset).Limit(limit).Find(&slots).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch schedule slots",
		})
	}

	return c.JSON(fiber.Map{
		"slots": slots,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetSlot returns a specific schedule slot by ID
func (slc *ScheduleSlotController) GetSlot(c *fiber.Ctx) error {
	var slot models.ScheduleSlot
	if err := database.DB.Preload("LopHoc").Preload("LopHoc.KhoaHoc").
		First(&slot, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Schedule slot not found",
		})
	}

	return c.JSON(fiber.Map{"slot": slot})
}

// CreateSlot creates a new schedule slot. A duplicate (section, day, start)
// is a validation error, guarded by the unique index.
func (slc *ScheduleSlotController) CreateSlot(c *fiber.Ctx) error {
	var req SlotRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if errs := utils.ValidateStruct(req); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}

	if !utils.IsValidClockTime(req.GioBatDau) || !utils.IsValidClockTime(req.GioKetThuc) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Times must be in HH:MM format",
		})
	}
	if req.GioKetThuc <= req.GioBatDau {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "gio_ket_thuc must be after gio_bat_dau",
		})
	}

	var section models.ClassSection
	if err := database.DB.Select("id").First(&section, "id = ?", req.LopHoc).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown class section",
		})
	}

	slot := models.ScheduleSlot{
		LopHocID:   section.ID,
		NgayHoc:    req.NgayHoc,
		GioBatDau:  req.GioBatDau,
		GioKetThuc: req.GioKetThuc,
		PhongHoc:   req.PhongHoc,
		NoiDung:    req.NoiDung,
		Note:       req.Note,
	}

	if err := database.DB.Create(&slot).Error; err != nil {
		if utils.IsDuplicateKeyError(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "A slot for this section, day and start time already exists",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create schedule slot",
		})
	}

	middleware.LogActivity(c, "CREATE", "lichhocs", slot.ID, fiber.Map{
		"lop_hoc": slot.LopHocID,
		"ngay":    slot.NgayHoc,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Schedule slot created successfully",
		"slot":    slot,
	})
}

// UpdateSlot updates an existing schedule slot
func (slc *ScheduleSlotController) UpdateSlot(c *fiber.Ctx) error {
	var slot models.ScheduleSlot
	if err := database.DB.First(&slot, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Schedule slot not found",
		})
	}

	var req SlotRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	updates := map[string]interface{}{}
	if req.NgayHoc != "" {
		updates["ngay_hoc"] = req.NgayHoc
	}
	if req.GioBatDau != "" {
		if !utils.IsValidClockTime(req.GioBatDau) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "gio_bat_dau must be in HH:MM format",
			})
		}
		updates["gio_bat_dau"] = req.GioBatDau
	}
	if req.GioKetThuc != "" {
		if !utils.IsValidClockTime(req.GioKetThuc) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "gio_ket_thuc must be in HH:MM format",
			})
		}
		updates["gio_ket_thuc"] = req.GioKetThuc
	}
	if req.PhongHoc != "" {
		updates["phong_hoc"] = req.PhongHoc
	}
	if req.NoiDung != "" {
		updates["noi_dung"] = req.NoiDung
	}
	if req.Note != "" {
		updates["note"] = req.Note
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&slot).Updates(updates).Error; err != nil {
			if utils.IsDuplicateKeyError(err) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "A slot for this section, day and start time already exists",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update schedule slot",
			})
		}
	}

	middleware.LogActivity(c, "UPDATE", "lichhocs", slot.ID, updates)

	return c.JSON(fiber.Map{
		"message": "Schedule slot updated successfully",
		"slot":    slot,
	})
}

// DeleteSlot deletes a schedule slot
func (slc *ScheduleSlotController) DeleteSlot(c *fiber.Ctx) error {
	var slot models.ScheduleSlot
	if err := database.DB.First(&slot, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Schedule slot not found",
		})
	}

	if err := database.DB.Delete(&slot).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete schedule slot",
		})
	}

	middleware.LogActivity(c, "DELETE", "lichhocs", slot.ID, nil)

	return c.JSON(fiber.Map{
		"message": "Schedule slot deleted successfully",
	})
}
