package controllers

import (
	"englishcenter_go/database"
	"englishcenter_go/middleware"
	"englishcenter_go/models"
	"englishcenter_go/utils"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

type SectionController struct{}

var sectionOrderFields = map[string]bool{
	"ten":          true,
	"ngay_bat_dau": true,
	"created_at":   true,
}

type SectionRequest struct {
	Ten            string `json:"ten" validate:"required"`
	KhoaHoc        string `json:"khoa_hoc" validate:"required"`
	GiangVien      string `json:"giang_vien"`
	PhongHoc       string `json:"phong_hoc"`
	NgayBatDau     string `json:"ngay_bat_dau" validate:"required"`
	NgayKetThuc    string `json:"ngay_ket_thuc"`
	SoHocVienToiDa int    `json:"so_hoc_vien_toi_da"`
	TrangThai      string `json:"trang_thai" validate:"omitempty,oneof=cho_mo_lop dang_hoc tam_dung da_ket_thuc da_huy"`
	MoTa           string `json:"mo_ta"`
}

// scheduleEntry is the computed day+time view of a section's slots.
type scheduleEntry struct {
	Day  string `json:"day"`
	Time string `json:"time"`
}

// rosterStudent is the computed roster row joined through the parent
// course's enrollments.
type rosterStudent struct {
	ID        string `json:"id"`
	Ten       string `json:"ten"`
	Email     string `json:"email"`
	TrangThai string `json:"trang_thai"`
}

// GetSections lists sections enriched with their schedule and the
// course-scoped student roster. Both are recomputed per request, never
// stored.
func (sc *SectionController) GetSections(c *fiber.Ctx) error {
	page, limit, offset := paginationParams(c)

	var sections []models.ClassSection
	var total int64

	query := database.DB.Model(&models.ClassSection{})

	if status := c.Query("trang_thai"); status != "" {
		query = query.Where("trang_thai = ?", status)
	}
	if courseID := c.Query("khoa_hoc"); courseID != "" {
		query = query.Where("khoa_hoc_id = ?", courseID)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("ten LIKE ?", "%"+search+"%")
	}

	query = applyOrdering(query, c.Query("ordering", "-created_at"), sectionOrderFields)
	query.Count(&total)

	if err := query.Preload("KhoaHoc").Preload("GiangVien").
		Offset(offset).Limit(limit).Find(&sections).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch class sections",
		})
	}

	enriched := make([]fiber.Map, 0, len(sections))
	for _, section := range sections {
		schedule := sectionSchedule(section.ID)
		roster := sectionRoster(section.KhoaHocID)
		enriched = append(enriched, fiber.Map{
			"section":         section,
			"schedule":        schedule,
			"students":        roster,
			"currentStudents": len(roster),
		})
	}

	return c.JSON(fiber.Map{
		"sections": enriched,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

func sectionSchedule(sectionID string) []scheduleEntry {
	var slots []models.ScheduleSlot
	database.DB.Where("lop_hoc_id = ?", sectionID).
		Order("ngay_hoc ASC, gio_bat_dau ASC").Find(&slots)

	entries := make([]scheduleEntry, 0, len(slots))
	for _, slot := range slots {
		entries = append(entries, scheduleEntry{
			Day:  slot.NgayHoc,
			Time: fmt.Sprintf("%s - %s", slot.GioBatDau, slot.GioKetThuc),
		})
	}
	return entries
}

// sectionRoster joins through the parent course's enrollments: membership
// is course-scoped since enrollments carry no section reference.
func sectionRoster(courseID string) []rosterStudent {
	var roster []rosterStudent
	database.DB.Model(&models.Enrollment{}).
		Select("erp_students.id as id, erp_students.ten as ten, erp_students.email as email, erp_enrollment.trang_thai as trang_thai").
		Joins("JOIN erp_students ON erp_students.id = erp_enrollment.hoc_vien_id").
		Where("erp_enrollment.khoa_hoc_id = ? AND erp_enrollment.trang_thai IN ?",
			courseID, []string{"dang_ky", "dang_hoc", "hoan_thanh"}).
		Scan(&roster)
	return roster
}

// GetSection returns a specific class section by ID
func (sc *SectionController) GetSection(c *fiber.Ctx) error {
	var section models.ClassSection
	if err := database.DB.Preload("KhoaHoc").Preload("GiangVien").
		First(&section, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Class section not found",
		})
	}

	roster := sectionRoster(section.KhoaHocID)

	return c.JSON(fiber.Map{
		"section":         section,
		"schedule":        sectionSchedule(section.ID),
		"students":        roster,
		"currentStudents": len(roster),
	})
}

// CreateSection creates a new class section
func (sc *SectionController) CreateSection(c *fiber.Ctx) error {
	var req SectionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if errs := utils.ValidateStruct(req); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}

	var course models.Course
	if err := database.DB.Select("id").First(&course, "id = ?", req.KhoaHoc).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown course",
		})
	}

	startDate, err := utils.ParseDate(req.NgayBatDau)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid ngay_bat_dau format, expected YYYY-MM-DD",
		})
	}

	section := models.ClassSection{
		Ten:            req.Ten,
		KhoaHocID:      course.ID,
		PhongHoc:       req.PhongHoc,
		NgayBatDau:     startDate,
		SoHocVienToiDa: req.SoHocVienToiDa,
		TrangThai:      req.TrangThai,
		MoTa:           req.MoTa,
	}
	if section.SoHocVienToiDa <= 0 {
		section.SoHocVienToiDa = 20
	}
	if section.TrangThai == "" {
		section.TrangThai = "cho_mo_lop"
	}

	if req.NgayKetThuc != "" {
		endDate, perr := utils.ParseDate(req.NgayKetThuc)
		if perr != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid ngay_ket_thuc format, expected YYYY-MM-DD",
			})
		}
		section.NgayKetThuc = &endDate
	}

	if req.GiangVien != "" {
		var teacher models.User
		if err := database.DB.Select("id").
			First(&teacher, "id = ? AND role = ?", req.GiangVien, models.RoleTeacher).Error; err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unknown teacher",
			})
		}
		section.GiangVienID = &teacher.ID
	}

	if err := database.DB.Create(&section).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create class section",
		})
	}

	middleware.LogActivity(c, "CREATE", "lophocs", section.ID, fiber.Map{"ten": section.Ten})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Class section created successfully",
		"section": section,
	})
}

// UpdateSection updates an existing class section
func (sc *SectionController) UpdateSection(c *fiber.Ctx) error {
	var section models.ClassSection
	if err := database.DB.First(&section, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Class section not found",
		})
	}

	var req SectionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	updates := map[string]interface{}{}
	if req.Ten != "" {
		updates["ten"] = req.Ten
	}
	if req.PhongHoc != "" {
		updates["phong_hoc"] = req.PhongHoc
	}
	if req.MoTa != "" {
		updates["mo_ta"] = req.MoTa
	}
	if req.TrangThai != "" {
		updates["trang_thai"] = req.TrangThai
	}
	if req.SoHocVienToiDa > 0 {
		updates["so_hoc_vien_toi_da"] = req.SoHocVienToiDa
	}
	if req.NgayBatDau != "" {
		startDate, perr := utils.ParseDate(req.NgayBatDau)
		if perr != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid ngay_bat_dau format, expected YYYY-MM-DD",
			})
		}
		updates["ngay_bat_dau"] = startDate
	}
	if req.NgayKetThuc != "" {
		endDate, perr := utils.ParseDate(req.NgayKetThuc)
		if perr != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid ngay_ket_thuc format, expected YYYY-MM-DD",
			})
		}
		updates["ngay_ket_thuc"] = endDate
	}
	if req.GiangVien != "" {
		var teacher models.User
		if err := database.DB.Select("id").
			First(&teacher, "id = ? AND role = ?", req.GiangVien, models.RoleTeacher).Error; err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unknown teacher",
			})
		}
		updates["giang_vien_id"] = teacher.ID
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&section).Updates(updates).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update class section",
			})
		}
	}

	middleware.LogActivity(c, "UPDATE", "lophocs", section.ID, updates)

	return c.JSON(fiber.Map{
		"message": "Class section updated successfully",
		"section": section,
	})
}

// DeleteSection deletes a class section and its schedule slots
func (sc *SectionController) DeleteSection(c *fiber.Ctx) error {
	var section models.ClassSection
	if err := database.DB.First(&section, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Class section not found",
		})
	}

	database.DB.Where("lop_hoc_id = ?", section.ID).Delete(&models.ScheduleSlot{})

	if err := database.DB.Delete(&section).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete class section",
		})
	}

	middleware.LogActivity(c, "DELETE", "lophocs", section.ID, fiber.Map{"ten": section.Ten})

	return c.JSON(fiber.Map{
		"message": "Class section deleted successfully",
	})
}

// AddStudents enrolls one or many students into the section's parent
// course. Existing (student, course) pairs are skipped, not errors.
func (sc *SectionController) AddStudents(c *fiber.Ctx) error {
	var section models.ClassSection
	if err := database.DB.First(&section, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Class section not found",
		})
	}

	var req struct {
		HocVien  string   `json:"hoc_vien"`
		HocViens []string `json:"hoc_viens"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	ids := req.HocViens
	if req.HocVien != "" {
		ids = append(ids, req.HocVien)
	}
	if len(ids) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No student ids supplied",
		})
	}

	created := []string{}
	updated := []string{}
	errorsList := []fiber.Map{}

	for _, studentID := range ids {
		var student models.Student
		if err := database.DB.Select("id").First(&student, "id = ?", studentID).Error; err != nil {
			errorsList = append(errorsList, fiber.Map{
				"hoc_vien": studentID,
				"error":    "Unknown student",
			})
			continue
		}

		var existing models.Enrollment
		if err := database.DB.
			First(&existing, "hoc_vien_id = ? AND khoa_hoc_id = ?", studentID, section.KhoaHocID).Error; err == nil {
			updated = append(updated, existing.ID)
			continue
		}

		enrollment := models.Enrollment{
			HocVienID: studentID,
			KhoaHocID: section.KhoaHocID,
			TrangThai: "dang_hoc",
		}
		if err := database.DB.Create(&enrollment).Error; err != nil {
			errorsList = append(errorsList, fiber.Map{
				"hoc_vien": studentID,
				"error":    "Failed to enroll student",
			})
			continue
		}
		created = append(created, enrollment.ID)
	}

	message := fmt.Sprintf("%d enrolled, %d already enrolled, %d failed",
		len(created), len(updated), len(errorsList))

	status := fiber.StatusCreated
	if len(errorsList) > 0 && len(created)+len(updated) > 0 {
		status = fiber.StatusOK
	} else if len(created)+len(updated) == 0 {
		status = fiber.StatusBadRequest
	}

	middleware.LogActivity(c, "CREATE", "lophocs", section.ID, fiber.Map{
		"action":  "add_students",
		"created": len(created),
	})

	return c.Status(status).JSON(fiber.Map{
		"created": created,
		"updated": updated,
		"errors":  errorsList,
		"message": message,
	})
}
