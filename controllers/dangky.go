package controllers

import (
	"englishcenter_go/database"
	"englishcenter_go/middleware"
	"englishcenter_go/models"
	"englishcenter_go/utils"

	"github.com/gofiber/fiber/v2"
)

type EnrollmentController struct{}

var enrollmentOrderFields = map[string]bool{
	"ngay_dang_ky":         true,
	"phan_tram_hoan_thanh": true,
	"created_at":           true,
}

type EnrollmentRequest struct {
	HocVien           string `json:"hocvien" validate:"required"`
	KhoaHoc           string `json:"khoahoc" validate:"required"`
	PhanTramHoanThanh *int   `json:"phan_tram_hoan_thanh" validate:"omitempty,gte=0,lte=100"`
	TrangThai         string `json:"trang_thai" validate:"omitempty,oneof=dang_ky dang_hoc hoan_thanh huy"`
	GhiChu            string `json:"ghi_chu"`
}

// GetEnrollments lists enrollments with filters and pagination
func (ec *EnrollmentController) GetEnrollments(c *fiber.Ctx) error {
	page, limit, offset := paginationParams(c)

	var enrollments []models.Enrollment
	var total int64

	query := database.DB.Model(&models.Enrollment{})

	if studentID := c.Query("hocvien"); studentID != "" {
		query = query.Where("hoc_vien_id = ?", studentID)
	}
	if courseID := c.Query("khoahoc"); courseID != "" {
		query = query.Where("khoa_hoc_id = ?", courseID)
	}
	if status := c.Query("trang_thai"); status != "" {
		query = query.Where("trang_thai = ?", status)
	}

	query = applyOrdering(query, c.Query("ordering", "-created_at"), enrollmentOrderFields)
	query.Count(&total)

	if err := query.Preload("HocVien").Preload("KhoaHoc").
		Offset(offset).Limit(limit).Find(&enrollments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch enrollments",
		})
	}

	return c.JSON(fiber.Map{
		"enrollments": enrollments,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetEnrollment returns one enrollment; hocvien callers only their own.
func (ec *EnrollmentController) GetEnrollment(c *fiber.Ctx) error {
	var enrollment models.Enrollment
	if err := database.DB.Preload("HocVien").Preload("KhoaHoc").
		First(&enrollment, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Enrollment not found",
		})
	}

	if !canReadOwned(c, middleware.ActionEnrollmentsManage, &enrollment) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Insufficient permissions",
		})
	}

	return c.JSON(fiber.Map{"enrollment": enrollment})
}

// CreateEnrollment registers a student on a course. The (student, course)
// pair is unique.
func (ec *EnrollmentController) CreateEnrollment(c *fiber.Ctx) error {
	var req EnrollmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if errs := utils.ValidateStruct(req); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}

	var student models.Student
	if err := database.DB.Select("id").First(&student, "id = ?", req.HocVien).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown student",
		})
	}
	var course models.Course
	if err := database.DB.Select("id").First(&course, "id = ?", req.KhoaHoc).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown course",
		})
	}

	enrollment := models.Enrollment{
		HocVienID: student.ID,
		KhoaHocID: course.ID,
		TrangThai: req.TrangThai,
		GhiChu:    req.GhiChu,
	}
	if enrollment.TrangThai == "" {
		enrollment.TrangThai = "dang_ky"
	}
	if req.PhanTramHoanThanh != nil {
		enrollment.PhanTramHoanThanh = *req.PhanTramHoanThanh
	}

	if err := database.DB.Create(&enrollment).Error; err != nil {
		if utils.IsDuplicateKeyError(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Student is already enrolled in this course",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create enrollment",
		})
	}

	database.DB.Preload("HocVien").Preload("KhoaHoc").First(&enrollment, "id = ?", enrollment.ID)

	middleware.LogActivity(c, "CREATE", "dangky", enrollment.ID, fiber.Map{
		"hocvien": enrollment.HocVienID,
		"khoahoc": enrollment.KhoaHocID,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Enrollment created successfully",
		"enrollment": enrollment,
	})
}

// UpdateEnrollment updates completion percentage, status and notes
func (ec *EnrollmentController) UpdateEnrollment(c *fiber.Ctx) error {
	var enrollment models.Enrollment
	if err := database.DB.First(&enrollment, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Enrollment not found",
		})
	}

	var req EnrollmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	updates := map[string]interface{}{}
	if req.TrangThai != "" {
		updates["trang_thai"] = req.TrangThai
	}
	if req.GhiChu != "" {
		updates["ghi_chu"] = req.GhiChu
	}
	if req.PhanTramHoanThanh != nil {
		if *req.PhanTramHoanThanh < 0 || *req.PhanTramHoanThanh > 100 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "phan_tram_hoan_thanh must be between 0 and 100",
			})
		}
		updates["phan_tram_hoan_thanh"] = *req.PhanTramHoanThanh
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&enrollment).Updates(updates).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update enrollment",
			})
		}
	}

	middleware.LogActivity(c, "UPDATE", "dangky", enrollment.ID, updates)

	return c.JSON(fiber.Map{
		"message":    "Enrollment updated successfully",
		"enrollment": enrollment,
	})
}

// DeleteEnrollment removes an enrollment
func (ec *EnrollmentController) DeleteEnrollment(c *fiber.Ctx) error {
	var enrollment models.Enrollment
	if err := database.DB.First(&enrollment, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Enrollment not found",
		})
	}

	if err := database.DB.Delete(&enrollment).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete enrollment",
		})
	}

	middleware.LogActivity(c, "DELETE", "dangky", enrollment.ID, nil)

	return c.JSON(fiber.Map{
		"message": "Enrollment deleted successfully",
	})
}

// GetMyEnrollments lists the calling student's own enrollments
func (ec *EnrollmentController) GetMyEnrollments(c *fiber.Ctx) error {
	student, err := currentStudent(c)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No student record linked to this account",
		})
	}

	var enrollments []models.Enrollment
	if err := database.DB.Preload("KhoaHoc").
		Where("hoc_vien_id = ?", student.ID).
		Order("created_at DESC").Find(&enrollments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch enrollments",
		})
	}

	return c.JSON(fiber.Map{
		"enrollments": enrollments,
		"total":       len(enrollments),
	})
}

// GetEnrollmentStats returns counts by status and average completion
func (ec *EnrollmentController) GetEnrollmentStats(c *fiber.Ctx) error {
	byStatus := map[string]int64{}
	rows, err := database.DB.Model(&models.Enrollment{}).
		Select("trang_thai, COUNT(*) as n").
		Group("trang_thai").Rows()
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var status string
			var n int64
			if err := rows.Scan(&status, &n); err == nil {
				byStatus[status] = n
			}
		}
	}

	var total int64
	database.DB.Model(&models.Enrollment{}).Count(&total)

	var avgCompletion float64
	database.DB.Model(&models.Enrollment{}).
		Select("COALESCE(AVG(phan_tram_hoan_thanh), 0)").Scan(&avgCompletion)

	return c.JSON(fiber.Map{
		"total":                    total,
		"by_trang_thai":            byStatus,
		"avg_phan_tram_hoan_thanh": avgCompletion,
	})
}
