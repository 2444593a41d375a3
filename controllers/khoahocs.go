package controllers

import (
	"englishcenter_go/database"
	"englishcenter_go/middleware"
	"englishcenter_go/models"
	"englishcenter_go/utils"

	"github.com/gofiber/fiber/v2"
)

type CourseController struct{}

var courseOrderFields = map[string]bool{
	"ten":        true,
	"hoc_phi":    true,
	"so_buoi":    true,
	"created_at": true,
}

type CourseRequest struct {
	Ten       string `json:"ten" validate:"required"`
	LichHoc   string `json:"lich_hoc"`
	GiangVien string `json:"giang_vien"`
	SoBuoi    int    `json:"so_buoi" validate:"required,gte=1"`
	HocPhi    int64  `json:"hoc_phi" validate:"gte=0"`
	MoTa      string `json:"mo_ta"`
	TrangThai string `json:"trang_thai" validate:"omitempty,oneof=mo dong hoan_thanh"`
}

// GetCourses returns all courses with filtering and pagination
func (cc *CourseController) GetCourses(c *fiber.Ctx) error {
	page, limit, offset := paginationParams(c)

	var courses []models.Course
	var total int64

	query := database.DB.Model(&models.Course{})

	if status := c.Query("trang_thai"); status != "" {
		query = query.Where("trang_thai = ?", status)
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("ten LIKE ? OR giang_vien LIKE ?", like, like)
	}

	query = applyOrdering(query, c.Query("ordering", "-created_at"), courseOrderFields)
	query.Count(&total)

	if err := query.Offset(offset).Limit(limit).Find(&courses).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch courses",
		})
	}

	return c.JSON(fiber.Map{
		"courses": courses,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetPublicCourses lists open courses without authentication, for the
// marketing site.
func (cc *CourseController) GetPublicCourses(c *fiber.Ctx) error {
	var courses []models.Course
	if err := database.DB.Where("trang_thai = ?", "mo").
		Order("created_at DESC").Find(&courses).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch courses",
		})
	}

	return c.JSON(fiber.Map{
		"courses": courses,
		"total":   len(courses),
	})
}

// GetCourse returns a specific course by ID
func (cc *CourseController) GetCourse(c *fiber.Ctx) error {
	var course models.Course
	if err := database.DB.First(&course, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Course not found",
		})
	}

	return c.JSON(fiber.Map{"course": course})
}

// CreateCourse creates a new course
func (cc *CourseController) CreateCourse(c *fiber.Ctx) error {
	var req CourseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if errs := utils.ValidateStruct(req); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}

	course := models.Course{
		Ten:       req.Ten,
		LichHoc:   req.LichHoc,
		GiangVien: req.GiangVien,
		SoBuoi:    req.SoBuoi,
		HocPhi:    req.HocPhi,
		MoTa:      req.MoTa,
		TrangThai: req.TrangThai,
	}
	if course.TrangThai == "" {
		course.TrangThai = "mo"
	}

	if err := database.DB.Create(&course).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create course",
		})
	}

	middleware.LogActivity(c, "CREATE", "khoahocs", course.ID, fiber.Map{"ten": course.Ten})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Course created successfully",
		"course":  course,
	})
}

// UpdateCourse updates an existing course
func (cc *CourseController) UpdateCourse(c *fiber.Ctx) error {
	var course models.Course
	if err := database.DB.First(&course, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Course not found",
		})
	}

	var req CourseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	updates := map[string]interface{}{}
	if req.Ten != "" {
		updates["ten"] = req.Ten
	}
	if req.LichHoc != "" {
		updates["lich_hoc"] = req.LichHoc
	}
	if req.GiangVien != "" {
		updates["giang_vien"] = req.GiangVien
	}
	if req.SoBuoi > 0 {
		updates["so_buoi"] = req.SoBuoi
	}
	if req.HocPhi > 0 {
		updates["hoc_phi"] = req.HocPhi
	}
	if req.MoTa != "" {
		updates["mo_ta"] = req.MoTa
	}
	if req.TrangThai != "" {
		updates["trang_thai"] = req.TrangThai
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&course).Updates(updates).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update course",
			})
		}
	}

	middleware.LogActivity(c, "UPDATE", "khoahocs", course.ID, updates)

	return c.JSON(fiber.Map{
		"message": "Course updated successfully",
		"course":  course,
	})
}

// DeleteCourse deletes a course
func (cc *CourseController) DeleteCourse(c *fiber.Ctx) error {
	var course models.Course
	if err := database.DB.First(&course, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Course not found",
		})
	}

	var enrollments int64
	database.DB.Model(&models.Enrollment{}).Where("khoa_hoc_id = ?", course.ID).Count(&enrollments)
	if enrollments > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot delete a course with enrollments",
		})
	}

	if err := database.DB.Delete(&course).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete course",
		})
	}

	middleware.LogActivity(c, "DELETE", "khoahocs", course.ID, fiber.Map{"ten": course.Ten})

	return c.JSON(fiber.Map{
		"message": "Course deleted successfully",
	})
}

// GetCourseStats returns counts by status plus the five most enrolled
// courses with their average completion.
func (cc *CourseController) GetCourseStats(c *fiber.Ctx) error {
	byStatus := map[string]int64{}
	rows, err := database.DB.Model(&models.Course{}).
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

	type topCourse struct {
		ID            string  `json:"id"`
		Ten           string  `json:"ten"`
		Enrollments   int64   `json:"enrollments"`
		AvgCompletion float64 `json:"avg_phan_tram_hoan_thanh"`
	}
	var top []topCourse
	database.DB.Model(&models.Enrollment{}).
		Select("erp_courses.id as id, erp_courses.ten as ten, COUNT(*) as enrollments, AVG(erp_enrollment.phan_tram_hoan_thanh) as avg_completion").
		Joins("JOIN erp_courses ON erp_courses.id = erp_enrollment.khoa_hoc_id").
		Group("erp_courses.id, erp_courses.ten").
		Order("enrollments DESC").
		Limit(5).
		Scan(&top)

	var total int64
	database.DB.Model(&models.Course{}).Count(&total)

	return c.JSON(fiber.Map{
		"total":         total,
		"by_trang_thai": byStatus,
		"top_courses":   top,
	})
}
