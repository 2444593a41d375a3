package controllers

import (
	"englishcenter_go/database"
	"englishcenter_go/middleware"
	"englishcenter_go/models"
	"englishcenter_go/services"
	"englishcenter_go/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type StudentController struct{}

var studentOrderFields = map[string]bool{
	"ten":                true,
	"email":              true,
	"ngay_sinh":          true,
	"trang_thai_hoc_phi": true,
	"created_at":         true,
}

// StudentRequest is the create/update body. A password provisions a login
// account for the student in the same transaction.
type StudentRequest struct {
	Ten            string `json:"ten" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Sdt            string `json:"sdt"`
	NgaySinh       string `json:"ngay_sinh"`
	DiaChi         string `json:"dia_chi"`
	KhoaHocQuanTam string `json:"khoahoc_quan_tam"`
	GhiChu         string `json:"ghi_chu"`
	Password       string `json:"password"`
}

// GetStudents returns all students with filtering and pagination
func (sc *StudentController) GetStudents(c *fiber.Ctx) error {
	page, limit, offset := paginationParams(c)

	var students []models.Student
	var total int64

	query := database.DB.Model(&models.Student{})

	if feeStatus := c.Query("trang_thai_hoc_phi"); feeStatus != "" {
		query = query.Where("trang_thai_hoc_phi = ?", feeStatus)
	}
	if converted := c.Query("is_converted"); converted != "" {
		query = query.Where("is_converted = ?", converted == "true")
	}
	if lead := c.Query("created_as_lead"); lead != "" {
		query = query.Where("created_as_lead = ?", lead == "true")
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("ten LIKE ? OR email LIKE ? OR sdt LIKE ?", like, like, like)
	}

	query = applyOrdering(query, c.Query("ordering", "-created_at"), studentOrderFields)
	query.Count(&total)

	if err := query.Preload("UserInfo").Preload("KhoaHocQuanTam").
		Offset(offset).Limit(limit).Find(&students).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch students",
		})
	}

	return c.JSON(fiber.Map{
		"students": students,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetStudent returns a specific student; a hocvien caller only sees their
// own record.
func (sc *StudentController) GetStudent(c *fiber.Ctx) error {
	var student models.Student
	if err := database.DB.Preload("UserInfo").Preload("KhoaHocQuanTam").
		First(&student, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Student not found",
		})
	}

	if !canReadOwned(c, middleware.ActionStudentsRead, &student) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Insufficient permissions",
		})
	}

	return c.JSON(fiber.Map{
		"student": student,
		"tuoi":    student.Tuoi(),
	})
}

// CreateStudent creates a direct student record (staff path). The record is
// considered active immediately; a supplied password also provisions a
// linked login account.
func (sc *StudentController) CreateStudent(c *fiber.Ctx) error {
	var req StudentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if errs := utils.ValidateStruct(req); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}

	student, status, err := buildStudent(&req, false)
	if err != nil {
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(student).Error; err != nil {
			return err
		}
		if req.Password != "" {
			if _, err := services.ProvisionAccount(tx, student, req.Password); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		if utils.IsDuplicateKeyError(txErr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "A student with this email already exists",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create student",
		})
	}

	database.DB.Preload("UserInfo").First(student, "id = ?", student.ID)

	middleware.LogActivity(c, "CREATE", "hocviens", student.ID, fiber.Map{"ten": student.Ten})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Student created successfully",
		"student": student,
	})
}

// CreateLead is the public lead-capture endpoint. Rows start unconverted.
func (sc *StudentController) CreateLead(c *fiber.Ctx) error {
	var req StudentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if errs := utils.ValidateStruct(req); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}

	student, status, err := buildStudent(&req, true)
	if err != nil {
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	if err := database.DB.Create(student).Error; err != nil {
		if utils.IsDuplicateKeyError(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "A student with this email already exists",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to register lead",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Lead registered successfully",
		"student": student,
	})
}

func buildStudent(req *StudentRequest, asLead bool) (*models.Student, int, error) {
	student := &models.Student{
		Ten:           req.Ten,
		Email:         req.Email,
		Sdt:           req.Sdt,
		DiaChi:        req.DiaChi,
		GhiChu:        req.GhiChu,
		CreatedAsLead: asLead,
		IsConverted:   !asLead,
	}

	if req.NgaySinh != "" {
		birth, err := utils.ParseDate(req.NgaySinh)
		if err != nil {
			return nil, fiber.StatusBadRequest, fiber.NewError(fiber.StatusBadRequest, "Invalid ngay_sinh format, expected YYYY-MM-DD")
		}
		student.NgaySinh = &birth
	}

	if req.KhoaHocQuanTam != "" {
		var course models.Course
		if err := database.DB.Select("id").First(&course, "id = ?", req.KhoaHocQuanTam).Error; err != nil {
			return nil, fiber.StatusBadRequest, fiber.NewError(fiber.StatusBadRequest, "Unknown course of interest")
		}
		student.KhoaHocQuanTamID = &course.ID
	}

	return student, 0, nil
}

// ConvertLead flips a lead into an active student; converting twice is a
// no-op.
func (sc *StudentController) ConvertLead(c *fiber.Ctx) error {
	student, err := services.ConvertLead(database.DB, c.Params("id"))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Student not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to convert lead",
		})
	}

	middleware.LogActivity(c, "UPDATE", "hocviens", student.ID, fiber.Map{"action": "lead_convert"})

	return c.JSON(fiber.Map{
		"message": "Lead converted successfully",
		"student": student,
	})
}

// UpdateStudent updates an existing student record
func (sc *StudentController) UpdateStudent(c *fiber.Ctx) error {
	var student models.Student
	if err := database.DB.First(&student, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Student not found",
		})
	}

	var req StudentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	updates := map[string]interface{}{}
	if req.Ten != "" {
		updates["ten"] = req.Ten
	}
	if req.Email != "" {
		updates["email"] = req.Email
	}
	if req.Sdt != "" {
		updates["sdt"] = req.Sdt
	}
	if req.DiaChi != "" {
		updates["dia_chi"] = req.DiaChi
	}
	if req.GhiChu != "" {
		updates["ghi_chu"] = req.GhiChu
	}
	if req.NgaySinh != "" {
		birth, perr := utils.ParseDate(req.NgaySinh)
		if perr != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid ngay_sinh format, expected YYYY-MM-DD",
			})
		}
		updates["ngay_sinh"] = birth
	}
	if req.KhoaHocQuanTam != "" {
		var course models.Course
		if err := database.DB.Select("id").First(&course, "id = ?", req.KhoaHocQuanTam).Error; err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unknown course of interest",
			})
		}
		updates["khoa_hoc_quan_tam_id"] = course.ID
	}

	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&student).Updates(updates).Error; err != nil {
				return err
			}
		}
		if req.Password != "" {
			if _, err := services.ProvisionAccount(tx, &student, req.Password); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		if utils.IsDuplicateKeyError(txErr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "A student with this email already exists",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update student",
		})
	}

	database.DB.Preload("UserInfo").First(&student, "id = ?", student.ID)

	middleware.LogActivity(c, "UPDATE", "hocviens", student.ID, updates)

	return c.JSON(fiber.Map{
		"message": "Student updated successfully",
		"student": student,
	})
}

// DeleteStudent deletes a student record
func (sc *StudentController) DeleteStudent(c *fiber.Ctx) error {
	var student models.Student
	if err := database.DB.First(&student, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Student not found",
		})
	}

	if err := database.DB.Delete(&student).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete student",
		})
	}

	middleware.LogActivity(c, "DELETE", "hocviens", student.ID, fiber.Map{"ten": student.Ten})

	return c.JSON(fiber.Map{
		"message": "Student deleted successfully",
	})
}

// GetMyProfile returns the student record linked to the calling account
func (sc *StudentController) GetMyProfile(c *fiber.Ctx) error {
	student, err := currentStudent(c)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No student record linked to this account",
		})
	}

	database.DB.Preload("KhoaHocQuanTam").First(student, "id = ?", student.ID)

	return c.JSON(fiber.Map{
		"student": student,
		"tuoi":    student.Tuoi(),
	})
}

// GetStudentStats returns aggregate counts for the dashboard
func (sc *StudentController) GetStudentStats(c *fiber.Ctx) error {
	var total, leads, converted, withAccounts int64
	byFeeStatus := map[string]int64{}

	db := database.DB.Model(&models.Student{})
	db.Count(&total)
	database.DB.Model(&models.Student{}).Where("created_as_lead = ? AND is_converted = ?", true, false).Count(&leads)
	database.DB.Model(&models.Student{}).Where("is_converted = ?", true).Count(&converted)
	database.DB.Model(&models.Student{}).Where("user_id IS NOT NULL").Count(&withAccounts)

	rows, err := database.DB.Model(&models.Student{}).
		Select("trang_thai_hoc_phi, COUNT(*) as n").
		Group("trang_thai_hoc_phi").Rows()
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var status string
			var n int64
			if err := rows.Scan(&status, &n); err == nil {
				byFeeStatus[status] = n
			}
		}
	}

	return c.JSON(fiber.Map{
		"total":                 total,
		"open_leads":            leads,
		"active_students":       converted,
		"linked_accounts":       withAccounts,
		"by_trang_thai_hoc_phi": byFeeStatus,
	})
}

// GetNote returns the contact note attached to a student
func (sc *StudentController) GetNote(c *fiber.Ctx) error {
	var note models.ContactNote
	if err := database.DB.First(&note, "student_id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No note for this student",
		})
	}

	return c.JSON(fiber.Map{"note": note})
}

// UpsertNote writes the contact note for a student, last write wins.
func (sc *StudentController) UpsertNote(c *fiber.Ctx) error {
	var student models.Student
	if err := database.DB.Select("id").First(&student, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Student not found",
		})
	}

	var req struct {
		NoiDung string `json:"noi_dung" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if errs := utils.ValidateStruct(req); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}

	var note models.ContactNote
	err := database.DB.First(&note, "student_id = ?", student.ID).Error
	if err == nil {
		if err := database.DB.Model(&note).Update("noi_dung", req.NoiDung).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update note",
			})
		}
	} else {
		note = models.ContactNote{StudentID: student.ID, NoiDung: req.NoiDung}
		if err := database.DB.Create(&note).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to save note",
			})
		}
	}

	middleware.LogActivity(c, "UPDATE", "hocviens", student.ID, fiber.Map{"action": "note_upsert"})

	return c.JSON(fiber.Map{
		"message": "Note saved successfully",
		"note":    note,
	})
}
