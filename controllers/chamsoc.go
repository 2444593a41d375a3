package controllers

import (
	"encoding/json"
	"englishcenter_go/database"
	"englishcenter_go/middleware"
	"englishcenter_go/models"
	"englishcenter_go/storage"
	"englishcenter_go/utils"

	"github.com/gofiber/fiber/v2"
)

type CareLogController struct{}

type CareLogRequest struct {
	HocVien     string `json:"hocvien" validate:"required"`
	LoaiChamSoc string `json:"loai_cham_soc" validate:"omitempty,oneof=tuvan theodoi hoidap khac"`
	NoiDung     string `json:"noi_dung" validate:"required"`
	TrangThai   string `json:"trang_thai" validate:"omitempty,oneof=moi dang_xu_ly hoan_thanh dong"`
	GhiChu      string `json:"ghi_chu"`
}

// GetCareLogs lists care logs with filters and pagination
func (clc *CareLogController) GetCareLogs(c *fiber.Ctx) error {
	page, limit, offset := paginationParams(c)

	var logs []models.CareLog
	var total int64

	query := database.DB.Model(&models.CareLog{})

	if studentID := c.Query("hocvien"); studentID != "" {
		query = query.Where("hoc_vien_id = ?", studentID)
	}
	if category := c.Query("loai_cham_soc"); category != "" {
		query = query.Where("loai_cham_soc = ?", category)
	}
	if status := c.Query("trang_thai"); status != "" {
		query = query.Where("trang_thai = ?", status)
	}

	query = query.Order("created_at DESC")
	query.Count(&total)

	if err := query.Preload("HocVien").Preload("NhanVien").
		Offset(offset).Limit(limit).Find(&logs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch care logs",
		})
	}

	return c.JSON(fiber.Map{
		"care_logs": logs,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetCareLog returns one care log; a hocvien caller only their own.
func (clc *CareLogController) GetCareLog(c *fiber.Ctx) error {
	var log models.CareLog
	if err := database.DB.Preload("HocVien").Preload("NhanVien").
		First(&log, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Care log not found",
		})
	}

	if !canReadOwned(c, middleware.ActionCRMManage, &log) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Insufficient permissions",
		})
	}

	return c.JSON(fiber.Map{"care_log": log})
}

// CreateCareLog records a new care entry attributed to the calling staff
func (clc *CareLogController) CreateCareLog(c *fiber.Ctx) error {
	var req CareLogRequest
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

	log := models.CareLog{
		HocVienID:   student.ID,
		LoaiChamSoc: req.LoaiChamSoc,
		NoiDung:     req.NoiDung,
		TrangThai:   req.TrangThai,
		GhiChu:      req.GhiChu,
	}
	if log.LoaiChamSoc == "" {
		log.LoaiChamSoc = "tuvan"
	}
	if log.TrangThai == "" {
		log.TrangThai = "moi"
	}
	if user, err := middleware.GetCurrentUser(c); err == nil {
		log.NhanVienID = &user.ID
	}

	if err := database.DB.Create(&log).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create care log",
		})
	}

	middleware.LogActivity(c, "CREATE", "chamsoc", log.ID, fiber.Map{"hocvien": log.HocVienID})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Care log created successfully",
		"care_log": log,
	})
}

// UpdateCareLog updates status/content of a care entry
func (clc *CareLogController) UpdateCareLog(c *fiber.Ctx) error {
	var log models.CareLog
	if err := database.DB.First(&log, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Care log not found",
		})
	}

	var req CareLogRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	updates := map[string]interface{}{}
	if req.LoaiChamSoc != "" {
		updates["loai_cham_soc"] = req.LoaiChamSoc
	}
	if req.NoiDung != "" {
		updates["noi_dung"] = req.NoiDung
	}
	if req.TrangThai != "" {
		updates["trang_thai"] = req.TrangThai
	}
	if req.GhiChu != "" {
		updates["ghi_chu"] = req.GhiChu
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&log).Updates(updates).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update care log",
			})
		}
	}

	middleware.LogActivity(c, "UPDATE", "chamsoc", log.ID, updates)

	return c.JSON(fiber.Map{
		"message":  "Care log updated successfully",
		"care_log": log,
	})
}

// DeleteCareLog removes a care entry
func (clc *CareLogController) DeleteCareLog(c *fiber.Ctx) error {
	var log models.CareLog
	if err := database.DB.First(&log, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Care log not found",
		})
	}

	if err := database.DB.Delete(&log).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete care log",
		})
	}

	middleware.LogActivity(c, "DELETE", "chamsoc", log.ID, nil)

	return c.JSON(fiber.Map{
		"message": "Care log deleted successfully",
	})
}

// GetMyCareLogs lists the calling student's own care history
func (clc *CareLogController) GetMyCareLogs(c *fiber.Ctx) error {
	student, err := currentStudent(c)
	if err != nil {
		return c.JSON(fiber.Map{
			"care_logs": []models.CareLog{},
			"total":     0,
		})
	}

	var logs []models.CareLog
	if err := database.DB.Preload("NhanVien").
		Where("hoc_vien_id = ?", student.ID).
		Order("created_at DESC").Find(&logs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch care logs",
		})
	}

	return c.JSON(fiber.Map{
		"care_logs": logs,
		"total":     len(logs),
	})
}

// GetCareLogStats returns counts by category and status
func (clc *CareLogController) GetCareLogStats(c *fiber.Ctx) error {
	byCategory := map[string]int64{}
	byStatus := map[string]int64{}

	rows, err := database.DB.Model(&models.CareLog{}).
		Select("loai_cham_soc, COUNT(*) as n").Group("loai_cham_soc").Rows()
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var category string
			var n int64
			if err := rows.Scan(&category, &n); err == nil {
				byCategory[category] = n
			}
		}
	}

	statusRows, err := database.DB.Model(&models.CareLog{}).
		Select("trang_thai, COUNT(*) as n").Group("trang_thai").Rows()
	if err == nil {
		defer statusRows.Close()
		for statusRows.Next() {
			var status string
			var n int64
			if err := statusRows.Scan(&status, &n); err == nil {
				byStatus[status] = n
			}
		}
	}

	var total int64
	database.DB.Model(&models.CareLog{}).Count(&total)

	return c.JSON(fiber.Map{
		"total":            total,
		"by_loai_cham_soc": byCategory,
		"by_trang_thai":    byStatus,
	})
}

// UploadAttachment stores a multipart file on S3 and appends its URL to the
// care log's attachments array
func (clc *CareLogController) UploadAttachment(c *fiber.Ctx) error {
	var log models.CareLog
	if err := database.DB.First(&log, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Care log not found",
		})
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing file field",
		})
	}

	storageService, err := storage.NewStorageService()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Storage unavailable",
		})
	}

	url, err := storageService.UploadFile(file, "care-logs", log.HocVienID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to upload attachment",
		})
	}

	var attachments []string
	if !log.Attachments.IsNull() {
		_ = json.Unmarshal(log.Attachments, &attachments)
	}
	attachments = append(attachments, url)

	attachmentsJSON, _ := json.Marshal(attachments)
	if err := database.DB.Model(&log).
		Update("attachments", models.JSON(attachmentsJSON)).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save attachment",
		})
	}

	middleware.LogActivity(c, "UPDATE", "chamsoc", log.ID, fiber.Map{"action": "attachment_upload"})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":     "Attachment uploaded successfully",
		"url":         url,
		"attachments": attachments,
	})
}
