package controllers

import (
	"englishcenter_go/database"
	"englishcenter_go/middleware"
	"englishcenter_go/models"
	"englishcenter_go/utils"
	"time"

	"github.com/gofiber/fiber/v2"
)

type NotificationController struct{}

type NotificationRequest struct {
	TieuDe       string `json:"tieu_de" validate:"required"`
	NoiDung      string `json:"noi_dung" validate:"required"`
	NgayGui      string `json:"ngay_gui"`
	NguoiNhan    string `json:"nguoi_nhan" validate:"omitempty,oneof=tatca hocvien nhanvien user"`
	User         string `json:"user"`
	TrangThai    string `json:"trang_thai" validate:"omitempty,oneof=moi dang_gui da_gui huy_bo"`
	LoaiThongBao string `json:"loai_thong_bao" validate:"omitempty,oneof=thong_bao canh_bao thong_tin khac"`
}

// GetNotifications lists notifications with filters and pagination (staff)
func (nc *NotificationController) GetNotifications(c *fiber.Ctx) error {
	page, limit, offset := paginationParams(c)

	var notifications []models.Notification
	var total int64

	query := database.DB.Model(&models.Notification{})

	if status := c.Query("trang_thai"); status != "" {
		query = query.Where("trang_thai = ?", status)
	}
	if recipient := c.Query("nguoi_nhan"); recipient != "" {
		query = query.Where("nguoi_nhan = ?", recipient)
	}
	if category := c.Query("loai_thong_bao"); category != "" {
		query = query.Where("loai_thong_bao = ?", category)
	}

	query = query.Order("created_at DESC")
	query.Count(&total)

	if err := query.Preload("User").
		Offset(offset).Limit(limit).Find(&notifications).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch notifications",
		})
	}

	return c.JSON(fiber.Map{
		"notifications": notifications,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetPublicFeed lists sent broadcast notifications without authentication
func (nc *NotificationController) GetPublicFeed(c *fiber.Ctx) error {
	var notifications []models.Notification
	if err := database.DB.
		Where("trang_thai = ? AND nguoi_nhan = ?", "da_gui", "tatca").
		Order("ngay_gui DESC").Limit(50).Find(&notifications).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch notifications",
		})
	}

	return c.JSON(fiber.Map{
		"notifications": notifications,
		"total":         len(notifications),
	})
}

// GetMyNotifications lists sent notifications addressed to the caller,
// their role class, or everyone
func (nc *NotificationController) GetMyNotifications(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	roleClass := "nhanvien"
	if user.Role == models.RoleStudent {
		roleClass = "hocvien"
	}

	var notifications []models.Notification
	if err := database.DB.
		Where("trang_thai = ? AND (nguoi_nhan = ? OR nguoi_nhan = ? OR (nguoi_nhan = ? AND user_id = ?))",
			"da_gui", "tatca", roleClass, "user", user.ID).
		Order("ngay_gui DESC").Find(&notifications).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch notifications",
		})
	}

	return c.JSON(fiber.Map{
		"notifications": notifications,
		"total":         len(notifications),
	})
}

// GetNotification returns one notification by ID
func (nc *NotificationController) GetNotification(c *fiber.Ctx) error {
	var notification models.Notification
	if err := database.DB.Preload("User").
		First(&notification, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Notification not found",
		})
	}

	return c.JSON(fiber.Map{"notification": notification})
}

// CreateNotification drafts a notification; the scheduler promotes it once
// its send time arrives.
func (nc *NotificationController) CreateNotification(c *fiber.Ctx) error {
	var req NotificationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if errs := utils.ValidateStruct(req); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}

	notification := models.Notification{
		TieuDe:       req.TieuDe,
		NoiDung:      req.NoiDung,
		NguoiNhan:    req.NguoiNhan,
		TrangThai:    req.TrangThai,
		LoaiThongBao: req.LoaiThongBao,
	}
	if notification.NguoiNhan == "" {
		notification.NguoiNhan = "tatca"
	}
	if notification.TrangThai == "" {
		notification.TrangThai = "moi"
	}
	if notification.LoaiThongBao == "" {
		notification.LoaiThongBao = "thong_bao"
	}

	if notification.NguoiNhan == "user" {
		if req.User == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "user is required when nguoi_nhan is 'user'",
			})
		}
		var target models.User
		if err := database.DB.Select("id").First(&target, "id = ?", req.User).Error; err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unknown target user",
			})
		}
		notification.UserID = &target.ID
	}

	if req.NgayGui != "" {
		sendAt, perr := time.Parse(time.RFC3339, req.NgayGui)
		if perr != nil {
			if d, derr := utils.ParseDate(req.NgayGui); derr == nil {
				sendAt = d
			} else {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid ngay_gui format, expected RFC3339 or YYYY-MM-DD",
				})
			}
		}
		notification.NgayGui = &sendAt
	}

	if err := database.DB.Create(&notification).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create notification",
		})
	}

	middleware.LogActivity(c, "CREATE", "thongbaos", notification.ID, fiber.Map{"tieu_de": notification.TieuDe})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":      "Notification created successfully",
		"notification": notification,
	})
}

// UpdateNotification edits an unsent notification
func (nc *NotificationController) UpdateNotification(c *fiber.Ctx) error {
	var notification models.Notification
	if err := database.DB.First(&notification, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Notification not found",
		})
	}

	if notification.TrangThai == "da_gui" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot edit a notification that has been sent",
		})
	}

	var req NotificationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	updates := map[string]interface{}{}
	if req.TieuDe != "" {
		updates["tieu_de"] = req.TieuDe
	}
	if req.NoiDung != "" {
		updates["noi_dung"] = req.NoiDung
	}
	if req.NguoiNhan != "" {
		updates["nguoi_nhan"] = req.NguoiNhan
	}
	if req.TrangThai != "" {
		updates["trang_thai"] = req.TrangThai
	}
	if req.LoaiThongBao != "" {
		updates["loai_thong_bao"] = req.LoaiThongBao
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&notification).Updates(updates).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update notification",
			})
		}
	}

	middleware.LogActivity(c, "UPDATE", "thongbaos", notification.ID, updates)

	return c.JSON(fiber.Map{
		"message":      "Notification updated successfully",
		"notification": notification,
	})
}

// DeleteNotification removes a notification
func (nc *NotificationController) DeleteNotification(c *fiber.Ctx) error {
	var notification models.Notification
	if err := database.DB.First(&notification, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Notification not found",
		})
	}

	if err := database.DB.Delete(&notification).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete notification",
		})
	}

	middleware.LogActivity(c, "DELETE", "thongbaos", notification.ID, nil)

	return c.JSON(fiber.Map{
		"message": "Notification deleted successfully",
	})
}

// GetNotificationStats returns counts by status and recipient class
func (nc *NotificationController) GetNotificationStats(c *fiber.Ctx) error {
	byStatus := map[string]int64{}
	byRecipient := map[string]int64{}

	rows, err := database.DB.Model(&models.Notification{}).
		Select("trang_thai, COUNT(*) as n").Group("trang_thai").Rows()
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

	recipientRows, err := database.DB.Model(&models.Notification{}).
		Select("nguoi_nhan, COUNT(*) as n").Group("nguoi_nhan").Rows()
	if err == nil {
		defer recipientRows.Close()
		for recipientRows.Next() {
			var recipient string
			var n int64
			if err := recipientRows.Scan(&recipient, &n); err == nil {
				byRecipient[recipient] = n
			}
		}
	}

	var total int64
	database.DB.Model(&models.Notification{}).Count(&total)

	return c.JSON(fiber.Map{
		"total":         total,
		"by_trang_thai": byStatus,
		"by_nguoi_nhan": byRecipient,
	})
}
