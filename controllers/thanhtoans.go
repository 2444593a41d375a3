package controllers

import (
	"englishcenter_go/database"
	"englishcenter_go/middleware"
	"englishcenter_go/models"
	"englishcenter_go/services"
	"englishcenter_go/utils"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type PaymentController struct{}

var paymentOrderFields = map[string]bool{
	"so_tien":    true,
	"ngay_dong":  true,
	"created_at": true,
}

type PaymentRequest struct {
	HocVien   string `json:"hocvien" validate:"required"`
	SoTien    int64  `json:"so_tien" validate:"required,gte=1"`
	NgayDong  string `json:"ngay_dong"`
	HinhThuc  string `json:"hinh_thuc" validate:"omitempty,oneof=tienmat chuyenkhoan the"`
	SoBienLai string `json:"so_bien_lai"`
	TrangThai string `json:"trang_thai" validate:"omitempty,oneof=pending partial paid"`
	GhiChu    string `json:"ghi_chu"`
}

// GetPayments lists payments under the finance matrix
func (pc *PaymentController) GetPayments(c *fiber.Ctx) error {
	page, limit, offset := paginationParams(c)

	var payments []models.Payment
	var total int64

	query := database.DB.Model(&models.Payment{})

	if studentID := c.Query("hocvien"); studentID != "" {
		query = query.Where("hoc_vien_id = ?", studentID)
	}
	if status := c.Query("trang_thai"); status != "" {
		query = query.Where("trang_thai = ?", status)
	}
	if method := c.Query("hinh_thuc"); method != "" {
		query = query.Where("hinh_thuc = ?", method)
	}

	query = applyOrdering(query, c.Query("ordering", "-created_at"), paymentOrderFields)
	query.Count(&total)

	if err := query.Preload("HocVien").
		Offset(offset).Limit(limit).Find(&payments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch payments",
		})
	}

	return c.JSON(fiber.Map{
		"payments": payments,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetPayment returns one payment; a hocvien caller only their own.
func (pc *PaymentController) GetPayment(c *fiber.Ctx) error {
	var payment models.Payment
	if err := database.DB.Preload("HocVien").
		First(&payment, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Payment not found",
		})
	}

	if !canReadOwned(c, middleware.ActionFinanceRead, &payment) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Insufficient permissions",
		})
	}

	return c.JSON(fiber.Map{"payment": payment})
}

// CreatePayment records a payment. A partial/paid write recomputes the
// student's fee status inside the same transaction.
func (pc *PaymentController) CreatePayment(c *fiber.Ctx) error {
	var req PaymentRequest
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

	payment := models.Payment{
		HocVienID: student.ID,
		SoTien:    req.SoTien,
		HinhThuc:  req.HinhThuc,
		TrangThai: req.TrangThai,
		GhiChu:    req.GhiChu,
	}
	if payment.TrangThai == "" {
		payment.TrangThai = models.PaymentStatusPending
	}
	if req.SoBienLai != "" {
		payment.SoBienLai = &req.SoBienLai
	}
	if req.NgayDong != "" {
		paidAt, perr := utils.ParseDate(req.NgayDong)
		if perr != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid ngay_dong format, expected YYYY-MM-DD",
			})
		}
		payment.NgayDong = &paidAt
	}
	// paid without an explicit date stamps now
	if payment.TrangThai == models.PaymentStatusPaid && payment.NgayDong == nil {
		now := time.Now()
		payment.NgayDong = &now
	}

	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		if payment.TrangThai != models.PaymentStatusPending {
			return services.RecomputeFeeStatus(tx, payment.HocVienID)
		}
		return nil
	})
	if txErr != nil {
		if utils.IsDuplicateKeyError(txErr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Receipt number already in use",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to record payment",
		})
	}

	database.DB.Preload("HocVien").First(&payment, "id = ?", payment.ID)

	middleware.LogActivity(c, "CREATE", "thanhtoans", payment.ID, fiber.Map{
		"hocvien": payment.HocVienID,
		"so_tien": payment.SoTien,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Payment recorded successfully",
		"payment": payment,
	})
}

// UpdatePayment updates a payment; qualifying status changes recompute the
// fee status transactionally.
func (pc *PaymentController) UpdatePayment(c *fiber.Ctx) error {
	var payment models.Payment
	if err := database.DB.First(&payment, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Payment not found",
		})
	}

	var req PaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	updates := map[string]interface{}{}
	if req.SoTien > 0 {
		updates["so_tien"] = req.SoTien
	}
	if req.HinhThuc != "" {
		updates["hinh_thuc"] = req.HinhThuc
	}
	if req.SoBienLai != "" {
		updates["so_bien_lai"] = req.SoBienLai
	}
	if req.GhiChu != "" {
		updates["ghi_chu"] = req.GhiChu
	}
	if req.NgayDong != "" {
		paidAt, perr := utils.ParseDate(req.NgayDong)
		if perr != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid ngay_dong format, expected YYYY-MM-DD",
			})
		}
		updates["ngay_dong"] = paidAt
	}
	newStatus := payment.TrangThai
	if req.TrangThai != "" {
		newStatus = req.TrangThai
		updates["trang_thai"] = req.TrangThai
		if req.TrangThai == models.PaymentStatusPaid && payment.NgayDong == nil && req.NgayDong == "" {
			updates["ngay_dong"] = time.Now()
		}
	}

	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&payment).Updates(updates).Error; err != nil {
				return err
			}
		}
		if newStatus != models.PaymentStatusPending {
			return services.RecomputeFeeStatus(tx, payment.HocVienID)
		}
		return nil
	})
	if txErr != nil {
		if utils.IsDuplicateKeyError(txErr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Receipt number already in use",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update payment",
		})
	}

	middleware.LogActivity(c, "UPDATE", "thanhtoans", payment.ID, updates)

	return c.JSON(fiber.Map{
		"message": "Payment updated successfully",
		"payment": payment,
	})
}

// DeletePayment removes a payment and recomputes the owner's fee status
func (pc *PaymentController) DeletePayment(c *fiber.Ctx) error {
	var payment models.Payment
	if err := database.DB.First(&payment, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Payment not found",
		})
	}

	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&payment).Error; err != nil {
			return err
		}
		return services.RecomputeFeeStatus(tx, payment.HocVienID)
	})
	if txErr != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete payment",
		})
	}

	middleware.LogActivity(c, "DELETE", "thanhtoans", payment.ID, nil)

	return c.JSON(fiber.Map{
		"message": "Payment deleted successfully",
	})
}

// GetMyPayments lists the calling student's own payments
func (pc *PaymentController) GetMyPayments(c *fiber.Ctx) error {
	student, err := currentStudent(c)
	if err != nil {
		return c.JSON(fiber.Map{
			"payments": []models.Payment{},
			"total":    0,
		})
	}

	var payments []models.Payment
	if err := database.DB.Where("hoc_vien_id = ?", student.ID).
		Order("created_at DESC").Find(&payments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch payments",
		})
	}

	return c.JSON(fiber.Map{
		"payments": payments,
		"total":    len(payments),
	})
}

// GetPaymentStats returns revenue totals by method and this month's revenue
func (pc *PaymentController) GetPaymentStats(c *fiber.Ctx) error {
	settled := []string{models.PaymentStatusPartial, models.PaymentStatusPaid}

	var totalRevenue int64
	database.DB.Model(&models.Payment{}).
		Where("trang_thai IN ?", settled).
		Select("COALESCE(SUM(so_tien), 0)").Scan(&totalRevenue)

	byMethod := map[string]int64{}
	rows, err := database.DB.Model(&models.Payment{}).
		Select("hinh_thuc, COALESCE(SUM(so_tien), 0) as amount").
		Where("trang_thai IN ?", settled).
		Group("hinh_thuc").Rows()
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var method string
			var amount int64
			if err := rows.Scan(&method, &amount); err == nil {
				byMethod[method] = amount
			}
		}
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	var monthRevenue int64
	database.DB.Model(&models.Payment{}).
		Where("trang_thai IN ? AND ngay_dong >= ?", settled, monthStart).
		Select("COALESCE(SUM(so_tien), 0)").Scan(&monthRevenue)

	var pendingCount int64
	database.DB.Model(&models.Payment{}).
		Where("trang_thai = ?", models.PaymentStatusPending).Count(&pendingCount)

	return c.JSON(fiber.Map{
		"total_revenue":      totalRevenue,
		"by_hinh_thuc":       byMethod,
		"this_month_revenue": monthRevenue,
		"pending_count":      pendingCount,
	})
}

// ExportPayments streams the payment ledger as an XLSX workbook
func (pc *PaymentController) ExportPayments(c *fiber.Ctx) error {
	var from, to *time.Time
	if raw := c.Query("from"); raw != "" {
		t, err := utils.ParseDate(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid from date, expected YYYY-MM-DD",
			})
		}
		from = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := utils.ParseDate(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid to date, expected YYYY-MM-DD",
			})
		}
		to = &t
	}

	buf, err := services.ExportPaymentsXLSX(database.DB, from, to)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to export payments",
		})
	}

	middleware.LogActivity(c, "EXPORT", "thanhtoans", "", nil)

	filename := fmt.Sprintf("thanhtoan_%s.xlsx", time.Now().Format("20060102"))
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(buf.Bytes())
}
