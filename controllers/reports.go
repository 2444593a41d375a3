package controllers

import (
	"englishcenter_go/database"
	"englishcenter_go/models"
	"englishcenter_go/utils"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type ReportController struct{}

// reportWindow reads optional from/to date filters. The default window is
// the last 6 months.
func reportWindow(c *fiber.Ctx, defaultMonths int) (from, to time.Time, err error) {
	now := time.Now()
	to = now
	from = now.AddDate(0, -defaultMonths, 0)

	if raw := c.Query("from"); raw != "" {
		from, err = utils.ParseDate(raw)
		if err != nil {
			return from, to, err
		}
	}
	if raw := c.Query("to"); raw != "" {
		to, err = utils.ParseDate(raw)
		if err != nil {
			return from, to, err
		}
		// inclusive end of day
		to = to.Add(24*time.Hour - time.Second)
	}
	return from, to, nil
}

type monthPoint struct {
	Month  string `json:"month"`
	Amount int64  `json:"amount"`
	Count  int64  `json:"count"`
}

// monthlySeries aggregates settled payments per calendar month over the
// window.
func monthlySeries(from, to time.Time) []monthPoint {
	settled := []string{models.PaymentStatusPartial, models.PaymentStatusPaid}

	series := []monthPoint{}
	cursor := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, from.Location())
	for !cursor.After(to) {
		next := cursor.AddDate(0, 1, 0)

		var amount, count int64
		database.DB.Model(&models.Payment{}).
			Where("trang_thai IN ? AND ngay_dong >= ? AND ngay_dong < ?", settled, cursor, next).
			Select("COALESCE(SUM(so_tien), 0)").Scan(&amount)
		database.DB.Model(&models.Payment{}).
			Where("trang_thai IN ? AND ngay_dong >= ? AND ngay_dong < ?", settled, cursor, next).
			Count(&count)

		series = append(series, monthPoint{
			Month:  cursor.Format("2006-01"),
			Amount: amount,
			Count:  count,
		})
		cursor = next
	}
	return series
}

// GetOverview returns the dashboard aggregates
func (rc *ReportController) GetOverview(c *fiber.Ctx) error {
	from, to, err := reportWindow(c, 6)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid date filter, expected YYYY-MM-DD",
		})
	}

	settled := []string{models.PaymentStatusPartial, models.PaymentStatusPaid}

	var newStudents int64
	database.DB.Model(&models.Student{}).
		Where("created_at BETWEEN ? AND ?", from, to).Count(&newStudents)

	var revenue int64
	database.DB.Model(&models.Payment{}).
		Where("trang_thai IN ? AND ngay_dong BETWEEN ? AND ?", settled, from, to).
		Select("COALESCE(SUM(so_tien), 0)").Scan(&revenue)

	var totalEnrollments, completedEnrollments int64
	database.DB.Model(&models.Enrollment{}).Count(&totalEnrollments)
	database.DB.Model(&models.Enrollment{}).
		Where("trang_thai = ?", "hoan_thanh").Count(&completedEnrollments)
	completionRate := 0.0
	if totalEnrollments > 0 {
		completionRate = float64(completedEnrollments) / float64(totalEnrollments) * 100
	}

	type debtor struct {
		ID    string `json:"id"`
		Ten   string `json:"ten"`
		Email string `json:"email"`
		Sdt   string `json:"sdt"`
	}
	var debtors []debtor
	if err := database.DB.Model(&models.Student{}).
		Select("id, ten, email, sdt").
		Where("trang_thai_hoc_phi = ?", models.FeeStatusPartial).
		Order("ten ASC").Limit(50).
		Scan(&debtors).Error; err != nil {
		logrus.WithError(err).Error("overview report: debtor query failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build overview report",
		})
	}

	type topCourse struct {
		ID          string `json:"id"`
		Ten         string `json:"ten"`
		Enrollments int64  `json:"enrollments"`
	}
	var top []topCourse
	database.DB.Model(&models.Enrollment{}).
		Select("erp_courses.id as id, erp_courses.ten as ten, COUNT(*) as enrollments").
		Joins("JOIN erp_courses ON erp_courses.id = erp_enrollment.khoa_hoc_id").
		Group("erp_courses.id, erp_courses.ten").
		Order("enrollments DESC").Limit(5).
		Scan(&top)

	return c.JSON(fiber.Map{
		"from":            from.Format("2006-01-02"),
		"to":              to.Format("2006-01-02"),
		"new_students":    newStudents,
		"revenue":         revenue,
		"completion_rate": completionRate,
		"debtors":         debtors,
		"top_courses":     top,
		"monthly_series":  monthlySeries(from, to),
	})
}

// GetFinancial returns revenue totals by method plus a 12-month series
func (rc *ReportController) GetFinancial(c *fiber.Ctx) error {
	from, to, err := reportWindow(c, 12)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid date filter, expected YYYY-MM-DD",
		})
	}

	settled := []string{models.PaymentStatusPartial, models.PaymentStatusPaid}

	var totalRevenue int64
	database.DB.Model(&models.Payment{}).
		Where("trang_thai IN ? AND ngay_dong BETWEEN ? AND ?", settled, from, to).
		Select("COALESCE(SUM(so_tien), 0)").Scan(&totalRevenue)

	byMethod := map[string]int64{}
	rows, qerr := database.DB.Model(&models.Payment{}).
		Select("hinh_thuc, COALESCE(SUM(so_tien), 0) as amount").
		Where("trang_thai IN ? AND ngay_dong BETWEEN ? AND ?", settled, from, to).
		Group("hinh_thuc").Rows()
	if qerr != nil {
		logrus.WithError(qerr).Error("financial report: method aggregation failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build financial report",
		})
	}
	defer rows.Close()
	for rows.Next() {
		var method string
		var amount int64
		if err := rows.Scan(&method, &amount); err == nil {
			byMethod[method] = amount
		}
	}

	var pendingAmount int64
	database.DB.Model(&models.Payment{}).
		Where("trang_thai = ?", models.PaymentStatusPending).
		Select("COALESCE(SUM(so_tien), 0)").Scan(&pendingAmount)

	return c.JSON(fiber.Map{
		"from":           from.Format("2006-01-02"),
		"to":             to.Format("2006-01-02"),
		"total_revenue":  totalRevenue,
		"by_hinh_thuc":   byMethod,
		"pending_amount": pendingAmount,
		"monthly_series": monthlySeries(from, to),
	})
}

// GetAcademic returns course and enrollment aggregates plus top teachers
func (rc *ReportController) GetAcademic(c *fiber.Ctx) error {
	coursesByStatus := map[string]int64{}
	rows, err := database.DB.Model(&models.Course{}).
		Select("trang_thai, COUNT(*) as n").Group("trang_thai").Rows()
	if err != nil {
		logrus.WithError(err).Error("academic report: course aggregation failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build academic report",
		})
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err == nil {
			coursesByStatus[status] = n
		}
	}

	enrollmentsByStatus := map[string]int64{}
	enrollRows, err := database.DB.Model(&models.Enrollment{}).
		Select("trang_thai, COUNT(*) as n").Group("trang_thai").Rows()
	if err == nil {
		defer enrollRows.Close()
		for enrollRows.Next() {
			var status string
			var n int64
			if err := enrollRows.Scan(&status, &n); err == nil {
				enrollmentsByStatus[status] = n
			}
		}
	}

	var avgCompletion float64
	database.DB.Model(&models.Enrollment{}).
		Select("COALESCE(AVG(phan_tram_hoan_thanh), 0)").Scan(&avgCompletion)

	type topTeacher struct {
		GiangVien string `json:"giang_vien"`
		Courses   int64  `json:"courses"`
		Students  int64  `json:"students"`
	}
	var topTeachers []topTeacher
	database.DB.Model(&models.Enrollment{}).
		Select("erp_courses.giang_vien as giang_vien, COUNT(DISTINCT erp_courses.id) as courses, COUNT(*) as students").
		Joins("JOIN erp_courses ON erp_courses.id = erp_enrollment.khoa_hoc_id").
		Where("erp_courses.giang_vien <> ''").
		Group("erp_courses.giang_vien").
		Order("students DESC").Limit(5).
		Scan(&topTeachers)

	var avgAttendanceRate float64
	var present, totalAttendance int64
	database.DB.Model(&models.Attendance{}).Count(&totalAttendance)
	database.DB.Model(&models.Attendance{}).
		Where("trang_thai = ?", models.AttendancePresent).Count(&present)
	if totalAttendance > 0 {
		avgAttendanceRate = float64(present) / float64(totalAttendance) * 100
	}

	return c.JSON(fiber.Map{
		"courses_by_trang_thai":     coursesByStatus,
		"enrollments_by_trang_thai": enrollmentsByStatus,
		"avg_phan_tram_hoan_thanh":  avgCompletion,
		"attendance_rate":           avgAttendanceRate,
		"top_teachers":              topTeachers,
	})
}
