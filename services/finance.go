package services

import (
	"englishcenter_go/models"

	"gorm.io/gorm"
)

// DeriveFeeStatus maps the paid/owed totals onto a student fee status.
// A student with no billable enrollments is never considered fully paid.
func DeriveFeeStatus(totalPaid, totalFee int64) string {
	if totalFee > 0 && totalPaid >= totalFee {
		return models.FeeStatusPaid
	}
	if totalPaid > 0 {
		return models.FeeStatusPartial
	}
	return models.FeeStatusUnpaid
}

// RecomputeFeeStatus recalculates and persists a student's fee status from
// their recorded payments and active enrollments. Callers run it inside the
// same transaction as the payment write so the status never drifts.
func RecomputeFeeStatus(tx *gorm.DB, studentID string) error {
	var totalPaid int64
	err := tx.Model(&models.Payment{}).
		Where("hoc_vien_id = ? AND trang_thai IN ?", studentID,
			[]string{models.PaymentStatusPartial, models.PaymentStatusPaid}).
		Select("COALESCE(SUM(so_tien), 0)").
		Scan(&totalPaid).Error
	if err != nil {
		return err
	}

	var totalFee int64
	err = tx.Model(&models.Enrollment{}).
		Joins("JOIN erp_courses ON erp_courses.id = erp_enrollment.khoa_hoc_id").
		Where("erp_enrollment.hoc_vien_id = ? AND erp_enrollment.trang_thai IN ?", studentID,
			[]string{"dang_hoc", "hoan_thanh"}).
		Select("COALESCE(SUM(erp_courses.hoc_phi), 0)").
		Scan(&totalFee).Error
	if err != nil {
		return err
	}

	status := DeriveFeeStatus(totalPaid, totalFee)
	return tx.Model(&models.Student{}).
		Where("id = ?", studentID).
		Update("trang_thai_hoc_phi", status).Error
}
