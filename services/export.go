package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"englishcenter_go/models"
)

var paymentMethodLabels = map[string]string{
	"tienmat":     "Tiền mặt",
	"chuyenkhoan": "Chuyển khoản",
	"the":         "Thẻ",
}

// ExportPaymentsXLSX renders all payments (optionally bounded by a date
// window on ngay_dong) into an XLSX workbook.
func ExportPaymentsXLSX(db *gorm.DB, from, to *time.Time) (*bytes.Buffer, error) {
	query := db.Preload("HocVien").Order("created_at DESC")
	if from != nil {
		query = query.Where("ngay_dong >= ?", *from)
	}
	if to != nil {
		query = query.Where("ngay_dong <= ?", *to)
	}

	var payments []models.Payment
	if err := query.Find(&payments).Error; err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Thanh toan"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"STT", "Học viên", "Email", "Số tiền (VND)", "Ngày đóng", "Hình thức", "Số biên lai", "Trạng thái", "Ghi chú"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	if err == nil {
		endCell, _ := excelize.CoordinatesToCellName(len(headers), 1)
		f.SetCellStyle(sheet, "A1", endCell, headerStyle)
	}

	for row, p := range payments {
		r := row + 2
		ngayDong := ""
		if p.NgayDong != nil {
			ngayDong = p.NgayDong.Format("02/01/2006")
		}
		hinhThuc := p.HinhThuc
		if label, ok := paymentMethodLabels[p.HinhThuc]; ok {
			hinhThuc = label
		}
		soBienLai := ""
		if p.SoBienLai != nil {
			soBienLai = *p.SoBienLai
		}

		values := []interface{}{
			row + 1,
			p.HocVien.Ten,
			p.HocVien.Email,
			p.SoTien,
			ngayDong,
			hinhThuc,
			soBienLai,
			p.TrangThai,
			p.GhiChu,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, r)
			f.SetCellValue(sheet, cell, v)
		}
	}

	f.SetColWidth(sheet, "B", "C", 28)
	f.SetColWidth(sheet, "D", "I", 18)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf, nil
}
