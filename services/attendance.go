package services

import (
	"encoding/json"
	"englishcenter_go/models"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// BulkAttendanceItem is one student's attendance in a bulk submission.
type BulkAttendanceItem struct {
	LichHoc   string `json:"lich_hoc"`
	HocVien   string `json:"hoc_vien"`
	TrangThai string `json:"trang_thai"`
	ThoiGian  string `json:"thoi_gian"`
	GhiChu    string `json:"ghi_chu"`
}

// BulkAttendanceResult is the envelope returned by a bulk upsert.
type BulkAttendanceResult struct {
	Created []string        `json:"created"`
	Updated []string        `json:"updated"`
	Errors  []BulkItemError `json:"errors"`
}

type BulkItemError struct {
	HocVien string `json:"hoc_vien,omitempty"`
	Index   int    `json:"index"`
	Error   string `json:"error"`
}

// attendanceSynonyms maps free-text status labels (English and Vietnamese,
// already lowercased with spaces/dashes collapsed to underscores) onto the
// canonical status values.
var attendanceSynonyms = map[string]string{
	"co_mat":   models.AttendancePresent,
	"comat":    models.AttendancePresent,
	"present":  models.AttendancePresent,
	"attended": models.AttendancePresent,
	"di_hoc":   models.AttendancePresent,

	"vang_co_phep":   models.AttendanceExcusedAbsent,
	"excused":        models.AttendanceExcusedAbsent,
	"excused_absent": models.AttendanceExcusedAbsent,
	"xin_phep":       models.AttendanceExcusedAbsent,
	"nghi_phep":      models.AttendanceExcusedAbsent,

	"vang_khong_phep":  models.AttendanceUnexcusedAbsent,
	"vang":             models.AttendanceUnexcusedAbsent,
	"vang_mat":         models.AttendanceUnexcusedAbsent,
	"absent":           models.AttendanceUnexcusedAbsent,
	"unexcused":        models.AttendanceUnexcusedAbsent,
	"unexcused_absent": models.AttendanceUnexcusedAbsent,
	"nghi_khong_phep":  models.AttendanceUnexcusedAbsent,
}

// NormalizeAttendanceStatus resolves a free-text label to a canonical
// attendance status. An empty label defaults to present; an unknown label
// returns an error naming the input.
func NormalizeAttendanceStatus(label string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(label))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	if s == "" {
		return models.AttendancePresent, nil
	}
	if canonical, ok := attendanceSynonyms[s]; ok {
		return canonical, nil
	}
	return "", fmt.Errorf("unknown attendance status %q", label)
}

// DecodeBulkAttendance accepts the three payload shapes a client may send:
// a bare JSON list of items, an object {lich_hoc, items: [...]}, or a map
// keyed by student id with an optional top-level lich_hoc shared default.
func DecodeBulkAttendance(body []byte) ([]BulkAttendanceItem, error) {
	body = []byte(strings.TrimSpace(string(body)))
	if len(body) == 0 {
		return nil, fmt.Errorf("empty request body")
	}

	if body[0] == '[' {
		var items []BulkAttendanceItem
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, fmt.Errorf("invalid attendance list: %w", err)
		}
		return items, nil
	}

	if body[0] != '{' {
		return nil, fmt.Errorf("attendance payload must be a JSON list or object")
	}

	// Object form: either {lich_hoc, items} or a map keyed by student id.
	var envelope struct {
		LichHoc string               `json:"lich_hoc"`
		Items   []BulkAttendanceItem `json:"items"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Items != nil {
		for i := range envelope.Items {
			if envelope.Items[i].LichHoc == "" {
				envelope.Items[i].LichHoc = envelope.LichHoc
			}
		}
		return envelope.Items, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("invalid attendance payload: %w", err)
	}

	sharedSlot := ""
	if v, ok := raw["lich_hoc"]; ok {
		if err := json.Unmarshal(v, &sharedSlot); err != nil {
			return nil, fmt.Errorf("invalid lich_hoc value")
		}
		delete(raw, "lich_hoc")
	}

	items := make([]BulkAttendanceItem, 0, len(raw))
	for studentID, payload := range raw {
		var item BulkAttendanceItem
		if err := json.Unmarshal(payload, &item); err != nil {
			// A bare string value is shorthand for just the status label.
			var label string
			if err2 := json.Unmarshal(payload, &label); err2 != nil {
				return nil, fmt.Errorf("invalid attendance entry for student %s", studentID)
			}
			item.TrangThai = label
		}
		item.HocVien = studentID
		if item.LichHoc == "" {
			item.LichHoc = sharedSlot
		}
		items = append(items, item)
	}
	return items, nil
}

// UpsertBulkAttendance applies a decoded batch: each item is normalized,
// resolved, and upserted on (slot, student). Per-item failures are collected
// and never abort the rest of the batch.
func UpsertBulkAttendance(db *gorm.DB, items []BulkAttendanceItem) BulkAttendanceResult {
	result := BulkAttendanceResult{
		Created: []string{},
		Updated: []string{},
		Errors:  []BulkItemError{},
	}

	for i, item := range items {
		id, created, err := upsertAttendanceItem(db, item)
		if err != nil {
			result.Errors = append(result.Errors, BulkItemError{
				HocVien: item.HocVien,
				Index:   i,
				Error:   err.Error(),
			})
			continue
		}
		if created {
			result.Created = append(result.Created, id)
		} else {
			result.Updated = append(result.Updated, id)
		}
	}
	return result
}

func upsertAttendanceItem(db *gorm.DB, item BulkAttendanceItem) (id string, created bool, err error) {
	if item.LichHoc == "" {
		return "", false, fmt.Errorf("missing lich_hoc")
	}
	if item.HocVien == "" {
		return "", false, fmt.Errorf("missing hoc_vien")
	}

	status, err := NormalizeAttendanceStatus(item.TrangThai)
	if err != nil {
		return "", false, err
	}

	var slot models.ScheduleSlot
	if err := db.Select("id").First(&slot, "id = ?", item.LichHoc).Error; err != nil {
		return "", false, fmt.Errorf("unknown schedule slot %s", item.LichHoc)
	}

	var student models.Student
	if err := db.Select("id").First(&student, "id = ?", item.HocVien).Error; err != nil {
		return "", false, fmt.Errorf("unknown student %s", item.HocVien)
	}

	var checkIn *time.Time
	if item.ThoiGian != "" {
		t, perr := parseFlexibleTime(item.ThoiGian)
		if perr != nil {
			return "", false, fmt.Errorf("invalid thoi_gian %q", item.ThoiGian)
		}
		checkIn = &t
	}

	var existing models.Attendance
	findErr := db.First(&existing, "lich_hoc_id = ? AND hoc_vien_id = ?", item.LichHoc, item.HocVien).Error
	if findErr == nil {
		updates := map[string]interface{}{
			"trang_thai": status,
		}
		if checkIn != nil {
			updates["thoi_gian"] = checkIn
		}
		if item.GhiChu != "" {
			updates["ghi_chu"] = item.GhiChu
		}
		if err := db.Model(&existing).Updates(updates).Error; err != nil {
			return "", false, err
		}
		return existing.ID, false, nil
	}

	record := models.Attendance{
		LichHocID: item.LichHoc,
		HocVienID: item.HocVien,
		TrangThai: status,
		ThoiGian:  checkIn,
		GhiChu:    item.GhiChu,
	}
	if err := db.Create(&record).Error; err != nil {
		return "", false, err
	}
	return record.ID, true, nil
}

func parseFlexibleTime(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format")
}
