package services

import (
	"englishcenter_go/models"
	"sort"
	"testing"
)

func TestNormalizeAttendanceStatus(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "canonical present", input: "co_mat", expected: models.AttendancePresent},
		{name: "english present", input: "Present", expected: models.AttendancePresent},
		{name: "spaces", input: "co mat", expected: models.AttendancePresent},
		{name: "empty defaults to present", input: "", expected: models.AttendancePresent},
		{name: "excused english", input: "EXCUSED", expected: models.AttendanceExcusedAbsent},
		{name: "excused dashes", input: "vang-co-phep", expected: models.AttendanceExcusedAbsent},
		{name: "vietnamese leave", input: "nghi phep", expected: models.AttendanceExcusedAbsent},
		{name: "absent english", input: "absent", expected: models.AttendanceUnexcusedAbsent},
		{name: "bare vang", input: "vang", expected: models.AttendanceUnexcusedAbsent},
		{name: "unexcused mixed case", input: "Unexcused Absent", expected: models.AttendanceUnexcusedAbsent},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeAttendanceStatus(tc.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.expected {
				t.Fatalf("NormalizeAttendanceStatus(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestNormalizeAttendanceStatusUnknown(t *testing.T) {
	if _, err := NormalizeAttendanceStatus("maybe"); err == nil {
		t.Fatalf("expected error for unknown label")
	}
}

func TestDecodeBulkAttendanceList(t *testing.T) {
	body := []byte(`[
		{"lich_hoc": "slot-1", "hoc_vien": "st-1", "trang_thai": "present"},
		{"lich_hoc": "slot-1", "hoc_vien": "st-2", "trang_thai": "vang"}
	]`)

	items, err := DecodeBulkAttendance(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].HocVien != "st-1" || items[1].TrangThai != "vang" {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestDecodeBulkAttendanceEnvelope(t *testing.T) {
	body := []byte(`{
		"lich_hoc": "slot-9",
		"items": [
			{"hoc_vien": "st-1", "trang_thai": "co_mat"},
			{"hoc_vien": "st-2", "trang_thai": "excused", "lich_hoc": "slot-other"}
		]
	}`)

	items, err := DecodeBulkAttendance(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].LichHoc != "slot-9" {
		t.Fatalf("shared slot default not applied: %+v", items[0])
	}
	if items[1].LichHoc != "slot-other" {
		t.Fatalf("explicit slot should win over default: %+v", items[1])
	}
}

func TestDecodeBulkAttendanceMap(t *testing.T) {
	body := []byte(`{
		"lich_hoc": "slot-5",
		"st-1": {"trang_thai": "present"},
		"st-2": {"trang_thai": "vang", "ghi_chu": "sick"}
	}`)

	items, err := DecodeBulkAttendance(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	ids := []string{items[0].HocVien, items[1].HocVien}
	sort.Strings(ids)
	if ids[0] != "st-1" || ids[1] != "st-2" {
		t.Fatalf("student ids not taken from map keys: %v", ids)
	}
	for _, item := range items {
		if item.LichHoc != "slot-5" {
			t.Fatalf("shared slot default not applied: %+v", item)
		}
	}
}

func TestDecodeBulkAttendanceMapShorthand(t *testing.T) {
	body := []byte(`{"lich_hoc": "slot-5", "st-1": "present"}`)

	items, err := DecodeBulkAttendance(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].TrangThai != "present" || items[0].HocVien != "st-1" {
		t.Fatalf("shorthand entry not decoded: %+v", items[0])
	}
}

func TestDecodeBulkAttendanceInvalid(t *testing.T) {
	for _, body := range []string{"", `"just a string"`, `{"items": "not-a-list"`} {
		if _, err := DecodeBulkAttendance([]byte(body)); err == nil {
			t.Fatalf("expected error for body %q", body)
		}
	}
}
