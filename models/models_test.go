package models

import (
	"testing"
	"time"
)

func TestStudentTuoi(t *testing.T) {
	now := time.Now()

	tenYearsAgo := now.AddDate(-10, 0, 0)
	s := Student{NgaySinh: &tenYearsAgo}
	if got := s.Tuoi(); got != 10 {
		t.Fatalf("expected age 10, got %d", got)
	}

	// Birthday not yet reached this year
	almostNine := now.AddDate(-9, 0, 7)
	s = Student{NgaySinh: &almostNine}
	if got := s.Tuoi(); got != 8 {
		t.Fatalf("expected age 8 before birthday, got %d", got)
	}

	s = Student{}
	if got := s.Tuoi(); got != 0 {
		t.Fatalf("expected 0 for unknown birth date, got %d", got)
	}
}

func TestStudentOwnerUserID(t *testing.T) {
	s := Student{}
	if got := s.OwnerUserID(nil); got != "" {
		t.Fatalf("expected empty owner for unlinked student, got %q", got)
	}

	uid := "user-123"
	s = Student{UserID: &uid}
	if got := s.OwnerUserID(nil); got != uid {
		t.Fatalf("expected %q, got %q", uid, got)
	}
}

func TestJSONValueAndScan(t *testing.T) {
	var j JSON
	if !j.IsNull() {
		t.Fatalf("empty JSON should be null")
	}

	if err := j.Scan([]byte(`{"a":1}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if j.IsNull() {
		t.Fatalf("scanned JSON should not be null")
	}

	v, err := j.Value()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.(string) != `{"a":1}` {
		t.Fatalf("unexpected value: %v", v)
	}
}
