package utils

import (
	"englishcenter_go/models"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword verifies a password against its hash
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

var usernameSanitizer = regexp.MustCompile(`[^a-z0-9._-]+`)

// UsernameFromEmail derives a login name from the local part of an email
// address, lowercased and stripped of characters outside [a-z0-9._-].
func UsernameFromEmail(email string) string {
	local := email
	if idx := strings.Index(email, "@"); idx >= 0 {
		local = email[:idx]
	}
	local = strings.ToLower(strings.TrimSpace(local))
	local = usernameSanitizer.ReplaceAllString(local, "")
	if local == "" {
		local = "hocvien"
	}
	return local
}

// DisambiguateUsername appends a numeric suffix until the name is free.
// taken reports whether a candidate is already in use.
func DisambiguateUsername(base string, taken func(string) bool) string {
	if !taken(base) {
		return base
	}
	for i := 1; ; i++ {
		candidate := base + strconv.Itoa(i)
		if !taken(candidate) {
			return candidate
		}
	}
}

// IsValidRole checks whether a role value is one of the known roles.
func IsValidRole(role string) bool {
	switch role {
	case models.RoleAdmin, models.RoleTeacher, models.RoleAcademicStaff,
		models.RoleSalesStaff, models.RoleFinanceStaff, models.RoleStudent:
		return true
	}
	return false
}

// IsValidClockTime reports whether a string is a well-formed HH:MM time
// of day.
func IsValidClockTime(raw string) bool {
	_, err := time.Parse("15:04", raw)
	return err == nil
}

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(raw string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(raw))
}

// IsDuplicateKeyError detects a MySQL unique-constraint violation so
// controllers can answer 400 instead of 500.
func IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Error 1062") || strings.Contains(msg, "Duplicate entry")
}
