package services

import (
	"englishcenter_go/models"
	"englishcenter_go/utils"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ConvertLead flips a lead into an active student. Converting an already
// converted record is a no-op, not an error.
func ConvertLead(db *gorm.DB, studentID string) (*models.Student, error) {
	var student models.Student
	if err := db.First(&student, "id = ?", studentID).Error; err != nil {
		return nil, err
	}

	if student.IsConverted {
		return &student, nil
	}

	if err := db.Model(&student).Update("is_converted", true).Error; err != nil {
		return nil, err
	}
	student.IsConverted = true
	return &student, nil
}

// ProvisionAccount links a login account to a student inside the caller's
// transaction. An existing user with the same email (case-insensitive) is
// reused with its password reset; otherwise a new hocvien account is created
// under a username derived from the email local part.
func ProvisionAccount(tx *gorm.DB, student *models.Student, password string) (*models.User, error) {
	if strings.TrimSpace(student.Email) == "" {
		return nil, fmt.Errorf("student has no email to provision an account from")
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	var user models.User
	err = tx.Where("LOWER(email) = ?", strings.ToLower(student.Email)).First(&user).Error
	switch {
	case err == nil:
		if err := tx.Model(&user).Updates(map[string]interface{}{
			"password": hashed,
			"active":   true,
		}).Error; err != nil {
			return nil, err
		}
	case err == gorm.ErrRecordNotFound:
		base := utils.UsernameFromEmail(student.Email)
		username := utils.DisambiguateUsername(base, func(candidate string) bool {
			var n int64
			tx.Model(&models.User{}).Where("username = ?", candidate).Count(&n)
			return n > 0
		})

		user = models.User{
			Username: username,
			Password: hashed,
			Email:    student.Email,
			Ten:      student.Ten,
			Sdt:      student.Sdt,
			NgaySinh: student.NgaySinh,
			Role:     models.RoleStudent,
			Active:   true,
		}
		if err := tx.Create(&user).Error; err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if err := tx.Model(student).Update("user_id", user.ID).Error; err != nil {
		return nil, err
	}
	student.UserID = &user.ID
	return &user, nil
}
