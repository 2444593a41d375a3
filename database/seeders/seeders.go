package seeders

import (
	"englishcenter_go/database"
	"englishcenter_go/models"
	"englishcenter_go/utils"
	"log"
)

// SeedAll runs all seeders
func SeedAll() {
	log.Println("Starting database seeding...")

	SeedUsers()
	SeedCourses()

	log.Println("Database seeding completed successfully!")
}

// SeedUsers seeds the default staff accounts
func SeedUsers() {
	var count int64
	database.DB.Model(&models.User{}).Count(&count)
	if count > 0 {
		log.Println("Users already seeded, skipping...")
		return
	}

	defaultPassword, err := utils.HashPassword("admin123")
	if err != nil {
		log.Printf("Error hashing default password: %v", err)
		return
	}

	users := []models.User{
		{
			Username: "admin",
			Password: defaultPassword,
			Email:    "admin@englishcenter.local",
			Ten:      "Quản trị viên",
			Role:     models.RoleAdmin,
			Active:   true,
		},
		{
			Username: "hocvu",
			Password: defaultPassword,
			Email:    "hocvu@englishcenter.local",
			Ten:      "Nhân viên học vụ",
			Role:     models.RoleAcademicStaff,
			Active:   true,
		},
		{
			Username: "tuvan",
			Password: defaultPassword,
			Email:    "tuvan@englishcenter.local",
			Ten:      "Nhân viên tư vấn",
			Role:     models.RoleSalesStaff,
			Active:   true,
		},
		{
			Username: "taichinh",
			Password: defaultPassword,
			Email:    "taichinh@englishcenter.local",
			Ten:      "Nhân viên tài chính",
			Role:     models.RoleFinanceStaff,
			Active:   true,
		},
	}

	for _, user := range users {
		if err := database.DB.Create(&user).Error; err != nil {
			log.Printf("Error seeding user %s: %v", user.Username, err)
		}
	}

	log.Println("Users seeded successfully")
}

// SeedCourses seeds a small sample catalog
func SeedCourses() {
	var count int64
	database.DB.Model(&models.Course{}).Count(&count)
	if count > 0 {
		log.Println("Courses already seeded, skipping...")
		return
	}

	courses := []models.Course{
		{
			Ten:       "Tiếng Anh giao tiếp cơ bản",
			LichHoc:   "Thứ 2 - Thứ 4 - Thứ 6",
			GiangVien: "Nguyễn Văn An",
			SoBuoi:    24,
			HocPhi:    2500000,
			TrangThai: "mo",
			MoTa:      "Khóa học giao tiếp dành cho người mới bắt đầu",
		},
		{
			Ten:       "IELTS 5.5+",
			LichHoc:   "Thứ 3 - Thứ 5",
			GiangVien: "Trần Thị Bình",
			SoBuoi:    36,
			HocPhi:    6000000,
			TrangThai: "mo",
			MoTa:      "Luyện thi IELTS mục tiêu 5.5 trở lên",
		},
		{
			Ten:       "Tiếng Anh thiếu nhi",
			LichHoc:   "Thứ 7 - Chủ nhật",
			GiangVien: "Lê Minh Châu",
			SoBuoi:    20,
			HocPhi:    1800000,
			TrangThai: "mo",
			MoTa:      "Lớp học cho trẻ từ 6-11 tuổi",
		},
	}

	for _, course := range courses {
		if err := database.DB.Create(&course).Error; err != nil {
			log.Printf("Error seeding course %s: %v", course.Ten, err)
		}
	}

	log.Println("Courses seeded successfully")
}
