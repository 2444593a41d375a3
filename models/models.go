package models

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields. Every table carries a UUID primary key
// plus created/updated timestamps.
type BaseModel struct {
	ID        string    `json:"id" gorm:"type:char(36);primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// JSON field type for GORM
type JSON []byte

func (j JSON) Value() (driver.Value, error) {
	if j.IsNull() {
		return nil, nil
	}
	return string(j), nil
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	s, ok := value.([]byte)
	if !ok {
		return nil
	}
	*j = append((*j)[0:0], s...)
	return nil
}

func (j JSON) MarshalJSON() ([]byte, error) {
	if j == nil {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSON) UnmarshalJSON(data []byte) error {
	if j == nil {
		return nil
	}
	*j = append((*j)[0:0], data...)
	return nil
}

func (j JSON) IsNull() bool {
	return len(j) == 0 || string(j) == "null"
}

// Role values
const (
	RoleAdmin         = "admin"
	RoleTeacher       = "giangvien"
	RoleAcademicStaff = "academic_staff"
	RoleSalesStaff    = "sales_staff"
	RoleFinanceStaff  = "finance_staff"
	RoleStudent       = "hocvien"
)

// Fee status values (Student.TrangThaiHocPhi)
const (
	FeeStatusUnpaid  = "chuadong"
	FeeStatusPartial = "conno"
	FeeStatusPaid    = "dadong"
)

// Payment status values (Payment.TrangThai)
const (
	PaymentStatusPending = "pending"
	PaymentStatusPartial = "partial"
	PaymentStatusPaid    = "paid"
)

// Attendance status values
const (
	AttendancePresent         = "co_mat"
	AttendanceExcusedAbsent   = "vang_co_phep"
	AttendanceUnexcusedAbsent = "vang_khong_phep"
)

// Ownable is implemented by every entity a student-role caller may read.
// OwnerUserID returns the owning user account id, or "" when the row has
// no linked account.
type Ownable interface {
	OwnerUserID(db *gorm.DB) string
}

// User model
type User struct {
	BaseModel
	Username string     `json:"username" gorm:"size:150;not null;uniqueIndex"`
	Password string     `json:"-" gorm:"size:255;not null"`
	Email    string     `json:"email" gorm:"size:255;not null;uniqueIndex"`
	Ten      string     `json:"ten" gorm:"size:100"`
	Sdt      string     `json:"sdt" gorm:"size:15"`
	NgaySinh *time.Time `json:"ngay_sinh"`
	Role     string     `json:"role" gorm:"size:50;not null;default:'hocvien';type:enum('admin','giangvien','academic_staff','sales_staff','finance_staff','hocvien')"`
	Active   bool       `json:"is_active" gorm:"default:true"`
}

func (User) TableName() string { return "erp_users" }

// Student model (hoc vien). Rows created through the public lead-capture
// endpoint start as open leads; staff conversion flips IsConverted.
type Student struct {
	BaseModel
	Ten              string     `json:"ten" gorm:"size:100;not null"`
	Email            string     `json:"email" gorm:"size:255;not null;uniqueIndex"`
	Sdt              string     `json:"sdt" gorm:"size:15"`
	NgaySinh         *time.Time `json:"ngay_sinh"`
	DiaChi           string     `json:"dia_chi" gorm:"size:500"`
	TrangThaiHocPhi  string     `json:"trang_thai_hoc_phi" gorm:"size:20;not null;default:'chuadong';type:enum('chuadong','conno','dadong')"`
	KhoaHocQuanTamID *string    `json:"khoahoc_quan_tam" gorm:"type:char(36)"`
	CreatedAsLead    bool       `json:"created_as_lead" gorm:"default:false"`
	IsConverted      bool       `json:"is_converted" gorm:"default:false"`
	UserID           *string    `json:"user" gorm:"type:char(36);uniqueIndex"`
	GhiChu           string     `json:"ghi_chu" gorm:"type:text"`

	// Relationships
	UserInfo        *User   `json:"user_info,omitempty" gorm:"foreignKey:UserID"`
	KhoaHocQuanTam  *Course `json:"khoahoc_quan_tam_info,omitempty" gorm:"foreignKey:KhoaHocQuanTamID"`
}

func (Student) TableName() string { return "erp_students" }

func (s *Student) OwnerUserID(_ *gorm.DB) string {
	if s.UserID == nil {
		return ""
	}
	return *s.UserID
}

// Tuoi returns the student's age in full years, or 0 when the birth date
// is unknown.
func (s *Student) Tuoi() int {
	if s.NgaySinh == nil {
		return 0
	}
	now := time.Now()
	age := now.Year() - s.NgaySinh.Year()
	if now.Month() < s.NgaySinh.Month() ||
		(now.Month() == s.NgaySinh.Month() && now.Day() < s.NgaySinh.Day()) {
		age--
	}
	if age < 0 {
		age = 0
	}
	return age
}

// ContactNote is the one-to-one free-text note attached to a lead/student.
// Writes are last-write-wins per student.
type ContactNote struct {
	BaseModel
	StudentID string `json:"hocvien" gorm:"type:char(36);not null;uniqueIndex"`
	NoiDung   string `json:"noi_dung" gorm:"type:text"`

	Student Student `json:"-" gorm:"foreignKey:StudentID"`
}

func (ContactNote) TableName() string { return "erp_contact_notes" }

// Course model (khoa hoc) — the course template: fee, session count.
type Course struct {
	BaseModel
	Ten       string `json:"ten" gorm:"size:200;not null"`
	LichHoc   string `json:"lich_hoc" gorm:"size:100"`
	GiangVien string `json:"giang_vien" gorm:"size:100"`
	SoBuoi    int    `json:"so_buoi" gorm:"not null"`
	HocPhi    int64  `json:"hoc_phi" gorm:"not null"`
	MoTa      string `json:"mo_ta" gorm:"type:text"`
	TrangThai string `json:"trang_thai" gorm:"size:20;not null;default:'mo';type:enum('mo','dong','hoan_thanh')"`
}

func (Course) TableName() string { return "erp_courses" }

// ClassSection model (lop hoc) — a scheduled instance of a Course.
type ClassSection struct {
	BaseModel
	Ten             string     `json:"ten" gorm:"size:100;not null"`
	KhoaHocID       string     `json:"khoa_hoc" gorm:"type:char(36);not null"`
	GiangVienID     *string    `json:"giang_vien" gorm:"type:char(36)"`
	PhongHoc        string     `json:"phong_hoc" gorm:"size:50"`
	NgayBatDau      time.Time  `json:"ngay_bat_dau" gorm:"not null"`
	NgayKetThuc     *time.Time `json:"ngay_ket_thuc"`
	SoHocVienToiDa  int        `json:"so_hoc_vien_toi_da" gorm:"default:20"`
	TrangThai       string     `json:"trang_thai" gorm:"size:20;not null;default:'cho_mo_lop';type:enum('cho_mo_lop','dang_hoc','tam_dung','da_ket_thuc','da_huy')"`
	MoTa            string     `json:"mo_ta" gorm:"type:text"`

	KhoaHoc   Course `json:"khoa_hoc_info,omitempty" gorm:"foreignKey:KhoaHocID"`
	GiangVien *User  `json:"giang_vien_info,omitempty" gorm:"foreignKey:GiangVienID"`
}

func (ClassSection) TableName() string { return "erp_classes" }

// ScheduleSlot model (lich hoc) — a recurring weekly time block of a section.
// (section, day, start time) is unique.
type ScheduleSlot struct {
	BaseModel
	LopHocID   string `json:"lop_hoc" gorm:"type:char(36);not null;uniqueIndex:idx_slot_section_day_start"`
	NgayHoc    string `json:"ngay_hoc" gorm:"size:16;not null;uniqueIndex:idx_slot_section_day_start"`
	GioBatDau  string `json:"gio_bat_dau" gorm:"size:5;not null;uniqueIndex:idx_slot_section_day_start"`
	GioKetThuc string `json:"gio_ket_thuc" gorm:"size:5;not null"`
	PhongHoc   string `json:"phong_hoc" gorm:"size:50"`
	NoiDung    string `json:"noi_dung" gorm:"type:text"`
	Note       string `json:"note" gorm:"size:255"`

	LopHoc ClassSection `json:"lop_hoc_info,omitempty" gorm:"foreignKey:LopHocID"`
}

func (ScheduleSlot) TableName() string { return "erp_schedules" }

// Enrollment model (dang ky khoa hoc). A student enrolls in a course at
// most once.
type Enrollment struct {
	BaseModel
	HocVienID         string    `json:"hocvien" gorm:"type:char(36);not null;uniqueIndex:idx_enroll_student_course"`
	KhoaHocID         string    `json:"khoahoc" gorm:"type:char(36);not null;uniqueIndex:idx_enroll_student_course"`
	NgayDangKy        time.Time `json:"ngay_dang_ky" gorm:"autoCreateTime"`
	PhanTramHoanThanh int       `json:"phan_tram_hoan_thanh" gorm:"default:0"`
	TrangThai         string    `json:"trang_thai" gorm:"size:20;not null;default:'dang_ky';type:enum('dang_ky','dang_hoc','hoan_thanh','huy')"`
	GhiChu            string    `json:"ghi_chu" gorm:"type:text"`

	HocVien Student `json:"hocvien_info,omitempty" gorm:"foreignKey:HocVienID"`
	KhoaHoc Course  `json:"khoahoc_info,omitempty" gorm:"foreignKey:KhoaHocID"`
}

func (Enrollment) TableName() string { return "erp_enrollment" }

func (e *Enrollment) OwnerUserID(db *gorm.DB) string {
	var student Student
	if err := db.Select("user_id").First(&student, "id = ?", e.HocVienID).Error; err != nil {
		return ""
	}
	return student.OwnerUserID(db)
}

// Attendance model (diem danh). One row per (slot, student); bulk
// submission upserts instead of duplicating.
type Attendance struct {
	BaseModel
	LichHocID string     `json:"lich_hoc" gorm:"type:char(36);not null;uniqueIndex:idx_att_slot_student"`
	HocVienID string     `json:"hoc_vien" gorm:"type:char(36);not null;uniqueIndex:idx_att_slot_student"`
	ThoiGian  *time.Time `json:"thoi_gian"`
	TrangThai string     `json:"trang_thai" gorm:"size:20;not null;default:'co_mat';type:enum('co_mat','vang_co_phep','vang_khong_phep')"`
	GhiChu    string     `json:"ghi_chu" gorm:"type:text"`

	LichHoc ScheduleSlot `json:"lich_hoc_info,omitempty" gorm:"foreignKey:LichHocID"`
	HocVien Student      `json:"hoc_vien_info,omitempty" gorm:"foreignKey:HocVienID"`
}

func (Attendance) TableName() string { return "erp_attendances" }

func (a *Attendance) OwnerUserID(db *gorm.DB) string {
	var student Student
	if err := db.Select("user_id").First(&student, "id = ?", a.HocVienID).Error; err != nil {
		return ""
	}
	return student.OwnerUserID(db)
}

// Payment model (thanh toan). The receipt number is globally unique when
// present. Saving a partial/paid payment recomputes the owning student's
// fee status inside the same transaction.
type Payment struct {
	BaseModel
	HocVienID string     `json:"hocvien" gorm:"type:char(36);not null;index"`
	SoTien    int64      `json:"so_tien" gorm:"not null"`
	NgayDong  *time.Time `json:"ngay_dong"`
	HinhThuc  string     `json:"hinh_thuc" gorm:"size:20;type:enum('tienmat','chuyenkhoan','the')"`
	SoBienLai *string    `json:"so_bien_lai" gorm:"size:50;uniqueIndex"`
	TrangThai string     `json:"trang_thai" gorm:"size:20;not null;default:'pending';type:enum('pending','partial','paid')"`
	GhiChu    string     `json:"ghi_chu" gorm:"type:text"`

	HocVien Student `json:"hocvien_info,omitempty" gorm:"foreignKey:HocVienID"`
}

func (Payment) TableName() string { return "erp_payments" }

func (p *Payment) OwnerUserID(db *gorm.DB) string {
	var student Student
	if err := db.Select("user_id").First(&student, "id = ?", p.HocVienID).Error; err != nil {
		return ""
	}
	return student.OwnerUserID(db)
}

// CareLog model (cham soc hoc vien) — CRM contact/follow-up records.
type CareLog struct {
	BaseModel
	HocVienID   string    `json:"hocvien" gorm:"type:char(36);not null;index"`
	NhanVienID  *string   `json:"nhanvien" gorm:"type:char(36)"`
	LoaiChamSoc string    `json:"loai_cham_soc" gorm:"size:20;not null;default:'tuvan';type:enum('tuvan','theodoi','hoidap','khac')"`
	NoiDung     string    `json:"noi_dung" gorm:"type:text;not null"`
	Ngay        time.Time `json:"ngay" gorm:"autoCreateTime"`
	TrangThai   string    `json:"trang_thai" gorm:"size:20;not null;default:'moi';type:enum('moi','dang_xu_ly','hoan_thanh','dong')"`
	Attachments JSON      `json:"attachments" gorm:"type:json"`
	GhiChu      string    `json:"ghi_chu" gorm:"type:text"`

	HocVien  Student `json:"hocvien_info,omitempty" gorm:"foreignKey:HocVienID"`
	NhanVien *User   `json:"nhanvien_info,omitempty" gorm:"foreignKey:NhanVienID"`
}

func (CareLog) TableName() string { return "erp_care_logs" }

func (cl *CareLog) OwnerUserID(db *gorm.DB) string {
	var student Student
	if err := db.Select("user_id").First(&student, "id = ?", cl.HocVienID).Error; err != nil {
		return ""
	}
	return student.OwnerUserID(db)
}

// Notification model (thong bao) — broadcast or targeted announcements.
type Notification struct {
	BaseModel
	TieuDe       string     `json:"tieu_de" gorm:"size:200;not null"`
	NoiDung      string     `json:"noi_dung" gorm:"type:text;not null"`
	NgayGui      *time.Time `json:"ngay_gui"`
	NguoiNhan    string     `json:"nguoi_nhan" gorm:"size:20;not null;default:'tatca';type:enum('tatca','hocvien','nhanvien','user')"`
	UserID       *string    `json:"user" gorm:"type:char(36)"`
	TrangThai    string     `json:"trang_thai" gorm:"size:20;not null;default:'moi';type:enum('moi','dang_gui','da_gui','huy_bo')"`
	LoaiThongBao string     `json:"loai_thong_bao" gorm:"size:20;not null;default:'thong_bao';type:enum('thong_bao','canh_bao','thong_tin','khac')"`

	User *User `json:"user_info,omitempty" gorm:"foreignKey:UserID"`
}

func (Notification) TableName() string { return "erp_notifications" }

// ActivityLog model for audit tracking
type ActivityLog struct {
	BaseModel
	UserID     string `json:"user_id" gorm:"type:char(36);index"`
	Action     string `json:"action" gorm:"size:100;not null"`
	Resource   string `json:"resource" gorm:"size:100;not null"`
	ResourceID string `json:"resource_id" gorm:"type:char(36)"`
	Details    JSON   `json:"details" gorm:"type:json"`
	IPAddress  string `json:"ip_address" gorm:"size:45"`
	UserAgent  string `json:"user_agent" gorm:"size:500"`
}

func (ActivityLog) TableName() string { return "erp_activity_logs" }
