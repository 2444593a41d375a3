package routes

import (
	"englishcenter_go/controllers"
	"englishcenter_go/middleware"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	authController := &controllers.AuthController{}
	userController := &controllers.UserController{}
	studentController := &controllers.StudentController{}
	courseController := &controllers.CourseController{}
	sectionController := &controllers.SectionController{}
	slotController := &controllers.ScheduleSlotController{}
	enrollmentController := &controllers.EnrollmentController{}
	attendanceController := &controllers.AttendanceController{}
	paymentController := &controllers.PaymentController{}
	careLogController := &controllers.CareLogController{}
	notificationController := &controllers.NotificationController{}
	reportController := &controllers.ReportController{}

	// Auth
	auth := api.Group("/auth")
	auth.Post("/login/", authController.Login)
	auth.Post("/refresh/", authController.Refresh)
	auth.Post("/logout/", authController.Logout)
	auth.Post("/register/", middleware.JWTMiddleware(), middleware.Require(middleware.ActionUsersManage), authController.Register)
	auth.Get("/me/", middleware.JWTMiddleware(), authController.GetMe)
	auth.Put("/profile/", middleware.JWTMiddleware(), authController.UpdateProfile)
	auth.Post("/change-password/", middleware.JWTMiddleware(), authController.ChangePassword)

	// Users (admin)
	users := api.Group("/users", middleware.JWTMiddleware(), middleware.Require(middleware.ActionUsersManage))
	users.Get("/", userController.GetUsers)
	users.Get("/:id", userController.GetUser)
	users.Put("/:id", userController.UpdateUser)
	users.Patch("/:id", userController.UpdateUser)
	users.Delete("/:id", userController.DeleteUser)

	// Students & leads
	students := api.Group("/hocviens")
	students.Post("/leads/", studentController.CreateLead) // public lead capture
	students.Use(middleware.JWTMiddleware())
	students.Get("/me/", studentController.GetMyProfile)
	students.Get("/stats/", middleware.Require(middleware.ActionStudentsRead), studentController.GetStudentStats)
	students.Post("/leads/:id/convert/", middleware.Require(middleware.ActionStudentsManage), studentController.ConvertLead)
	students.Get("/", middleware.Require(middleware.ActionStudentsRead), studentController.GetStudents)
	students.Post("/", middleware.Require(middleware.ActionStudentsManage), studentController.CreateStudent)
	students.Get("/:id", middleware.RequireStaffOrOwner(middleware.ActionStudentsRead), studentController.GetStudent)
	students.Put("/:id", middleware.Require(middleware.ActionStudentsManage), studentController.UpdateStudent)
	students.Patch("/:id", middleware.Require(middleware.ActionStudentsManage), studentController.UpdateStudent)
	students.Delete("/:id", middleware.Require(middleware.ActionStudentsManage), studentController.DeleteStudent)
	students.Get("/:id/note/", middleware.Require(middleware.ActionStudentsManage), studentController.GetNote)
	students.Put("/:id/note/", middleware.Require(middleware.ActionStudentsManage), studentController.UpsertNote)

	// Courses
	courses := api.Group("/khoahocs")
	courses.Get("/public/", courseController.GetPublicCourses) // public catalog
	courses.Use(middleware.JWTMiddleware())
	courses.Get("/stats/", middleware.Require(middleware.ActionCoursesManage), courseController.GetCourseStats)
	courses.Get("/", courseController.GetCourses)
	courses.Get("/:id", courseController.GetCourse)
	courses.Post("/", middleware.Require(middleware.ActionCoursesManage), courseController.CreateCourse)
	courses.Put("/:id", middleware.Require(middleware.ActionCoursesManage), courseController.UpdateCourse)
	courses.Patch("/:id", middleware.Require(middleware.ActionCoursesManage), courseController.UpdateCourse)
	courses.Delete("/:id", middleware.Require(middleware.ActionCoursesManage), courseController.DeleteCourse)

	// Class sections
	sections := api.Group("/lophocs", middleware.JWTMiddleware())
	sections.Get("/", sectionController.GetSections)
	sections.Get("/:id", sectionController.GetSection)
	sections.Post("/", middleware.Require(middleware.ActionCoursesManage), sectionController.CreateSection)
	sections.Put("/:id", middleware.Require(middleware.ActionCoursesManage), sectionController.UpdateSection)
	sections.Patch("/:id", middleware.Require(middleware.ActionCoursesManage), sectionController.UpdateSection)
	sections.Delete("/:id", middleware.Require(middleware.ActionCoursesManage), sectionController.DeleteSection)
	sections.Post("/:id/add-student/", middleware.Require(middleware.ActionEnrollmentsManage), sectionController.AddStudents)

	// Schedule slots
	slots := api.Group("/lichhocs", middleware.JWTMiddleware())
	slots.Get("/", slotController.GetSlots)
	slots.Get("/:id", slotController.GetSlot)
	slots.Post("/", middleware.Require(middleware.ActionCoursesManage), slotController.CreateSlot)
	slots.Put("/:id", middleware.Require(middleware.ActionCoursesManage), slotController.UpdateSlot)
	slots.Patch("/:id", middleware.Require(middleware.ActionCoursesManage), slotController.UpdateSlot)
	slots.Delete("/:id", middleware.Require(middleware.ActionCoursesManage), slotController.DeleteSlot)

	// Enrollments
	enrollments := api.Group("/dangky", middleware.JWTMiddleware())
	enrollments.Get("/me/", enrollmentController.GetMyEnrollments)
	enrollments.Get("/stats/", middleware.Require(middleware.ActionEnrollmentsManage), enrollmentController.GetEnrollmentStats)
	enrollments.Get("/", middleware.Require(middleware.ActionEnrollmentsManage), enrollmentController.GetEnrollments)
	enrollments.Post("/", middleware.Require(middleware.ActionEnrollmentsManage), enrollmentController.CreateEnrollment)
	enrollments.Get("/:id", middleware.RequireStaffOrOwner(middleware.ActionEnrollmentsManage), enrollmentController.GetEnrollment)
	enrollments.Put("/:id", middleware.Require(middleware.ActionEnrollmentsManage), enrollmentController.UpdateEnrollment)
	enrollments.Patch("/:id", middleware.Require(middleware.ActionEnrollmentsManage), enrollmentController.UpdateEnrollment)
	enrollments.Delete("/:id", middleware.Require(middleware.ActionEnrollmentsManage), enrollmentController.DeleteEnrollment)

	// Attendance
	attendances := api.Group("/diemdanhs", middleware.JWTMiddleware())
	attendances.Get("/", attendanceController.GetAttendances)
	attendances.Post("/", middleware.Require(middleware.ActionCoursesManage), attendanceController.BulkUpsert)
	attendances.Get("/:id", middleware.RequireStaffOrOwner(middleware.ActionCoursesManage), attendanceController.GetAttendance)
	attendances.Put("/:id", middleware.Require(middleware.ActionCoursesManage), attendanceController.UpdateAttendance)
	attendances.Patch("/:id", middleware.Require(middleware.ActionCoursesManage), attendanceController.UpdateAttendance)
	attendances.Delete("/:id", middleware.Require(middleware.ActionCoursesManage), attendanceController.DeleteAttendance)

	// Payments: admin+finance full, academic read+create, sales read-only
	payments := api.Group("/thanhtoans", middleware.JWTMiddleware())
	payments.Get("/me/", paymentController.GetMyPayments)
	payments.Get("/stats/", middleware.Require(middleware.ActionFinanceRead), paymentController.GetPaymentStats)
	payments.Get("/export/", middleware.Require(middleware.ActionFinanceManage), paymentController.ExportPayments)
	payments.Get("/", middleware.Require(middleware.ActionFinanceRead), paymentController.GetPayments)
	payments.Post("/", middleware.Require(middleware.ActionFinanceCreate), paymentController.CreatePayment)
	payments.Get("/:id", middleware.RequireStaffOrOwner(middleware.ActionFinanceRead), paymentController.GetPayment)
	payments.Put("/:id", middleware.Require(middleware.ActionFinanceManage), paymentController.UpdatePayment)
	payments.Patch("/:id", middleware.Require(middleware.ActionFinanceManage), paymentController.UpdatePayment)
	payments.Delete("/:id", middleware.Require(middleware.ActionFinanceManage), paymentController.DeletePayment)

	// Care logs
	careLogs := api.Group("/chamsoc", middleware.JWTMiddleware())
	careLogs.Get("/me/", careLogController.GetMyCareLogs)
	careLogs.Get("/stats/", middleware.Require(middleware.ActionCRMManage), careLogController.GetCareLogStats)
	careLogs.Get("/", middleware.Require(middleware.ActionCRMManage), careLogController.GetCareLogs)
	careLogs.Post("/", middleware.Require(middleware.ActionCRMManage), careLogController.CreateCareLog)
	careLogs.Get("/:id", middleware.RequireStaffOrOwner(middleware.ActionCRMManage), careLogController.GetCareLog)
	careLogs.Put("/:id", middleware.Require(middleware.ActionCRMManage), careLogController.UpdateCareLog)
	careLogs.Patch("/:id", middleware.Require(middleware.ActionCRMManage), careLogController.UpdateCareLog)
	careLogs.Delete("/:id", middleware.Require(middleware.ActionCRMManage), careLogController.DeleteCareLog)
	careLogs.Post("/:id/attachments/", middleware.Require(middleware.ActionCRMManage), careLogController.UploadAttachment)

	// Notifications
	notifications := api.Group("/thongbaos")
	notifications.Get("/public/", notificationController.GetPublicFeed) // public feed
	notifications.Use(middleware.JWTMiddleware())
	notifications.Get("/me/", notificationController.GetMyNotifications)
	notifications.Get("/stats/", middleware.Require(middleware.ActionNotificationsManage), notificationController.GetNotificationStats)
	notifications.Get("/", middleware.Require(middleware.ActionNotificationsManage), notificationController.GetNotifications)
	notifications.Post("/", middleware.Require(middleware.ActionNotificationsManage), notificationController.CreateNotification)
	notifications.Get("/:id", middleware.Require(middleware.ActionNotificationsManage), notificationController.GetNotification)
	notifications.Put("/:id", middleware.Require(middleware.ActionNotificationsManage), notificationController.UpdateNotification)
	notifications.Patch("/:id", middleware.Require(middleware.ActionNotificationsManage), notificationController.UpdateNotification)
	notifications.Delete("/:id", middleware.Require(middleware.ActionNotificationsManage), notificationController.DeleteNotification)

	// Reports (admin)
	reports := api.Group("/reports", middleware.JWTMiddleware(), middleware.Require(middleware.ActionReportsView))
	reports.Get("/overview/", reportController.GetOverview)
	reports.Get("/financial/", reportController.GetFinancial)
	reports.Get("/academic/", reportController.GetAcademic)
}
