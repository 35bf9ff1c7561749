package router

import (
	"github.com/gin-gonic/gin"

	"github.com/tiantingrui/course-manage/internal/api"
	"github.com/tiantingrui/course-manage/internal/api/admin"
	"github.com/tiantingrui/course-manage/internal/middleware"
	"github.com/tiantingrui/course-manage/internal/model"
)

// SetupRoutes 配置所有路由
func SetupRoutes(r *gin.Engine) {
	// 健康检查接口（不需要任何中间件）
	r.GET("/api/v1/health", api.HealthCheck)

	// 业务API路由
	setupAPIRoutes(r)

	// 管理端API路由
	setupAdminAPIRoutes(r)
}

// setupAPIRoutes 设置业务API路由
func setupAPIRoutes(r *gin.Engine) {
	apiGroup := r.Group("/api/v1")
	apiGroup.Use(middleware.Logger())
	apiGroup.Use(middleware.Recovery())
	apiGroup.Use(middleware.Cors())

	// 认证相关
	auth := apiGroup.Group("/auth")
	{
		auth.POST("/login", api.Login)
		auth.POST("/register", api.Register)
	}

	// 需要认证的路由
	authorized := apiGroup.Group("/")
	authorized.Use(middleware.JWT())
	{
		// 个人信息
		user := authorized.Group("/user")
		{
			user.GET("/profile", api.GetProfile)
			user.PUT("/profile", api.UpdateProfile)
		}

		// 课程相关
		staff := middleware.RequireRoles(model.RoleAdmin, model.RoleTeacher)
		courses := authorized.Group("/courses")
		{
			courses.GET("", api.GetCourses)
			courses.GET("/:id", api.GetCourseDetail)
			courses.POST("", staff, api.CreateCourse)
			courses.PUT("/:id", staff, api.UpdateCourse)
			courses.DELETE("/:id", staff, api.DeleteCourse)
			courses.PUT("/:id/status", staff, api.UpdateCourseStatus)

			// 报名（学员本人或管理员代操作）
			enroll := middleware.RequireRoles(model.RoleAdmin, model.RoleStudent)
			courses.POST("/:id/enroll", enroll, api.EnrollCourse)
			courses.POST("/:id/cancel-enrollment", enroll, api.CancelEnrollment)

			courses.GET("/:id/students", staff, api.GetCourseStudents)
			courses.GET("/:id/attendance-rate", staff, api.GetCourseAttendanceRate)
		}

		// 课时包相关
		packages := authorized.Group("/packages")
		{
			packages.GET("", api.GetPackages)
			packages.GET("/:id", api.GetPackageDetail)
			packages.GET("/:id/records", api.GetConsumeRecords)
			packages.POST("/purchase", middleware.RequireRoles(model.RoleStudent), api.PurchasePackage)
			packages.POST("/:id/consume", staff, api.ConsumePackage)
		}

		// 考勤相关
		attendances := authorized.Group("/attendance")
		{
			attendances.GET("", api.GetAttendances)
			attendances.GET("/:id", api.GetAttendanceDetail)
			attendances.POST("", staff, api.CreateAttendance)
			attendances.POST("/batch", staff, api.BatchCreateAttendance)
			attendances.PUT("/:id", staff, api.UpdateAttendance)
			attendances.DELETE("/:id", staff, api.DeleteAttendance)
		}

		// 支付记录
		payments := authorized.Group("/payments")
		{
			payments.GET("", api.GetPayments)
			payments.GET("/:id", api.GetPaymentDetail)
		}

		// 学员概览
		authorized.GET("/students/:id/overview", api.GetStudentOverview)
	}
}

// setupAdminAPIRoutes 设置管理端API路由
func setupAdminAPIRoutes(r *gin.Engine) {
	adminGroup := r.Group("/api/v1/admin")
	adminGroup.Use(middleware.Logger())
	adminGroup.Use(middleware.Recovery())
	adminGroup.Use(middleware.Cors())
	adminGroup.Use(middleware.JWT())

	adminOnly := middleware.RequireRoles(model.RoleAdmin)

	// 用户管理（教师可查看学员列表）
	users := adminGroup.Group("/users")
	{
		users.GET("", middleware.RequireRoles(model.RoleAdmin, model.RoleTeacher), admin.GetUsers)
		users.GET("/:id", adminOnly, admin.GetUser)
		users.POST("", adminOnly, admin.CreateUser)
		users.PUT("/:id", adminOnly, admin.UpdateUser)
		users.PUT("/:id/status", adminOnly, admin.UpdateUserStatus)
		users.DELETE("/:id", adminOnly, admin.DeleteUser)
	}

	authorized := adminGroup.Group("/")
	authorized.Use(adminOnly)
	{
		// 课时包管理
		packages := authorized.Group("/packages")
		{
			packages.POST("", admin.CreatePackage)
			packages.PUT("/:id", admin.UpdatePackage)
			packages.POST("/:id/cancel", admin.CancelPackage)
			packages.DELETE("/:id", admin.DeletePackage)
		}

		// 支付管理
		payments := authorized.Group("/payments")
		{
			payments.POST("", admin.CreatePayment)
			payments.PUT("/:id/status", admin.UpdatePaymentStatus)
			payments.DELETE("/:id", admin.DeletePayment)
		}

		// 统计
		statistics := authorized.Group("/statistics")
		{
			statistics.GET("/dashboard", admin.GetDashboard)
			statistics.GET("/income", admin.GetIncomeStatistics)
		}

		// 系统管理
		system := authorized.Group("/system")
		{
			system.GET("/login-logs", admin.GetLoginLogs)
		}
	}
}
