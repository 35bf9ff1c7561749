package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tiantingrui/course-manage/internal/model"
	"github.com/tiantingrui/course-manage/internal/pkg/database"
	"github.com/tiantingrui/course-manage/internal/service"
)

// PackageQuery 课时包列表查询参数
type PackageQuery struct {
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=10"`
	Status    string `form:"status"`
	StudentID uint   `form:"student_id"`
}

// GetPackages 获取课时包列表
// 学员只能看到自己的课时包
func GetPackages(c *gin.Context) {
	var query PackageQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  "参数错误",
		})
		return
	}
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	db := database.DB.Model(&model.LessonPackage{})

	user := c.MustGet("currentUser").(model.User)
	if user.Role == model.RoleStudent {
		db = db.Where("student_id = ?", user.ID)
	} else if query.StudentID > 0 {
		db = db.Where("student_id = ?", query.StudentID)
	}

	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code": 500,
			"msg":  "获取课时包总数失败",
		})
		return
	}

	var packages []model.LessonPackage
	if err := db.Order("created_at DESC").
		Offset((query.Page - 1) * query.Limit).
		Limit(query.Limit).
		Find(&packages).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code": 500,
			"msg":  "获取课时包列表失败",
		})
		return
	}

	items := make([]gin.H, 0, len(packages))
	for _, pkg := range packages {
		items = append(items, gin.H{
			"id":              pkg.ID,
			"student_id":      pkg.StudentID,
			"name":            pkg.Name,
			"total_hours":     pkg.TotalHours,
			"used_hours":      pkg.UsedHours,
			"remaining_hours": pkg.RemainingHours(),
			"price":           pkg.Price,
			"purchased_at":    pkg.PurchasedAt,
			"expires_at":      pkg.ExpiresAt,
			"status":          pkg.Status,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{
			"items": items,
			"page":  query.Page,
			"limit": query.Limit,
			"total": total,
			"pages": totalPages(total, query.Limit),
		},
	})
}

// GetPackageDetail 获取课时包详情
func GetPackageDetail(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  "参数错误",
		})
		return
	}

	var pkg model.LessonPackage
	if err := database.DB.First(&pkg, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code": 404,
			"msg":  "课时包不存在",
		})
		return
	}

	// 学员只能查看自己的课时包
	user := c.MustGet("currentUser").(model.User)
	if user.Role == model.RoleStudent && pkg.StudentID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{
			"code": 403,
			"msg":  "没有操作权限",
		})
		return
	}

	studentName := ""
	var student model.User
	if err := database.DB.First(&student, pkg.StudentID).Error; err == nil {
		studentName = student.Name
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{
			"id":              pkg.ID,
			"student_id":      pkg.StudentID,
			"student_name":    studentName,
			"name":            pkg.Name,
			"total_hours":     pkg.TotalHours,
			"used_hours":      pkg.UsedHours,
			"remaining_hours": pkg.RemainingHours(),
			"price":           pkg.Price,
			"purchased_at":    pkg.PurchasedAt,
			"expires_at":      pkg.ExpiresAt,
			"is_expired":      pkg.IsExpired(),
			"status":          pkg.Status,
			"created_at":      pkg.CreatedAt,
		},
	})
}

// PurchasePackageRequest 购买课时包请求
type PurchasePackageRequest struct {
	Name         string  `json:"name" binding:"required"`
	TotalHours   int     `json:"total_hours" binding:"required,min=1"`
	Price        float64 `json:"price" binding:"required,min=0"`
	ValidityDays int     `json:"validity_days" binding:"required,min=1"`
	Method       string  `json:"method" binding:"required,oneof=cash wechat alipay bank_transfer"`
}

// PurchasePackage 学员购买课时包，同时生成已支付的支付记录
func PurchasePackage(c *gin.Context) {
	var req PurchasePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  "参数错误",
		})
		return
	}

	userID := c.GetUint("userId")

	pkg, payment, err := service.Package.Purchase(userID, req.Name, req.TotalHours, req.Price, req.ValidityDays, req.Method)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"msg":  "购买成功",
		"data": gin.H{
			"package_id":  pkg.ID,
			"payment_no":  payment.PaymentNo,
			"total_hours": pkg.TotalHours,
			"expires_at":  pkg.ExpiresAt,
			"amount":      payment.Amount,
		},
	})
}

// ConsumePackageRequest 课时消耗请求
type ConsumePackageRequest struct {
	CourseID uint `json:"course_id" binding:"required"`
	Hours    int  `json:"hours" binding:"required,min=1"`
}

// ConsumePackage 消耗课时，由教师或管理员操作
func ConsumePackage(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  "参数错误",
		})
		return
	}

	var req ConsumePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  "参数错误",
		})
		return
	}

	operatorID := c.GetUint("userId")

	pkg, err := service.Package.Consume(uint(id), req.CourseID, req.Hours, operatorID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"msg":  "课时扣减成功",
		"data": gin.H{
			"package_id":      pkg.ID,
			"used_hours":      pkg.UsedHours,
			"remaining_hours": pkg.RemainingHours(),
			"status":          pkg.Status,
		},
	})
}

// GetConsumeRecords 获取课时包的消耗记录
func GetConsumeRecords(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  "参数错误",
		})
		return
	}

	var pkg model.LessonPackage
	if err := database.DB.First(&pkg, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code": 404,
			"msg":  "课时包不存在",
		})
		return
	}

	user := c.MustGet("currentUser").(model.User)
	if user.Role == model.RoleStudent && pkg.StudentID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{
			"code": 403,
			"msg":  "没有操作权限",
		})
		return
	}

	var records []model.ConsumeRecord
	if err := database.DB.Where("package_id = ?", pkg.ID).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code": 500,
			"msg":  "获取消耗记录失败",
		})
		return
	}

	items := make([]gin.H, 0, len(records))
	for _, record := range records {
		courseTitle := ""
		var course model.Course
		if err := database.DB.First(&course, record.CourseID).Error; err == nil {
			courseTitle = course.Title
		}

		items = append(items, gin.H{
			"id":           record.ID,
			"course_id":    record.CourseID,
			"course_title": courseTitle,
			"hours":        record.Hours,
			"operator_id":  record.OperatorID,
			"created_at":   record.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{
			"package_id": pkg.ID,
			"items":      items,
		},
	})
}
