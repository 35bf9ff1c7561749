package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tiantingrui/course-manage/internal/model"
	"github.com/tiantingrui/course-manage/internal/pkg/database"
)

// PaymentQuery 支付记录查询参数
type PaymentQuery struct {
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=10"`
	Status    string `form:"status"`
	Method    string `form:"method"`
	StudentID uint   `form:"student_id"`
	StartDate string `form:"start_date"` // 格式 2006-01-02
	EndDate   string `form:"end_date"`
}

// GetPayments 获取支付记录列表
// 学员只能查看自己的支付记录
func GetPayments(c *gin.Context) {
	var query PaymentQuery
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

	db := database.DB.Model(&model.Payment{})

	user := c.MustGet("currentUser").(model.User)
	if user.Role == model.RoleStudent {
		db = db.Where("student_id = ?", user.ID)
	} else if query.StudentID > 0 {
		db = db.Where("student_id = ?", query.StudentID)
	}

	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}
	if query.Method != "" {
		db = db.Where("method = ?", query.Method)
	}
	if query.StartDate != "" {
		if startDate, err := time.ParseInLocation("2006-01-02", query.StartDate, time.Local); err == nil {
			db = db.Where("created_at >= ?", startDate)
		}
	}
	if query.EndDate != "" {
		if endDate, err := time.ParseInLocation("2006-01-02", query.EndDate, time.Local); err == nil {
			db = db.Where("created_at < ?", endDate.AddDate(0, 0, 1))
		}
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code": 500,
			"msg":  "获取支付总数失败",
		})
		return
	}

	var payments []model.Payment
	if err := db.Order("created_at DESC").
		Offset((query.Page - 1) * query.Limit).
		Limit(query.Limit).
		Find(&payments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code": 500,
			"msg":  "获取支付列表失败",
		})
		return
	}

	items := make([]gin.H, 0, len(payments))
	for _, payment := range payments {
		items = append(items, gin.H{
			"id":         payment.ID,
			"payment_no": payment.PaymentNo,
			"student_id": payment.StudentID,
			"package_id": payment.PackageID,
			"amount":     payment.Amount,
			"method":     payment.Method,
			"status":     payment.Status,
			"paid_at":    payment.PaidAt,
			"remark":     payment.Remark,
			"created_at": payment.CreatedAt,
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

// GetPaymentDetail 获取支付记录详情
func GetPaymentDetail(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  "参数错误",
		})
		return
	}

	var payment model.Payment
	if err := database.DB.First(&payment, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code": 404,
			"msg":  "支付记录不存在",
		})
		return
	}

	user := c.MustGet("currentUser").(model.User)
	if user.Role == model.RoleStudent && payment.StudentID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{
			"code": 403,
			"msg":  "没有操作权限",
		})
		return
	}

	studentName := ""
	var student model.User
	if err := database.DB.First(&student, payment.StudentID).Error; err == nil {
		studentName = student.Name
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{
			"id":           payment.ID,
			"payment_no":   payment.PaymentNo,
			"student_id":   payment.StudentID,
			"student_name": studentName,
			"package_id":   payment.PackageID,
			"amount":       payment.Amount,
			"method":       payment.Method,
			"status":       payment.Status,
			"paid_at":      payment.PaidAt,
			"remark":       payment.Remark,
			"created_at":   payment.CreatedAt,
			"updated_at":   payment.UpdatedAt,
		},
	})
}
