package admin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tiantingrui/course-manage/internal/model"
	"github.com/tiantingrui/course-manage/internal/pkg/database"
	"github.com/tiantingrui/course-manage/internal/service"
)

// CreatePaymentRequest 创建独立收款请求
type CreatePaymentRequest struct {
	StudentID uint    `json:"student_id" binding:"required"`
	Amount    float64 `json:"amount" binding:"required,min=0.01"`
	Method    string  `json:"method" binding:"required,oneof=cash wechat alipay bank_transfer"`
	Remark    string  `json:"remark"`
	Paid      bool    `json:"paid"` // 为true时直接标记已支付
}

// CreatePayment 管理员创建独立收款记录
func CreatePayment(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  "参数错误",
		})
		return
	}

	payment, err := service.Payment.CreateStandalone(req.StudentID, req.Amount, req.Method, req.Remark, req.Paid)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"msg":  "创建成功",
		"data": gin.H{
			"id":         payment.ID,
			"payment_no": payment.PaymentNo,
			"status":     payment.Status,
		},
	})
}

// UpdatePaymentStatusRequest 更新支付状态请求
type UpdatePaymentStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=paid failed refunded"`
}

// UpdatePaymentStatus 流转支付状态
func UpdatePaymentStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  "参数错误",
		})
		return
	}

	var req UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  "参数错误",
		})
		return
	}

	payment, err := service.Payment.UpdateStatus(uint(id), req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"msg":  "状态更新成功",
		"data": gin.H{
			"id":      payment.ID,
			"status":  payment.Status,
			"paid_at": payment.PaidAt,
		},
	})
}

// DeletePayment 删除支付记录（软删除）
// 只有待支付的记录可以删除
func DeletePayment(c *gin.Context) {
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

	if !payment.CanDelete() {
		c.JSON(http.StatusBadRequest, gin.H{
			"code": 400,
			"msg":  "只有待支付的记录可以删除",
		})
		return
	}

	if err := database.DB.Delete(&payment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code": 500,
			"msg":  "删除支付记录失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"msg":  "删除成功",
	})
}
