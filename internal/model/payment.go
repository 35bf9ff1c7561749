package model

import (
	"time"

	"gorm.io/gorm"
)

// 支付方式
const (
	PaymentMethodCash         = "cash"          // 现金
	PaymentMethodWechat       = "wechat"        // 微信
	PaymentMethodAlipay       = "alipay"        // 支付宝
	PaymentMethodBankTransfer = "bank_transfer" // 银行转账
)

// 支付状态
const (
	PaymentStatusPending  = "pending"  // 待支付
	PaymentStatusPaid     = "paid"     // 已支付
	PaymentStatusFailed   = "failed"   // 失败
	PaymentStatusRefunded = "refunded" // 已退款
)

type Payment struct {
	ID        uint    `gorm:"primarykey"`
	PaymentNo string  `gorm:"size:64;index"`
	StudentID uint    `gorm:"index"`
	PackageID *uint   `gorm:"index;comment:关联的课时包ID"` // 独立收款时为空
	Amount    float64 `gorm:"comment:金额"`
	Method    string  `gorm:"size:20"` // cash, wechat, alipay, bank_transfer
	Status    string  `gorm:"size:20;index;default:pending"` // pending, paid, failed, refunded
	PaidAt    *time.Time
	Remark    string `gorm:"size:255"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// CanDelete 仅未支付的记录可以删除
func (p *Payment) CanDelete() bool {
	return p.Status == PaymentStatusPending
}
