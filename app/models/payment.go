package models

import "time"

const (
	PaymentStatusPending = "pending"
	PaymentStatusSuccess = "success"

	PaymentMethodWechat = "wechat"
)

// Payment is one attempt to pay for an order through the gateway.
type Payment struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	TransactionNo       string     `gorm:"size:100;uniqueIndex;not null" json:"transaction_no"`
	UserID              *uint      `gorm:"index" json:"user_id"`
	OrderID             uint       `gorm:"index" json:"order_id"`
	Amount              float64    `json:"amount"`
	PaymentMethod       string     `gorm:"size:50" json:"payment_method"`
	Status              string     `gorm:"size:50;not null" json:"status"`
	PrepayID            *string    `gorm:"size:255" json:"prepay_id"`
	WechatTransactionID *string    `gorm:"size:100" json:"wechat_transaction_id"`
	WechatResponse      *string    `gorm:"type:text" json:"-"`
	CallbackData        *string    `gorm:"type:text" json:"-"`
	PaidAt              *time.Time `json:"paid_at"`
	FailureReason       *string    `gorm:"size:255" json:"failure_reason"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}
