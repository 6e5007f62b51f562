package models

import "time"

// Order statuses written by the API itself. Status is an open string:
// PUT /orders/{id}/status accepts any non-empty value.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
)

// Order is a single-product purchase. ProductID and UserID are logical
// references only.
type Order struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      *uint     `gorm:"index" json:"user_id"`
	ProductID   uint      `gorm:"index" json:"product_id"`
	ProductName string    `gorm:"size:255" json:"product_name"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unit_price"`
	TotalPrice  float64   `json:"total_price"`
	Status      string    `gorm:"size:50;not null" json:"status"`
	Remark      *string   `gorm:"type:text" json:"remark"`
	AddressID   *uint     `json:"address_id"`
	Phone       *string   `gorm:"size:20" json:"phone"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
