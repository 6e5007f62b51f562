package models

import "time"

type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;index;not null" json:"name"`
	Description *string   `gorm:"type:text" json:"description"`
	Price       float64   `json:"price"`
	Category    *string   `gorm:"size:100" json:"category"`
	ImageURL    *string   `gorm:"size:500" json:"image_url"`
	Stock       int       `json:"stock"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
