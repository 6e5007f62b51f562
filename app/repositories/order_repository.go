package repositories

import (
	"context"

	"github.com/ruizhu/shopapi/app/models"
)

type OrderRepository struct {
	crud[models.Order]
}

func NewOrderRepository(db *DB) *OrderRepository {
	return &OrderRepository{crud[models.Order]{db: db, table: "orders"}}
}

// UpdateStatus sets the status column of order id.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	res := r.db.conn(ctx).Model(&models.Order{ID: id}).Update("status", status)
	return r.wrap("update status", res.Error)
}
