package repositories

import (
	"context"

	"github.com/ruizhu/shopapi/app/models"
)

type PaymentRepository struct {
	crud[models.Payment]
}

func NewPaymentRepository(db *DB) *PaymentRepository {
	return &PaymentRepository{crud[models.Payment]{db: db, table: "payments"}}
}

func (r *PaymentRepository) FindByTransactionNo(ctx context.Context, transactionNo string) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.conn(ctx).Where("transaction_no = ?", transactionNo).First(&p).Error; err != nil {
		return nil, r.wrap("find by transaction_no", err)
	}
	return &p, nil
}
