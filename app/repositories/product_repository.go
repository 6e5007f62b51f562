package repositories

import (
	"context"

	"github.com/ruizhu/shopapi/app/models"
)

type ProductRepository struct {
	crud[models.Product]
}

func NewProductRepository(db *DB) *ProductRepository {
	return &ProductRepository{crud[models.Product]{db: db, table: "products"}}
}

// SetImageURL updates only image_url, leaving the rest of the row alone.
func (r *ProductRepository) SetImageURL(ctx context.Context, id uint, url string) error {
	res := r.db.conn(ctx).Model(&models.Product{ID: id}).Update("image_url", url)
	return r.wrap("set image", res.Error)
}
