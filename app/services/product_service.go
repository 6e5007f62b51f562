package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/ruizhu/shopapi/app/models"
	"github.com/ruizhu/shopapi/pkg/logger"
	"github.com/ruizhu/shopapi/pkg/storage"
)

const msgProductNotFound = "Product not found"

type ProductStore interface {
	FindByID(ctx context.Context, id uint) (*models.Product, error)
	All(ctx context.Context) ([]models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	Replace(ctx context.Context, id uint, p *models.Product) error
	Delete(ctx context.Context, id uint) error
	SetImageURL(ctx context.Context, id uint, url string) error
}

// ProductInput is used for both create and full-replace update.
type ProductInput struct {
	Name        string   `json:"name"        validate:"required,max=255"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"       validate:"required"`
	Category    *string  `json:"category"    validate:"omitempty,max=100"`
	ImageURL    *string  `json:"image_url"   validate:"omitempty,max=500"`
	Stock       *int     `json:"stock"`
}

func (in ProductInput) apply(p *models.Product) {
	p.Name = in.Name
	p.Description = in.Description
	p.Price = *in.Price
	p.Category = in.Category
	p.ImageURL = in.ImageURL
	p.Stock = 0
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
}

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

type ProductService struct {
	products ProductStore
	disk     storage.Disk
}

func NewProductService(products ProductStore, disk storage.Disk) *ProductService {
	return &ProductService{products: products, disk: disk}
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	var p models.Product
	in.apply(&p)
	if err := s.products.Create(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ProductService) Get(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, classify(err, msgProductNotFound, "")
	}
	return p, nil
}

func (s *ProductService) List(ctx context.Context) ([]models.Product, error) {
	return s.products.All(ctx)
}

// Update replaces every field of the product with in. Fields missing from
// in are reset to their defaults; id and created_at are kept.
func (s *ProductService) Update(ctx context.Context, id uint, in ProductInput) (*models.Product, error) {
	cur, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, classify(err, msgProductNotFound, "")
	}

	next := models.Product{ID: cur.ID, CreatedAt: cur.CreatedAt}
	in.apply(&next)
	if err := s.products.Replace(ctx, id, &next); err != nil {
		return nil, classify(err, msgProductNotFound, "")
	}
	return s.Get(ctx, id)
}

func (s *ProductService) Delete(ctx context.Context, id uint) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return classify(err, msgProductNotFound, "")
	}
	logger.WithCtx(ctx).Info("product deleted", "product_id", id)
	return nil
}

// AttachImage stores an uploaded image and points image_url at it.
func (s *ProductService) AttachImage(ctx context.Context, id uint, filename, contentType string, r io.Reader) (*models.Product, error) {
	if _, err := s.products.FindByID(ctx, id); err != nil {
		return nil, classify(err, msgProductNotFound, "")
	}

	ext := strings.ToLower(path.Ext(filename))
	if !imageExts[ext] {
		return nil, invalid("Unsupported image type " + ext)
	}

	key := fmt.Sprintf("products/%d/%s%s", id, uuid.NewString(), ext)
	if err := s.disk.Put(ctx, key, r, contentType); err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}

	url := s.disk.URL(key)
	if err := s.products.SetImageURL(ctx, id, url); err != nil {
		return nil, err
	}

	logger.WithCtx(ctx).Info("product image stored", "product_id", id, "key", key)
	return s.products.FindByID(ctx, id)
}
