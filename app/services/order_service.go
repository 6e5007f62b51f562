package services

import (
	"context"

	"github.com/ruizhu/shopapi/app/models"
	"github.com/ruizhu/shopapi/pkg/event"
	"github.com/ruizhu/shopapi/pkg/logger"
	"github.com/ruizhu/shopapi/pkg/metrics"
)

const msgOrderNotFound = "Order not found"

type OrderStore interface {
	FindByID(ctx context.Context, id uint) (*models.Order, error)
	All(ctx context.Context) ([]models.Order, error)
	Create(ctx context.Context, o *models.Order) error
	UpdateStatus(ctx context.Context, id uint, status string) error
}

type OrderInput struct {
	ProductID   *uint    `json:"product_id"   validate:"required"`
	ProductName string   `json:"product_name" validate:"required,max=255"`
	Quantity    *int     `json:"quantity"`
	UnitPrice   *float64 `json:"unit_price"   validate:"required"`
	TotalPrice  *float64 `json:"total_price"  validate:"required"`
	Remark      *string  `json:"remark"`
	AddressID   *uint    `json:"address_id"`
	Phone       *string  `json:"phone"        validate:"omitempty,max=20"`
}

type OrderService struct {
	orders OrderStore
	events Publisher
}

func NewOrderService(orders OrderStore) *OrderService {
	return &OrderService{orders: orders}
}

// WithEvents makes the service publish order.created and
// order.status_changed to p.
func (s *OrderService) WithEvents(p Publisher) *OrderService {
	s.events = p
	return s
}

// Create places a pending order. The product is not looked up and the
// total is stored as given.
func (s *OrderService) Create(ctx context.Context, in OrderInput) (*models.Order, error) {
	o := &models.Order{
		ProductID:   *in.ProductID,
		ProductName: in.ProductName,
		Quantity:    1,
		UnitPrice:   *in.UnitPrice,
		TotalPrice:  *in.TotalPrice,
		Status:      models.OrderStatusPending,
		Remark:      in.Remark,
		AddressID:   in.AddressID,
		Phone:       in.Phone,
	}
	if in.Quantity != nil {
		o.Quantity = *in.Quantity
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, err
	}

	metrics.OrdersCreated.Inc()
	logger.WithCtx(ctx).Info("order created", "order_id", o.ID, "product_id", o.ProductID)
	publish(ctx, s.events, event.OrderCreated, *o)
	return o, nil
}

func (s *OrderService) Get(ctx context.Context, id uint) (*models.Order, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, classify(err, msgOrderNotFound, "")
	}
	return o, nil
}

func (s *OrderService) List(ctx context.Context) ([]models.Order, error) {
	return s.orders.All(ctx)
}

// UpdateStatus overwrites the status with the caller's string exactly as
// given. Only "" and values longer than the column are refused.
func (s *OrderService) UpdateStatus(ctx context.Context, id uint, status string) (*models.Order, error) {
	if status == "" {
		return nil, invalid("status is required")
	}
	if len(status) > 50 {
		return nil, invalid("status must be at most 50 characters")
	}

	if _, err := s.orders.FindByID(ctx, id); err != nil {
		return nil, classify(err, msgOrderNotFound, "")
	}
	if err := s.orders.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	logger.WithCtx(ctx).Info("order status updated", "order_id", id, "status", status)
	publish(ctx, s.events, event.OrderStatusChanged, *o)
	return o, nil
}
