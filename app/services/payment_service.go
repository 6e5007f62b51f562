package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/ruizhu/shopapi/app/models"
	"github.com/ruizhu/shopapi/app/repositories"
	"github.com/ruizhu/shopapi/pkg/event"
	"github.com/ruizhu/shopapi/pkg/logger"
	"github.com/ruizhu/shopapi/pkg/metrics"
	"github.com/ruizhu/shopapi/pkg/wechatpay"
)

const msgPaymentNotFound = "Payment not found"

// Callback acknowledgement codes.
const (
	CallbackSuccess = "SUCCESS"
	CallbackFail    = "FAIL"
)

type PaymentStore interface {
	FindByTransactionNo(ctx context.Context, transactionNo string) (*models.Payment, error)
	Create(ctx context.Context, p *models.Payment) error
	Save(ctx context.Context, p *models.Payment) error
}

// Transactor runs fn in one database transaction carried by ctx.
type Transactor interface {
	Exec(ctx context.Context, fn func(ctx context.Context) error) error
}

type PaymentInput struct {
	OrderID       *uint    `json:"order_id"       validate:"required"`
	Amount        *float64 `json:"amount"         validate:"required"`
	PaymentMethod string   `json:"payment_method" validate:"omitempty,max=50"`
}

// CallbackResult is returned to the payment provider.
type CallbackResult struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type PaymentService struct {
	tx       Transactor
	payments PaymentStore
	orders   OrderStore
	gateway  wechatpay.Gateway
	events   Publisher
	now      func() time.Time
}

func NewPaymentService(tx Transactor, payments PaymentStore, orders OrderStore, gateway wechatpay.Gateway) *PaymentService {
	return &PaymentService{tx: tx, payments: payments, orders: orders, gateway: gateway, now: time.Now}
}

// WithEvents makes the service publish payment.created and
// payment.confirmed to p.
func (s *PaymentService) WithEvents(p Publisher) *PaymentService {
	s.events = p
	return s
}

// Create opens a pending payment for an existing order and attaches the
// gateway's prepay id.
func (s *PaymentService) Create(ctx context.Context, in PaymentInput) (*models.Payment, error) {
	order, err := s.orders.FindByID(ctx, *in.OrderID)
	if err != nil {
		return nil, classify(err, msgOrderNotFound, "")
	}

	method := in.PaymentMethod
	if method == "" {
		method = models.PaymentMethodWechat
	}

	p := &models.Payment{
		TransactionNo: s.gateway.TransactionNo(),
		UserID:        order.UserID,
		OrderID:       order.ID,
		Amount:        *in.Amount,
		PaymentMethod: method,
		Status:        models.PaymentStatusPending,
	}
	if err := s.payments.Create(ctx, p); err != nil {
		return nil, classify(err, "", "Transaction number already exists")
	}
	metrics.PaymentsCreated.WithLabelValues(method).Inc()

	log := logger.WithCtx(ctx).With("transaction_no", p.TransactionNo, "order_id", order.ID)

	res, err := s.gateway.Prepay(ctx, wechatpay.PrepayRequest{
		TransactionNo: p.TransactionNo,
		Amount:        p.Amount,
		Description:   order.ProductName,
	})
	if err != nil {
		log.Error("prepay failed", "error", err)
		return nil, fmt.Errorf("prepay %s: %w", p.TransactionNo, err)
	}

	reply, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("encode prepay reply: %w", err)
	}
	p.PrepayID = &res.PrepayID
	p.WechatResponse = lo.ToPtr(string(reply))
	if err := s.payments.Save(ctx, p); err != nil {
		return nil, err
	}

	log.Info("payment created", "amount", p.Amount, "method", method)
	publish(ctx, s.events, event.PaymentCreated, *p)
	return p, nil
}

func (s *PaymentService) Get(ctx context.Context, transactionNo string) (*models.Payment, error) {
	p, err := s.payments.FindByTransactionNo(ctx, transactionNo)
	if err != nil {
		return nil, classify(err, msgPaymentNotFound, "")
	}
	return p, nil
}

// HandleCallback applies a provider notification. An unknown transaction
// is reported back as FAIL; every known one is acknowledged. A successful
// trade marks the payment paid and confirms its order in the same
// transaction.
func (s *PaymentService) HandleCallback(ctx context.Context, payload map[string]interface{}) (*CallbackResult, error) {
	n := wechatpay.ParseNotification(payload)
	log := logger.WithCtx(ctx).With("transaction_no", n.OutTradeNo, "trade_state", n.TradeState)

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode callback: %w", err)
	}

	var found, confirmed bool
	var paid *models.Payment
	err = s.tx.Exec(ctx, func(ctx context.Context) error {
		p, err := s.payments.FindByTransactionNo(ctx, n.OutTradeNo)
		if errors.Is(err, repositories.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true

		p.CallbackData = lo.ToPtr(string(raw))
		if n.Paid() {
			paidAt := s.now()
			p.Status = models.PaymentStatusSuccess
			p.WechatTransactionID = lo.EmptyableToPtr(n.TransactionID)
			p.PaidAt = &paidAt
		}
		if err := s.payments.Save(ctx, p); err != nil {
			return err
		}
		if !n.Paid() {
			return nil
		}
		paid = p

		if _, err := s.orders.FindByID(ctx, p.OrderID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				log.Warn("paid payment references missing order", "order_id", p.OrderID)
				return nil
			}
			return err
		}
		if err := s.orders.UpdateStatus(ctx, p.OrderID, models.OrderStatusConfirmed); err != nil {
			return err
		}
		confirmed = true
		return nil
	})
	if err != nil {
		log.Error("callback failed", "error", err)
		return nil, err
	}
	if paid != nil {
		publish(ctx, s.events, event.PaymentConfirmed, *paid)
	}

	switch {
	case !found:
		metrics.PaymentCallbacks.WithLabelValues("not_found").Inc()
		log.Warn("callback for unknown payment")
		return &CallbackResult{Code: CallbackFail, Message: msgPaymentNotFound}, nil
	case confirmed:
		metrics.PaymentCallbacks.WithLabelValues("confirmed").Inc()
		log.Info("payment confirmed")
	default:
		metrics.PaymentCallbacks.WithLabelValues("acknowledged").Inc()
		log.Info("callback acknowledged")
	}
	return &CallbackResult{Code: CallbackSuccess, Message: "OK"}, nil
}
