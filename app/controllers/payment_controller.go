package controllers

import (
	"net/http"

	"github.com/ruizhu/shopapi/app/services"
	"github.com/ruizhu/shopapi/pkg/bind"
	"github.com/ruizhu/shopapi/pkg/ctx"
)

type PaymentController struct {
	payments *services.PaymentService
}

func NewPaymentController(payments *services.PaymentService) *PaymentController {
	return &PaymentController{payments: payments}
}

func (pc *PaymentController) Create(c *ctx.Context) {
	var in services.PaymentInput
	if !c.BindJSON(&in) {
		return
	}
	p, err := pc.payments.Create(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.OK(p)
}

func (pc *PaymentController) Show(c *ctx.Context) {
	p, err := pc.payments.Get(c.Context(), c.Param("transaction_no"))
	if err != nil {
		fail(c, err)
		return
	}
	c.OK(p)
}

// Callback receives the provider's payment notification. An unknown
// transaction is still answered with 200 and code FAIL.
func (pc *PaymentController) Callback(c *ctx.Context) {
	var payload map[string]interface{}
	if err := bind.Decode(c.R, &payload); err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return
	}
	res, err := pc.payments.HandleCallback(c.Context(), payload)
	if err != nil {
		fail(c, err)
		return
	}
	c.OK(res)
}
