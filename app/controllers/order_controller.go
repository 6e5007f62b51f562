package controllers

import (
	"net/http"

	"github.com/ruizhu/shopapi/app/services"
	"github.com/ruizhu/shopapi/pkg/bind"
	"github.com/ruizhu/shopapi/pkg/ctx"
)

type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

func (oc *OrderController) Store(c *ctx.Context) {
	var in services.OrderInput
	if !c.BindJSON(&in) {
		return
	}
	o, err := oc.orders.Create(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.OK(o)
}

func (oc *OrderController) Show(c *ctx.Context) {
	id, ok := c.ParamID("id")
	if !ok {
		return
	}
	o, err := oc.orders.Get(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.OK(o)
}

func (oc *OrderController) Index(c *ctx.Context) {
	orders, err := oc.orders.List(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.OK(orders)
}

// UpdateStatus reads the status from ?status=, falling back to a JSON body
// {"status": "..."}.
func (oc *OrderController) UpdateStatus(c *ctx.Context) {
	id, ok := c.ParamID("id")
	if !ok {
		return
	}
	status := c.Query("status")
	if status == "" && c.R.ContentLength != 0 {
		var body struct {
			Status string `json:"status"`
		}
		if err := bind.Decode(c.R, &body); err != nil {
			c.Error(http.StatusBadRequest, err.Error())
			return
		}
		status = body.Status
	}

	o, err := oc.orders.UpdateStatus(c.Context(), id, status)
	if err != nil {
		fail(c, err)
		return
	}
	c.OK(o)
}
