// Package routes registers the shop's HTTP endpoints.
package routes

import (
	"github.com/ruizhu/shopapi/app/controllers"
	"github.com/ruizhu/shopapi/pkg/ctx"
	"github.com/ruizhu/shopapi/pkg/router"
)

// Controllers groups everything RegisterAPI mounts.
type Controllers struct {
	Home     *controllers.HomeController
	Users    *controllers.UserController
	Products *controllers.ProductController
	Orders   *controllers.OrderController
	Payments *controllers.PaymentController
}

// RegisterAPI mounts the /api/v1 routes plus / and /health. Collection
// routes answer with and without a trailing slash.
func RegisterAPI(r *router.Router, c Controllers, authenticate router.Middleware) {
	r.Get("/", "home", ctx.Wrap(c.Home.Root))
	r.Get("/health", "health", ctx.Wrap(c.Home.Health))

	api := r.Group("/api/v1")

	users := api.Group("users")
	users.Post("/register", "users.register", ctx.Wrap(c.Users.Register))
	users.Post("/login", "users.login", ctx.Wrap(c.Users.Login))
	users.Get("/me", "users.me", ctx.Wrap(c.Users.Me), authenticate)
	users.Get("", "users.index", ctx.Wrap(c.Users.Index))
	users.Get("/", "", ctx.Wrap(c.Users.Index))
	users.Get("/{id}", "users.show", ctx.Wrap(c.Users.Show))

	products := api.Group("products")
	products.Post("", "products.store", ctx.Wrap(c.Products.Store))
	products.Post("/", "", ctx.Wrap(c.Products.Store))
	products.Get("", "products.index", ctx.Wrap(c.Products.Index))
	products.Get("/", "", ctx.Wrap(c.Products.Index))
	products.Get("/{id}", "products.show", ctx.Wrap(c.Products.Show))
	products.Put("/{id}", "products.update", ctx.Wrap(c.Products.Update))
	products.Delete("/{id}", "products.destroy", ctx.Wrap(c.Products.Destroy))
	products.Post("/{id}/image", "products.image", ctx.Wrap(c.Products.UploadImage))

	orders := api.Group("orders")
	orders.Post("", "orders.store", ctx.Wrap(c.Orders.Store))
	orders.Post("/", "", ctx.Wrap(c.Orders.Store))
	orders.Get("", "orders.index", ctx.Wrap(c.Orders.Index))
	orders.Get("/", "", ctx.Wrap(c.Orders.Index))
	orders.Get("/{id}", "orders.show", ctx.Wrap(c.Orders.Show))
	orders.Put("/{id}/status", "orders.status", ctx.Wrap(c.Orders.UpdateStatus))

	payments := api.Group("payments")
	payments.Post("/create", "payments.create", ctx.Wrap(c.Payments.Create))
	payments.Post("/wechat/callback", "payments.callback", ctx.Wrap(c.Payments.Callback))
	payments.Get("/{transaction_no}", "payments.show", ctx.Wrap(c.Payments.Show))
}
