package controllers

import (
	"github.com/ruizhu/shopapi/app/services"
	"github.com/ruizhu/shopapi/pkg/ctx"
	"github.com/ruizhu/shopapi/pkg/middleware"
)

type UserController struct {
	users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

// Register handles POST /users/register.
func (uc *UserController) Register(c *ctx.Context) {
	var in services.RegisterInput
	if !c.BindJSON(&in) {
		return
	}
	u, err := uc.users.Register(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.OK(u)
}

// Login handles POST /users/login.
func (uc *UserController) Login(c *ctx.Context) {
	var in services.LoginInput
	if !c.BindJSON(&in) {
		return
	}
	tok, err := uc.users.Login(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.OK(tok)
}

// Me handles GET /users/me for the authenticated user.
func (uc *UserController) Me(c *ctx.Context) {
	id, ok := middleware.UserID(c.Context())
	if !ok {
		c.Unauthorized("Not authenticated")
		return
	}
	u, err := uc.users.Get(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.OK(u)
}

func (uc *UserController) Show(c *ctx.Context) {
	id, ok := c.ParamID("id")
	if !ok {
		return
	}
	u, err := uc.users.Get(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.OK(u)
}

func (uc *UserController) Index(c *ctx.Context) {
	users, err := uc.users.List(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.OK(users)
}
