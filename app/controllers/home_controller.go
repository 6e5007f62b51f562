package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/ruizhu/shopapi/pkg/ctx"
)

const Version = "1.0.0"

// Pinger is satisfied by *repositories.DB.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HomeController struct {
	db Pinger
}

func NewHomeController(db Pinger) *HomeController {
	return &HomeController{db: db}
}

func (hc *HomeController) Root(c *ctx.Context) {
	c.OK(map[string]string{"message": "Welcome to the ruizhu shop API", "version": Version})
}

// Health reports 503 when the database does not answer a ping.
func (hc *HomeController) Health(c *ctx.Context) {
	pingCtx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	if err := hc.db.Ping(pingCtx); err != nil {
		c.Log().Warn("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "database": "unreachable"})
		return
	}
	c.OK(map[string]string{"status": "healthy", "database": "ok"})
}
