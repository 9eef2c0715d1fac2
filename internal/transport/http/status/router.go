package statushttp

import (
	"net/http"

	"crossbot/internal/trader"

	"github.com/gin-gonic/gin"
)

// StatusProvider is satisfied by *trader.Trader.
type StatusProvider interface {
	Snapshot() trader.Snapshot
}

type Router struct {
	status StatusProvider
}

func NewRouter(status StatusProvider) *Router {
	return &Router{status: status}
}

func (r *Router) Register(group *gin.RouterGroup) {
	if group == nil {
		return
	}
	group.GET("/status", r.handleStatus)
}

func (r *Router) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, r.status.Snapshot())
}
