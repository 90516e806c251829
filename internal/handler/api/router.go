package api

import (
	xhttp "CoinSight/pkg/http"

	"github.com/labstack/echo/v4"
)

// Router bundles every API handler behind one route registrar.
type Router struct {
	handlers []xhttp.Handler
}

func NewRouter(pipeline *PipelineHandler, system *SystemHandler) *Router {
	return &Router{handlers: []xhttp.Handler{pipeline, system}}
}

func (r *Router) RegisterRoutes(e *echo.Echo) {
	for _, h := range r.handlers {
		h.RegisterRoutes(e)
	}
}
