package handler

import (
	"gatepass/pkg/contracts"
	"gatepass/pkg/middleware"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (h *VisitorHandler) RegisterRoutes(router *httprouter.Router) {
	contracts.Mount(router, http.MethodPost, "/visitors/register", h.Register)

	contracts.Mount(router, http.MethodGet, "/visitors", middleware.Route(h.admin, h.List))
	contracts.Mount(router, http.MethodGet, "/visitors/:groupId", middleware.Route(h.admin, h.GetByGroupID))
	contracts.Mount(router, http.MethodPost, "/visitors/exit", middleware.Route(h.admin, h.Checkout))
}
