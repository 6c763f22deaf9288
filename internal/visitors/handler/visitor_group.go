package handler

import (
	"gatepass/internal/visitors/service"
	apperrors "gatepass/pkg/errors"
	httputil "gatepass/pkg/http"
	"gatepass/pkg/logger"
	"gatepass/pkg/model"
	"gatepass/pkg/viewmodel"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

type RegisterResponse struct {
	Message string              `json:"message"`
	GroupID string              `json:"groupId"`
	Group   *model.VisitorGroup `json:"group"`
}

type CheckoutResponse struct {
	Message string              `json:"message"`
	Updated *model.VisitorGroup `json:"updated"`
}

type VisitorHandler struct {
	service service.VisitorService
	log     *logger.Logger
	admin   func(http.Handler) http.Handler
}

// NewVisitorHandler builds the visitor endpoints. admin wraps the routes used
// by the admin console; nil leaves them open.
func NewVisitorHandler(service service.VisitorService, log *logger.Logger, admin func(http.Handler) http.Handler) *VisitorHandler {
	return &VisitorHandler{
		service: service,
		log:     log,
		admin:   admin,
	}
}

func (h *VisitorHandler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var reg model.VisitorRegistration
	if err := httputil.DecodeJSON(r, &reg); err != nil {
		httputil.WriteError(w, err)
		return
	}

	group, err := h.service.Register(r.Context(), &reg)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteCreated(w, RegisterResponse{
		Message: "Visitor registered",
		GroupID: group.GroupID,
		Group:   group,
	}); err != nil {
		h.log.Error("failed to write created response", "handler", "Register", "operation", "WriteCreated", "error", err)
	}
}

func (h *VisitorHandler) Checkout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.CheckoutRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	group, err := h.service.Checkout(r.Context(), req.GroupID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, CheckoutResponse{
		Message: "Visitor(s) marked out",
		Updated: group,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "Checkout", "operation", "WriteSuccess", "error", err)
	}
}

func (h *VisitorHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	groups, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, groups); err != nil {
		h.log.Error("failed to write success response", "handler", "List", "operation", "WriteSuccess", "error", err)
	}
}

func (h *VisitorHandler) Dashboard(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	status, ok := viewmodel.ParseStatusFilter(query.Get("status"))
	if !ok {
		httputil.WriteError(w, apperrors.InvalidInput("status must be one of all, checked-in, checked-out"))
		return
	}

	dashboard, err := h.service.Dashboard(r.Context(), query.Get("search"), status)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, dashboard); err != nil {
		h.log.Error("failed to write success response", "handler", "Dashboard", "operation", "WriteSuccess", "error", err)
	}
}

// GetByGroupID also serves /visitors/dashboard: httprouter cannot hold a
// static segment next to a parameter at the same position.
func (h *VisitorHandler) GetByGroupID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	groupID := ps.ByName("groupId")
	if groupID == "dashboard" {
		h.Dashboard(w, r, ps)
		return
	}

	group, err := h.service.GetByGroupID(r.Context(), groupID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, group); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByGroupID", "operation", "WriteSuccess", "error", err)
	}
}
