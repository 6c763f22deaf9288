package handler

import (
	"gatepass/internal/auth/service"
	"gatepass/pkg/contracts"
	httputil "gatepass/pkg/http"
	"gatepass/pkg/logger"
	"gatepass/pkg/model"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

type AuthHandler struct {
	service service.AuthService
	log     *logger.Logger
}

func NewAuthHandler(service service.AuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		log:     log,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var reg model.UserRegistration
	if err := httputil.DecodeJSON(r, &reg); err != nil {
		httputil.WriteError(w, err)
		return
	}

	resp, err := h.service.Register(r.Context(), &reg)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteCreated(w, resp); err != nil {
		h.log.Error("failed to write created response", "handler", "Register", "operation", "WriteCreated", "error", err)
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var creds model.Credentials
	if err := httputil.DecodeJSON(r, &creds); err != nil {
		httputil.WriteError(w, err)
		return
	}

	resp, err := h.service.Login(r.Context(), &creds)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, resp); err != nil {
		h.log.Error("failed to write success response", "handler", "Login", "operation", "WriteSuccess", "error", err)
	}
}

const (
	RegisterPath = "/auth/register"
	LoginPath    = "/auth/login"
)

// TokenPaths respond with bearer tokens.
var TokenPaths = []string{RegisterPath, LoginPath}

func (h *AuthHandler) RegisterRoutes(router *httprouter.Router) {
	contracts.Mount(router, http.MethodPost, RegisterPath, h.Register)
	contracts.Mount(router, http.MethodPost, LoginPath, h.Login)
}
