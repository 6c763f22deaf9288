package handler

import (
	"gatepass/internal/otp/service"
	"gatepass/pkg/contracts"
	httputil "gatepass/pkg/http"
	"gatepass/pkg/logger"
	"gatepass/pkg/model"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// SendPaths are the routes that trigger an SMS; the per-phone limiter guards them.
var SendPaths = []string{"/otp/send", "/twilio/sendmessage"}

// VerifyPath issues phone verification tokens and must never be replayed.
const VerifyPath = "/otp/verify"

type OTPHandler struct {
	service service.OTPService
	log     *logger.Logger
}

func NewOTPHandler(service service.OTPService, log *logger.Logger) *OTPHandler {
	return &OTPHandler{
		service: service,
		log:     log,
	}
}

func (h *OTPHandler) Send(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.OTPSendRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	resp, err := h.service.Send(r.Context(), &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, resp); err != nil {
		h.log.Error("failed to write success response", "handler", "Send", "operation", "WriteSuccess", "error", err)
	}
}

func (h *OTPHandler) Verify(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.OTPVerifyRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	resp, err := h.service.Verify(r.Context(), &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, resp); err != nil {
		h.log.Error("failed to write success response", "handler", "Verify", "operation", "WriteSuccess", "error", err)
	}
}

func (h *OTPHandler) RegisterRoutes(router *httprouter.Router) {
	for _, path := range SendPaths {
		contracts.Mount(router, http.MethodPost, path, h.Send)
	}
	contracts.Mount(router, http.MethodPost, VerifyPath, h.Verify)
}
