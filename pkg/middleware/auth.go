package middleware

import (
	"context"
	apperrors "gatepass/pkg/errors"
	httputil "gatepass/pkg/http"
	"gatepass/pkg/logger"
	"gatepass/pkg/token"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

type TokenVerifier interface {
	VerifyAuthToken(raw string) (*token.AuthClaims, error)
}

type claimsKey struct{}

func ClaimsFromContext(ctx context.Context) (*token.AuthClaims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*token.AuthClaims)
	return claims, ok
}

// BearerAuth rejects requests without a valid admin token. A nil verifier
// disables the check.
func BearerAuth(verifier TokenVerifier, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if verifier == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := httputil.BearerToken(r)
			if !ok {
				httputil.WriteError(w, apperrors.Unauthorized("Authorization bearer token is required"))
				return
			}

			claims, err := verifier.VerifyAuthToken(raw)
			if err != nil {
				log.Warn("Rejected admin token",
					"request_id", logger.RequestIDFromContext(r.Context()),
					"path", r.URL.Path,
					"error", err,
				)
				httputil.WriteError(w, apperrors.Unauthorized("Invalid or expired token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
		})
	}
}

// Route applies a net/http middleware to a single httprouter handle.
func Route(mw func(http.Handler) http.Handler, h httprouter.Handle) httprouter.Handle {
	if mw == nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h(w, r, ps)
		})).ServeHTTP(w, r)
	}
}
