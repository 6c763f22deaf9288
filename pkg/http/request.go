package http

import (
	"encoding/json"
	"errors"
	"fmt"
	apperrors "gatepass/pkg/errors"
	"io"
	"net/http"
	"strings"
)

// DecodeJSON decodes the request body into dst. An empty body, malformed JSON or
// trailing data yields an INVALID_INPUT error.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return apperrors.InvalidInput("request body is required")
	}

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return apperrors.InvalidInput("request body is required")
		case errors.As(err, &maxErr):
			return apperrors.New(apperrors.CodeInvalidInput,
				fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit), http.StatusRequestEntityTooLarge)
		default:
			return apperrors.InvalidInput("invalid JSON in request body")
		}
	}

	if dec.More() {
		return apperrors.InvalidInput("request body must contain a single JSON object")
	}
	return nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
