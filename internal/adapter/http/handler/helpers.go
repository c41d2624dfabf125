package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/iho/accountledger/internal/adapter/http/dto"
	"github.com/iho/accountledger/internal/domain"
)

// Transport-level error codes.
const (
	codeInvalidRequest = "INVALID_REQUEST"
	codeInternal       = "INTERNAL_ERROR"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   code,
		Message: message,
	})
}

// writeDomainError writes err using the status table. Non-domain errors are logged
// and answered with a generic 500.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	de, ok := domain.AsError(err)
	if !ok {
		zerolog.Ctx(r.Context()).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		writeError(w, http.StatusInternalServerError, codeInternal, "internal server error")
		return
	}

	writeError(w, mapDomainError(err), string(de.Code), err.Error())
}

// writeValidationError writes a 400 for malformed or invalid request input.
func writeValidationError(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field()+" failed "+fe.Tag())
		}
		writeError(w, http.StatusBadRequest, codeInvalidRequest, strings.Join(fields, "; "))
		return
	}

	if _, ok := domain.AsError(err); ok {
		writeError(w, http.StatusBadRequest, string(domain.CodeOf(err)), err.Error())
		return
	}

	writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch code := domain.CodeOf(err); {
	case code == domain.CodePersonNotFound, code == domain.CodeAccountNotFound:
		return http.StatusNotFound
	case code == domain.CodeAccountBlocked:
		return http.StatusForbidden
	case code == domain.CodeInsufficientFunds, code == domain.CodeDailyLimitExceeded:
		return http.StatusUnprocessableEntity
	case strings.HasPrefix(string(code), "INVALID_"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// accountIDParam parses the {id} route parameter.
func accountIDParam(r *http.Request) (domain.AccountID, error) {
	return domain.ParseAccountID(chi.URLParam(r, "id"))
}

// decodeJSON decodes the request body into dst and validates it.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.New("invalid request body")
	}
	return dto.Validate(dst)
}
