package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/burgerboard/api/internal/logger"
	"github.com/burgerboard/api/internal/service"
	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.L().Error("failed to encode JSON response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string, details error) {
	body := map[string]string{"error": msg}
	if details != nil {
		body["details"] = details.Error()
	}
	writeJSON(w, status, body)
}

// writeServiceError maps a service error to its HTTP status. Unknown errors
// are logged and reported as 500 with the wrapped message in details.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case isValidationError(err):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, service.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, "Order not found", nil)
	case errors.Is(err, service.ErrGraceWindowExpired):
		writeError(w, http.StatusForbidden, "Cannot delete order", err)
	case errors.Is(err, service.ErrDuplicateOrder),
		errors.Is(err, service.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error(), nil)
	default:
		logger.FromCtx(r.Context()).Error(op, zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error", err)
	}
}

// isValidationError checks if the error is a known validation error
// from the service layer that should result in 400 Bad Request.
func isValidationError(err error) bool {
	return errors.Is(err, service.ErrMissingNombre) ||
		errors.Is(err, service.ErrEmptyOrder) ||
		errors.Is(err, service.ErrInvalidMonto) ||
		errors.Is(err, service.ErrInvalidPayment) ||
		errors.Is(err, service.ErrInvalidQuantity) ||
		errors.Is(err, service.ErrMissingBurgerType) ||
		errors.Is(err, service.ErrInvalidPattySize) ||
		errors.Is(err, service.ErrUnparsableItems) ||
		errors.Is(err, service.ErrMissingOrderNumber) ||
		errors.Is(err, service.ErrInvalidStatus) ||
		errors.Is(err, service.ErrItemIndexOutOfRange) ||
		errors.Is(err, service.ErrInvalidPeriod)
}

// flexInt accepts a JSON number or a numeric string.
type flexInt int32

func (n *flexInt) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return errors.New("order_number must be an integer")
	}
	*n = flexInt(v)
	return nil
}
