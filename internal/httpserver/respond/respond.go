// Package respond writes JSON bodies and domain errors for the HTTP layer.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/linkbox/internal/domain"
	"github.com/MrSnakeDoc/linkbox/internal/logger"
)

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes err as {"error": ..., "code": ...}.
// Errors that are not *domain.Error become a 500 and are logged; their text is not sent.
func Error(w http.ResponseWriter, log logger.Logger, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		log.Error("request failed", logger.Error(err))
		de = domain.ErrInternal
	}
	JSON(w, de.HTTPStatus(), de)
}
