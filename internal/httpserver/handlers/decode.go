package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/MrSnakeDoc/linkbox/internal/domain"
)

// maxBodyBytes caps request bodies; a full list replace is the largest payload.
const maxBodyBytes = 4 << 20

// decodeJSON reads one JSON value from the body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return domain.ErrValidation.Withf("request body exceeds %d bytes", tooLarge.Limit)
		case errors.Is(err, io.EOF):
			return domain.ErrValidation.Withf("request body is empty")
		default:
			return domain.ErrValidation.Withf("invalid JSON body").WithCause(err)
		}
	}
	return nil
}
