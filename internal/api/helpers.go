package api

import (
	"encoding/json/v2"
	"net/http"

	apperrors "github.com/munajatapp/munajat-server/internal/errors"
)

// decode reads and validates a JSON request body into dst.
func (s *Server) decode(r *http.Request, dst any) error {
	if err := json.UnmarshalRead(r.Body, dst); err != nil {
		return apperrors.Validation("invalid JSON body").WithCause(err)
	}
	return s.validator.Validate(dst)
}
