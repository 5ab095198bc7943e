package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/storefinder/backend/internal/domain"
)

// invalidPostalCodeMessage is returned for a postal code that is not
// "01310100" or "01310-100".
const invalidPostalCodeMessage = "Formato de CEP inválido."

// pageQuery is the ?offset=&limit= pair. Nil means "not supplied".
type pageQuery struct {
	Offset *int `json:"offset" validate:"omitempty,gte=0"`
	Limit  *int `json:"limit" validate:"omitempty,gte=1,lte=100"`
}

// bindPage reads and validates the pagination query parameters.
// Returns domain.ErrValidation for non-integer or out-of-range values.
func (s *Server) bindPage(r *http.Request) (domain.PageParams, error) {
	var q pageQuery
	query := r.URL.Query()

	if err := runtime.BindQueryParameter("form", true, false, "offset", query, &q.Offset); err != nil {
		return domain.PageParams{}, fmt.Errorf("%w: offset must be an integer", domain.ErrValidation)
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", query, &q.Limit); err != nil {
		return domain.PageParams{}, fmt.Errorf("%w: limit must be an integer", domain.ErrValidation)
	}
	if err := s.validate.Struct(q); err != nil {
		return domain.PageParams{}, err
	}
	return domain.NewPageParams(q.Offset, q.Limit), nil
}

// pathParam binds a required, simple-style path parameter.
func pathParam(r *http.Request, name string) (string, error) {
	var v string
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &v,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		return "", fmt.Errorf("%w: %s is required", domain.ErrValidation, name)
	}
	return v, nil
}

// bindPostalCode binds {postalCode} and checks its format.
func (s *Server) bindPostalCode(r *http.Request) (string, bool) {
	code, err := pathParam(r, "postalCode")
	if err != nil {
		return "", false
	}
	if err := s.validate.PostalCode(code); err != nil {
		return "", false
	}
	return code, true
}
