package validators

import (
	"net/http"
	"strconv"

	pkgerrors "github.com/gymdeskhq/gymdesk-backend/pkg/errors"
)

// ParseQueryInt returns the named query parameter as an int, the fallback
// when the parameter is absent.
func ParseQueryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid query parameter").WithDetails(map[string]string{name: "must be an integer"})
	}
	return value, nil
}
