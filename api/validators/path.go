package validators

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	pkgerrors "github.com/angelmondragon/caraccessories-storefront/pkg/errors"
	"github.com/angelmondragon/caraccessories-storefront/pkg/types"
)

// PathID reads a non-empty id from the named route parameter.
func PathID(r *http.Request, name string) (types.ID, error) {
	raw := SanitizeString(chi.URLParam(r, name), 64)
	if raw == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, name+" is required").WithDetails(map[string]any{"field": name})
	}
	return types.ID(raw), nil
}
