//go:build !swagger

package httpapi

import "github.com/go-chi/chi/v5"

// MountSwagger leaves /swagger unrouted in default builds; swagger.go serves
// the UI when built with -tags=swagger.
func MountSwagger(chi.Router) {}
