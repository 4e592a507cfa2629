package http

import (
	"github.com/glam-looks-api/internal/application/look"
	"github.com/glam-looks-api/internal/application/pipeline"
	"github.com/glam-looks-api/internal/application/upload"
	jwtinfra "github.com/glam-looks-api/internal/infrastructure/jwt"
)

// Deps holds the application services the router exposes.
// JWTProvider is optional; without it every route is anonymous and the
// admin routes are not mounted.
type Deps struct {
	Uploads     upload.Service
	Pipeline    pipeline.Service
	Looks       look.Service
	JWTProvider *jwtinfra.Provider
}
