package api

import "github.com/stacklok/template-registry-server/internal/versions"

// ServiceName identifies this server in /version responses
const ServiceName = "template-registry"

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadinessResponse is the body of a successful GET /readiness
type ReadinessResponse struct {
	Status string `json:"status"`
}

// VersionResponse is the body of GET /version: the build information the
// `version --format json` command prints, tagged with the service name.
type VersionResponse struct {
	Service string `json:"service"`
	versions.VersionInfo
}
