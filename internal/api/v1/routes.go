// Package v1 provides the template registry API v1 endpoints.
package v1

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stacklok/template-registry-server/internal/api/common"
	"github.com/stacklok/template-registry-server/internal/batch"
	"github.com/stacklok/template-registry-server/internal/manifest"
	"github.com/stacklok/template-registry-server/internal/repository"
	"github.com/stacklok/template-registry-server/internal/service"
)

// AddRepositoryRequest is the body of POST /templates/repositories
type AddRepositoryRequest struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Routes handles HTTP requests for the template API
type Routes struct {
	service service.TemplateService
}

// NewRoutes creates a new Routes instance with the given service.
func NewRoutes(svc service.TemplateService) *Routes {
	return &Routes{
		service: svc,
	}
}

// Router creates and configures the HTTP router for the v1 endpoints.
func Router(svc service.TemplateService) http.Handler {
	routes := NewRoutes(svc)

	r := chi.NewRouter()

	r.Route("/templates", func(r chi.Router) {
		r.Get("/", routes.listTemplates)
		r.Get("/styles", routes.listStyles)
		r.Get("/repositories", routes.listRepositories)
		r.Post("/repositories", routes.addRepository)
		r.Delete("/repositories", routes.deleteRepository)
	})
	r.Patch("/batch/templates/repositories", routes.batchUpdate)

	return r
}

// listTemplates handles GET /api/v1/templates
func (routes *Routes) listTemplates(w http.ResponseWriter, r *http.Request) {
	var opts []service.Option[service.GetTemplatesOptions]
	if style := r.URL.Query().Get("projectStyle"); style != "" {
		opts = append(opts, service.WithProjectStyle(style))
	}

	templates, err := routes.service.GetTemplates(r.Context(), opts...)
	if err != nil {
		writeServiceError(w, r, err, "Failed to list templates")
		return
	}
	common.WriteJSONResponse(w, templates, http.StatusOK)
}

// listStyles handles GET /api/v1/templates/styles
func (routes *Routes) listStyles(w http.ResponseWriter, r *http.Request) {
	styles, err := routes.service.GetTemplateStyles(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "Failed to list template styles")
		return
	}
	common.WriteJSONResponse(w, styles, http.StatusOK)
}

// listRepositories handles GET /api/v1/templates/repositories
func (routes *Routes) listRepositories(w http.ResponseWriter, r *http.Request) {
	routes.writeRepositories(w, r, http.StatusOK)
}

// addRepository handles POST /api/v1/templates/repositories
func (routes *Routes) addRepository(w http.ResponseWriter, r *http.Request) {
	var req AddRepositoryRequest
	if err := common.DecodeJSONBody(r, &req); err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := routes.service.AddRepository(r.Context(), req.URL, req.Description); err != nil {
		writeServiceError(w, r, err, "Failed to add repository")
		return
	}
	routes.writeRepositories(w, r, http.StatusCreated)
}

// deleteRepository handles DELETE /api/v1/templates/repositories?url=
func (routes *Routes) deleteRepository(w http.ResponseWriter, r *http.Request) {
	url, err := common.GetRequiredQueryParam(r, "url")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := routes.service.DeleteRepository(r.Context(), url); err != nil {
		writeServiceError(w, r, err, "Failed to delete repository")
		return
	}
	routes.writeRepositories(w, r, http.StatusOK)
}

// batchUpdate handles PATCH /api/v1/batch/templates/repositories
func (routes *Routes) batchUpdate(w http.ResponseWriter, r *http.Request) {
	var ops []batch.Operation
	if err := common.DecodeJSONBody(r, &ops); err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	if ops == nil {
		common.WriteErrorResponse(w, "request body must be an array of operations", http.StatusBadRequest)
		return
	}

	results, err := routes.service.BatchUpdate(r.Context(), ops)
	if err != nil {
		writeServiceError(w, r, err, "Failed to update repositories")
		return
	}
	common.WriteJSONResponse(w, results, http.StatusMultiStatus)
}

func (routes *Routes) writeRepositories(w http.ResponseWriter, r *http.Request, status int) {
	repos, err := routes.service.GetRepositories(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "Failed to list repositories")
		return
	}
	common.WriteJSONResponse(w, repos, status)
}

// writeServiceError maps service errors to HTTP status codes. Unexpected
// errors are logged and reported with message.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, message string) {
	switch {
	case errors.Is(err, manifest.ErrInvalidURL),
		errors.Is(err, service.ErrManifestValidation),
		errors.Is(err, service.ErrProtectedRepository):
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, repository.ErrDuplicateRepository):
		common.WriteErrorResponse(w, err.Error(), http.StatusConflict)
	case errors.Is(err, repository.ErrRepositoryNotFound):
		common.WriteErrorResponse(w, err.Error(), http.StatusNotFound)
	default:
		slog.ErrorContext(r.Context(), message, "error", err)
		common.WriteErrorResponse(w, message, http.StatusInternalServerError)
	}
}
