package app

import (
	"github.com/stacklok/template-registry-server/internal/providers"
	"github.com/stacklok/template-registry-server/internal/repository"
	"github.com/stacklok/template-registry-server/internal/service"
)

// AppComponents groups all application components
//
//nolint:revive // This name is fine
type AppComponents struct {
	// TemplateService provides template registry business logic
	TemplateService service.TemplateService

	// Store is the persisted repository list behind TemplateService
	Store *repository.Store

	// Watcher reports edits to file provider lists; nil without file providers
	Watcher *providers.FileWatcher
}
