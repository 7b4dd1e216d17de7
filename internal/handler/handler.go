package handler

import (
	"github.com/pauloricms12/data-analysis/internal/config"
	"github.com/pauloricms12/data-analysis/internal/dataset"
)

// Handlers bundles the route handlers for dependency wiring in main.
type Handlers struct {
	Views *ViewHandler
}

func NewHandlers(ds *dataset.Dataset, cfg *config.Config) *Handlers {
	return &Handlers{
		Views: NewViewHandler(ds, cfg.Analysis),
	}
}
