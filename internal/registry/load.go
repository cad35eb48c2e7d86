package registry

import (
	"context"
	"fmt"

	"github.com/specialistvlad/partgrid/internal/catalog"
	"github.com/specialistvlad/partgrid/internal/ctxlog"
)

// LoadManifests reads the part manifests found under paths and applies them
// to the registered definitions.
func (r *Registry) LoadManifests(ctx context.Context, paths ...string) (*catalog.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Registry loading manifests...", "paths", paths)

	model, err := catalog.NewLoader().Load(ctx, paths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load part manifests: %w", err)
	}
	if len(model.Parts) == 0 {
		logger.Warn("No part manifests found.", "paths", paths)
	}

	if err := r.ApplyManifests(ctx, model); err != nil {
		return nil, err
	}

	logger.Info("Registry loaded successfully.", "parts_registered", len(r.Names()), "manifests_applied", len(model.Parts))
	return model, nil
}
