package registry

import (
	"context"
	"fmt"

	"github.com/roach88/transition/internal/digest"
	"github.com/roach88/transition/internal/model"
)

// AppState classifies a registered app's source tree.
//
// Returns model.StateUnknown when the app is not registered or its
// directory no longer yields digests. A malformed Manifest counts as
// corrupted here; digest.ReadManifest is where it surfaces as an error.
func (r *Registry) AppState(ctx context.Context, appType, appName string) (model.IntegrityState, error) {
	app, out, err := r.store.App(ctx, appType, appName)
	if err != nil {
		return model.StateUnknown, fmt.Errorf("app state: %w", err)
	}
	if out != model.OutcomeFound {
		return model.StateUnknown, nil
	}
	state, _, err := r.classify(app)
	return state, err
}

// classify computes the integrity state of app and returns the freshly
// generated digests along with it.
func (r *Registry) classify(app model.App) (model.IntegrityState, model.Digests, error) {
	generated, ok, err := r.digests.Generate(app.Path)
	if err != nil {
		return model.StateUnknown, model.Digests{}, fmt.Errorf("classify %s/%s: %w", app.Type, app.Name, err)
	}
	if !ok {
		return model.StateUnknown, model.Digests{}, nil
	}

	if digest.HasManifest(app.Path) {
		signed, err := digest.ReadManifest(app.Path)
		if err != nil {
			if model.IsIntegrityError(err) {
				r.logger.Warn("invalid manifest", "app_type", app.Type, "app_name", app.Name, "error", err)
				return model.StateCorrupted, generated, nil
			}
			return model.StateUnknown, model.Digests{}, err
		}
		if !generated.Equal(signed) {
			return model.StateCorrupted, generated, nil
		}
	}

	if !generated.Equal(app.Digests) {
		return model.StateUpdated, generated, nil
	}
	return model.StateUnchanged, generated, nil
}

// AppMode reports whether a registered app is signed (user mode) or not
// (dev mode). Unknown apps yield model.ModeUnknown.
func (r *Registry) AppMode(ctx context.Context, appType, appName string) (model.Mode, error) {
	app, out, err := r.store.App(ctx, appType, appName)
	if err != nil {
		return model.ModeUnknown, fmt.Errorf("app mode: %w", err)
	}
	if out != model.OutcomeFound {
		return model.ModeUnknown, nil
	}
	if digest.HasManifest(app.Path) {
		return model.ModeUser, nil
	}
	return model.ModeDev, nil
}

// SignApp writes the Manifest of a registered app from its current
// content, moving it to user mode. The store is not touched: the next
// inventory sees the app as updated if its content changed since it was
// registered.
func (r *Registry) SignApp(ctx context.Context, appType, appName string) (model.Digests, error) {
	if _, err := r.requireAppType(ctx, appType); err != nil {
		return model.Digests{}, err
	}
	app, out, err := r.store.App(ctx, appType, appName)
	if err != nil {
		return model.Digests{}, fmt.Errorf("sign app: %w", err)
	}
	if out != model.OutcomeFound {
		return model.Digests{}, &model.ConfigError{
			Code:    model.ErrCodeAppNotAvailable,
			Message: "app is not registered",
			AppType: appType,
			AppName: appName,
		}
	}

	d, ok, err := r.digests.WriteManifest(app.Path)
	if err != nil {
		return model.Digests{}, err
	}
	if !ok {
		return model.Digests{}, &model.ConfigError{
			Code:    model.ErrCodeAppNotAvailable,
			Message: "app directory has no content to sign",
			AppType: appType,
			AppName: appName,
		}
	}
	r.logger.Info("app signed", "app_type", appType, "app_name", appName)
	return d, nil
}
