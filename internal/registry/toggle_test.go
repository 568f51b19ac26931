package registry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/transition/internal/events"
	"github.com/roach88/transition/internal/model"
	"github.com/roach88/transition/internal/testutil"
)

func TestEnableApp_SingleHost(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	testutil.WriteApp(t, f.addinRoot, "alpha", "excel", "word")
	f.inventory(t)

	ok, err := f.reg.EnableApp(ctx, "addin", "alpha", "Excel")
	require.NoError(t, err)
	assert.True(t, ok)

	require.Equal(t, 1, f.rec.Len())
	last, _ := f.rec.Last()
	assert.Equal(t, events.KindEnable, last.Kind)
	assert.Equal(t, []string{"excel"}, last.Hosts)

	// Second enable is a no-op and fires nothing.
	ok, err = f.reg.EnableApp(ctx, "addin", "alpha", "excel")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, f.rec.Len())

	enabled, out, err := f.reg.EnabledApps(ctx, "addin", "excel")
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeFound, out)
	assert.Equal(t, []string{"alpha"}, enabled)

	disabled, _, err := f.reg.DisabledApps(ctx, "addin", "word")
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha"}, disabled)
}

func TestEnableApp_AllHostsReportsOnlyFlipped(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	testutil.WriteApp(t, f.addinRoot, "alpha", "excel", "word", "powerpoint")
	f.inventory(t)

	_, err := f.reg.EnableApp(ctx, "addin", "alpha", "word")
	require.NoError(t, err)
	f.rec.Reset()

	ok, err := f.reg.EnableApp(ctx, "addin", "alpha", "")
	require.NoError(t, err)
	assert.True(t, ok)

	require.Equal(t, 1, f.rec.Len())
	last, _ := f.rec.Last()
	assert.ElementsMatch(t, []string{"excel", "powerpoint"}, last.Hosts)

	ok, err = f.reg.DisableApp(ctx, "addin", "alpha", "")
	require.NoError(t, err)
	assert.True(t, ok)
	last, _ = f.rec.Last()
	assert.Equal(t, events.KindDisable, last.Kind)
	assert.ElementsMatch(t, []string{"excel", "powerpoint", "word"}, last.Hosts)

	ok, err = f.reg.DisableApp(ctx, "addin", "alpha", "")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 2, f.rec.Len())
}

func TestToggle_RequireChange(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	testutil.WriteApp(t, f.addinRoot, "alpha", "excel")
	f.inventory(t)

	_, err := f.reg.DisableApp(ctx, "addin", "alpha", "excel", RequireChange())
	assert.True(t, model.IsConfigError(err, model.ErrCodeAlreadyInState))

	ok, err := f.reg.EnableApp(ctx, "addin", "alpha", "excel", RequireChange())
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = f.reg.EnableApp(ctx, "addin", "alpha", "excel", RequireChange())
	assert.True(t, model.IsConfigError(err, model.ErrCodeAlreadyInState))
	assert.Equal(t, 1, f.rec.Len())
}

func TestToggle_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	testutil.WriteApp(t, f.addinRoot, "alpha", "excel")
	testutil.WriteApp(t, f.addinRoot, "gone", "excel")
	testutil.WriteBrokenApp(t, f.addinRoot, "broken")
	f.inventory(t)
	testutil.WriteApp(t, f.addinRoot, "unregistered", "excel")

	tests := []struct {
		name    string
		appType string
		appName string
		host    string
		code    model.ConfigErrorCode
	}{
		{"unknown type", "tests", "alpha", "excel", model.ErrCodeUnknownAppType},
		{"missing app", "addin", "ghost", "excel", model.ErrCodeAppNotAvailable},
		{"broken app", "addin", "broken", "excel", model.ErrCodeAppNotAvailable},
		{"not registered", "addin", "unregistered", "excel", model.ErrCodeAppNotAvailable},
		{"path traversal", "addin", "../addin/alpha", "excel", model.ErrCodeAppNotAvailable},
		{"unknown host", "addin", "alpha", "notepad", model.ErrCodeUnknownHost},
		{"undeclared host", "addin", "alpha", "word", model.ErrCodeHostNotDeclared},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := f.reg.EnableApp(ctx, tt.appType, tt.appName, tt.host)
			assert.False(t, ok)
			assert.True(t, model.IsConfigError(err, tt.code), "got %v", err)

			ok, err = f.reg.DisableApp(ctx, tt.appType, tt.appName, tt.host)
			assert.False(t, ok)
			assert.True(t, model.IsConfigError(err, tt.code), "got %v", err)
		})
	}

	t.Run("removed from disk", func(t *testing.T) {
		require.NoError(t, os.RemoveAll(filepath.Join(f.addinRoot, "gone")))
		_, err := f.reg.EnableApp(ctx, "addin", "gone", "excel")
		assert.True(t, model.IsConfigError(err, model.ErrCodeAppNotAvailable))
	})

	assert.Equal(t, 0, f.rec.Len())
}

func TestEnableApp_RefusesCorrupted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	dir := testutil.WriteApp(t, f.addinRoot, "alpha", "excel")
	f.inventory(t)

	_, err := f.reg.SignApp(ctx, "addin", "alpha")
	require.NoError(t, err)
	testutil.EditApp(t, dir)

	_, err = f.reg.EnableApp(ctx, "addin", "alpha", "excel")
	assert.True(t, model.IsConfigError(err, model.ErrCodeAppCorrupted))

	// Disabling a corrupted app is always allowed.
	ok, err := f.reg.DisableApp(ctx, "addin", "alpha", "excel")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, f.rec.Len())
}
