package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/transition/internal/model"
	"github.com/roach88/transition/internal/testutil"
)

func TestAppList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	items, out, err := f.reg.AppList(ctx, model.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeNotFound, out)
	assert.Nil(t, items)

	testutil.WriteApp(t, f.addinRoot, "alpha", "excel", "word")
	testutil.WriteApp(t, f.docRoot, "report", "word")
	f.inventory(t)
	_, err = f.reg.EnableApp(ctx, "addin", "alpha", "word")
	require.NoError(t, err)

	items, out, err = f.reg.AppList(ctx, model.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeFound, out)
	assert.Len(t, items, 3)

	items, _, err = f.reg.AppList(ctx, model.ListFilter{Host: model.Ptr("word"), Enabled: model.Ptr(true)})
	require.NoError(t, err)
	assert.Equal(t, []model.AppListItem{
		{AppType: "addin", AppName: "alpha", Host: "word", Enabled: true},
	}, items)

	_, out, err = f.reg.AppList(ctx, model.ListFilter{AppType: model.Ptr("tests")})
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeNotFound, out)
}

func TestAvailableApps(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	testutil.WriteApp(t, f.addinRoot, "alpha", "excel")
	testutil.WriteApp(t, f.addinRoot, "beta", "word")
	testutil.WriteApp(t, f.addinRoot, "gamma", "excel", "word")
	testutil.WriteBrokenApp(t, f.addinRoot, "broken")

	names, err := f.reg.AvailableApps(ctx, "addin")
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, names)

	names, err = f.reg.AvailableApps(ctx, "addin", "Excel")
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "gamma"}, names)

	names, err = f.reg.AvailableApps(ctx, "addin", "notepad")
	require.NoError(t, err)
	assert.Empty(t, names)

	names, err = f.reg.AvailableApps(ctx, "docapp")
	require.NoError(t, err)
	assert.Empty(t, names)

	_, err = f.reg.AvailableApps(ctx, "tests")
	assert.True(t, model.IsConfigError(err, model.ErrCodeUnknownAppType))
}

func TestEnabledApps_UnknownType(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	names, out, err := f.reg.EnabledApps(ctx, "tests", "excel")
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeNotFound, out)
	assert.Nil(t, names)

	names, out, err = f.reg.DisabledApps(ctx, "addin", "excel")
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeFound, out)
	assert.Empty(t, names)
}

func TestAppInfo(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	dir := testutil.WriteApp(t, f.addinRoot, "alpha", "excel")
	f.inventory(t)

	byName, out, err := f.reg.AppInfo(ctx, "addin", "alpha")
	require.NoError(t, err)
	require.Equal(t, model.OutcomeFound, out)
	assert.Equal(t, dir, byName.Path)
	assert.Equal(t, "addin", byName.Type)

	byPath, out, err := f.reg.AppInfoByPath(ctx, dir)
	require.NoError(t, err)
	require.Equal(t, model.OutcomeFound, out)
	assert.Equal(t, byName, byPath)

	_, out, err = f.reg.AppInfoByPath(ctx, f.addinRoot)
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeNotFound, out)
}

func TestAppDesc(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	testutil.WriteApp(t, f.addinRoot, "alpha", "excel")
	testutil.WriteBrokenApp(t, f.addinRoot, "broken")

	assert.Contains(t, f.reg.AppDesc(ctx, "addin", "alpha"), "Author: Test Author")
	assert.Empty(t, f.reg.AppDesc(ctx, "addin", "broken"))
	assert.Empty(t, f.reg.AppDesc(ctx, "addin", "ghost"))
	assert.Empty(t, f.reg.AppDesc(ctx, "tests", "alpha"))
}
