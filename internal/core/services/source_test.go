package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ingesta-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ingesta-cli/internal/core/domain"
)

func newTestSourceService() (*SourceService, *memory.SourceStore, *fakeFactory) {
	store := memory.NewSourceStore()
	factory := newFakeFactory()
	// Config validation builds a probe adapter under this id.
	factory.adapters["validate"] = &fakeAdapter{}
	return NewSourceService(store, factory), store, factory
}

func validSource(name string) domain.Source {
	return domain.Source{
		Name:    name,
		Type:    domain.SourceTypeSpreadsheet,
		Enabled: true,
		Settings: map[string]string{
			"path": "/data/links.xlsx",
		},
	}
}

func TestNewSourceService(t *testing.T) {
	service, _, _ := newTestSourceService()

	require.NotNil(t, service)
}

func TestSourceService_Add(t *testing.T) {
	service, store, _ := newTestSourceService()
	ctx := context.Background()

	err := service.Add(ctx, validSource("reports"))

	require.NoError(t, err)
	saved, err := store.GetByName(ctx, "reports")
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID, "a missing ID is generated")
	assert.False(t, saved.CreatedAt.IsZero())
	assert.Equal(t, saved.CreatedAt, saved.UpdatedAt)
}

func TestSourceService_Add_KeepsGivenID(t *testing.T) {
	service, store, _ := newTestSourceService()
	ctx := context.Background()

	source := validSource("reports")
	source.ID = "src-fixed"
	require.NoError(t, service.Add(ctx, source))

	saved, err := store.Get(ctx, "src-fixed")
	require.NoError(t, err)
	assert.Equal(t, "reports", saved.Name)
}

func TestSourceService_Add_EmptyName(t *testing.T) {
	service, _, _ := newTestSourceService()

	err := service.Add(context.Background(), domain.Source{Type: domain.SourceTypeSpreadsheet})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSourceService_Add_UnknownType(t *testing.T) {
	service, _, _ := newTestSourceService()

	source := validSource("reports")
	source.Type = "ftp"
	err := service.Add(context.Background(), source)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestSourceService_Add_DuplicateName(t *testing.T) {
	service, _, _ := newTestSourceService()
	ctx := context.Background()
	require.NoError(t, service.Add(ctx, validSource("reports")))

	err := service.Add(ctx, validSource("reports"))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestSourceService_Add_InvalidSettings(t *testing.T) {
	service, store, factory := newTestSourceService()
	factory.createErr = errors.New("dsn: missing host")
	ctx := context.Background()

	err := service.Add(ctx, validSource("reports"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing host")
	_, getErr := store.GetByName(ctx, "reports")
	assert.ErrorIs(t, getErr, domain.ErrNotFound, "a rejected source is not saved")
}

func TestSourceService_Get_ByIDAndByName(t *testing.T) {
	service, _, _ := newTestSourceService()
	ctx := context.Background()
	source := validSource("reports")
	source.ID = "src-1"
	require.NoError(t, service.Add(ctx, source))

	byID, err := service.Get(ctx, "src-1")
	require.NoError(t, err)
	assert.Equal(t, "reports", byID.Name)

	byName, err := service.Get(ctx, "reports")
	require.NoError(t, err)
	assert.Equal(t, "src-1", byName.ID)
}

func TestSourceService_Get_NotFound(t *testing.T) {
	service, _, _ := newTestSourceService()

	_, err := service.Get(context.Background(), "nonexistent")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSourceService_List(t *testing.T) {
	service, _, _ := newTestSourceService()
	ctx := context.Background()
	require.NoError(t, service.Add(ctx, validSource("reports")))
	require.NoError(t, service.Add(ctx, validSource("wiki")))

	sources, err := service.List(ctx)

	require.NoError(t, err)
	assert.Len(t, sources, 2)
}

func TestSourceService_Update(t *testing.T) {
	service, _, _ := newTestSourceService()
	ctx := context.Background()
	source := validSource("reports")
	source.ID = "src-1"
	require.NoError(t, service.Add(ctx, source))
	added, err := service.Get(ctx, "src-1")
	require.NoError(t, err)

	updated := *added
	updated.Settings = map[string]string{"path": "/data/other.xlsx"}
	require.NoError(t, service.Update(ctx, updated))

	got, err := service.Get(ctx, "src-1")
	require.NoError(t, err)
	assert.Equal(t, "/data/other.xlsx", got.Settings["path"])
	assert.Equal(t, added.CreatedAt, got.CreatedAt, "creation time survives updates")
	assert.False(t, got.UpdatedAt.Before(added.UpdatedAt))
}

func TestSourceService_Update_MissingID(t *testing.T) {
	service, _, _ := newTestSourceService()

	err := service.Update(context.Background(), validSource("reports"))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSourceService_Update_NotFound(t *testing.T) {
	service, _, _ := newTestSourceService()

	source := validSource("reports")
	source.ID = "src-missing"
	err := service.Update(context.Background(), source)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSourceService_Remove(t *testing.T) {
	service, _, _ := newTestSourceService()
	ctx := context.Background()
	require.NoError(t, service.Add(ctx, validSource("reports")))

	require.NoError(t, service.Remove(ctx, "reports"))

	_, err := service.Get(ctx, "reports")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSourceService_Remove_NotFound(t *testing.T) {
	service, _, _ := newTestSourceService()

	err := service.Remove(context.Background(), "nonexistent")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSourceService_SetEnabled(t *testing.T) {
	service, _, _ := newTestSourceService()
	ctx := context.Background()
	require.NoError(t, service.Add(ctx, validSource("reports")))

	require.NoError(t, service.SetEnabled(ctx, "reports", false))

	got, err := service.Get(ctx, "reports")
	require.NoError(t, err)
	assert.False(t, got.Enabled)

	require.NoError(t, service.SetEnabled(ctx, "reports", true))
	got, err = service.Get(ctx, "reports")
	require.NoError(t, err)
	assert.True(t, got.Enabled)
}

func TestSourceService_SetEnabled_NoChange(t *testing.T) {
	service, _, _ := newTestSourceService()
	ctx := context.Background()
	require.NoError(t, service.Add(ctx, validSource("reports")))
	before, err := service.Get(ctx, "reports")
	require.NoError(t, err)

	require.NoError(t, service.SetEnabled(ctx, "reports", true))

	after, err := service.Get(ctx, "reports")
	require.NoError(t, err)
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt, "a no-op toggle does not touch the source")
}

func TestSourceService_ValidateConfig(t *testing.T) {
	service, _, factory := newTestSourceService()

	err := service.ValidateConfig(context.Background(), domain.SourceTypeSpreadsheet, map[string]string{"path": "x"})
	require.NoError(t, err)

	probe := factory.adapters["validate"].(*fakeAdapter)
	assert.True(t, probe.closed, "the probe adapter is closed after validation")
}

func TestSourceService_ValidateConfig_Fails(t *testing.T) {
	service, _, factory := newTestSourceService()
	factory.createErr = errors.New("query_file: no such file")

	err := service.ValidateConfig(context.Background(), domain.SourceTypeDatabase, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such file")
}
