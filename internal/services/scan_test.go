package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scanforge/scan-service/internal/models"
	"github.com/scanforge/scan-service/internal/storage"
)

func newScanService() (*ScanService, *storage.MemoryStorage, *fakeBus, *fakeGateway) {
	store := storage.NewMemoryStorage()
	bus := &fakeBus{}
	gateway := newFakeGateway()
	svc := &ScanService{
		Files:    store,
		Projects: store,
		Scans:    store,
		Objects:  gateway,
		Bus:      bus,
	}
	return svc, store, bus, gateway
}

func TestCreateScanRejectsMissingInputFile(t *testing.T) {
	svc, store, bus, _ := newScanService()
	project := seedProject(store, "user-1", "Apartment")

	_, err := svc.Create(CreateScanInput{
		Name:        "Sofa",
		ProjectID:   project.ID,
		UserID:      "user-1",
		InputFileID: "does-not-exist",
	})

	require.ErrorIs(t, err, ErrFileNotFound)
	scans, _ := store.FindScansForUser("user-1")
	assert.Empty(t, scans, "no scan row on rejection")
	assert.Empty(t, bus.events, "no event on rejection")
}

func TestCreateScanRejectsForeignProject(t *testing.T) {
	svc, store, bus, _ := newScanService()
	file := seedFile(store, "in.mp4")
	project := seedProject(store, "someone-else", "Apartment")

	_, err := svc.Create(CreateScanInput{
		Name:        "Sofa",
		ProjectID:   project.ID,
		UserID:      "user-1",
		InputFileID: file.ID,
	})

	require.ErrorIs(t, err, ErrProjectNotFound)
	assert.Empty(t, bus.events)
}

func TestCreateScanEmitsProcessingEventOnce(t *testing.T) {
	svc, store, bus, _ := newScanService()
	file := seedFile(store, "in.mp4")
	project := seedProject(store, "user-1", "Apartment")

	scan, err := svc.Create(CreateScanInput{
		Name:        "Sofa",
		ProjectID:   project.ID,
		UserID:      "user-1",
		InputFileID: file.ID,
	})
	require.NoError(t, err)

	events := bus.published(SubjectScanProcess)
	require.Len(t, events, 1)
	payload, ok := events[0].Payload.(models.ScanProcessEvent)
	require.True(t, ok)
	assert.Equal(t, scan.ID, payload.ScanID)
	assert.Equal(t, file.Key, payload.InputFile.Key)
	assert.Equal(t, file.Bucket, payload.InputFile.Bucket)

	assert.Equal(t, models.ScanStatusPreparing, scan.Status)
	require.NotNil(t, scan.InputFile, "create returns the fully populated scan")
	assert.Equal(t, file.ID, scan.InputFile.ID)
	require.NotNil(t, scan.Project)
	assert.Equal(t, project.ID, scan.Project.ID)
}

func TestCreateScanResolvesSlugCollisions(t *testing.T) {
	svc, store, _, _ := newScanService()
	project := seedProject(store, "user-1", "Apartment")

	var slugs []string
	for i := 0; i < 3; i++ {
		file := seedFile(store, "in.mp4")
		scan, err := svc.Create(CreateScanInput{
			Name:        "Sofa",
			ProjectID:   project.ID,
			UserID:      "user-1",
			InputFileID: file.ID,
		})
		require.NoError(t, err)
		slugs = append(slugs, scan.Slug)
	}

	assert.Equal(t, []string{"sofa", "sofa-1", "sofa-2"}, slugs)
}

func TestDeleteScanCascadesBothFiles(t *testing.T) {
	svc, store, _, gateway := newScanService()
	input := seedFile(store, "in.mp4")
	splat := seedFile(store, "out.splat")
	project := seedProject(store, "user-1", "Apartment")

	scan, err := svc.Create(CreateScanInput{
		Name:        "Sofa",
		ProjectID:   project.ID,
		UserID:      "user-1",
		InputFileID: input.ID,
	})
	require.NoError(t, err)
	require.NoError(t, store.UpdateScan(scan.ID, storage.ScanUpdate{SplatFileID: &splat.ID}))

	require.NoError(t, svc.Delete("user-1", scan.ID))

	_, ok := store.GetFile(input.ID)
	assert.False(t, ok, "input file row deleted")
	_, ok = store.GetFile(splat.ID)
	assert.False(t, ok, "splat file row deleted")
	scans, _ := store.FindScansForUser("user-1")
	assert.Empty(t, scans)
	assert.ElementsMatch(t, []string{"in.mp4", "out.splat"}, gateway.removed)
}

func TestDeleteScanUnknownID(t *testing.T) {
	svc, _, _, _ := newScanService()
	assert.ErrorIs(t, svc.Delete("user-1", "missing"), ErrScanNotFound)
}

func TestFindOneRequiresIdentifier(t *testing.T) {
	svc, _, _, _ := newScanService()
	_, err := svc.FindOne("user-1", "", "")
	assert.ErrorIs(t, err, ErrMissingIdentifier)
}

func TestFindOneScopesByUser(t *testing.T) {
	svc, store, _, _ := newScanService()
	file := seedFile(store, "in.mp4")
	project := seedProject(store, "user-1", "Apartment")
	scan, err := svc.Create(CreateScanInput{
		Name:        "Sofa",
		ProjectID:   project.ID,
		UserID:      "user-1",
		InputFileID: file.ID,
	})
	require.NoError(t, err)

	_, err = svc.FindOne("intruder", scan.ID, "")
	assert.ErrorIs(t, err, ErrScanNotFound)

	found, err := svc.FindOne("user-1", "", scan.Slug)
	require.NoError(t, err)
	assert.Equal(t, scan.ID, found.ID)
}

func TestFindPublicIgnoresOwnership(t *testing.T) {
	svc, store, _, _ := newScanService()
	file := seedFile(store, "in.mp4")
	project := seedProject(store, "user-1", "Apartment")
	scan, err := svc.Create(CreateScanInput{
		Name:        "Sofa",
		ProjectID:   project.ID,
		UserID:      "user-1",
		InputFileID: file.ID,
	})
	require.NoError(t, err)

	found, err := svc.FindPublic("", scan.Slug)
	require.NoError(t, err)
	assert.Equal(t, scan.ID, found.ID)
}

func TestUpdateScanPartialFields(t *testing.T) {
	svc, store, _, _ := newScanService()
	file := seedFile(store, "in.mp4")
	project := seedProject(store, "user-1", "Apartment")
	scan, err := svc.Create(CreateScanInput{
		Name:        "Sofa",
		ProjectID:   project.ID,
		UserID:      "user-1",
		InputFileID: file.ID,
	})
	require.NoError(t, err)

	name := "Sectional"
	updated, err := svc.Update("user-1", scan.ID, storage.ScanUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Sectional", updated.Name)
	assert.Equal(t, scan.Slug, updated.Slug, "renames do not rewrite the slug")
	assert.Equal(t, models.ScanStatusPreparing, updated.Status)
}
