package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scanforge/scan-service/internal/models"
	"github.com/scanforge/scan-service/internal/storage"
)

func newIngest(gateway *fakeGateway, thumbs Thumbnailer) (*IngestService, *storage.MemoryStorage) {
	store := storage.NewMemoryStorage()
	if thumbs == nil {
		thumbs = &fakeThumbnailer{}
	}
	return &IngestService{Files: store, Objects: gateway, Thumbnails: thumbs}, store
}

func completed(key string, meta map[string]string) CompletedUpload {
	return CompletedUpload{ID: key, Key: key, MetaData: meta}
}

func TestCompleteRejectsMissingFiletypeMetadata(t *testing.T) {
	gateway := newFakeGateway()
	gateway.objects["abc.mp4"] = ObjectInfo{Key: "abc.mp4", Size: 10, ContentType: "video/mp4"}
	ingest, _ := newIngest(gateway, nil)

	_, err := ingest.Complete(completed("abc.mp4", map[string]string{}), "video/mp4")

	require.ErrorIs(t, err, ErrInvalidFiletype)
	assert.Equal(t, []string{"abc.mp4"}, gateway.removed, "orphaned object must be deleted")
}

func TestCompleteRejectsUnresolvableMimeType(t *testing.T) {
	gateway := newFakeGateway()
	gateway.objects["doc.pdf"] = ObjectInfo{Key: "doc.pdf", Size: 10, ContentType: "application/pdf"}
	ingest, store := newIngest(gateway, nil)

	_, err := ingest.Complete(completed("doc.pdf", map[string]string{"filetype": "application/pdf"}), "application/pdf")

	require.ErrorIs(t, err, ErrInvalidFiletype)
	assert.Equal(t, []string{"doc.pdf"}, gateway.removed)
	_, ok := store.GetFile("doc.pdf")
	assert.False(t, ok)
}

func TestCompleteRejectsMalformedKey(t *testing.T) {
	gateway := newFakeGateway()
	ingest, _ := newIngest(gateway, nil)

	_, err := ingest.Complete(completed("/orphan.mp4", map[string]string{"filetype": "video/mp4"}), "video/mp4")

	require.ErrorIs(t, err, ErrInvalidFiletype)
	assert.Equal(t, []string{"/orphan.mp4"}, gateway.removed)
}

func TestCompleteClassifiesByMimeType(t *testing.T) {
	cases := []struct {
		mime string
		want models.FileType
	}{
		{"video/mp4", models.FileTypeVideo},
		{"video/quicktime", models.FileTypeVideo},
		{"image/png", models.FileTypeImage},
		{"image/jpeg", models.FileTypeImage},
	}
	for _, tc := range cases {
		gateway := newFakeGateway()
		gateway.objects["a.bin"] = ObjectInfo{Key: "a.bin", Size: 1, ContentType: tc.mime}
		ingest, _ := newIngest(gateway, nil)

		file, err := ingest.Complete(completed("a.bin", map[string]string{"filetype": tc.mime}), tc.mime)

		require.NoError(t, err, "mime %s", tc.mime)
		assert.Equal(t, tc.want, file.Type, "mime %s", tc.mime)
	}
}

func TestCompletePublishesBeforePersisting(t *testing.T) {
	gateway := newFakeGateway()
	gateway.objects["vid.mp4"] = ObjectInfo{Key: "vid.mp4", Size: 42, ContentType: "video/mp4"}
	ingest, store := newIngest(gateway, &fakeThumbnailer{result: "https://cdn.test/scans/thumbs/vid.jpg"})

	file, err := ingest.Complete(
		completed("vid.mp4", map[string]string{"filetype": "video/mp4", "filename": "holiday.mp4"}),
		"video/mp4")

	require.NoError(t, err)
	assert.Equal(t, []string{"vid.mp4"}, gateway.public, "object must be public before the row exists")
	assert.Equal(t, "https://cdn.test/scans/vid.mp4", file.URL)
	assert.Equal(t, "https://cdn.test/scans/thumbs/vid.jpg", file.Thumbnail)
	assert.Equal(t, "holiday.mp4", file.Name)
	assert.Equal(t, "scans", file.Bucket)

	persisted, ok := store.GetFile(file.ID)
	require.True(t, ok)
	assert.Equal(t, file.Key, persisted.Key)
}

func TestCompleteThumbnailFailureDegradesToSourceURL(t *testing.T) {
	gateway := newFakeGateway()
	gateway.objects["vid.mp4"] = ObjectInfo{Key: "vid.mp4", Size: 42, ContentType: "video/mp4"}
	// fakeThumbnailer with no result behaves like a failed extraction
	ingest, _ := newIngest(gateway, &fakeThumbnailer{})

	file, err := ingest.Complete(completed("vid.mp4", map[string]string{"filetype": "video/mp4"}), "video/mp4")

	require.NoError(t, err)
	assert.Equal(t, file.URL, file.Thumbnail)
}

func TestCompleteStatFailureDoesNotPersist(t *testing.T) {
	gateway := newFakeGateway()
	gateway.statErr = assert.AnError
	ingest, _ := newIngest(gateway, nil)

	_, err := ingest.Complete(completed("vid.mp4", map[string]string{"filetype": "video/mp4"}), "video/mp4")

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidFiletype)
	assert.Empty(t, gateway.removed, "stat failures are not validation rejections")
}
