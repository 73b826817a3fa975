package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeneratePassesImagesThrough(t *testing.T) {
	g := NewThumbnailGenerator(nil, "")
	url := "https://cdn.test/scans/photo.jpg"
	assert.Equal(t, url, g.Generate(url, "image/jpeg", "photo.jpg"))
}

func TestGenerateFallsBackWithoutStorage(t *testing.T) {
	g := NewThumbnailGenerator(nil, "")
	url := "https://cdn.test/scans/clip.mp4"
	assert.Equal(t, url, g.Generate(url, "video/mp4", "clip.mp4"),
		"a failed extraction returns the source URL")
}

func TestNewThumbnailGeneratorDefaultsFFmpegPath(t *testing.T) {
	g := NewThumbnailGenerator(nil, "")
	assert.Equal(t, "ffmpeg", g.FFmpegPath)
}
