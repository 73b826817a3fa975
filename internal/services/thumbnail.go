package services

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path"
	"strings"
)

// Thumbnailer produces a preview URL for a stored asset. It never fails:
// when no preview can be made the original URL comes back unchanged.
type Thumbnailer interface {
	Generate(url, mimeType, key string) string
}

// ThumbnailGenerator extracts a first frame from videos with ffmpeg and
// passes images through untouched.
type ThumbnailGenerator struct {
	Storage    *MinioService
	FFmpegPath string
}

func NewThumbnailGenerator(storage *MinioService, ffmpegPath string) *ThumbnailGenerator {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &ThumbnailGenerator{Storage: storage, FFmpegPath: ffmpegPath}
}

func (g *ThumbnailGenerator) Generate(url, mimeType, key string) string {
	if strings.Contains(mimeType, "image") {
		return url
	}

	thumbURL, err := g.extractFrame(key)
	if err != nil || thumbURL == "" {
		if err != nil {
			log.Printf("[THUMB] frame extraction failed for %s, falling back to source: %v", key, err)
		}
		return url
	}
	return thumbURL
}

// extractFrame downloads the video, grabs its first frame and stores it under
// thumbs/ as a public object.
func (g *ThumbnailGenerator) extractFrame(key string) (string, error) {
	if g.Storage == nil {
		return "", fmt.Errorf("object storage not available")
	}

	tempDir, err := os.MkdirTemp("", "thumb-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(tempDir)

	src := path.Join(tempDir, "source")
	if err := g.Storage.DownloadFile(key, src); err != nil {
		return "", fmt.Errorf("download for thumbnailing: %v", err)
	}

	frame := path.Join(tempDir, "frame.jpg")
	cmd := exec.Command(g.FFmpegPath, "-y", "-i", src, "-frames:v", "1", "-q:v", "4", frame)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("ffmpeg: %v: %s", err, out)
	}

	if fi, err := os.Stat(frame); err != nil || fi.Size() == 0 {
		return "", nil
	}

	base := strings.TrimSuffix(path.Base(key), path.Ext(key))
	thumbKey := "thumbs/" + base + ".jpg"
	if err := g.Storage.UploadFile(frame, thumbKey, "image/jpeg"); err != nil {
		return "", fmt.Errorf("upload thumbnail: %v", err)
	}
	if err := g.Storage.EnablePublicAccess(thumbKey); err != nil {
		log.Printf("[THUMB] could not publish %s: %v", thumbKey, err)
	}

	return g.Storage.ObjectURL(thumbKey), nil
}
