package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/scanforge/scan-service/internal/models"
	"github.com/scanforge/scan-service/internal/storage"
)

// busEvent records one published event for assertions.
type busEvent struct {
	Subject string
	Payload any
}

type fakeBus struct {
	events []busEvent
	err    error
}

func (f *fakeBus) Publish(subject string, payload any) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, busEvent{Subject: subject, Payload: payload})
	return nil
}

func (f *fakeBus) published(subject string) []busEvent {
	var out []busEvent
	for _, ev := range f.events {
		if ev.Subject == subject {
			out = append(out, ev)
		}
	}
	return out
}

type fakeGateway struct {
	objects map[string]ObjectInfo
	removed []string
	public  []string
	statErr error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{objects: make(map[string]ObjectInfo)}
}

func (g *fakeGateway) StatObject(key string) (ObjectInfo, error) {
	if g.statErr != nil {
		return ObjectInfo{}, g.statErr
	}
	info, ok := g.objects[key]
	if !ok {
		return ObjectInfo{}, fmt.Errorf("object %s not found", key)
	}
	return info, nil
}

func (g *fakeGateway) RemoveObject(key string) error {
	g.removed = append(g.removed, key)
	delete(g.objects, key)
	return nil
}

func (g *fakeGateway) EnablePublicAccess(key string) error {
	g.public = append(g.public, key)
	return nil
}

func (g *fakeGateway) ObjectURL(key string) string {
	return "https://cdn.test/scans/" + key
}

func (g *fakeGateway) Bucket() string {
	return "scans"
}

// fakeThumbnailer returns a fixed thumbnail, or the input URL when unset.
type fakeThumbnailer struct {
	result string
}

func (f *fakeThumbnailer) Generate(url, mimeType, key string) string {
	if f.result == "" {
		return url
	}
	return f.result
}

func seedFile(store storage.FileStore, key string) models.File {
	f := models.File{
		ID:        uuid.New().String(),
		Key:       key,
		Bucket:    "scans",
		URL:       "https://cdn.test/scans/" + key,
		Name:      key,
		MimeType:  "video/mp4",
		Type:      models.FileTypeVideo,
		CreatedAt: time.Now().UTC(),
	}
	if err := store.SaveFile(f); err != nil {
		panic(err)
	}
	return f
}

func seedProject(store storage.ProjectStore, userID, name string) models.Project {
	p := models.Project{
		ID:        uuid.New().String(),
		Name:      name,
		Slug:      Slugify(name),
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	if err := store.SaveProject(p); err != nil {
		panic(err)
	}
	return p
}
