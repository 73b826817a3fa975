package storage

import (
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/scanforge/scan-service/internal/models"
)

// MemoryStorage implements Storage with in-process maps. It backs unit tests
// and lets the service boot without a reachable database.
type MemoryStorage struct {
	mu            sync.RWMutex
	files         map[string]models.File
	projects      map[string]models.Project
	scans         map[string]models.Scan
	activities    []models.Activity
	notifications map[string]models.Notification
	users         map[string]models.User
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		files:         make(map[string]models.File),
		projects:      make(map[string]models.Project),
		scans:         make(map[string]models.Scan),
		notifications: make(map[string]models.Notification),
		users:         make(map[string]models.User),
	}
}

func (m *MemoryStorage) SaveFile(f models.File) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[f.ID] = f
	return nil
}

func (m *MemoryStorage) GetFile(id string) (models.File, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[id]
	return f, ok
}

func (m *MemoryStorage) SaveProject(p models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[p.ID] = p
	return nil
}

func (m *MemoryStorage) GetProject(id string) (models.Project, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.projects[id]
	if ok {
		m.populateProject(&p)
	}
	return p, ok
}

func (m *MemoryStorage) FindProject(userID, id, slug string) (models.Project, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.projects {
		if p.UserID != userID {
			continue
		}
		if (id != "" && p.ID == id) || (id == "" && slug != "" && p.Slug == slug) {
			m.populateProject(&p)
			return p, true
		}
	}
	return models.Project{}, false
}

func (m *MemoryStorage) FindProjectPublic(id, slug string) (models.Project, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.projects {
		if (id != "" && p.ID == id) || (id == "" && slug != "" && p.Slug == slug) {
			m.populateProject(&p)
			return p, true
		}
	}
	return models.Project{}, false
}

func (m *MemoryStorage) FindProjectsForUser(userID string) ([]models.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Project, 0)
	for _, p := range m.projects {
		if p.UserID == userID {
			m.populateProject(&p)
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStorage) UpdateProject(id string, u ProjectUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return nil
	}
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.ThumbnailID != nil {
		p.ThumbnailID = *u.ThumbnailID
	}
	m.projects[id] = p
	return nil
}

func (m *MemoryStorage) DeleteProjectWithThumbnail(p models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ThumbnailID != "" {
		delete(m.files, p.ThumbnailID)
	}
	delete(m.projects, p.ID)
	return nil
}

func (m *MemoryStorage) ProjectSlugs(prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var slugs []string
	for _, p := range m.projects {
		if strings.HasPrefix(p.Slug, prefix) {
			slugs = append(slugs, p.Slug)
		}
	}
	return slugs, nil
}

func (m *MemoryStorage) SaveScan(s models.Scan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.InputFile, s.SplatFile, s.Project = nil, nil, nil
	m.scans[s.ID] = s
	return nil
}

func (m *MemoryStorage) GetScan(id string) (models.Scan, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.scans[id]
	if ok {
		m.populateScan(&s)
	}
	return s, ok
}

func (m *MemoryStorage) FindScan(userID, id, slug string) (models.Scan, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.scans {
		if s.UserID != userID {
			continue
		}
		if (id != "" && s.ID == id) || (id == "" && slug != "" && s.Slug == slug) {
			m.populateScan(&s)
			return s, true
		}
	}
	return models.Scan{}, false
}

func (m *MemoryStorage) FindScanPublic(id, slug string) (models.Scan, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.scans {
		if (id != "" && s.ID == id) || (id == "" && slug != "" && s.Slug == slug) {
			m.populateScan(&s)
			return s, true
		}
	}
	return models.Scan{}, false
}

func (m *MemoryStorage) FindScansForUser(userID string) ([]models.Scan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Scan, 0)
	for _, s := range m.scans {
		if s.UserID == userID {
			m.populateScan(&s)
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStorage) UpdateScan(id string, u ScanUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.scans[id]
	if !ok {
		return nil
	}
	if u.Name != nil {
		s.Name = *u.Name
	}
	if u.Status != nil {
		s.Status = *u.Status
	}
	if u.SplatFileID != nil {
		s.SplatFileID = *u.SplatFileID
	}
	m.scans[id] = s
	return nil
}

func (m *MemoryStorage) DeleteScanWithFiles(s models.Scan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, s.InputFileID)
	if s.SplatFileID != "" {
		delete(m.files, s.SplatFileID)
	}
	delete(m.scans, s.ID)
	return nil
}

func (m *MemoryStorage) ScanSlugs(prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var slugs []string
	for _, s := range m.scans {
		if strings.HasPrefix(s.Slug, prefix) {
			slugs = append(slugs, s.Slug)
		}
	}
	return slugs, nil
}

func (m *MemoryStorage) SaveActivity(a models.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activities = append(m.activities, a)
	return nil
}

func (m *MemoryStorage) FindActivities(userID string, q ActivityQuery) ([]models.Activity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Activity, 0)
	for _, a := range m.activities {
		if a.UserID != userID {
			continue
		}
		var meta models.ActivityMetadata
		_ = json.Unmarshal(a.Metadata, &meta)
		switch {
		case q.ProjectSlug != "":
			if meta.ProjectSlug != q.ProjectSlug {
				continue
			}
		case q.ScanSlug != "":
			if meta.ScanSlug != q.ScanSlug {
				continue
			}
		default:
			if a.CreatedAt.Before(q.Since) {
				continue
			}
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStorage) TruncateActivities() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activities = nil
	return nil
}

func (m *MemoryStorage) SaveNotification(n models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications[n.ID] = n
	return nil
}

func (m *MemoryStorage) MarkAllRead(userID string) ([]models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Notification, 0)
	for id, n := range m.notifications {
		if n.UserID != userID {
			continue
		}
		n.Read = true
		m.notifications[id] = n
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStorage) FindNotifications(userID string) ([]models.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Notification, 0)
	for _, n := range m.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStorage) SaveUser(u models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	return nil
}

func (m *MemoryStorage) GetUser(id string) (models.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok
}

// populateProject and populateScan attach referenced rows. Callers hold m.mu.
func (m *MemoryStorage) populateProject(p *models.Project) {
	if p.ThumbnailID != "" {
		if f, ok := m.files[p.ThumbnailID]; ok {
			p.Thumbnail = &f
		}
	}
}

func (m *MemoryStorage) populateScan(s *models.Scan) {
	if f, ok := m.files[s.InputFileID]; ok {
		s.InputFile = &f
	}
	if s.SplatFileID != "" {
		if f, ok := m.files[s.SplatFileID]; ok {
			s.SplatFile = &f
		}
	}
	if p, ok := m.projects[s.ProjectID]; ok {
		m.populateProject(&p)
		s.Project = &p
	}
}
