package store

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// BuildRecord describes one finished deck build
type BuildRecord struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	DeckSize    int       `json:"deck size"`
	Errors      int       `json:"errors"`
	Images      int       `json:"images"`
	ArchivePath string    `json:"-"`
	ArchiveSize int64     `json:"archive size"`
	CreatedAt   time.Time `json:"created"`
}

// MemoryStore holds finished builds in memory, keyed by deck name
type MemoryStore struct {
	mu     sync.RWMutex
	builds map[string]*BuildRecord
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		builds: make(map[string]*BuildRecord),
	}
}

// SaveBuild records a build. A rebuild under the same deck name replaces the
// earlier record, matching the archive on disk.
func (s *MemoryStore) SaveBuild(rec *BuildRecord) error {
	if rec == nil || rec.Name == "" {
		return fmt.Errorf("build record needs a deck name")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.builds[rec.Name] = rec
	return nil
}

// GetBuild retrieves a build by deck name
func (s *MemoryStore) GetBuild(name string) (*BuildRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, exists := s.builds[name]
	if !exists {
		return nil, fmt.Errorf("deck %s not found", name)
	}

	return rec, nil
}

// ListBuilds returns every build, newest first
func (s *MemoryStore) ListBuilds() []*BuildRecord {
	s.mu.RLock()
	out := make([]*BuildRecord, 0, len(s.builds))
	for _, rec := range s.builds {
		out = append(out, rec)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Name < out[j].Name
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Count returns the number of stored builds
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.builds)
}
