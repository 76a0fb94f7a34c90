// Package storage implements the durable per-user link collection.
// The whole store lives in a single JSON file keyed by user identity and is
// rewritten on every mutation; the in-memory map is the source of truth for reads.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// Store keeps every user's saved links in memory and flushes the full
// collection to a JSON file on each mutation. One store-wide lock serializes
// mutations because persistence is a single-file read-modify-write.
type Store struct {
	mu    sync.RWMutex
	path  string
	links map[string][]LinkRecord
	log   *zap.Logger
}

// NewStore loads the links file at path. A missing or corrupt file yields an
// empty store rather than an error; data integrity problems are only fatal on write.
func NewStore(path string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{
		path:  path,
		links: make(map[string][]LinkRecord),
		log:   log,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("links file unreadable, starting empty", zap.String("path", path), zap.Error(err))
		}
		return s
	}
	if err := json.Unmarshal(data, &s.links); err != nil {
		log.Warn("links file corrupt, starting empty", zap.String("path", path), zap.Error(err))
		s.links = make(map[string][]LinkRecord)
	}
	return s
}

// UserLinks returns a snapshot of the user's saved links in insertion order.
// The returned slice is a copy; callers may not mutate store state through it.
func (s *Store) UserLinks(userID string) []LinkRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	links := s.links[userID]
	out := make([]LinkRecord, len(links))
	copy(out, links)
	return out
}

// AddLink appends a record to the user's collection. It fails with
// ErrDuplicateLink when the original URL is already saved for that user and
// evicts the oldest record first when the collection is full. The mutation is
// visible only after a successful flush.
func (s *Store) AddLink(userID string, rec LinkRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.links[userID]
	for _, l := range current {
		if l.OriginalURL == rec.OriginalURL {
			return ErrDuplicateLink
		}
	}

	next := make([]LinkRecord, 0, len(current)+1)
	next = append(next, current...)
	if len(next) >= MaxLinksPerUser {
		next = next[len(next)-MaxLinksPerUser+1:]
	}
	next = append(next, rec)

	return s.commit(userID, next)
}

// DeleteLink removes the record at index, preserving the relative order of the rest.
func (s *Store) DeleteLink(userID string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.links[userID]
	if index < 0 || index >= len(current) {
		return ErrLinkNotFound
	}

	next := make([]LinkRecord, 0, len(current)-1)
	next = append(next, current[:index]...)
	next = append(next, current[index+1:]...)

	return s.commit(userID, next)
}

// RenameLink overwrites the title of the record at index. The title is
// trimmed and capped at MaxTitleLen runes before being stored.
func (s *Store) RenameLink(userID string, index int, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.links[userID]
	if index < 0 || index >= len(current) {
		return ErrLinkNotFound
	}
	title = TruncateTitle(title)
	if title == "" {
		return ErrEmptyTitle
	}

	next := make([]LinkRecord, len(current))
	copy(next, current)
	next[index].Title = title

	return s.commit(userID, next)
}

// commit flushes the store with the user's collection replaced by next and
// swaps it into the visible map only after the flush succeeded.
// Callers must hold the write lock.
func (s *Store) commit(userID string, next []LinkRecord) error {
	snapshot := make(map[string][]LinkRecord, len(s.links)+1)
	for uid, links := range s.links {
		snapshot[uid] = links
	}
	if len(next) == 0 {
		delete(snapshot, userID)
	} else {
		snapshot[userID] = next
	}

	if err := s.flush(snapshot); err != nil {
		return fmt.Errorf("persist links: %w", err)
	}
	s.links = snapshot
	return nil
}

// flush writes the whole collection to a temporary file and atomically
// replaces the links file, so a crash never leaves a half-written file.
func (s *Store) flush(links map[string][]LinkRecord) error {
	data, err := json.MarshalIndent(links, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, s.path)
}
