// Package filestore keeps the allow-list in a local JSON file: an array of
// Telegram user IDs, rewritten wholesale on every change. The file is the source
// of truth, so several processes (a running bot and the users CLI) can share it.
package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"telegram-upi-lookup/internal/domain"
	"telegram-upi-lookup/internal/domain/model"
	"telegram-upi-lookup/internal/domain/ports/repository"
)

var _ repository.AllowListRepository = (*AllowList)(nil)

// AllowList is a mutex-guarded in-memory copy of the set stored at path.
// Mutations re-read the file first; reads re-read it when it changed on disk.
// The file format is a bare JSON array of integers so it stays compatible with
// hand-edited files; who added an entry and when is kept in memory only.
type AllowList struct {
	mu    sync.Mutex
	path  string
	users map[int64]*model.AuthorizedUser
	seen  os.FileInfo
}

// Open loads path, treating a missing file as an empty list.
func Open(path string) (*AllowList, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	s := &AllowList{path: path, users: make(map[int64]*model.AuthorizedUser)}
	if err := s.reloadLocked(true); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *AllowList) Path() string { return s.path }

func (s *AllowList) Add(_ context.Context, _ repository.Tx, u *model.AuthorizedUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.reloadLocked(true); err != nil {
		return err
	}
	if _, ok := s.users[u.UserID]; ok {
		return domain.ErrAlreadyExists
	}
	s.users[u.UserID] = u
	if err := s.saveLocked(); err != nil {
		delete(s.users, u.UserID)
		return err
	}
	return nil
}

func (s *AllowList) Remove(_ context.Context, _ repository.Tx, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.reloadLocked(true); err != nil {
		return err
	}
	prev, ok := s.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	delete(s.users, userID)
	if err := s.saveLocked(); err != nil {
		s.users[userID] = prev
		return err
	}
	return nil
}

// Contains keeps answering from the last good copy if the file cannot be re-read.
func (s *AllowList) Contains(_ context.Context, _ repository.Tx, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.reloadLocked(false)
	_, ok := s.users[userID]
	return ok, nil
}

// List returns entries ordered by user ID.
func (s *AllowList) List(_ context.Context, _ repository.Tx) ([]*model.AuthorizedUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.reloadLocked(false); err != nil {
		return nil, err
	}

	out := make([]*model.AuthorizedUser, 0, len(s.users))
	for _, u := range s.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// reloadLocked replaces the in-memory set with the file's content. Unless force
// is set it skips the read when the file is the one seen last. Entries still
// present keep their in-memory metadata; new ones are stamped with the file's
// modification time. A missing file is an empty list.
func (s *AllowList) reloadLocked(force bool) error {
	info, err := os.Stat(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.users = make(map[int64]*model.AuthorizedUser)
			s.seen = nil
			return nil
		}
		return fmt.Errorf("reading allow-list: %w", err)
	}
	if !force && s.unchanged(info) {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("reading allow-list: %w", err)
	}
	var ids []int64
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := json.Unmarshal(data, &ids); err != nil {
			return fmt.Errorf("parsing allow-list %s: %w", s.path, err)
		}
	}

	loadedAt := info.ModTime().UTC()
	users := make(map[int64]*model.AuthorizedUser, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			users[id] = u
			continue
		}
		users[id] = &model.AuthorizedUser{UserID: id, AddedAt: loadedAt}
	}
	s.users = users
	s.seen = info
	return nil
}

// unchanged reports whether info describes the same file version as the last
// load. saveLocked renames a fresh file into place, so every save changes the inode.
func (s *AllowList) unchanged(info os.FileInfo) bool {
	return s.seen != nil &&
		os.SameFile(s.seen, info) &&
		s.seen.Size() == info.Size() &&
		s.seen.ModTime().Equal(info.ModTime())
}

// saveLocked writes the sorted ID array to a temp file in the same directory and
// renames it over the target, so readers never observe a half-written file.
func (s *AllowList) saveLocked() error {
	ids := make([]int64, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	data, err := json.MarshalIndent(ids, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding allow-list: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".allowlist-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing allow-list: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing allow-list: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing allow-list: %w", err)
	}
	if info, err := os.Stat(s.path); err == nil {
		s.seen = info
	}
	return nil
}
