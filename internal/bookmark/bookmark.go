// Package bookmark persists the questions a user has saved for later. The
// whole list is stored as one JSON array under a single key of an injected
// key-value backend; the last writer wins.
package bookmark

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/interviewace/api/internal/interview"
)

// Key is the storage key for the anonymous, unscoped list.
const Key = "bookmarkedQuestions"

// ErrNotFound is returned by a KV when the key has no value.
var ErrNotFound = errors.New("key not found")

// KV is a string key-value store.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// KeyFor scopes the bookmark key to one owner.
func KeyFor(owner string) string {
	if owner = strings.TrimSpace(owner); owner == "" {
		return Key
	}
	return Key + ":" + owner
}

// Store loads and replaces one bookmark list.
type Store struct {
	kv  KV
	key string
}

func New(kv KV, key string) *Store {
	return &Store{kv: kv, key: key}
}

// Load returns the saved questions. A missing key is an empty list.
func (s *Store) Load(ctx context.Context) ([]interview.Question, error) {
	raw, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		return []interview.Question{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading bookmarks: %w", err)
	}

	var qs []interview.Question
	if err := json.Unmarshal([]byte(raw), &qs); err != nil {
		return nil, fmt.Errorf("decoding bookmarks: %w", err)
	}
	if qs == nil {
		qs = []interview.Question{}
	}
	return qs, nil
}

// Replace overwrites the saved list.
func (s *Store) Replace(ctx context.Context, qs []interview.Question) error {
	if qs == nil {
		qs = []interview.Question{}
	}
	data, err := json.Marshal(qs)
	if err != nil {
		return fmt.Errorf("encoding bookmarks: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, string(data)); err != nil {
		return fmt.Errorf("saving bookmarks: %w", err)
	}
	return nil
}

// Toggle adds q if it is not saved and removes it otherwise. It reports
// whether q is saved afterwards.
func (s *Store) Toggle(ctx context.Context, q interview.Question) (bool, error) {
	qs, err := s.Load(ctx)
	if err != nil {
		return false, err
	}

	if i := indexOf(qs, q.ID); i >= 0 {
		qs = append(qs[:i], qs[i+1:]...)
		return false, s.Replace(ctx, qs)
	}
	return true, s.Replace(ctx, append(qs, q))
}

// Remove drops the question with the given id. Removing an unsaved id is
// not an error.
func (s *Store) Remove(ctx context.Context, id string) error {
	qs, err := s.Load(ctx)
	if err != nil {
		return err
	}
	i := indexOf(qs, id)
	if i < 0 {
		return nil
	}
	return s.Replace(ctx, append(qs[:i], qs[i+1:]...))
}

// Clear removes every saved question.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("clearing bookmarks: %w", err)
	}
	return nil
}

func (s *Store) Contains(ctx context.Context, id string) (bool, error) {
	qs, err := s.Load(ctx)
	if err != nil {
		return false, err
	}
	return indexOf(qs, id) >= 0, nil
}

func indexOf(qs []interview.Question, id string) int {
	for i, q := range qs {
		if q.ID == id {
			return i
		}
	}
	return -1
}
