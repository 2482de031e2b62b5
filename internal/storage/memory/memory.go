// Package memory is an in-process implementation of storage.Storage.
// Fail* hooks let callers inject per-call failures.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/princekumarofficial/media-migration/internal/storage"
	"github.com/princekumarofficial/media-migration/internal/types"
	"github.com/princekumarofficial/media-migration/internal/types/media"
)

type Store struct {
	mu     sync.Mutex
	media  map[string]media.MediaRecord
	slides map[string]types.Slide

	FailListMedia  error
	FailListSlides error
	FailInsert     func(rec media.MediaRecord) error
	FailDelete     func(id string) error
	FailClear      func(value string) error
	FailSetSlide   func(slideID string) error
}

func New() *Store {
	return &Store{
		media:  make(map[string]media.MediaRecord),
		slides: make(map[string]types.Slide),
	}
}

// Seed stores records and slides as-is, bypassing failure hooks.
func (s *Store) Seed(records []media.MediaRecord, slides []types.Slide) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range records {
		s.media[rec.ID] = rec.Clone(rec.ID)
	}
	for _, sl := range slides {
		s.slides[sl.ID] = copySlide(sl)
	}
}

func (s *Store) ListMedia(ctx context.Context) ([]media.MediaRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailListMedia != nil {
		return nil, s.FailListMedia
	}

	out := make([]media.MediaRecord, 0, len(s.media))
	for _, rec := range s.media {
		out = append(out, rec.Clone(rec.ID))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) InsertMedia(ctx context.Context, rec media.MediaRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailInsert != nil {
		if err := s.FailInsert(rec); err != nil {
			return err
		}
	}
	s.media[rec.ID] = rec.Clone(rec.ID)
	return nil
}

func (s *Store) DeleteMedia(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailDelete != nil {
		if err := s.FailDelete(id); err != nil {
			return err
		}
	}
	if _, ok := s.media[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.media, id)
	return nil
}

func (s *Store) MediaExists(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.media[id]
	return ok, nil
}

func (s *Store) ListSlidesWithMedia(ctx context.Context) ([]types.Slide, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailListSlides != nil {
		return nil, s.FailListSlides
	}

	out := make([]types.Slide, 0, len(s.slides))
	for _, sl := range s.slides {
		if sl.MediaID != nil {
			out = append(out, copySlide(sl))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) ClearSlideMediaID(ctx context.Context, value string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailClear != nil {
		if err := s.FailClear(value); err != nil {
			return 0, err
		}
	}

	var n int64
	for id, sl := range s.slides {
		if sl.MediaID != nil && *sl.MediaID == value {
			sl.MediaID = nil
			s.slides[id] = sl
			n++
		}
	}
	return n, nil
}

func (s *Store) SetSlideMediaID(ctx context.Context, slideID string, mediaID *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailSetSlide != nil {
		if err := s.FailSetSlide(slideID); err != nil {
			return err
		}
	}

	sl, ok := s.slides[slideID]
	if !ok {
		return storage.ErrNotFound
	}
	if mediaID == nil {
		sl.MediaID = nil
	} else {
		v := *mediaID
		sl.MediaID = &v
	}
	s.slides[slideID] = sl
	return nil
}

// Media returns a snapshot of the stored media keyed by id.
func (s *Store) Media() map[string]media.MediaRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]media.MediaRecord, len(s.media))
	for id, rec := range s.media {
		out[id] = rec.Clone(id)
	}
	return out
}

// Slide returns a copy of the slide with the given id.
func (s *Store) Slide(id string) (types.Slide, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.slides[id]
	return copySlide(sl), ok
}

// Slides returns a snapshot of every slide, including those with a null media_id.
func (s *Store) Slides() []types.Slide {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]types.Slide, 0, len(s.slides))
	for _, sl := range s.slides {
		out = append(out, copySlide(sl))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func copySlide(sl types.Slide) types.Slide {
	if sl.MediaID != nil {
		v := *sl.MediaID
		sl.MediaID = &v
	}
	return sl
}

var _ storage.Storage = (*Store)(nil)
