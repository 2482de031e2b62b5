package storage

import (
	"context"
	"errors"

	"github.com/princekumarofficial/media-migration/internal/types"
	"github.com/princekumarofficial/media-migration/internal/types/media"
)

// ErrNotFound is returned when a delete or update matches no row.
var ErrNotFound = errors.New("record not found")

type MediaStore interface {
	// ListMedia returns every media row ordered by created_at ascending.
	ListMedia(ctx context.Context) ([]media.MediaRecord, error)
	InsertMedia(ctx context.Context, rec media.MediaRecord) error
	DeleteMedia(ctx context.Context, id string) error
	MediaExists(ctx context.Context, id string) (bool, error)
}

type SlideStore interface {
	// ListSlidesWithMedia returns slides whose media_id is not null.
	ListSlidesWithMedia(ctx context.Context) ([]types.Slide, error)
	// ClearSlideMediaID sets media_id to null on every slide whose media_id equals value.
	ClearSlideMediaID(ctx context.Context, value string) (int64, error)
	// SetSlideMediaID writes media_id on a single slide; a nil mediaID stores null.
	SetSlideMediaID(ctx context.Context, slideID string, mediaID *string) error
}

type Storage interface {
	MediaStore
	SlideStore
}
