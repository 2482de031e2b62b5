package media

import "time"

type Kind string

const (
	KindImage    Kind = "image"
	KindVideo    Kind = "video"
	KindAudio    Kind = "audio"
	KindDocument Kind = "document"
)

// MediaRecord represents one media asset row in the gallery
type MediaRecord struct {
	ID           string    `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	Description  string    `json:"description" db:"description"`
	StoragePath  string    `json:"storage_path" db:"storage_path"`
	PublicURL    string    `json:"public_url" db:"public_url"`
	MediaKind    Kind      `json:"media_kind" db:"media_kind"`
	OwnerID      string    `json:"owner_id" db:"owner_id"`
	Folder       string    `json:"folder" db:"folder"`
	Tags         []string  `json:"tags" db:"tags"`
	Size         int64     `json:"size" db:"size"`
	IsPublic     bool      `json:"is_public" db:"is_public"`
	IsFeatured   bool      `json:"is_featured" db:"is_featured"`
	DisplayOrder int       `json:"display_order" db:"display_order"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Clone returns a copy of the record under newID. Tags are copied, not shared.
func (m MediaRecord) Clone(newID string) MediaRecord {
	clone := m
	clone.ID = newID
	if m.Tags != nil {
		clone.Tags = append([]string(nil), m.Tags...)
	}
	return clone
}
