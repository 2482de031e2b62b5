package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/lib/pq"
	"github.com/princekumarofficial/media-migration/internal/config"
	"github.com/princekumarofficial/media-migration/internal/storage"
	"github.com/princekumarofficial/media-migration/internal/types"
	"github.com/princekumarofficial/media-migration/internal/types/media"
)

type Postgres struct {
	Db *sql.DB

	mediaTable  string
	slidesTable string
}

func NewPostgres(cfg *config.Config) (*Postgres, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.PGSQL.Host, cfg.PGSQL.Port, cfg.PGSQL.User, cfg.PGSQL.Password, cfg.PGSQL.DBName, cfg.PGSQL.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("Connected to Postgres database", slog.String("host", cfg.PGSQL.Host), slog.String("dbname", cfg.PGSQL.DBName))

	pg := New(db, cfg.Migration.MediaTable, cfg.Migration.SlidesTable)
	if err := pg.CreateTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return pg, nil
}

// New wraps an open connection. Table names are quoted before use.
func New(db *sql.DB, mediaTable, slidesTable string) *Postgres {
	return &Postgres{
		Db:          db,
		mediaTable:  pq.QuoteIdentifier(mediaTable),
		slidesTable: pq.QuoteIdentifier(slidesTable),
	}
}

func (p *Postgres) Close() error {
	return p.Db.Close()
}

// CreateTables bootstraps both tables. media_id carries no foreign key
// because legacy rows hold values that never referenced a media row.
func (p *Postgres) CreateTables() error {
	queries := []string{
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			storage_path TEXT NOT NULL DEFAULT '',
			public_url TEXT NOT NULL DEFAULT '',
			media_kind VARCHAR(32) NOT NULL DEFAULT 'image',
			owner_id TEXT NOT NULL DEFAULT '',
			folder TEXT NOT NULL DEFAULT '',
			tags TEXT[] NOT NULL DEFAULT '{}',
			size BIGINT NOT NULL DEFAULT 0,
			is_public BOOLEAN NOT NULL DEFAULT FALSE,
			is_featured BOOLEAN NOT NULL DEFAULT FALSE,
			display_order INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		`, p.mediaTable),
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			media_id TEXT,
			position INTEGER NOT NULL DEFAULT 0
		);
		`, p.slidesTable),
	}

	for _, q := range queries {
		if _, err := p.Db.Exec(q); err != nil {
			return err
		}
	}

	return nil
}

func (p *Postgres) ListMedia(ctx context.Context) ([]media.MediaRecord, error) {
	query := fmt.Sprintf(`
	SELECT id, title, description, storage_path, public_url, media_kind, owner_id, folder,
		tags, size, is_public, is_featured, display_order, created_at
	FROM %s
	ORDER BY created_at ASC, id ASC
	`, p.mediaTable)

	rows, err := p.Db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list media: %w", err)
	}
	defer rows.Close()

	var records []media.MediaRecord
	for rows.Next() {
		var rec media.MediaRecord
		var tags pq.StringArray
		err := rows.Scan(&rec.ID, &rec.Title, &rec.Description, &rec.StoragePath, &rec.PublicURL,
			&rec.MediaKind, &rec.OwnerID, &rec.Folder, &tags, &rec.Size, &rec.IsPublic,
			&rec.IsFeatured, &rec.DisplayOrder, &rec.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan media row: %w", err)
		}
		rec.Tags = []string(tags)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate media rows: %w", err)
	}

	return records, nil
}

func (p *Postgres) InsertMedia(ctx context.Context, rec media.MediaRecord) error {
	query := fmt.Sprintf(`
	INSERT INTO %s (id, title, description, storage_path, public_url, media_kind, owner_id, folder,
		tags, size, is_public, is_featured, display_order, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, p.mediaTable)

	tags := rec.Tags
	if tags == nil {
		tags = []string{}
	}

	_, err := p.Db.ExecContext(ctx, query, rec.ID, rec.Title, rec.Description, rec.StoragePath,
		rec.PublicURL, rec.MediaKind, rec.OwnerID, rec.Folder, pq.Array(tags), rec.Size,
		rec.IsPublic, rec.IsFeatured, rec.DisplayOrder, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert media %s: %w", rec.ID, err)
	}

	return nil
}

func (p *Postgres) DeleteMedia(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, p.mediaTable)

	res, err := p.Db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete media %s: %w", id, err)
	}

	return expectRow(res)
}

func (p *Postgres) MediaExists(ctx context.Context, id string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE id = $1)`, p.mediaTable)

	var exists bool
	if err := p.Db.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to probe media %s: %w", id, err)
	}

	return exists, nil
}

func (p *Postgres) ListSlidesWithMedia(ctx context.Context) ([]types.Slide, error) {
	query := fmt.Sprintf(`
	SELECT id, title, media_id, position
	FROM %s
	WHERE media_id IS NOT NULL
	ORDER BY id
	`, p.slidesTable)

	rows, err := p.Db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list slides: %w", err)
	}
	defer rows.Close()

	var slides []types.Slide
	for rows.Next() {
		var sl types.Slide
		var mediaID sql.NullString
		if err := rows.Scan(&sl.ID, &sl.Title, &mediaID, &sl.Position); err != nil {
			return nil, fmt.Errorf("failed to scan slide row: %w", err)
		}
		if mediaID.Valid {
			v := mediaID.String
			sl.MediaID = &v
		}
		slides = append(slides, sl)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate slide rows: %w", err)
	}

	return slides, nil
}

func (p *Postgres) ClearSlideMediaID(ctx context.Context, value string) (int64, error) {
	query := fmt.Sprintf(`UPDATE %s SET media_id = NULL WHERE media_id = $1`, p.slidesTable)

	res, err := p.Db.ExecContext(ctx, query, value)
	if err != nil {
		return 0, fmt.Errorf("failed to clear slides with media_id %q: %w", value, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return n, nil
}

func (p *Postgres) SetSlideMediaID(ctx context.Context, slideID string, mediaID *string) error {
	query := fmt.Sprintf(`UPDATE %s SET media_id = $1 WHERE id = $2`, p.slidesTable)

	var value sql.NullString
	if mediaID != nil {
		value = sql.NullString{String: *mediaID, Valid: true}
	}

	res, err := p.Db.ExecContext(ctx, query, value, slideID)
	if err != nil {
		return fmt.Errorf("failed to update slide %s: %w", slideID, err)
	}

	return expectRow(res)
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

var _ storage.Storage = (*Postgres)(nil)
