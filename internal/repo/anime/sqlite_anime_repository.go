package anime

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/axelsub/axelsub/internal/domain"
	"github.com/axelsub/axelsub/internal/infra/logging"
	"github.com/axelsub/axelsub/internal/repo/db"
)

const defaultQuality = "720p"

// SQLiteAnimeRepository implements Repository using SQLite as the storage backend.
// Genres are stored as a JSON array in a TEXT column.
type SQLiteAnimeRepository struct {
	db  *db.Handle
	log logging.Logger
}

var _ Repository = (*SQLiteAnimeRepository)(nil)

// SQLiteAnimeRepositoryFactory creates a factory function that returns a new
// SQLiteAnimeRepository on the given database handle.
func SQLiteAnimeRepositoryFactory(handle *db.Handle) RepositoryFactory {
	return func() (Repository, error) {
		return NewSQLiteAnimeRepository(handle)
	}
}

// NewSQLiteAnimeRepository creates a new SQLiteAnimeRepository and ensures
// the animes table exists.
func NewSQLiteAnimeRepository(handle *db.Handle) (*SQLiteAnimeRepository, error) {
	if _, err := handle.SQL.Exec(`
		CREATE TABLE IF NOT EXISTS animes (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			mal_id      INTEGER NOT NULL,
			title       TEXT    NOT NULL,
			description TEXT    NOT NULL DEFAULT '',
			cover_image TEXT    NOT NULL DEFAULT '',
			genres      TEXT    NOT NULL DEFAULT '[]',
			video_url   TEXT    NOT NULL,
			quality     TEXT    NOT NULL DEFAULT '720p',
			uploader_id INTEGER REFERENCES users(id),
			created_at  INTEGER NOT NULL
		)
	`); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteAnimeRepository{
		db:  handle,
		log: logging.GetLogger("repo.anime.sqlite_anime_repository"),
	}, nil
}

const selectWithUploader = `
	SELECT a.id, a.mal_id, a.title, a.description, a.cover_image, a.genres,
	       a.video_url, a.quality, a.uploader_id, a.created_at,
	       u.id, u.username, u.email, u.bio, u.avatar_url, u.is_admin, u.created_at
	FROM animes a
	LEFT JOIN users u ON u.id = a.uploader_id`

// List implements Repository.List using SQLite. The title search runs in SQL;
// the genre filter runs on the decoded JSON column.
func (r *SQLiteAnimeRepository) List(ctx context.Context, filter Filter) ([]domain.AnimeWithUploader, error) {
	query := selectWithUploader
	args := []any{}

	if filter.Search != "" {
		query += ` WHERE instr(lower(a.title), lower(?)) > 0`
		args = append(args, filter.Search)
	}

	query += ` ORDER BY a.created_at DESC, a.id DESC`

	rows, err := r.db.SQL.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query animes: %w", err)
	}
	defer rows.Close()

	animes := []domain.AnimeWithUploader{}

	for rows.Next() {
		anime, err := scanAnimeWithUploader(rows)
		if err != nil {
			return nil, err
		}

		if filter.Genre != "" && !slices.Contains(anime.Genres, filter.Genre) {
			continue
		}

		animes = append(animes, *anime)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate animes: %w", err)
	}

	return animes, nil
}

// Get implements Repository.Get using SQLite.
func (r *SQLiteAnimeRepository) Get(ctx context.Context, id int64) (*domain.AnimeWithUploader, error) {
	row := r.db.SQL.QueryRowContext(ctx, selectWithUploader+` WHERE a.id = ?`, id)

	anime, err := scanAnimeWithUploader(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = errors.Join(domain.ErrAnimeNotFound, err)
		}

		return nil, fmt.Errorf("query anime: %w", err)
	}

	return anime, nil
}

// Create implements Repository.Create using SQLite.
func (r *SQLiteAnimeRepository) Create(ctx context.Context, anime domain.Anime) (*domain.Anime, error) {
	r.db.WriteLock.Lock()
	defer r.db.WriteLock.Unlock()

	if anime.Quality == "" {
		anime.Quality = defaultQuality
	}

	if anime.Genres == nil {
		anime.Genres = []string{}
	}

	genres, err := json.Marshal(anime.Genres)
	if err != nil {
		return nil, fmt.Errorf("marshal genres: %w", err)
	}

	anime.CreatedAt = time.Now().Unix()

	// A zero uploader means "no uploader"; store NULL so the foreign key
	// stays satisfied.
	uploaderFK := sql.NullInt64{Int64: anime.UploaderID, Valid: anime.UploaderID != 0}

	res, err := r.db.SQL.ExecContext(ctx,
		`INSERT INTO animes (mal_id, title, description, cover_image, genres, video_url, quality, uploader_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		anime.MALID,
		anime.Title,
		anime.Description,
		anime.CoverImage,
		string(genres),
		anime.VideoURL,
		anime.Quality,
		uploaderFK,
		anime.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert anime: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	anime.ID = id

	return &anime, nil
}

// Close implements Repository.Close. The shared database handle is closed by
// its owner, not here.
func (r *SQLiteAnimeRepository) Close() error {
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnimeWithUploader(row rowScanner) (*domain.AnimeWithUploader, error) {
	var (
		anime      domain.AnimeWithUploader
		genres     string
		uploaderFK sql.NullInt64

		uploaderID        sql.NullInt64
		uploaderName      sql.NullString
		uploaderEmail     sql.NullString
		uploaderBio       sql.NullString
		uploaderAvatar    sql.NullString
		uploaderIsAdmin   sql.NullBool
		uploaderCreatedAt sql.NullInt64
	)

	if err := row.Scan(
		&anime.ID,
		&anime.MALID,
		&anime.Title,
		&anime.Description,
		&anime.CoverImage,
		&genres,
		&anime.VideoURL,
		&anime.Quality,
		&uploaderFK,
		&anime.CreatedAt,
		&uploaderID,
		&uploaderName,
		&uploaderEmail,
		&uploaderBio,
		&uploaderAvatar,
		&uploaderIsAdmin,
		&uploaderCreatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(genres), &anime.Genres); err != nil {
		return nil, fmt.Errorf("unmarshal genres: %w", err)
	}

	anime.UploaderID = uploaderFK.Int64

	if uploaderID.Valid {
		anime.Uploader = &domain.PublicIdentity{
			ID:        uploaderID.Int64,
			Username:  uploaderName.String,
			Email:     uploaderEmail.String,
			Bio:       uploaderBio.String,
			AvatarURL: uploaderAvatar.String,
			IsAdmin:   uploaderIsAdmin.Bool,
			CreatedAt: uploaderCreatedAt.Int64,
		}
	}

	return &anime, nil
}
