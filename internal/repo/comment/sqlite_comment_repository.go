package comment

import (
	"context"
	"fmt"
	"time"

	"github.com/axelsub/axelsub/internal/domain"
	"github.com/axelsub/axelsub/internal/infra/logging"
	"github.com/axelsub/axelsub/internal/repo/db"
)

// SQLiteCommentRepository implements Repository using SQLite as the storage backend.
type SQLiteCommentRepository struct {
	db  *db.Handle
	log logging.Logger
}

var _ Repository = (*SQLiteCommentRepository)(nil)

// SQLiteCommentRepositoryFactory creates a factory function that returns a
// new SQLiteCommentRepository on the given database handle.
func SQLiteCommentRepositoryFactory(handle *db.Handle) RepositoryFactory {
	return func() (Repository, error) {
		return NewSQLiteCommentRepository(handle)
	}
}

// NewSQLiteCommentRepository creates a new SQLiteCommentRepository and
// ensures the comments table exists.
func NewSQLiteCommentRepository(handle *db.Handle) (*SQLiteCommentRepository, error) {
	if _, err := handle.SQL.Exec(`
		CREATE TABLE IF NOT EXISTS comments (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			content    TEXT    NOT NULL,
			user_id    INTEGER NOT NULL REFERENCES users(id),
			anime_id   INTEGER NOT NULL REFERENCES animes(id),
			created_at INTEGER NOT NULL
		)
	`); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteCommentRepository{
		db:  handle,
		log: logging.GetLogger("repo.comment.sqlite_comment_repository"),
	}, nil
}

// ListByAnime implements Repository.ListByAnime using SQLite.
func (r *SQLiteCommentRepository) ListByAnime(ctx context.Context, animeID int64) ([]domain.CommentWithUser, error) {
	rows, err := r.db.SQL.QueryContext(ctx, `
		SELECT c.id, c.content, c.user_id, c.anime_id, c.created_at,
		       u.id, u.username, u.email, u.bio, u.avatar_url, u.is_admin, u.created_at
		FROM comments c
		INNER JOIN users u ON u.id = c.user_id
		WHERE c.anime_id = ?
		ORDER BY c.created_at DESC, c.id DESC`,
		animeID,
	)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	comments := []domain.CommentWithUser{}

	for rows.Next() {
		var (
			comment domain.CommentWithUser
			user    domain.PublicIdentity
		)

		if err := rows.Scan(
			&comment.ID,
			&comment.Content,
			&comment.UserID,
			&comment.AnimeID,
			&comment.CreatedAt,
			&user.ID,
			&user.Username,
			&user.Email,
			&user.Bio,
			&user.AvatarURL,
			&user.IsAdmin,
			&user.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}

		comment.User = &user
		comments = append(comments, comment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}

	return comments, nil
}

// Create implements Repository.Create using SQLite.
func (r *SQLiteCommentRepository) Create(ctx context.Context, comment domain.Comment) (*domain.Comment, error) {
	r.db.WriteLock.Lock()
	defer r.db.WriteLock.Unlock()

	comment.CreatedAt = time.Now().Unix()

	res, err := r.db.SQL.ExecContext(ctx,
		`INSERT INTO comments (content, user_id, anime_id, created_at) VALUES (?, ?, ?, ?)`,
		comment.Content,
		comment.UserID,
		comment.AnimeID,
		comment.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	comment.ID = id

	return &comment, nil
}

// Close implements Repository.Close. The shared database handle is closed by
// its owner, not here.
func (r *SQLiteCommentRepository) Close() error {
	return nil
}
