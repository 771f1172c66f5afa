package sqlite3

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/nasermirzaei89/blotter/contents"
)

const tablePosts = "posts"

type PostRepository struct {
	db *sql.DB
}

var _ contents.PostRepository = (*PostRepository)(nil)

func NewPostRepository(db *sql.DB) *PostRepository {
	return &PostRepository{db: db}
}

const (
	postFieldID        = "id"
	postFieldTitle     = "title"
	postFieldContent   = "content"
	postFieldSummary   = "summary"
	postFieldCategory  = "category"
	postFieldCreatedAt = "created_at"
	postFieldUpdatedAt = "updated_at"
)

func postColumns() []string {
	return []string{
		postFieldID,
		postFieldTitle,
		postFieldContent,
		postFieldSummary,
		postFieldCategory,
		postFieldCreatedAt,
		postFieldUpdatedAt,
	}
}

func scanPost(row sq.RowScanner) (*contents.Post, error) {
	var post contents.Post

	err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Content,
		&post.Summary,
		&post.Category,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	return &post, nil
}

func (repo *PostRepository) Insert(ctx context.Context, post *contents.Post) error {
	q := sq.Insert(tablePosts).
		Columns(postColumns()...).
		Values(
			post.ID,
			post.Title,
			post.Content,
			nullable(post.Summary),
			string(post.Category),
			post.CreatedAt,
			nullable(post.UpdatedAt),
		)

	q = q.RunWith(repo.db)

	_, err := q.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to exec insert: %w", err)
	}

	return nil
}

func (repo *PostRepository) Find(ctx context.Context, postID string) (*contents.Post, error) {
	q := sq.Select(postColumns()...).
		From(tablePosts).
		Where(sq.Eq{postFieldID: postID})

	q = q.RunWith(repo.db)

	row := q.QueryRowContext(ctx)

	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &contents.PostNotFoundError{ID: postID}
		}

		return nil, fmt.Errorf("failed to scan post: %w", err)
	}

	return post, nil
}

func (repo *PostRepository) List(ctx context.Context) ([]*contents.Post, error) {
	q := sq.Select(postColumns()...).
		From(tablePosts).
		OrderBy(postFieldCreatedAt+" DESC", postFieldID+" ASC")

	q = q.RunWith(repo.db)

	rows, err := q.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	defer closeRows(ctx, rows)

	posts := make([]*contents.Post, 0)

	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}

		posts = append(posts, post)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return posts, nil
}

func (repo *PostRepository) Update(ctx context.Context, post *contents.Post) error {
	q := sq.Update(tablePosts).
		SetMap(map[string]any{
			postFieldTitle:     post.Title,
			postFieldContent:   post.Content,
			postFieldSummary:   nullable(post.Summary),
			postFieldCategory:  string(post.Category),
			postFieldUpdatedAt: nullable(post.UpdatedAt),
		}).
		Where(sq.Eq{postFieldID: post.ID})

	q = q.RunWith(repo.db)

	result, err := q.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to exec update: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return &contents.PostNotFoundError{ID: post.ID}
	}

	return nil
}

func (repo *PostRepository) Delete(ctx context.Context, postID string) error {
	q := sq.Delete(tablePosts).
		Where(sq.Eq{postFieldID: postID})

	q = q.RunWith(repo.db)

	result, err := q.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to exec delete: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return &contents.PostNotFoundError{ID: postID}
	}

	return nil
}
