package sqlite3

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/nasermirzaei89/blotter/contents"
)

const tableAuthors = "authors"

type AuthorRepository struct {
	db *sql.DB
}

var _ contents.AuthorRepository = (*AuthorRepository)(nil)

func NewAuthorRepository(db *sql.DB) *AuthorRepository {
	return &AuthorRepository{db: db}
}

const (
	authorFieldID          = "id"
	authorFieldName        = "name"
	authorFieldPhoneNumber = "phone_number"
	authorFieldCreatedAt   = "created_at"
	authorFieldUpdatedAt   = "updated_at"
)

func authorColumns() []string {
	return []string{
		authorFieldID,
		authorFieldName,
		authorFieldPhoneNumber,
		authorFieldCreatedAt,
		authorFieldUpdatedAt,
	}
}

func scanAuthor(row sq.RowScanner) (*contents.Author, error) {
	var author contents.Author

	err := row.Scan(
		&author.ID,
		&author.Name,
		&author.PhoneNumber,
		&author.CreatedAt,
		&author.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	return &author, nil
}

func isUniqueAuthorNameViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed: authors.name")
}

func (repo *AuthorRepository) Insert(ctx context.Context, author *contents.Author) error {
	q := sq.Insert(tableAuthors).
		Columns(authorColumns()...).
		Values(author.ID, author.Name, nullable(author.PhoneNumber), author.CreatedAt, nullable(author.UpdatedAt))

	q = q.RunWith(repo.db)

	_, err := q.ExecContext(ctx)
	if err != nil {
		if isUniqueAuthorNameViolation(err) {
			return &contents.AuthorAlreadyExistsError{Name: author.Name}
		}

		return fmt.Errorf("failed to exec insert: %w", err)
	}

	return nil
}

func (repo *AuthorRepository) Find(ctx context.Context, authorID string) (*contents.Author, error) {
	q := sq.Select(authorColumns()...).
		From(tableAuthors).
		Where(sq.Eq{authorFieldID: authorID})

	q = q.RunWith(repo.db)

	row := q.QueryRowContext(ctx)

	author, err := scanAuthor(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &contents.AuthorNotFoundError{ID: authorID}
		}

		return nil, fmt.Errorf("failed to scan author: %w", err)
	}

	return author, nil
}

func (repo *AuthorRepository) List(ctx context.Context) ([]*contents.Author, error) {
	q := sq.Select(authorColumns()...).
		From(tableAuthors).
		OrderBy(authorFieldCreatedAt+" ASC", authorFieldID+" ASC")

	q = q.RunWith(repo.db)

	rows, err := q.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	defer closeRows(ctx, rows)

	authors := make([]*contents.Author, 0)

	for rows.Next() {
		author, err := scanAuthor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan author: %w", err)
		}

		authors = append(authors, author)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return authors, nil
}

func (repo *AuthorRepository) Update(ctx context.Context, author *contents.Author) error {
	q := sq.Update(tableAuthors).
		SetMap(map[string]any{
			authorFieldName:        author.Name,
			authorFieldPhoneNumber: nullable(author.PhoneNumber),
			authorFieldUpdatedAt:   nullable(author.UpdatedAt),
		}).
		Where(sq.Eq{authorFieldID: author.ID})

	q = q.RunWith(repo.db)

	result, err := q.ExecContext(ctx)
	if err != nil {
		if isUniqueAuthorNameViolation(err) {
			return &contents.AuthorAlreadyExistsError{Name: author.Name}
		}

		return fmt.Errorf("failed to exec update: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return &contents.AuthorNotFoundError{ID: author.ID}
	}

	return nil
}

func (repo *AuthorRepository) Delete(ctx context.Context, authorID string) error {
	q := sq.Delete(tableAuthors).
		Where(sq.Eq{authorFieldID: authorID})

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
		return &contents.AuthorNotFoundError{ID: authorID}
	}

	return nil
}

func (repo *AuthorRepository) ListNames(ctx context.Context) ([]string, error) {
	q := sq.Select(authorFieldName).From(tableAuthors).RunWith(repo.db)

	rows, err := q.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query author names: %w", err)
	}

	defer closeRows(ctx, rows)

	names := make([]string, 0)

	for rows.Next() {
		var name string

		err := rows.Scan(&name)
		if err != nil {
			return nil, fmt.Errorf("failed to scan author name: %w", err)
		}

		names = append(names, name)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to iterate author names: %w", err)
	}

	return names, nil
}

// AuthorNameExists matches the name exactly; SQLite's default BINARY
// collation keeps the comparison case-sensitive.
func (repo *AuthorRepository) AuthorNameExists(ctx context.Context, name string) (bool, error) {
	q := sq.Select("1").
		From(tableAuthors).
		Where(sq.Eq{authorFieldName: name}).
		Limit(1)

	q = q.RunWith(repo.db)

	var one int

	err := q.QueryRowContext(ctx).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}

		return false, fmt.Errorf("failed to query author name: %w", err)
	}

	return true, nil
}
