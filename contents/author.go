package contents

import (
	"context"
	"fmt"
	"time"

	"github.com/nasermirzaei89/blotter/validation"
)

type Author struct {
	ID          string
	Name        string
	PhoneNumber *string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

type AuthorRepository interface {
	validation.AuthorNameLookup

	Insert(ctx context.Context, author *Author) (err error)
	Find(ctx context.Context, authorID string) (author *Author, err error)
	List(ctx context.Context) (authors []*Author, err error)
	Update(ctx context.Context, author *Author) (err error)
	Delete(ctx context.Context, authorID string) (err error)
	ListNames(ctx context.Context) (names []string, err error)
}

type AuthorNotFoundError struct {
	ID string
}

func (err *AuthorNotFoundError) Error() string {
	return fmt.Sprintf("author with id %q not found", err.ID)
}

type AuthorAlreadyExistsError struct {
	Name string
}

func (err *AuthorAlreadyExistsError) Error() string {
	return fmt.Sprintf("author with name %q already exists", err.Name)
}
