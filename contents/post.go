package contents

import (
	"context"
	"fmt"
	"time"

	"github.com/nasermirzaei89/blotter/validation"
)

type Category string

const (
	CategoryFiction    Category = validation.CategoryFiction
	CategoryNonFiction Category = validation.CategoryNonFiction
)

type Post struct {
	ID        string
	Title     string
	Content   string
	Summary   *string
	Category  Category
	CreatedAt time.Time
	UpdatedAt *time.Time
}

type PostRepository interface {
	Insert(ctx context.Context, post *Post) (err error)
	Find(ctx context.Context, postID string) (post *Post, err error)
	List(ctx context.Context) (posts []*Post, err error)
	Update(ctx context.Context, post *Post) (err error)
	Delete(ctx context.Context, postID string) (err error)
}

type PostNotFoundError struct {
	ID string
}

func (err *PostNotFoundError) Error() string {
	return fmt.Sprintf("post with id %q not found", err.ID)
}
