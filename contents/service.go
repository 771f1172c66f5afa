package contents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nasermirzaei89/blotter/validation"
)

type Service struct {
	authorRepo AuthorRepository
	postRepo   PostRepository

	filterMu   sync.RWMutex
	nameFilter *NameFilter
}

var _ validation.AuthorNameLookup = (*Service)(nil)

func NewService(authorRepo AuthorRepository, postRepo PostRepository) *Service {
	return &Service{
		authorRepo: authorRepo,
		postRepo:   postRepo,
	}
}

// LoadNameFilter fills a bloom filter with the stored author names. Once
// loaded, names the filter has never seen skip the store lookup.
func (svc *Service) LoadNameFilter(ctx context.Context, minCapacity uint, falsePositiveRate float64) error {
	names, err := svc.authorRepo.ListNames(ctx)
	if err != nil {
		return fmt.Errorf("failed to list author names for name filter: %w", err)
	}

	capacity := max(uint(len(names)), minCapacity)

	filter := NewNameFilter(capacity, falsePositiveRate)
	for _, name := range names {
		filter.Add(name)
	}

	svc.filterMu.Lock()
	svc.nameFilter = filter
	svc.filterMu.Unlock()

	slog.InfoContext(ctx, "author name filter loaded", "names", len(names), "capacity", capacity)

	return nil
}

func (svc *Service) rememberName(name string) {
	svc.filterMu.RLock()
	defer svc.filterMu.RUnlock()

	if svc.nameFilter != nil {
		svc.nameFilter.Add(name)
	}
}

// AuthorNameExists consults the name filter first and the store only when the
// filter cannot rule the name out.
func (svc *Service) AuthorNameExists(ctx context.Context, name string) (bool, error) {
	svc.filterMu.RLock()
	filter := svc.nameFilter
	svc.filterMu.RUnlock()

	if filter != nil && !filter.MayContain(name) {
		return false, nil
	}

	exists, err := svc.authorRepo.AuthorNameExists(ctx, name)
	if err != nil {
		return false, fmt.Errorf("failed to check author name in repository: %w", err)
	}

	return exists, nil
}

// emptyToNil treats an empty optional value as absent.
func emptyToNil(value *string) *string {
	if value == nil || *value == "" {
		return nil
	}

	return value
}

func sameOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}

	return *a == *b
}

type CreateAuthorRequest struct {
	Name        string
	PhoneNumber *string
}

func (svc *Service) CreateAuthor(ctx context.Context, req CreateAuthorRequest) (*Author, error) {
	err := validation.ValidateAuthorName(ctx, req.Name, svc)
	if err != nil {
		return nil, fmt.Errorf("invalid author name: %w", err)
	}

	phoneNumber := emptyToNil(req.PhoneNumber)

	err = validation.ValidateAuthorPhoneNumber(phoneNumber)
	if err != nil {
		return nil, fmt.Errorf("invalid author phone number: %w", err)
	}

	author := &Author{
		ID:          uuid.NewString(),
		Name:        req.Name,
		PhoneNumber: phoneNumber,
		CreatedAt:   time.Now(),
		UpdatedAt:   nil,
	}

	err = svc.authorRepo.Insert(ctx, author)
	if err != nil {
		return nil, svc.translateAuthorWriteError(err, "failed to insert author")
	}

	svc.rememberName(author.Name)

	return author, nil
}

// translateAuthorWriteError reports a duplicate name caught by the store the
// same way the validator reports it.
func (svc *Service) translateAuthorWriteError(err error, msg string) error {
	var alreadyExistsErr *AuthorAlreadyExistsError
	if errors.As(err, &alreadyExistsErr) {
		svc.rememberName(alreadyExistsErr.Name)

		return fmt.Errorf("invalid author name: %w", validation.NewAuthorNameTakenError(alreadyExistsErr.Name))
	}

	return fmt.Errorf("%s: %w", msg, err)
}

func (svc *Service) GetAuthor(ctx context.Context, authorID string) (*Author, error) {
	author, err := svc.authorRepo.Find(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to find author: %w", err)
	}

	return author, nil
}

func (svc *Service) ListAuthors(ctx context.Context) ([]*Author, error) {
	authors, err := svc.authorRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list authors: %w", err)
	}

	return authors, nil
}

// UpdateAuthorRequest carries the fields to change. A nil field is left as
// is; an empty PhoneNumber clears it.
type UpdateAuthorRequest struct {
	Name        *string
	PhoneNumber *string
}

func (svc *Service) UpdateAuthor(ctx context.Context, authorID string, req UpdateAuthorRequest) (*Author, error) {
	current, err := svc.authorRepo.Find(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to find author: %w", err)
	}

	author := *current
	changed := false

	// Setting the current name again is not a change.
	if req.Name != nil && *req.Name != author.Name {
		err = validation.ValidateAuthorName(ctx, *req.Name, svc)
		if err != nil {
			return nil, fmt.Errorf("invalid author name: %w", err)
		}

		author.Name = *req.Name
		changed = true
	}

	if req.PhoneNumber != nil {
		phoneNumber := emptyToNil(req.PhoneNumber)

		err = validation.ValidateAuthorPhoneNumber(phoneNumber)
		if err != nil {
			return nil, fmt.Errorf("invalid author phone number: %w", err)
		}

		changed = changed || !sameOptional(author.PhoneNumber, phoneNumber)
		author.PhoneNumber = phoneNumber
	}

	// Nothing to write; updated_at only moves when a column does.
	if !changed {
		return current, nil
	}

	now := time.Now()
	author.UpdatedAt = &now

	err = svc.authorRepo.Update(ctx, &author)
	if err != nil {
		return nil, svc.translateAuthorWriteError(err, "failed to update author")
	}

	svc.rememberName(author.Name)

	return &author, nil
}

func (svc *Service) DeleteAuthor(ctx context.Context, authorID string) error {
	err := svc.authorRepo.Delete(ctx, authorID)
	if err != nil {
		return fmt.Errorf("failed to delete author: %w", err)
	}

	return nil
}

type CreatePostRequest struct {
	Title    string
	Content  string
	Summary  *string
	Category Category
}

func validatePost(post *Post) error {
	err := validation.ValidatePostTitle(post.Title)
	if err != nil {
		return fmt.Errorf("invalid post title: %w", err)
	}

	err = validation.ValidatePostContent(post.Content)
	if err != nil {
		return fmt.Errorf("invalid post content: %w", err)
	}

	err = validation.ValidatePostSummary(post.Summary)
	if err != nil {
		return fmt.Errorf("invalid post summary: %w", err)
	}

	err = validation.ValidatePostCategory(string(post.Category))
	if err != nil {
		return fmt.Errorf("invalid post category: %w", err)
	}

	return nil
}

func (svc *Service) CreatePost(ctx context.Context, req CreatePostRequest) (*Post, error) {
	post := &Post{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Content:   req.Content,
		Summary:   emptyToNil(req.Summary),
		Category:  req.Category,
		CreatedAt: time.Now(),
		UpdatedAt: nil,
	}

	err := validatePost(post)
	if err != nil {
		return nil, err
	}

	err = svc.postRepo.Insert(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("failed to insert post: %w", err)
	}

	return post, nil
}

func (svc *Service) GetPost(ctx context.Context, postID string) (*Post, error) {
	post, err := svc.postRepo.Find(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to find post: %w", err)
	}

	return post, nil
}

func (svc *Service) ListPosts(ctx context.Context) ([]*Post, error) {
	posts, err := svc.postRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	return posts, nil
}

// UpdatePostRequest carries the fields to change. A nil field is left as is;
// an empty Summary clears it.
type UpdatePostRequest struct {
	Title    *string
	Content  *string
	Summary  *string
	Category *Category
}

func (svc *Service) UpdatePost(ctx context.Context, postID string, req UpdatePostRequest) (*Post, error) {
	current, err := svc.postRepo.Find(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to find post: %w", err)
	}

	post := *current
	changed := false

	if req.Title != nil {
		err = validation.ValidatePostTitle(*req.Title)
		if err != nil {
			return nil, fmt.Errorf("invalid post title: %w", err)
		}

		changed = changed || post.Title != *req.Title
		post.Title = *req.Title
	}

	if req.Content != nil {
		err = validation.ValidatePostContent(*req.Content)
		if err != nil {
			return nil, fmt.Errorf("invalid post content: %w", err)
		}

		changed = changed || post.Content != *req.Content
		post.Content = *req.Content
	}

	if req.Summary != nil {
		summary := emptyToNil(req.Summary)

		err = validation.ValidatePostSummary(summary)
		if err != nil {
			return nil, fmt.Errorf("invalid post summary: %w", err)
		}

		changed = changed || !sameOptional(post.Summary, summary)
		post.Summary = summary
	}

	if req.Category != nil {
		err = validation.ValidatePostCategory(string(*req.Category))
		if err != nil {
			return nil, fmt.Errorf("invalid post category: %w", err)
		}

		changed = changed || post.Category != *req.Category
		post.Category = *req.Category
	}

	if !changed {
		return current, nil
	}

	now := time.Now()
	post.UpdatedAt = &now

	err = svc.postRepo.Update(ctx, &post)
	if err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	return &post, nil
}

func (svc *Service) DeletePost(ctx context.Context, postID string) error {
	err := svc.postRepo.Delete(ctx, postID)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	return nil
}
