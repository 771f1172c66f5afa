// Package validation holds the field rules an Author or a Post must satisfy
// before it is written to a store.
package validation

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	FieldAuthorName        = "name"
	FieldAuthorPhoneNumber = "phone_number"
	FieldPostTitle         = "title"
	FieldPostContent       = "content"
	FieldPostSummary       = "summary"
	FieldPostCategory      = "category"
)

const (
	MinAuthorNameLength  = 2
	PhoneNumberLength    = 10
	MinPostTitleLength   = 5
	MinPostContentLength = 250
	MaxPostSummaryLength = 250
)

const (
	CategoryFiction    = "Fiction"
	CategoryNonFiction = "Non-Fiction"
)

var titleMarkers = [...]string{"Won't Believe", "Secret", "Top", "Guess"}

// TitleMarkers returns the substrings a post title must contain at least one
// of. The returned slice is a copy.
func TitleMarkers() []string {
	markers := titleMarkers

	return markers[:]
}

var phoneNumberPattern = regexp.MustCompile(fmt.Sprintf(`^[0-9]{%d}$`, PhoneNumberLength))

const (
	reasonAuthorNameRequired  = "Author must have a name."
	reasonAuthorNameTooShort  = "Author's name must be at least 2 characters long."
	reasonPhoneNumber         = "Phone number must be exactly 10 digits."
	reasonPostTitleTooShort   = "Title must be at least 5 characters long."
	reasonPostContentTooShort = "Content must be at least 250 characters long."
	reasonPostSummaryTooLong  = "Summary must be 250 characters or less."
	reasonPostCategory        = "Category must be either 'Fiction' or 'Non-Fiction'."
)

// Error reports the field that failed a rule and a human-readable reason.
type Error struct {
	Field  string
	Reason string
}

func (err *Error) Error() string {
	return err.Reason
}

// NewAuthorNameTakenError is returned when name already belongs to an author.
func NewAuthorNameTakenError(name string) *Error {
	return &Error{
		Field:  FieldAuthorName,
		Reason: fmt.Sprintf("Author name '%s' is already taken.", name),
	}
}

// AuthorNameLookup reports whether an author with exactly this name is stored.
type AuthorNameLookup interface {
	AuthorNameExists(ctx context.Context, name string) (exists bool, err error)
}

type AuthorNameLookupFunc func(ctx context.Context, name string) (bool, error)

func (fn AuthorNameLookupFunc) AuthorNameExists(ctx context.Context, name string) (bool, error) {
	return fn(ctx, name)
}

func check(field string, value string, rules ...ozzo.Rule) error {
	err := ozzo.Validate(value, rules...)
	if err != nil {
		return &Error{Field: field, Reason: err.Error()}
	}

	return nil
}

// ValidateAuthorName checks the name rules and then asks lookup whether the
// name is already in use. Lookup failures are returned wrapped, not as *Error.
func ValidateAuthorName(ctx context.Context, name string, lookup AuthorNameLookup) error {
	err := check(FieldAuthorName, name,
		ozzo.Required.Error(reasonAuthorNameRequired),
		ozzo.RuneLength(MinAuthorNameLength, 0).Error(reasonAuthorNameTooShort),
	)
	if err != nil {
		return err
	}

	exists, err := lookup.AuthorNameExists(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to look up author name: %w", err)
	}

	if exists {
		return NewAuthorNameTakenError(name)
	}

	return nil
}

// ValidateAuthorPhoneNumber accepts a nil or empty phone number as absent.
func ValidateAuthorPhoneNumber(phoneNumber *string) error {
	if phoneNumber == nil {
		return nil
	}

	return check(FieldAuthorPhoneNumber, *phoneNumber,
		ozzo.Match(phoneNumberPattern).Error(reasonPhoneNumber),
	)
}

func ValidatePostTitle(title string) error {
	return check(FieldPostTitle, title,
		ozzo.Required.Error(reasonPostTitleTooShort),
		ozzo.RuneLength(MinPostTitleLength, 0).Error(reasonPostTitleTooShort),
		ozzo.NewStringRule(containsTitleMarker, titleMarkerReason()),
	)
}

func ValidatePostContent(content string) error {
	return check(FieldPostContent, content,
		ozzo.Required.Error(reasonPostContentTooShort),
		ozzo.RuneLength(MinPostContentLength, 0).Error(reasonPostContentTooShort),
	)
}

// ValidatePostSummary accepts a nil or empty summary as absent.
func ValidatePostSummary(summary *string) error {
	if summary == nil {
		return nil
	}

	return check(FieldPostSummary, *summary,
		ozzo.RuneLength(0, MaxPostSummaryLength).Error(reasonPostSummaryTooLong),
	)
}

func ValidatePostCategory(category string) error {
	return check(FieldPostCategory, category,
		ozzo.Required.Error(reasonPostCategory),
		ozzo.In(CategoryFiction, CategoryNonFiction).Error(reasonPostCategory),
	)
}

func containsTitleMarker(title string) bool {
	for _, marker := range titleMarkers {
		if strings.Contains(title, marker) {
			return true
		}
	}

	return false
}

func titleMarkerReason() string {
	quoted := make([]string, 0, len(titleMarkers))
	for _, marker := range titleMarkers {
		quoted = append(quoted, "'"+marker+"'")
	}

	return "Title must contain one of the following: " + strings.Join(quoted, ", ") + "."
}
