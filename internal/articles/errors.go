package articles

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-kb/internal/validation"
)

const (
	TextCodeDecodeFailed      = "ARTICLE_DECODE_FAILED"
	TextCodeSchemaInvalid     = "ARTICLE_SCHEMA_INVALID"
	TextCodeSlugInvalid       = "ARTICLE_SLUG_INVALID"
	TextCodeFormatUnknown     = "ARTICLE_FORMAT_UNKNOWN"
	TextCodeSourceUnreadable  = "ARTICLE_SOURCE_UNREADABLE"
	TextCodeRenderFailed      = "ARTICLE_RENDER_FAILED"
	TextCodeArticleIsRequired = "ARTICLE_REQUIRED"
)

// ErrArticleRequired is returned when a nil article reaches the service.
var ErrArticleRequired = errors.New("articles: article is required")

func decodeError(err error, msg string) error {
	return goerrors.Wrap(err, goerrors.CategoryBadInput, msg).
		WithTextCode(TextCodeDecodeFailed)
}

func schemaError(err error) error {
	wrapped := goerrors.Wrap(err, goerrors.CategoryValidation, "article payload does not match schema").
		WithTextCode(TextCodeSchemaInvalid)
	for _, issue := range validation.Issues(err) {
		field := issue.Location
		if field == "" {
			field = "#"
		}
		wrapped.ValidationErrors = append(wrapped.ValidationErrors, goerrors.FieldError{
			Field:   field,
			Message: issue.Message,
		})
	}
	return wrapped
}

func renderError(err error) error {
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, "article render failed").
		WithTextCode(TextCodeRenderFailed)
}
