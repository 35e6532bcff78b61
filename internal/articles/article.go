package articles

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-slug"
	"github.com/google/uuid"

	"github.com/goliatone/go-kb/internal/identity"
	"github.com/goliatone/go-kb/pkg/citation"
)

// DefaultDomain is displayed for articles that do not declare a domain.
const DefaultDomain = "General"

// Article is a knowledge base entry together with its citation registry. The
// JSON shape matches the article payload served by the knowledge base API;
// content may be null for entries that are still being written.
type Article struct {
	Slug            string       `json:"slug"`
	Title           string       `json:"title"`
	Content         string       `json:"content"`
	Domain          string       `json:"domain"`
	Status          string       `json:"status"`
	Summary         string       `json:"summary,omitempty"`
	ConfidenceScore float64      `json:"confidence_score"`
	Tags            []string     `json:"tags,omitempty"`
	Citations       citation.Set `json:"citations"`

	// SourcePath records where the article was loaded from, when known.
	SourcePath string `json:"-"`
}

// ID returns the deterministic identifier derived from the slug.
func (a *Article) ID() uuid.UUID {
	if a == nil {
		return uuid.Nil
	}
	return identity.ArticleUUID(a.Slug)
}

// HasContent reports whether the article carries a Markdown body.
func (a *Article) HasContent() bool {
	return a != nil && strings.TrimSpace(a.Content) != ""
}

// DisplayDomain returns the domain label, falling back to DefaultDomain.
func (a *Article) DisplayDomain() string {
	if a == nil || strings.TrimSpace(a.Domain) == "" {
		return DefaultDomain
	}
	return strings.TrimSpace(a.Domain)
}

// Confidence formats the confidence score like citation quality.
func (a *Article) Confidence() string {
	if a == nil {
		return citation.FormatQuality(0)
	}
	return citation.FormatQuality(a.ConfidenceScore)
}

// Normalize trims metadata and makes sure the slug is valid, deriving it from
// the title when missing.
func (a *Article) Normalize() error {
	a.Title = strings.TrimSpace(a.Title)
	a.Domain = strings.TrimSpace(a.Domain)
	a.Status = strings.TrimSpace(a.Status)

	candidate := strings.TrimSpace(a.Slug)
	if candidate != "" && slug.IsValid(candidate) {
		a.Slug = candidate
		return nil
	}
	if candidate == "" {
		candidate = a.Title
	}
	normalized, err := slug.Normalize(candidate)
	if err != nil || normalized == "" {
		cause := err
		if cause == nil {
			cause = goerrors.New("slug is empty after normalization", goerrors.CategoryValidation)
		}
		return goerrors.Wrap(cause, goerrors.CategoryValidation, "article slug is invalid").
			WithTextCode(TextCodeSlugInvalid)
	}
	a.Slug = normalized
	return nil
}
