package articles

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-kb/internal/validation"
	"github.com/goliatone/go-kb/pkg/interfaces"
)

//go:embed article.schema.json
var articleSchema []byte

var errMalformedJSON = errors.New("malformed JSON")

var payloadValidator = validation.MustCompile("article.schema.json", articleSchema)

// Format identifies how an article source is encoded.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// ParseFormat resolves an explicit format name, or infers it from the path
// extension when name is empty.
func ParseFormat(name, path string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "":
	default:
		return "", goerrors.New(fmt.Sprintf("unknown article format %q", name), goerrors.CategoryBadInput).
			WithTextCode(TextCodeFormatUnknown)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".md", ".markdown":
		return FormatMarkdown, nil
	default:
		return "", goerrors.New(fmt.Sprintf("cannot infer article format from %q", path), goerrors.CategoryBadInput).
			WithTextCode(TextCodeFormatUnknown)
	}
}

// Decode reads a JSON article payload, validates it against the article
// schema, and normalises its slug.
func Decode(r io.Reader) (*Article, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, decodeError(err, "read article payload")
	}
	return DecodeBytes(raw)
}

// DecodeBytes is Decode over an in-memory payload.
func DecodeBytes(raw []byte) (*Article, error) {
	if !json.Valid(raw) {
		return nil, decodeError(errMalformedJSON, "decode article payload")
	}
	if err := payloadValidator.ValidateJSON(raw); err != nil {
		return nil, schemaError(err)
	}

	var article Article
	if err := json.Unmarshal(raw, &article); err != nil {
		return nil, decodeError(err, "decode article payload")
	}
	if err := article.Normalize(); err != nil {
		return nil, err
	}
	return &article, nil
}

// FromDocument maps a Markdown document and its front matter onto an Article.
func FromDocument(doc *interfaces.Document) (*Article, error) {
	if doc == nil {
		return nil, ErrArticleRequired
	}
	fm := doc.FrontMatter
	article := &Article{
		Slug:            fm.Slug,
		Title:           fm.Title,
		Content:         string(doc.Body),
		Domain:          fm.Domain,
		Status:          fm.Status,
		Summary:         fm.Summary,
		ConfidenceScore: fm.ConfidenceScore,
		Tags:            slices.Clone(fm.Tags),
		Citations:       slices.Clone(fm.Citations),
		SourcePath:      doc.FilePath,
	}
	if article.Title == "" {
		return nil, goerrors.NewValidation("article front matter is incomplete", goerrors.FieldError{
			Field:   "title",
			Message: "cannot be blank",
		}).WithTextCode(TextCodeSchemaInvalid)
	}
	if err := article.Normalize(); err != nil {
		return nil, err
	}
	return article, nil
}
