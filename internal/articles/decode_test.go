package articles

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-kb/internal/markdown"
	"github.com/goliatone/go-kb/pkg/interfaces"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	return data
}

func TestDecodeBytesValidPayload(t *testing.T) {
	article, err := DecodeBytes(readFixture(t, "fire-safety.json"))
	if err != nil {
		t.Fatalf("DecodeBytes: %v", err)
	}

	if article.Slug != "fire-safety-basics" {
		t.Fatalf("unexpected slug %q", article.Slug)
	}
	if len(article.Citations) != 2 {
		t.Fatalf("expected 2 citations, got %d", len(article.Citations))
	}
	if got := article.Citations[1]; got.ID != "def456" || got.QualityScore != 0.842 || got.Status != "pending" {
		t.Fatalf("unexpected second citation %+v", got)
	}
	if article.ID().String() == "00000000-0000-0000-0000-000000000000" {
		t.Fatal("expected non-nil article id")
	}
}

func TestDecodeAcceptsNullFields(t *testing.T) {
	article, err := Decode(strings.NewReader(string(readFixture(t, "pending.json"))))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if article.HasContent() {
		t.Fatal("expected null content to decode as empty")
	}
	if article.DisplayDomain() != DefaultDomain {
		t.Fatalf("expected default domain, got %q", article.DisplayDomain())
	}
	if len(article.Citations) != 0 {
		t.Fatalf("expected no citations, got %d", len(article.Citations))
	}
}

func TestDecodeBytesSchemaViolation(t *testing.T) {
	_, err := DecodeBytes(readFixture(t, "invalid-schema.json"))
	if err == nil {
		t.Fatal("expected schema error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}

	var richErr *goerrors.Error
	if !errors.As(err, &richErr) {
		t.Fatalf("expected go-errors error, got %T", err)
	}
	if richErr.TextCode != TextCodeSchemaInvalid {
		t.Fatalf("expected %s, got %s", TextCodeSchemaInvalid, richErr.TextCode)
	}
	if len(richErr.ValidationErrors) == 0 {
		t.Fatal("expected field level validation errors")
	}
	for _, fieldErr := range richErr.ValidationErrors {
		if fieldErr.Field == "" || fieldErr.Message == "" {
			t.Fatalf("expected field errors to carry location and message, got %+v", fieldErr)
		}
	}
}

func TestDecodeBytesMalformedJSON(t *testing.T) {
	_, err := DecodeBytes([]byte(`{"title": "Broken"`))
	if !goerrors.IsCategory(err, goerrors.CategoryBadInput) {
		t.Fatalf("expected bad input category, got %v", err)
	}
	var richErr *goerrors.Error
	if !errors.As(err, &richErr) || richErr.TextCode != TextCodeDecodeFailed {
		t.Fatalf("expected %s, got %v", TextCodeDecodeFailed, err)
	}
}

func TestDecodeBytesDerivesSlugFromTitle(t *testing.T) {
	article, err := DecodeBytes([]byte(`{"title": "Cold Weather Shelter", "content": "Layer up."}`))
	if err != nil {
		t.Fatalf("DecodeBytes: %v", err)
	}
	if article.Slug == "" || !slug.IsValid(article.Slug) {
		t.Fatalf("expected derived valid slug, got %q", article.Slug)
	}
}

func TestParseFormat(t *testing.T) {
	cases := []struct {
		name    string
		format  string
		path    string
		want    Format
		wantErr bool
	}{
		{name: "explicit json", format: "json", path: "article.md", want: FormatJSON},
		{name: "explicit markdown", format: "markdown", want: FormatMarkdown},
		{name: "md alias", format: " MD ", want: FormatMarkdown},
		{name: "json extension", path: "articles/a.JSON", want: FormatJSON},
		{name: "md extension", path: "articles/a.md", want: FormatMarkdown},
		{name: "markdown extension", path: "a.markdown", want: FormatMarkdown},
		{name: "unknown extension", path: "notes.txt", wantErr: true},
		{name: "unknown format", format: "yaml", path: "a.json", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseFormat(tc.format, tc.path)
			if tc.wantErr {
				var richErr *goerrors.Error
				if !errors.As(err, &richErr) || richErr.TextCode != TextCodeFormatUnknown {
					t.Fatalf("expected %s, got %v", TextCodeFormatUnknown, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFormat: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestFromDocument(t *testing.T) {
	doc, err := markdown.BuildDocument("water-storage.md", readFixture(t, "water-storage.md"), testTime)
	if err != nil {
		t.Fatalf("BuildDocument: %v", err)
	}

	article, err := FromDocument(doc)
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	if article.Title != "Emergency Water Storage" || article.Domain != "preparedness" {
		t.Fatalf("unexpected metadata %+v", article)
	}
	if article.ConfidenceScore != 0.5 {
		t.Fatalf("expected confidence 0.5, got %v", article.ConfidenceScore)
	}
	if len(article.Citations) != 2 || article.Citations[0].ID != "fema_01" {
		t.Fatalf("unexpected citations %+v", article.Citations)
	}
	if !strings.Contains(article.Content, "[cit:rotate_1]") {
		t.Fatalf("expected markers to survive in content, got %q", article.Content)
	}
	if article.SourcePath != "water-storage.md" {
		t.Fatalf("expected source path, got %q", article.SourcePath)
	}
}

func TestFromDocumentRequiresTitle(t *testing.T) {
	_, err := FromDocument(&interfaces.Document{Body: []byte("body only")})
	var richErr *goerrors.Error
	if !errors.As(err, &richErr) || richErr.TextCode != TextCodeSchemaInvalid {
		t.Fatalf("expected %s, got %v", TextCodeSchemaInvalid, err)
	}
	if len(richErr.ValidationErrors) != 1 || richErr.ValidationErrors[0].Field != "title" {
		t.Fatalf("expected title field error, got %+v", richErr.ValidationErrors)
	}

	if _, err := FromDocument(nil); !errors.Is(err, ErrArticleRequired) {
		t.Fatalf("expected ErrArticleRequired, got %v", err)
	}
}
