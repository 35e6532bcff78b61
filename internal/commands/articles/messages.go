package articlescmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	renderArticleMessageType = "kb.articles.render"
	lintArticleMessageType   = "kb.articles.lint"
)

var formatNames = []any{"", "json", "markdown", "md"}

// RenderArticleCommand renders a single article source into an HTML fragment
// (body followed by the citation list).
type RenderArticleCommand struct {
	// Source is the article file path.
	Source string `json:"source"`
	// Format selects the decoder. Empty infers it from the Source extension.
	Format string `json:"format,omitempty"`
	// Output writes the fragment to a file instead of the handler sink.
	Output string `json:"output,omitempty"`
}

// Type implements command.Message.
func (RenderArticleCommand) Type() string { return renderArticleMessageType }

// Validate ensures a source is present and the format is known.
func (cmd RenderArticleCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Source, validation.Required, validation.By(requireNonBlank("kb.articles.render.source_required", "source is required"))),
		validation.Field(&cmd.Format, validation.By(normalisedIn(formatNames...))),
	)
}

// LintArticleCommand reports citation problems for a single article source.
type LintArticleCommand struct {
	// Source is the article file path.
	Source string `json:"source"`
	// Format selects the decoder. Empty infers it from the Source extension.
	Format string `json:"format,omitempty"`
	// Strict turns reported issues into a command failure.
	Strict bool `json:"strict,omitempty"`
}

// Type implements command.Message.
func (LintArticleCommand) Type() string { return lintArticleMessageType }

// Validate ensures a source is present and the format is known.
func (cmd LintArticleCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Source, validation.Required, validation.By(requireNonBlank("kb.articles.lint.source_required", "source is required"))),
		validation.Field(&cmd.Format, validation.By(normalisedIn(formatNames...))),
	)
}

func requireNonBlank(code, message string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if strings.TrimSpace(s) == "" {
			return validation.NewError(code, message)
		}
		return nil
	}
}

func normalisedIn(allowed ...any) validation.RuleFunc {
	rule := validation.In(allowed...).Error("must be one of json, markdown")
	return func(value any) error {
		s, _ := value.(string)
		return rule.Validate(strings.ToLower(strings.TrimSpace(s)))
	}
}
