package kb_test

import (
	"errors"
	"strings"
	"testing"

	kb "github.com/goliatone/go-kb"
)

func TestConfigValidateMarkdownRequiresFeature(t *testing.T) {
	cfg := kb.DefaultConfig()
	cfg.Features.Markdown = false
	cfg.Markdown.Enabled = true

	if err := cfg.Validate(); !errors.Is(err, kb.ErrMarkdownFeatureRequired) {
		t.Fatalf("expected ErrMarkdownFeatureRequired, got %v", err)
	}
}

func TestConfigValidateCommandsRequireMarkdown(t *testing.T) {
	cfg := kb.DefaultConfig()
	cfg.Features.Markdown = false
	cfg.Commands.Enabled = true

	if err := cfg.Validate(); !errors.Is(err, kb.ErrCommandsFeatureRequired) {
		t.Fatalf("expected ErrCommandsFeatureRequired, got %v", err)
	}
}

func TestConfigValidateLoggingProviderUnknown(t *testing.T) {
	cfg := kb.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "syslog"

	if err := cfg.Validate(); !errors.Is(err, kb.ErrLoggingProviderUnknown) {
		t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
	}
}

func TestConfigValidateListTitleLength(t *testing.T) {
	cfg := kb.DefaultConfig()
	cfg.Citations.ListTitle = strings.Repeat("s", 121)

	if err := cfg.Validate(); !errors.Is(err, kb.ErrCitationListTitleTooLong) {
		t.Fatalf("expected ErrCitationListTitleTooLong, got %v", err)
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	if err := kb.DefaultConfig().Validate(); err != nil {
		t.Fatalf("expected default config to validate, got %v", err)
	}
}
