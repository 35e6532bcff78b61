package di_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	articlescmd "github.com/goliatone/go-kb/internal/commands/articles"
	"github.com/goliatone/go-kb/internal/commands/fixtures"
	"github.com/goliatone/go-kb/internal/di"
	"github.com/goliatone/go-kb/internal/runtimeconfig"
	"github.com/goliatone/go-kb/pkg/citation"
	"github.com/goliatone/go-kb/pkg/interfaces"
)

func TestNewContainerRejectsInvalidConfig(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Markdown.Enabled = true
	cfg.Markdown.ContentDir = ""

	if _, err := di.NewContainer(cfg); !errors.Is(err, runtimeconfig.ErrMarkdownContentDirRequired) {
		t.Fatalf("expected ErrMarkdownContentDirRequired, got %v", err)
	}
}

func TestNewContainerRejectsMissingContentDir(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Markdown.Enabled = true
	cfg.Markdown.ContentDir = filepath.Join(t.TempDir(), "missing")

	if _, err := di.NewContainer(cfg); err == nil {
		t.Fatal("expected error for missing content directory")
	}
}

func TestNewContainerDefaults(t *testing.T) {
	container, err := di.NewContainer(runtimeconfig.DefaultConfig())
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}

	if container.LoggerProvider() != nil {
		t.Fatalf("expected no logger provider when logging is disabled, got %T", container.LoggerProvider())
	}
	if container.MarkdownService() != nil {
		t.Fatal("expected no markdown service when markdown is disabled")
	}
	if container.MarkdownParser() == nil || container.ArticleService() == nil {
		t.Fatal("expected parser and article service to be wired")
	}
	if container.CommandHandlers() != nil {
		t.Fatal("expected no command handlers when commands are disabled")
	}
}

func TestNewContainerHonoursParserOverride(t *testing.T) {
	parser := &stubParser{}
	container, err := di.NewContainer(runtimeconfig.DefaultConfig(), di.WithMarkdownParser(parser))
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}

	article := writeArticle(t, `{"slug":"x","title":"X","content":"Body[cit:a1]"}`)
	loaded, err := container.ArticleService().Load(context.Background(), article, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	rendered, err := container.ArticleService().Render(context.Background(), loaded)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if string(rendered.BodyHTML) != "stub" {
		t.Fatalf("expected stub parser output, got %q", rendered.BodyHTML)
	}
	if parser.calls != 1 {
		t.Fatalf("expected parser to be called once, got %d", parser.calls)
	}
	if rendered.Stats.Unresolved != 1 {
		t.Fatalf("expected approximated stats, got %+v", rendered.Stats)
	}
}

func TestNewContainerAppliesCitationConfig(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Citations.ClampQuality = true
	cfg.Citations.ListTitle = "References"

	container, err := di.NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}

	article := writeArticle(t, `{"slug":"x","title":"X","content":"Body[cit:a1]","confidence_score":1.3,`+
		`"citations":[{"id":"a1","title":"A","uri":"https://example.org","quality_score":1.7}]}`)
	loaded, err := container.ArticleService().Load(context.Background(), article, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	rendered, err := container.ArticleService().Render(context.Background(), loaded)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	fragment := string(rendered.Fragment())
	if strings.Contains(fragment, "170.0%") {
		t.Fatalf("expected clamped quality, got %q", fragment)
	}
	if !strings.Contains(fragment, "Quality: 100.0%") {
		t.Fatalf("expected clamped quality label, got %q", fragment)
	}
	if !strings.Contains(fragment, `<h3 class="citations-title">References</h3>`) {
		t.Fatalf("expected configured list title, got %q", fragment)
	}
	if rendered.Confidence != "100.0%" {
		t.Fatalf("expected clamped confidence, got %s", rendered.Confidence)
	}
}

func TestNewContainerWiresCommands(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Commands.Enabled = true

	reg := fixtures.NewRecordingRegistry()
	dispatcher := fixtures.NewRecordingDispatcher()
	var sink bytes.Buffer

	container, err := di.NewContainer(cfg,
		di.WithCommandRegistry(reg),
		di.WithCommandDispatcher(dispatcher),
		di.WithCommandSink(&sink),
	)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}

	handlers := container.CommandHandlers()
	if handlers == nil || handlers.Render == nil || handlers.Lint == nil {
		t.Fatalf("expected command handlers, got %#v", handlers)
	}
	if len(reg.Handlers) != 2 || len(dispatcher.Handlers) != 2 {
		t.Fatalf("expected handlers registered with registry and dispatcher, got %d/%d", len(reg.Handlers), len(dispatcher.Handlers))
	}

	source := writeArticle(t, `{"slug":"x","title":"X","content":"See[cit:a1]","citations":[]}`)
	if err := handlers.Render.Execute(context.Background(), articlescmd.RenderArticleCommand{Source: source}); err != nil {
		t.Fatalf("render command: %v", err)
	}
	if !strings.Contains(sink.String(), "citation-unresolved") {
		t.Fatalf("expected rendered fragment in sink, got %q", sink.String())
	}

	container.Close()
	for _, sub := range dispatcher.Subscriptions {
		if !sub.Unsubscribed {
			t.Fatalf("expected subscription for %T to be released", sub.Handler)
		}
	}
}

func TestNewContainerStrictLintFromConfig(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Commands.Enabled = true
	cfg.Commands.StrictLint = true

	container, err := di.NewContainer(cfg, di.WithCommandSink(&bytes.Buffer{}))
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}

	source := writeArticle(t, `{"slug":"x","title":"X","content":"See[cit:a1]"}`)
	err = container.CommandHandlers().Lint.Execute(context.Background(), articlescmd.LintArticleCommand{Source: source})
	if !errors.Is(err, articlescmd.ErrLintIssuesFound) {
		t.Fatalf("expected strict lint failure, got %v", err)
	}
}

func TestNewContainerDispatcherErrors(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Commands.Enabled = true

	dispatcher := fixtures.NewRecordingDispatcher()
	dispatcher.Err = errors.New("dispatcher offline")

	if _, err := di.NewContainer(cfg, di.WithCommandDispatcher(dispatcher)); err == nil {
		t.Fatal("expected dispatcher error")
	}
}

func writeArticle(t *testing.T, payload string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "article.json")
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write article: %v", err)
	}
	return path
}

type stubParser struct {
	calls int
}

var _ interfaces.MarkdownParser = (*stubParser)(nil)

func (p *stubParser) Parse([]byte) ([]byte, error) {
	return []byte("stub"), nil
}

func (p *stubParser) ParseWithOptions([]byte, interfaces.ParseOptions) ([]byte, error) {
	return []byte("stub"), nil
}

func (p *stubParser) ParseWithCitations([]byte, citation.Set, interfaces.ParseOptions) ([]byte, error) {
	p.calls++
	return []byte("stub"), nil
}
