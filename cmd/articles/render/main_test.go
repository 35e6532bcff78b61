package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-kb/cmd/articles/internal/bootstrap"
)

const jsonArticle = `{
  "slug": "render-cli",
  "title": "Render CLI",
  "content": "Fire is hot [cit:t1]. Water boils [cit:t2].",
  "confidence_score": 0.5,
  "citations": [
    {"id": "t1", "title": "Thermo", "uri": "https://example.org/t1", "quality_score": 0.9, "status": "verified"},
    {"id": "t2", "title": "Phase", "uri": "https://example.org/t2", "quality_score": 1.3, "status": "pending"}
  ]
}`

func writeArticle(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "article.json")
	if err := os.WriteFile(path, []byte(jsonArticle), 0o644); err != nil {
		t.Fatalf("write article: %v", err)
	}
	return path
}

func TestRunRenderWritesFragment(t *testing.T) {
	path := writeArticle(t)
	var stdout, stderr bytes.Buffer

	if err := runRender([]string{"-file", path}, &stdout, &stderr); err != nil {
		t.Fatalf("runRender: %v", err)
	}
	out := stdout.String()
	for _, want := range []string{`href="#cit-t1"`, "Quality: 90.0%", "Quality: 130.0%", `id="cit-t2"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got %q", want, out)
		}
	}
}

func TestRunRenderClampQuality(t *testing.T) {
	path := writeArticle(t)
	var stdout, stderr bytes.Buffer

	if err := runRender([]string{"-file", path, "-clamp-quality"}, &stdout, &stderr); err != nil {
		t.Fatalf("runRender: %v", err)
	}
	if strings.Contains(stdout.String(), "130.0%") {
		t.Fatalf("expected clamped quality, got %q", stdout.String())
	}
}

func TestRunRenderWritesOutputFile(t *testing.T) {
	path := writeArticle(t)
	target := filepath.Join(t.TempDir(), "out.html")
	var stdout, stderr bytes.Buffer

	if err := runRender([]string{"-file", path, "-out", target}, &stdout, &stderr); err != nil {
		t.Fatalf("runRender: %v", err)
	}
	if stdout.Len() != 0 {
		t.Fatalf("expected no stdout output, got %q", stdout.String())
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), `href="#cit-t2"`) {
		t.Fatalf("expected fragment in output file, got %q", data)
	}
}

func TestRunRenderRequiresFile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if err := runRender(nil, &stdout, &stderr); err == nil {
		t.Fatal("expected missing --file to fail")
	}
}

func TestRunRenderBootstrapFailure(t *testing.T) {
	original := moduleBuilder
	defer func() { moduleBuilder = original }()

	boom := errors.New("boom")
	moduleBuilder = func(bootstrap.Options) (*bootstrap.Module, error) {
		return nil, boom
	}

	var stdout, stderr bytes.Buffer
	err := runRender([]string{"-file", "article.json"}, &stdout, &stderr)
	if !errors.Is(err, boom) {
		t.Fatalf("expected bootstrap error, got %v", err)
	}
}
