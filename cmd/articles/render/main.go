package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/goliatone/go-kb/cmd/articles/internal/bootstrap"
	articlescmd "github.com/goliatone/go-kb/internal/commands/articles"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	if err := runRender(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		log.Fatalf("articles render: %v", err)
	}
}

func runRender(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("articles-render", flag.ContinueOnError)
	fs.SetOutput(stderr)
	file := fs.String("file", "", "Article source to render (.json or .md)")
	format := fs.String("format", "", "Source format: json or markdown (inferred from the extension when empty)")
	out := fs.String("out", "", "Write the HTML fragment to this path instead of stdout")
	logLevel := fs.String("log-level", "warn", "Log level: trace, debug, info, warn, error")
	clamp := fs.Bool("clamp-quality", false, "Clamp quality and confidence scores into [0, 1] before display")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("--file is required")
	}

	module, err := moduleBuilder(bootstrap.Options{
		SourcePath:   *file,
		LogLevel:     *logLevel,
		ClampQuality: *clamp,
		Sink:         stdout,
		LogWriter:    stderr,
	})
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer module.Module.Close()

	cmd := articlescmd.RenderArticleCommand{
		Source: *file,
		Format: *format,
		Output: *out,
	}
	if err := module.Handlers.Render.Execute(context.Background(), cmd); err != nil {
		return fmt.Errorf("execute render command: %w", err)
	}
	return nil
}
