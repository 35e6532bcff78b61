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
	if err := runLint(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		log.Fatalf("articles lint: %v", err)
	}
}

func runLint(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("articles-lint", flag.ContinueOnError)
	fs.SetOutput(stderr)
	file := fs.String("file", "", "Article source to lint (.json or .md)")
	format := fs.String("format", "", "Source format: json or markdown (inferred from the extension when empty)")
	strict := fs.Bool("strict", false, "Exit with an error when any citation issue is reported")
	logLevel := fs.String("log-level", "warn", "Log level: trace, debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("--file is required")
	}

	module, err := moduleBuilder(bootstrap.Options{
		SourcePath: *file,
		LogLevel:   *logLevel,
		Sink:       stdout,
		LogWriter:  stderr,
	})
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer module.Module.Close()

	cmd := articlescmd.LintArticleCommand{
		Source: *file,
		Format: *format,
		Strict: *strict,
	}
	if err := module.Handlers.Lint.Execute(context.Background(), cmd); err != nil {
		return fmt.Errorf("execute lint command: %w", err)
	}
	return nil
}
