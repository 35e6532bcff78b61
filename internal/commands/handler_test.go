package commands

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-kb/pkg/interfaces"
)

type testMessage struct {
	Source string
}

func (testMessage) Type() string { return "kb.test.message" }

func (testMessage) Validate() error { return nil }

type invalidMessage struct{}

func (invalidMessage) Type() string { return "kb.test.invalid" }

func (invalidMessage) Validate() error {
	return errors.New("invalid")
}

type fieldMessage struct {
	Source string
}

func (fieldMessage) Type() string { return "kb.test.fields" }

func (m fieldMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Source, validation.Required),
	)
}

func TestHandlerExecuteSuccess(t *testing.T) {
	called := false
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		called = true
		return nil
	})

	if err := h.Execute(context.Background(), testMessage{}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !called {
		t.Fatal("expected handler to be invoked")
	}
}

func TestHandlerValidationShortCircuitsExecution(t *testing.T) {
	called := false
	h := NewHandler[invalidMessage](func(ctx context.Context, msg invalidMessage) error {
		called = true
		return nil
	})

	err := h.Execute(context.Background(), invalidMessage{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if called {
		t.Fatal("expected handler not to run when validation fails")
	}
}

func TestHandlerValidationKeepsFieldErrors(t *testing.T) {
	h := NewHandler[fieldMessage](func(ctx context.Context, msg fieldMessage) error {
		return nil
	})

	err := h.Execute(context.Background(), fieldMessage{})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if !strings.Contains(err.Error(), "Source") {
		t.Fatalf("expected field name in error, got %v", err)
	}
}

func TestHandlerContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		called = true
		return nil
	})

	err := h.Execute(ctx, testMessage{})
	if err == nil {
		t.Fatal("expected context cancellation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if called {
		t.Fatal("expected handler not to run when context is cancelled")
	}
}

func TestHandlerWrapsExecutionError(t *testing.T) {
	execErr := errors.New("boom")
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		return execErr
	})

	err := h.Execute(context.Background(), testMessage{})
	if err == nil {
		t.Fatal("expected wrapped execution error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if !errors.Is(err, execErr) {
		t.Fatalf("expected original error to remain reachable, got %v", err)
	}
}

func TestHandlerPreservesCategorisedErrors(t *testing.T) {
	notFound := goerrors.New("article missing", goerrors.CategoryNotFound).WithTextCode("ARTICLE_SOURCE_UNREADABLE")
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		return notFound
	})

	err := h.Execute(context.Background(), testMessage{})
	if !goerrors.IsCategory(err, goerrors.CategoryNotFound) {
		t.Fatalf("expected not found category to survive, got %v", err)
	}
}

func TestHandlerHonoursTimeoutOption(t *testing.T) {
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(200 * time.Millisecond):
			return nil
		}
	}, WithTimeout[testMessage](10*time.Millisecond))

	err := h.Execute(context.Background(), testMessage{})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	var richErr *goerrors.Error
	if !errors.As(err, &richErr) || richErr.TextCode != commandContextTimeout {
		t.Fatalf("expected %s, got %v", commandContextTimeout, err)
	}
}

func TestHandlerTelemetryReceivesMessageFields(t *testing.T) {
	var got []TelemetryInfo
	clock := fixedClock(time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC), 5*time.Millisecond)

	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		return nil
	},
		WithOperation[testMessage]("articles.render"),
		WithClock[testMessage](clock),
		WithMessageFields(func(msg testMessage) map[string]any {
			return map[string]any{"source": msg.Source}
		}),
		WithTelemetry(func(ctx context.Context, msg testMessage, info TelemetryInfo) {
			got = append(got, info)
		}),
	)

	if err := h.Execute(context.Background(), testMessage{Source: "fire.json"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected one telemetry call, got %d", len(got))
	}
	info := got[0]
	if info.Status != TelemetryStatusSuccess || info.Error != nil {
		t.Fatalf("unexpected outcome %+v", info)
	}
	if info.Command != "kb.test.message" || info.Operation != "articles.render" {
		t.Fatalf("unexpected command metadata %+v", info)
	}
	if info.Fields["source"] != "fire.json" || info.Fields["operation"] != "articles.render" {
		t.Fatalf("unexpected fields %#v", info.Fields)
	}
	if info.Duration != 5*time.Millisecond {
		t.Fatalf("expected 5ms duration, got %s", info.Duration)
	}
}

func TestDefaultTelemetryLogsOutcome(t *testing.T) {
	logger := &recordingLogger{}
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		return errors.New("boom")
	}, WithTelemetry(DefaultTelemetry[testMessage](logger)))

	_ = h.Execute(context.Background(), testMessage{})

	if len(logger.errors) != 1 || logger.errors[0] != "command.execute.failed" {
		t.Fatalf("expected failure entry, got %v", logger.errors)
	}
}

func fixedClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	current := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := current
		current = current.Add(step)
		return now
	}
}

type recordingLogger struct {
	infos  []string
	errors []string
}

func (l *recordingLogger) Trace(string, ...any)                          {}
func (l *recordingLogger) Debug(string, ...any)                          {}
func (l *recordingLogger) Info(msg string, _ ...any)                     { l.infos = append(l.infos, msg) }
func (l *recordingLogger) Warn(string, ...any)                           {}
func (l *recordingLogger) Error(msg string, _ ...any)                    { l.errors = append(l.errors, msg) }
func (l *recordingLogger) Fatal(string, ...any)                          {}
func (l *recordingLogger) WithContext(context.Context) interfaces.Logger { return l }
