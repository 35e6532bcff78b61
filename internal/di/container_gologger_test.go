package di

import (
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-kb/internal/logging/gologger"
	"github.com/goliatone/go-kb/internal/runtimeconfig"
)

func TestConfigureLoggerProviderUsesGoLoggerAdapter(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "json"

	container, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}

	provider, ok := container.loggerProvider.(*gologger.Provider)
	if !ok {
		t.Fatalf("expected go-logger provider, got %T", container.loggerProvider)
	}

	logger := provider.GetLogger("kb.test")
	if logger == nil {
		t.Fatal("expected logger from go-logger provider, got nil")
	}
}

func TestConfigureLoggerProviderRejectsInvalidGoLoggerLevel(t *testing.T) {
	container := &Container{Config: runtimeconfig.DefaultConfig()}
	container.Config.Features.Logger = true
	container.Config.Logging.Provider = "gologger"
	container.Config.Logging.Level = "loud"

	err := container.configureLoggerProvider()
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
