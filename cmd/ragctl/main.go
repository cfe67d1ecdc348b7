package main

import (
	"context"
	"os"

	"github.com/akolanti/DocAssistant/internal/app"
	"github.com/akolanti/DocAssistant/internal/config"
	"github.com/akolanti/DocAssistant/pkg/logger_i"
)

func main() {
	root := newRootCmd(openFromEnv)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// openFromEnv builds the same services the API server uses. Logs go to stderr
// so command output stays parseable.
func openFromEnv(ctx context.Context, verbose bool) (*app.App, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, err
	}
	level := "warn"
	if verbose {
		level = "debug"
	}
	logger_i.Init(logger_i.Options{JSON: settings.LogJSON, Level: level, Output: os.Stderr})
	return app.New(ctx, settings)
}
