package main

import (
	"fmt"
	"os"

	"github.com/jwulff/groqscribe/internal/api"
	"github.com/jwulff/groqscribe/internal/app"
	"github.com/jwulff/groqscribe/internal/config"
	"github.com/jwulff/groqscribe/internal/credential"
	"github.com/jwulff/groqscribe/internal/logging"
	"github.com/jwulff/groqscribe/internal/pipeline"

	tea "github.com/charmbracelet/bubbletea"
)

const serviceName = "groqscribe"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "groqscribe: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, closer, err := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
		Service: serviceName,
	})
	if err != nil {
		return err
	}
	defer closer.Close()

	var store credential.Store
	sqlStore, err := credential.OpenSQLite(cfg.StorePath, logging.Component(logger, "credential"))
	if err != nil {
		// The session still works; the key just is not remembered.
		logger.Warn().Err(err).Msg("credential store unavailable, using memory")
		store = credential.NewMemory()
	} else {
		defer sqlStore.Close()
		store = sqlStore
	}

	gw, err := api.NewGateway(api.Config{
		BaseURL:          cfg.APIURL,
		CredentialHeader: cfg.CredentialHeader,
		Timeout:          cfg.RequestTimeout,
	}, store, logging.Component(logger, "gateway"))
	if err != nil {
		return err
	}

	logger.Info().
		Str("api_url", gw.BaseURL()).
		Str("store", cfg.StorePath).
		Dur("timeout", cfg.RequestTimeout).
		Msg("starting")

	model := app.New(app.Options{
		Backend:       pipeline.New(gw),
		Store:         store,
		Log:           logging.Component(logger, "session"),
		DefaultModel:  cfg.DefaultModel,
		DefaultPrompt: cfg.DefaultPrompt,
	})

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	logger.Info().Msg("exiting")
	return nil
}
