package main

import (
	"fmt"
	"os"

	"github.com/jwulff/groqscribe/internal/api"
	"github.com/jwulff/groqscribe/internal/config"
	"github.com/jwulff/groqscribe/internal/credential"
	"github.com/jwulff/groqscribe/internal/logging"
	"github.com/jwulff/groqscribe/internal/mcptools"
	"github.com/jwulff/groqscribe/internal/pipeline"
	"github.com/mark3labs/mcp-go/server"
)

const (
	serviceName = "groqscribe-mcp"
	version     = "0.1.0"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "groqscribe-mcp: %v\n", err)
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

	// The MCP server reuses the key saved by the TUI. It cannot prompt for one.
	store, err := credential.OpenSQLite(cfg.StorePath, logging.Component(logger, "credential"))
	if err != nil {
		return fmt.Errorf("open credential store: %w", err)
	}
	defer store.Close()
	if _, ok := store.Read(); !ok {
		logger.Warn().Msg("no stored credential; requests will be rejected until one is saved with groqscribe")
	}

	gw, err := api.NewGateway(api.Config{
		BaseURL:          cfg.APIURL,
		CredentialHeader: cfg.CredentialHeader,
		Timeout:          cfg.RequestTimeout,
	}, store, logging.Component(logger, "gateway"))
	if err != nil {
		return err
	}

	handlers := mcptools.New(pipeline.New(gw), mcptools.Defaults{
		Model:       cfg.DefaultModel,
		Instruction: cfg.DefaultPrompt,
	}, logging.Component(logger, "mcp"))

	logger.Info().Str("api_url", gw.BaseURL()).Msg("serving MCP over stdio")
	if err := server.ServeStdio(mcptools.NewServer(serviceName, version, handlers)); err != nil {
		return fmt.Errorf("serve stdio: %w", err)
	}
	return nil
}
