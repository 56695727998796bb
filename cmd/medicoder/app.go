package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Veraticus/medicoder/internal/catalog"
	"github.com/Veraticus/medicoder/internal/claim"
	"github.com/Veraticus/medicoder/internal/config"
	"github.com/Veraticus/medicoder/internal/engine"
	"github.com/Veraticus/medicoder/internal/extract"
	"github.com/Veraticus/medicoder/internal/llm"
	"github.com/Veraticus/medicoder/internal/storage"
	"github.com/spf13/viper"
)

// app holds the collaborators shared by every conversation of one process.
type app struct {
	logger    *slog.Logger
	catalog   *catalog.Catalog
	generator *llm.Generator
	extractor *extract.Extractor
	assembler *claim.PDFAssembler
	store     *storage.SQLiteStorage
}

// newApp wires the catalog, text generation, OCR, claim rendering and the
// claims ledger. progress receives OCR progress bars; nil disables them.
func newApp(ctx context.Context, progress io.Writer) (*app, error) {
	v := viper.GetViper()
	logger := slog.Default()

	llmConfig, err := config.LoadLLMConfig(v)
	if err != nil {
		return nil, err
	}
	generator, err := llm.NewGenerator(llmConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create text generator: %w", err)
	}

	store, err := initStorage(ctx)
	if err != nil {
		generator.Close()
		return nil, err
	}

	return &app{
		logger:    logger,
		catalog:   loadCatalog(),
		generator: generator,
		extractor: extract.New(config.LoadExtractOptions(v, progress, logger)),
		assembler: claim.NewPDFAssembler(config.Path(v, config.KeyClaimsOutputDir), logger),
		store:     store,
	}, nil
}

// newEngine creates a conversation bound to the shared collaborators.
func (a *app) newEngine() *engine.Engine {
	return engine.New(engine.Options{
		Generator: a.generator,
		Catalog:   a.catalog,
		Extractor: a.extractor,
		Assembler: a.assembler,
		Recorder:  a.store,
		Logger:    a.logger,
	})
}

func (a *app) Close() {
	a.generator.Close()
	if err := a.store.Close(); err != nil {
		a.logger.Warn("Failed to close claims ledger", "error", err)
	}
}

// loadCatalog reads both code datasets. Missing files leave them empty.
func loadCatalog() *catalog.Catalog {
	v := viper.GetViper()
	return catalog.Load(config.Path(v, config.KeyICD10Path), config.Path(v, config.KeyCPT4Path), slog.Default())
}

// initStorage opens the claims ledger and applies migrations.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(config.Path(viper.GetViper(), config.KeyDatabasePath))
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}
