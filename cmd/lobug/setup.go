package main

import (
	"context"
	"fmt"

	"github.com/sandevgo/lobug/internal/config"
	"github.com/sandevgo/lobug/internal/core"
	"github.com/sandevgo/lobug/internal/providers/embed"
	"github.com/sandevgo/lobug/internal/providers/llm"
	"github.com/sandevgo/lobug/internal/service/agent"
	"github.com/sandevgo/lobug/internal/service/command"
	"github.com/sandevgo/lobug/internal/service/memory"
	"github.com/sandevgo/lobug/internal/storage/sqlite"
	"github.com/sandevgo/lobug/pkg/log"
	"github.com/sandevgo/lobug/pkg/srv"
)

// app holds the wired components shared by every subcommand.
type app struct {
	appCfg   *config.AppConfig
	memCfg   config.MemoryConfig
	store    *sqlite.Store
	llm      *llm.DynamicProvider
	embedder core.Embedder
	memory   *memory.Service
	worker   *memory.Worker
	commands *command.Router

	// cleanups release resources; shut down after everything else
	cleanups []srv.Service
}

func newApp(ctx context.Context) (*app, error) {
	logger := log.FromCtx(ctx)
	runtime := config.GetRuntimePath()

	if err := config.LoadDotEnv(runtime); err != nil {
		return nil, fmt.Errorf("load %s: %w", config.EnvFilePath(runtime), err)
	}

	// 1. Configuration
	appCfg, err := config.ParseAppConfig(runtime)
	if err != nil {
		return nil, err
	}
	memCfg, err := config.LoadMemoryConfig(runtime)
	if err != nil {
		return nil, err
	}
	llmCfg, err := config.ParseLLMConfig()
	if err != nil {
		return nil, err
	}
	embCfg, err := config.ParseEmbedderConfig()
	if err != nil {
		return nil, err
	}

	a := &app{appCfg: appCfg, memCfg: memCfg}

	// 2. Storage
	a.store, err = sqlite.Open(ctx, memCfg.DBPath, memCfg.EmbeddingDim)
	if err != nil {
		return nil, err
	}
	a.cleanups = append(a.cleanups, srv.NewCleanup(a.store.Close))
	logger.Info().Str("path", memCfg.DBPath).Msg("memory store opened")

	// 3. Models
	a.llm, err = llm.NewDynamicProvider(ctx, *llmCfg)
	if err != nil {
		a.close(ctx)
		return nil, err
	}

	var closeEmbedder func() error
	a.embedder, closeEmbedder, err = embed.NewEmbedder(ctx, *embCfg, memCfg)
	if err != nil {
		a.close(ctx)
		return nil, err
	}
	a.cleanups = append(a.cleanups, srv.NewCleanup(closeEmbedder))

	// 4. Memory
	a.memory = memory.NewService(a.store, a.llm, a.embedder, memCfg)
	a.worker = memory.NewWorker(a.memory, appCfg.JobQueueSize)
	a.commands = command.New(command.NewCommands(a.store, a.memory, a.llm))

	return a, nil
}

// newAgent builds the conversation agent with its window restored.
func (a *app) newAgent(ctx context.Context) (*agent.Agent, error) {
	persona, err := agent.LoadPersona(a.appCfg.PersonaPath)
	if err != nil {
		return nil, err
	}

	ag := agent.NewAgent(a.appCfg, a.llm, a.store, a.memory, a.worker, persona)
	if err := ag.Warm(ctx); err != nil {
		return nil, err
	}
	return ag, nil
}

// close releases resources for commands that never start services.
func (a *app) close(ctx context.Context) {
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		if err := a.cleanups[i].Shutdown(ctx); err != nil {
			log.FromCtx(ctx).Error().Err(err).Msg("cleanup failed")
		}
	}
}
