package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/simplcli/dobby/internal/config"
	"github.com/simplcli/dobby/internal/llm"
	"github.com/simplcli/dobby/internal/logging"
	chromemstore "github.com/simplcli/dobby/internal/memory/store/chromem"
	"github.com/simplcli/dobby/internal/persona"
	"github.com/simplcli/dobby/internal/router"
	"github.com/simplcli/dobby/internal/scrape"
	"github.com/simplcli/dobby/internal/session"
)

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "dobby",
		Short:         "A persona-routing agent with linear and cross-time memory",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")

	root.AddCommand(
		newNewCommand(&configPath),
		newResumeCommand(&configPath),
		newListCommand(&configPath),
	)
	return root
}

// app is everything a REPL session needs, fully wired.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	manager *session.Manager
	router  *router.Router
	dispat  *persona.Dispatcher
}

// buildApp assembles the stack in strict dependency order: config and
// logging first, then the stores, then the persona registry, then the
// router over the same persona set, then the dispatcher. Every failure
// here is a startup failure.
func buildApp(configPath string) (*app, error) {
	// A .env next to the binary is a convenience for the API key;
	// absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, &startupError{cause: err}
	}

	log, err := logging.New(logging.Options{
		Debug: cfg.Logging.Debug,
		File:  cfg.Logging.File,
	})
	if err != nil {
		return nil, &startupError{cause: err}
	}

	completer, err := llm.NewClient(llm.Config{
		APIKey:    cfg.LLM.APIKey,
		Model:     cfg.LLM.Model,
		MaxTokens: cfg.LLM.MaxTokens,
		Timeout:   cfg.LLM.Timeout.Std(),
	}, log)
	if err != nil {
		return nil, &startupError{cause: err}
	}

	fetcher, err := scrape.NewFetcher(scrape.Config{
		Timeout:    cfg.Scrape.Timeout.Std(),
		MinContent: cfg.Scrape.MinContent,
		CacheTTL:   cfg.Scrape.CacheTTL.Std(),
	}, log)
	if err != nil {
		return nil, &startupError{cause: err}
	}

	files, err := session.NewFileStore(cfg.SessionsDir())
	if err != nil {
		return nil, &startupError{cause: err}
	}

	// The vector store opening lazily would hide a misconfigured data
	// dir until mid-session; open it up front instead. Cross-mode
	// sessions degrade gracefully if it later fails.
	vector, err := chromemstore.New(cfg.VectorDir(), cfg.Memory.Collection, newEmbedder(), log)
	if err != nil {
		return nil, &startupError{cause: err}
	}

	manager := session.NewManager(files, vector, session.Config{
		MinSimilarity: cfg.Memory.MinSimilarity,
		MaxRecall:     cfg.Memory.MaxRecall,
	}, log)

	registry, err := buildRegistry(completer, fetcher, log)
	if err != nil {
		return nil, &startupError{cause: err}
	}

	descriptors := make([]router.Descriptor, 0, len(cfg.Router.Personas))
	for _, p := range cfg.Router.Personas {
		if _, ok := registry.Get(p.ID); !ok {
			return nil, &startupError{cause: fmt.Errorf("configured persona %q has no handler", p.ID)}
		}
		descriptors = append(descriptors, router.Descriptor{
			ID:       p.ID,
			Signals:  p.Signals,
			Priority: p.Priority,
		})
	}
	rt := router.New(router.Config{
		Threshold:  cfg.Router.Threshold,
		Default:    cfg.Router.Default,
		BaseWeight: cfg.Router.BaseWeight,
		WordBonus:  cfg.Router.WordBonus,
	}, descriptors)

	dispat := persona.NewDispatcher(registry, persona.DispatchConfig{
		Timeout:      cfg.LLM.Timeout.Std(),
		ContextTurns: cfg.Memory.ContextTurns,
	}, log)

	return &app{cfg: cfg, log: log, manager: manager, router: rt, dispat: dispat}, nil
}

// buildRegistry registers the stock persona set. The general persona
// doubles as the context persona's fallback, so it is built first.
func buildRegistry(completer llm.Completer, fetcher *scrape.Fetcher, log *zap.Logger) (*persona.Registry, error) {
	general := persona.NewGeneral(completer)
	wallet, err := persona.NewWallet(completer, fetcher, log)
	if err != nil {
		return nil, err
	}

	registry := persona.NewRegistry()
	for _, p := range []struct {
		id      string
		handler persona.Handler
	}{
		{"general", general},
		{"search", persona.NewSearch(completer, fetcher)},
		{"readle", persona.NewReadle(completer, fetcher)},
		{"context", persona.NewContextAnswer(completer, general)},
		{"code", persona.NewCode(completer)},
		{"wallet", wallet},
		{"recall", persona.NewRecall(completer)},
	} {
		if err := registry.Register(p.id, p.handler); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func (a *app) close() {
	if err := a.manager.Close(); err != nil {
		a.log.Warn("close session manager", zap.Error(err))
	}
	_ = a.log.Sync()
}
