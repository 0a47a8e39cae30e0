package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tribunal/internal/cache"
	"tribunal/internal/config"
	"tribunal/internal/ledger"
	"tribunal/internal/llm"
	"tribunal/internal/logging"
	"tribunal/internal/session"
	"tribunal/internal/store"
	"tribunal/internal/tools"
	"tribunal/internal/trial"
	"tribunal/internal/types"
)

// app is the fully wired orchestrator: every subcommand builds one and
// tears it down when done.
type app struct {
	cfg       *config.Config
	ledger    ledger.Client
	memLedger *ledger.MemoryLedger
	llm       types.LLMClient
	sctx      *types.SessionContext
	registry  *tools.Registry
	cache     *cache.CaseCache
	profiles  *trial.ProfileSet
	watcher   *trial.ProfileWatcher
	scheduler *trial.Scheduler
	assistant *session.Assistant
	store     *store.TranscriptStore
}

func newApp(ws string) (*app, error) {
	if err := logging.Initialize(ws); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	cfg, err := config.Load(config.DefaultPath(ws))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	a := &app{cfg: cfg}

	settle := config.ParseDuration(cfg.Ledger.SettleDelay, 3*time.Second)
	switch cfg.Ledger.Mode {
	case "http":
		a.ledger = ledger.NewHTTPClient(ledger.HTTPConfig{
			Endpoint: cfg.Ledger.Endpoint,
			Timeout:  config.ParseDuration(cfg.Ledger.Timeout, 30*time.Second),
		})
	default:
		// Local in-memory ledger, with the same confirmation latency
		// a remote one would have.
		a.memLedger = ledger.NewMemoryLedger(cfg.Ledger.OwnerAddress, settle)
		a.ledger = a.memLedger
	}

	a.llm, err = llm.NewClient(llm.Config{
		Provider:        cfg.LLM.Provider,
		APIKey:          cfg.LLM.APIKey,
		Model:           cfg.LLM.Model,
		BaseURL:         cfg.LLM.BaseURL,
		Timeout:         config.ParseDuration(cfg.LLM.Timeout, 2*time.Minute),
		MaxOutputTokens: cfg.LLM.MaxOutputTokens,
		Temperature:     cfg.LLM.Temperature,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create llm client: %w", err)
	}

	a.sctx = &types.SessionContext{}
	addr := userAddress
	if addr == "" {
		addr = os.Getenv("TRIBUNAL_USER_ADDRESS")
	}
	if addr != "" {
		a.sctx.Connected = true
		a.sctx.UserAddress = addr
	}
	if owner, oerr := a.ledger.GetOwner(context.Background()); oerr == nil {
		a.sctx.Privileged = owner != "" && owner == a.sctx.UserAddress
	}

	a.registry = tools.NewRegistry()
	tools.RegisterCourtroomTools(a.registry, a.ledger, a.sctx)

	a.cache = cache.New(a.ledger, a.sctx.UserAddress, settle)
	if err := a.cache.Reload(context.Background()); err != nil {
		logging.Get(logging.CategoryBoot).Warn("initial case load failed: %v", err)
	}

	profileDir := cfg.Trial.ProfileDir
	if profileDir != "" && !filepath.IsAbs(profileDir) {
		profileDir = filepath.Join(ws, profileDir)
	}
	a.profiles, err = trial.NewProfileSet(profileDir)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to load agent profiles: %w", err)
	}
	a.watcher, err = trial.WatchProfiles(a.profiles)
	if err != nil {
		logging.Get(logging.CategoryBoot).Warn("profile watcher unavailable: %v", err)
	}

	a.scheduler = trial.NewScheduler(a.llm, a.registry, a.cache, a.sctx, a.profiles,
		config.ParseDuration(cfg.Trial.TurnDelay, time.Second),
		config.ParseDuration(cfg.Trial.PollTick, 100*time.Millisecond))
	a.assistant = session.NewAssistant(a.llm, a.registry, a.cache, a.sctx, cfg.Session.MaxRounds)

	storePath := cfg.Store.Path
	if !filepath.IsAbs(storePath) {
		storePath = filepath.Join(ws, storePath)
	}
	a.store, err = store.Open(storePath)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open transcript store: %w", err)
	}

	return a, nil
}

func (a *app) Close() {
	if a.watcher != nil {
		_ = a.watcher.Close()
	}
	if a.store != nil {
		_ = a.store.Close()
	}
	if a.memLedger != nil {
		a.memLedger.Close()
	}
	logging.Reset()
}
