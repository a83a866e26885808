package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/lessonscout/internal/adapters/driven/ai"
	"github.com/custodia-labs/lessonscout/internal/adapters/driven/config/file"
	"github.com/custodia-labs/lessonscout/internal/adapters/driven/notify"
	"github.com/custodia-labs/lessonscout/internal/adapters/driven/relevance"
	"github.com/custodia-labs/lessonscout/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/lessonscout/internal/connectors"
	"github.com/custodia-labs/lessonscout/internal/core/domain"
	"github.com/custodia-labs/lessonscout/internal/core/ports/driven"
	"github.com/custodia-labs/lessonscout/internal/core/ports/driving"
	"github.com/custodia-labs/lessonscout/internal/core/services"
	"github.com/custodia-labs/lessonscout/internal/logger"
)

var log = logger.With("cli")

// Runtime holds the wired services for commands that run searches.
type Runtime struct {
	Settings    driving.SettingsService
	AppSettings *domain.AppSettings
	Search      driving.SearchService
	Scheduler   driving.Scheduler

	// Recover re-enqueues sessions left pending by a previous process.
	Recover func(ctx context.Context) (int, error)

	// WatchConfig blocks, calling onChange whenever the config file changes.
	WatchConfig func(ctx context.Context, onChange func()) error

	// Warnings lists non-fatal setup problems, such as disabled connectors.
	Warnings []string

	closers []func()
}

// Close releases resources in reverse order of acquisition.
func (r *Runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
	r.closers = nil
}

// runtimeOptions tunes how the runtime is wired.
type runtimeOptions struct {
	// sharedFeed subscribes through Redis when configured, so watchers see
	// sessions run by other processes.
	sharedFeed bool

	// readOnly skips the LLM and connectors for commands that only read
	// stored sessions.
	readOnly bool
}

// Factories are variables so tests can substitute mocks.
var (
	openSettings = defaultOpenSettings
	openRuntime  = defaultOpenRuntime
)

func defaultOpenSettings() (driving.SettingsService, error) {
	cfg, err := file.NewConfigStore(homeDir)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	return services.NewSettingsService(cfg, ai.NewConfigValidator()), nil
}

func subdir(name string) string {
	if homeDir == "" {
		return ""
	}
	return filepath.Join(homeDir, name)
}

//nolint:funlen // linear wiring of every adapter
func defaultOpenRuntime(ctx context.Context, opts runtimeOptions) (*Runtime, error) {
	cfg, err := file.NewConfigStore(homeDir)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	settingsSvc := services.NewSettingsService(cfg, ai.NewConfigValidator())
	settings, err := settingsSvc.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	rt := &Runtime{
		Settings:    settingsSvc,
		AppSettings: settings,
		WatchConfig: cfg.Watch,
	}
	ok := false
	defer func() {
		if !ok {
			rt.Close()
		}
	}()

	store, err := sqlite.NewStore(subdir("data"))
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	rt.closers = append(rt.closers, func() { _ = store.Close() })
	log.Debug("store at %s", store.Path())

	prompts, err := file.NewPromptStore(subdir("prompts"))
	if err != nil {
		return nil, fmt.Errorf("opening prompts: %w", err)
	}

	var (
		llm   driven.LLMService
		conns []driven.Connector
	)
	if !opts.readOnly {
		aiResult := ai.Init(&settings.LLM)
		rt.closers = append(rt.closers, aiResult.Close)
		rt.Warnings = append(rt.Warnings, aiResult.Warnings...)
		llm = aiResult.LLMService

		var warnings []string
		conns, warnings, err = connectors.NewFactory().Build(ctx, driven.ConnectorDeps{
			Settings: settings.Connectors,
			LLM:      llm,
			Prompts:  prompts,
		})
		if err != nil {
			return nil, fmt.Errorf("building connectors: %w", err)
		}
		rt.Warnings = append(rt.Warnings, warnings...)
		if llm == nil {
			rt.Warnings = append(rt.Warnings, "no LLM configured: results are not relevance filtered")
		}
	}
	registry, err := services.NewConnectorRegistry(conns...)
	if err != nil {
		return nil, fmt.Errorf("registering connectors: %w", err)
	}

	var scorer driven.RelevanceScorer
	if llm != nil {
		s := relevance.NewScorer(llm)
		s.SetPromptStore(prompts)
		scorer = s
	}
	filter := services.NewRelevanceFilter(scorer, settings.FilterTimeout)

	hub := notify.NewHub(0)
	rt.closers = append(rt.closers, hub.Close)
	notifier := notify.Fanout{hub}
	var subscriber driven.Subscriber = hub
	if url := settings.Notifier.RedisURL; url != "" {
		rdb, err := notify.DialRedis(ctx, url)
		if err != nil {
			rt.Warnings = append(rt.Warnings, fmt.Sprintf("redis disabled: %v", err))
		} else {
			rt.closers = append(rt.closers, func() { _ = rdb.Close() })
			shared := notify.NewRedis(rdb)
			notifier = append(notifier, shared)
			if opts.sharedFeed {
				subscriber = shared
			}
		}
	}

	recorder := services.NewEventRecorder(store.EventLog(), notifier)
	sessions := services.NewSessionService(store.SessionStore(), recorder, registry, filter, notifier, subscriber)
	scheduler := services.NewScheduler(settings.Scheduler, sessions)
	sessions.SetScheduler(scheduler)

	rt.Search = sessions
	rt.Scheduler = scheduler
	rt.Recover = sessions.Recover
	ok = true
	return rt, nil
}
