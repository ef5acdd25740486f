package main

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/MRamiBalles/werewolf-agent/internal/agent"
	"github.com/MRamiBalles/werewolf-agent/internal/agent/action"
	"github.com/MRamiBalles/werewolf-agent/internal/events"
	"github.com/MRamiBalles/werewolf-agent/internal/infra/ai"
	"github.com/MRamiBalles/werewolf-agent/internal/infra/cache"
	"github.com/MRamiBalles/werewolf-agent/internal/infra/storage"
	"github.com/MRamiBalles/werewolf-agent/internal/platform/config"
	"github.com/MRamiBalles/werewolf-agent/internal/platform/logger"
	"github.com/MRamiBalles/werewolf-agent/internal/platform/metrics"
	"github.com/MRamiBalles/werewolf-agent/internal/platform/optimization"
	"github.com/MRamiBalles/werewolf-agent/internal/service"
	"github.com/spf13/cobra"
)

// deps is everything a command needs once configuration is resolved.
type deps struct {
	cfg     *config.Config
	logger  *logger.Logger
	metrics *metrics.Collector
	tuning  *optimization.Config
	repo    storage.DecisionRepository
	db      *sql.DB
	events  *events.EventLog
	regimes *cache.RegimeCache
	svc     *service.PlayerService
}

func (d *deps) Close() {
	d.events.Flush()
	if d.db != nil {
		d.db.Close()
	}
}

// meteredSink counts ledger writes.
type meteredSink struct {
	inner   events.EventPersister
	metrics *metrics.Collector
}

func (s meteredSink) Append(e events.DecisionEvent) error {
	err := s.inner.Append(e)
	s.metrics.RecordEventWrite(err)
	return err
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, err
	}
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

// buildDeps wires the service. withStorage is false for one-shot commands.
func buildDeps(cmd *cobra.Command, withStorage bool) (*deps, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	d := &deps{
		cfg:     cfg,
		logger:  logger.New(logger.ParseLevel(cfg.LogLevel), os.Stdout, os.Stderr),
		metrics: metrics.Get(),
		tuning:  optimization.DefaultConfig(),
	}

	var persister events.EventPersister
	if withStorage {
		d.repo, d.db, err = storage.Open(cfg.Storage.Driver, cfg.Storage.DSN)
		if err != nil {
			return nil, err
		}
		if d.db != nil {
			if cfg.Storage.Driver == storage.DriverPostgres {
				d.db.SetMaxOpenConns(d.tuning.DBMaxOpenConns)
			}
			persister = meteredSink{inner: storage.EventSink{Repo: d.repo}, metrics: d.metrics}
			d.logger.Info(fmt.Sprintf("Decision ledger: %s", cfg.Storage.Driver))
		}
	}
	d.events = events.NewEventLog(persister)
	d.events.OnPersistError(func(e events.DecisionEvent, err error) {
		d.logger.Error(err.Error())
	})

	provider, err := ai.NewProvider(ai.ProviderConfig{
		Provider:         cfg.AI.Provider,
		APIKey:           cfg.AI.APIKey,
		BaseURL:          cfg.AI.BaseURL,
		Model:            cfg.AI.Model,
		Timeout:          time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
		DailyBudgetUSD:   cfg.AI.DailyBudgetUSD,
		MonthlyBudgetUSD: cfg.AI.MonthlyBudgetUSD,
	})
	if err != nil {
		d.Close()
		return nil, err
	}

	d.regimes, err = cache.NewRegimeCache(cfg.RegimeCacheSize)
	if err != nil {
		d.Close()
		return nil, err
	}

	settings := action.DefaultSettings()
	settings.Aggressiveness = cfg.Agent.Aggressiveness
	settings.MaxSpeechRunes = cfg.Agent.MaxSpeechRunes
	seed := cfg.Agent.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	opts := service.Options{
		EventLog:    d.events,
		Metrics:     d.metrics,
		Logger:      d.logger,
		Tuning:      d.tuning,
		MaxAttempts: cfg.AI.MaxAttempts,
		MaxTokens:   cfg.AI.MaxTokens,
		Temperature: cfg.AI.Temperature,
		Personality: cfg.Agent.Personality,
		Provider:    provider,
		MindOptions: []agent.Option{
			agent.WithSeed(seed),
			agent.WithAnalyzer(d.regimes),
			agent.WithSettings(settings),
		},
	}
	d.svc = service.NewPlayerService(opts)
	return d, nil
}
