package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/asset-draft/external/anubis"
	"github.com/riskibarqy/asset-draft/external/jobqueue"
	"github.com/riskibarqy/asset-draft/external/market"
	"github.com/riskibarqy/asset-draft/internal/config"
	"github.com/riskibarqy/asset-draft/internal/domain/asset"
	"github.com/riskibarqy/asset-draft/internal/domain/draft"
	"github.com/riskibarqy/asset-draft/internal/domain/insight"
	"github.com/riskibarqy/asset-draft/internal/domain/jobscheduler"
	"github.com/riskibarqy/asset-draft/internal/domain/league"
	"github.com/riskibarqy/asset-draft/internal/domain/schedule"
	"github.com/riskibarqy/asset-draft/internal/domain/scoring"
	"github.com/riskibarqy/asset-draft/internal/infrastructure/events"
	cacherepo "github.com/riskibarqy/asset-draft/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/asset-draft/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/asset-draft/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/asset-draft/internal/interfaces/httpapi"
	basecache "github.com/riskibarqy/asset-draft/internal/platform/cache"
	idgen "github.com/riskibarqy/asset-draft/internal/platform/id"
	"github.com/riskibarqy/asset-draft/internal/platform/logging"
	"github.com/riskibarqy/asset-draft/internal/usecase"
	"github.com/sourcegraph/conc"
)

type repositories struct {
	leagues    league.Repository
	assets     asset.Repository
	drafts     draft.Repository
	insights   insight.Repository
	schedules  schedule.Repository
	scores     scoring.Repository
	dispatches jobscheduler.Repository
}

// App owns the HTTP server, the background loops and every connection that
// has to be released on shutdown.
type App struct {
	Server *http.Server

	cfg      config.Config
	logger   *logging.Logger
	enforcer *usecase.DraftEnforcerService
	season   *usecase.SeasonService
	market   *usecase.MarketService
	closers  []func() error
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	a := &App{cfg: cfg, logger: logger}
	repos, err := a.openRepositories(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	publisher, err := a.newEventPublisher()
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	queue, err := a.newJobQueue()
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	feed, err := market.NewFeed(market.FeedConfig{
		Provider:        cfg.MarketProvider,
		FallbackEnabled: cfg.MarketFallbackEnabled,
		Simulated: market.SimulatedConfig{
			Model:     market.SimModel(cfg.SimModel),
			DriftBps:  cfg.SimDriftBps,
			FactorVol: cfg.SimFactorVol,
		},
		Kraken: market.KrakenConfig{
			BaseURL:        cfg.KrakenBaseURL,
			Timeout:        cfg.KrakenTimeout,
			MaxRetries:     cfg.KrakenMaxRetries,
			CircuitBreaker: cfg.KrakenCircuit,
		},
	}, logger)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	ids := idgen.NewUUIDGenerator()
	leagueSvc := usecase.NewLeagueService(repos.leagues, repos.insights, ids)
	draftSvc := usecase.NewDraftService(
		repos.leagues,
		repos.assets,
		repos.drafts,
		repos.insights,
		repos.dispatches,
		usecase.NewAutoPickSelector(repos.assets, repos.drafts, nil),
		publisher,
		queue,
		ids,
		usecase.DraftServiceConfig{Defaults: draft.Settings{
			Rounds:           cfg.DraftDefaultRounds,
			PickSeconds:      cfg.DraftDefaultPickSeconds,
			CountdownSeconds: cfg.DraftDefaultCountdownSeconds,
		}},
		logger,
	)
	a.season = usecase.NewSeasonService(
		repos.leagues,
		repos.assets,
		repos.drafts,
		repos.schedules,
		repos.scores,
		repos.insights,
		ids,
		usecase.SeasonServiceConfig{WeeklyWorkers: cfg.WeeklyWorkers},
		logger,
	)
	a.market = usecase.NewMarketService(repos.assets, feed, logger)
	a.enforcer = usecase.NewDraftEnforcerService(repos.drafts, draftSvc, usecase.DraftEnforcerConfig{
		Interval: cfg.DraftEnforcerInterval,
		Workers:  cfg.DraftEnforcerWorkers,
	}, logger)

	verifier := anubis.NewClient(&http.Client{Timeout: cfg.AnubisTimeout}, anubis.Config{
		BaseURL:         cfg.AnubisBaseURL,
		IntrospectPath:  cfg.AnubisIntrospectPath,
		AdminKey:        cfg.AnubisAdminKey,
		CacheTTL:        anubisCacheTTL(cfg.AnubisCacheTTL),
		CacheMaxEntries: cfg.AnubisCacheMaxEntries,
		CircuitBreaker:  cfg.AnubisCircuit,
	}, logger)

	handler := httpapi.NewHandler(leagueSvc, draftSvc, a.season, a.market, a.enforcer, repos.dispatches, logger)
	router := httpapi.NewRouter(handler, verifier, logger, httpapi.RouterConfig{
		SwaggerEnabled:     cfg.SwaggerEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		InternalJobToken:   cfg.InternalJobToken,
	})

	a.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return a, nil
}

// RunBackground blocks until ctx is cancelled, driving the draft enforcer
// and the periodic weekly and market jobs that are enabled.
func (a *App) RunBackground(ctx context.Context) {
	var wg conc.WaitGroup
	if a.cfg.DraftEnforcerEnabled {
		wg.Go(func() { a.enforcer.Run(ctx) })
	}
	if a.cfg.WeeklyJobEnabled {
		wg.Go(func() {
			runPeriodic(ctx, a.logger, "weekly job", a.cfg.WeeklyJobInterval, func(ctx context.Context) error {
				result, err := a.season.RunWeekly(ctx)
				if err == nil && result.FailedCount > 0 {
					a.logger.WarnContext(ctx, "weekly job had failures", "failed", result.FailedCount, "leagues", result.LeagueCount)
				}
				return err
			})
		})
	}
	if a.cfg.MarketTickEnabled {
		wg.Go(func() {
			runPeriodic(ctx, a.logger, "market tick", a.cfg.MarketTickInterval, func(ctx context.Context) error {
				_, err := a.market.RefreshPrices(ctx)
				return err
			})
		})
	}
	wg.Wait()
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) openRepositories(ctx context.Context) (repositories, error) {
	var repos repositories
	switch a.cfg.StorageDriver {
	case config.StoragePostgres:
		db, err := a.openPostgres(ctx)
		if err != nil {
			return repositories{}, err
		}
		repos = repositories{
			leagues:    postgres.NewLeagueRepository(db),
			assets:     postgres.NewAssetRepository(db),
			drafts:     postgres.NewDraftRepository(db),
			insights:   postgres.NewInsightRepository(db),
			schedules:  postgres.NewScheduleRepository(db),
			scores:     postgres.NewScoringRepository(db),
			dispatches: postgres.NewJobDispatchRepository(db),
		}
	default:
		repos = repositories{
			leagues:    memory.NewLeagueRepository(),
			assets:     memory.NewAssetRepository(memory.SeedAssets()),
			drafts:     memory.NewDraftRepository(),
			insights:   memory.NewInsightRepository(),
			schedules:  memory.NewScheduleRepository(),
			scores:     memory.NewScoringRepository(),
			dispatches: memory.NewJobDispatchRepository(),
		}
	}

	if a.cfg.CacheEnabled {
		repos.assets = cacherepo.NewAssetRepository(repos.assets, basecache.NewStore(a.cfg.CacheTTL))
	}
	a.logger.Info("repositories ready", "driver", a.cfg.StorageDriver, "cache_enabled", a.cfg.CacheEnabled)
	return repos, nil
}

func (a *App) openPostgres(ctx context.Context) (*sqlx.DB, error) {
	db, err := postgres.Open(ctx, postgres.ConnConfig{
		URL:                   a.cfg.DBURL,
		DisablePreparedBinary: a.cfg.DBDisablePreparedBinary,
	})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, db.Close)

	if a.cfg.DBSeedEnabled {
		if err := postgres.BootstrapSeed(ctx, db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

func (a *App) newEventPublisher() (usecase.DraftEventPublisher, error) {
	if !a.cfg.NATSEnabled {
		return events.NewLogPublisher(a.logger), nil
	}
	publisher, err := events.NewNATSPublisher(events.NATSConfig{
		URL:        a.cfg.NATSURL,
		Subject:    a.cfg.NATSSubject,
		StreamName: a.cfg.NATSStream,
		MaxAge:     a.cfg.NATSMaxAge,
	}, a.logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() error {
		publisher.Close()
		return nil
	})
	return publisher, nil
}

func (a *App) newJobQueue() (usecase.JobQueue, error) {
	if !a.cfg.QStashEnabled {
		a.logger.Info("qstash disabled, deadline ticks rely on the enforcer loop")
		return usecase.NewNoopJobQueue(), nil
	}
	return jobqueue.NewQStashQueue(jobqueue.QStashConfig{
		BaseURL:          a.cfg.QStashBaseURL,
		Token:            a.cfg.QStashToken,
		TargetBaseURL:    a.cfg.QStashTargetBaseURL,
		Retries:          a.cfg.QStashRetries,
		InternalJobToken: a.cfg.InternalJobToken,
		Timeout:          a.cfg.QStashTimeout,
		CircuitBreaker:   a.cfg.QStashCircuit,
	}, a.logger)
}

// anubisCacheTTL maps a disabled cache (0) onto the client's negative TTL,
// since the client treats zero as "use the default".
func anubisCacheTTL(ttl time.Duration) time.Duration {
	if ttl == 0 {
		return -1
	}
	return ttl
}

func runPeriodic(ctx context.Context, logger *logging.Logger, name string, interval time.Duration, fn func(context.Context) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.InfoContext(ctx, name+" started", "interval", interval.String())
	for {
		select {
		case <-ctx.Done():
			logger.InfoContext(context.WithoutCancel(ctx), name+" stopped")
			return
		case <-ticker.C:
			if err := fn(ctx); err != nil && ctx.Err() == nil {
				logger.WarnContext(ctx, name+" failed", "error", err)
			}
		}
	}
}
