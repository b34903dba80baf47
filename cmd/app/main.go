// Command app runs the blog generation service: keyword intake, research
// scraping, stepwise article generation, image placement and batch
// orchestration behind one JSON API.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"blogforge/internal/config"
	"blogforge/internal/domain/ports/adapter"
	"blogforge/internal/domain/ports/repository"
	"blogforge/internal/infra/adapters/ai"
	imgsearch "blogforge/internal/infra/adapters/images"
	"blogforge/internal/infra/adapters/notify"
	"blogforge/internal/infra/adapters/research"
	"blogforge/internal/infra/db/postgres"
	"blogforge/internal/infra/logging"
	"blogforge/internal/infra/memstore"
	"blogforge/internal/infra/metrics"
	"blogforge/internal/infra/redis"
	"blogforge/internal/infra/web"
	"blogforge/internal/placement"
	"blogforge/internal/seo"
	"blogforge/internal/usecase"
)

const maxConcurrentGenerations = 4

type stores struct {
	keywords repository.KeywordSetRepository
	research repository.ResearchRepository
	images   repository.ImageRepository
	articles repository.ArticleRepository
	jobs     repository.BatchJobRepository
	sessions repository.SessionStore
	tx       repository.TransactionManager

	close func()
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := buildStores(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("storage init failed")
	}
	defer st.close()

	gen, err := buildGenerator(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("ai init failed")
	}

	vars := usecase.NewPromptVars(
		firstContextTerm(cfg.Scrape.ContextTerms),
		cfg.Publish.Company,
		cfg.Publish.Phone,
		cfg.Publish.BaseURL,
	)
	pk := seo.FromConfig(cfg.Publish)

	keywords := usecase.NewKeywordUseCase(st.keywords, log)
	researchUC := usecase.NewResearchUseCase(
		st.keywords, st.research,
		buildResearchProviders(cfg, log),
		cfg.Scrape.MaxSnippets, cfg.Publish.Company, log,
	)
	imagesUC := usecase.NewImageUseCase(
		st.keywords, st.images, st.articles,
		buildImageProviders(cfg, log),
		placement.New(log), cfg.Images.MaxCandidates, log,
	)
	sessionsUC := usecase.NewSessionUseCase(
		st.sessions, st.keywords, st.research, st.articles, st.tx,
		gen, cfg.AI.DefaultModel, cfg.Session.TTL, vars, pk, log,
	)
	metadataUC := usecase.NewMetadataUseCase(st.keywords, st.articles, gen, cfg.AI.DefaultModel, vars, pk, log)
	batchesUC := usecase.NewBatchUseCase(
		st.jobs, keywords, researchUC, imagesUC, sessionsUC, metadataUC,
		buildNotifier(cfg, log),
		cfg.Batch.InterRowDelay, cfg.Batch.InterStepDelay, log,
	)

	auth := web.NewAuthManager(cfg.Admin.JWTSecret, cfg.Admin.SecureCookie, cfg.Admin.CookieDomain, cfg.Admin.SessionTTL)
	srv := web.NewServer(keywords, researchUC, imagesUC, sessionsUC, metadataUC, batchesUC, st.articles, auth, cfg.Admin.Password, log)

	httpSrv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      srv.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Bool("dev", cfg.Runtime.Dev).Msg("listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("http server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("shutdown incomplete")
	}
}

// buildStores wires memory stores in dev mode, postgres plus redis otherwise.
func buildStores(ctx context.Context, cfg *config.Config, log *zerolog.Logger) (*stores, error) {
	if cfg.Runtime.Dev {
		log.Warn().Msg("dev mode: state is in-memory and lost on exit")
		return &stores{
			keywords: memstore.NewKeywordSetRepo(),
			research: memstore.NewResearchRepo(),
			images:   memstore.NewImageRepo(),
			articles: memstore.NewArticleRepo(),
			jobs:     memstore.NewBatchJobRepo(),
			sessions: memstore.NewSessionStore(),
			tx:       memstore.NewTxManager(),
			close:    func() {},
		}, nil
	}

	pool, err := postgres.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	redisClient, err := redis.NewClient(ctx, &cfg.Redis)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("redis: %w", err)
	}

	return &stores{
		keywords: postgres.NewKeywordSetRepo(pool),
		research: postgres.NewResearchRepo(pool),
		images:   postgres.NewImageRepo(pool),
		articles: postgres.NewArticleRepo(pool),
		jobs:     postgres.NewBatchJobRepoCacheDecorator(postgres.NewBatchJobRepo(pool), redisClient),
		sessions: redis.NewSessionStore(redisClient),
		tx:       postgres.NewTxManager(pool),
		close: func() {
			_ = redisClient.Close()
			pool.Close()
		},
	}, nil
}

// buildGenerator assembles the provider set from whichever API keys are
// configured. Without any key the service only runs in dev mode, on
// deterministic filler content.
func buildGenerator(ctx context.Context, cfg *config.Config, log *zerolog.Logger) (adapter.ContentGenerator, error) {
	byProvider := map[string]adapter.ContentGenerator{}

	if cfg.AI.GeminiKey != "" {
		gemini, err := ai.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.DefaultModel, 8192)
		if err != nil {
			return nil, fmt.Errorf("gemini: %w", err)
		}
		byProvider["gemini"] = gemini
	}
	if cfg.AI.OpenAIKey != "" {
		openai, err := ai.NewOpenAIAdapter(cfg.AI.OpenAIKey, cfg.AI.DefaultModel)
		if err != nil {
			return nil, fmt.Errorf("openai: %w", err)
		}
		byProvider["openai"] = openai
	}

	if len(byProvider) == 0 {
		if !cfg.Runtime.Dev {
			return nil, fmt.Errorf("no AI provider configured: set ai.gemini_key or ai.openai_key")
		}
		log.Warn().Msg("dev mode without API keys: generating placeholder content")
		return ai.NewNoopGenerator(), nil
	}

	defaultProvider := "gemini"
	if _, ok := byProvider[defaultProvider]; !ok {
		defaultProvider = "openai"
	}
	log.Info().Str("default_provider", defaultProvider).Int("providers", len(byProvider)).Msg("ai ready")

	multi := ai.NewMultiAdapter(defaultProvider, byProvider)
	return ai.NewLimitedGenerator(multi, maxConcurrentGenerations), nil
}

func buildResearchProviders(cfg *config.Config, log *zerolog.Logger) []adapter.ResearchProvider {
	providers := []adapter.ResearchProvider{
		research.NewDuckDuckGo(cfg.Scrape.UserAgent, cfg.Scrape.ContextTerms, cfg.Scrape.RequestDelay, log),
		research.NewBing(cfg.Scrape.UserAgent, cfg.Scrape.ContextTerms, cfg.Scrape.RequestDelay, log),
	}
	if len(cfg.Scrape.IndustrySites) > 0 {
		providers = append(providers, research.NewSiteCrawler(cfg.Scrape.IndustrySites, cfg.Scrape.UserAgent, cfg.Scrape.RequestDelay, log))
	}
	return providers
}

func buildImageProviders(cfg *config.Config, log *zerolog.Logger) []adapter.ImageProvider {
	return []adapter.ImageProvider{
		imgsearch.NewDuckDuckGo(cfg.Scrape.UserAgent, cfg.Images.RequestDelay, log),
		imgsearch.NewBing(cfg.Scrape.UserAgent, cfg.Images.RequestDelay, log),
	}
}

func buildNotifier(cfg *config.Config, log *zerolog.Logger) adapter.Notifier {
	if cfg.Notify.TelegramToken == "" {
		return notify.NewNoop(log)
	}
	tg, err := notify.NewTelegram(cfg.Notify.TelegramToken, cfg.Notify.ChatID, log)
	if err != nil {
		log.Warn().Err(err).Msg("telegram unavailable, notifications disabled")
		return notify.NewNoop(log)
	}
	return tg
}

func firstContextTerm(terms []string) string {
	if len(terms) == 0 {
		return ""
	}
	return terms[0]
}
