package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/mail-digest/internal/adapters/gmail"
	"github.com/mikey/mail-digest/internal/config"
	"github.com/mikey/mail-digest/internal/core"
	"github.com/mikey/mail-digest/internal/factory"
	"github.com/mikey/mail-digest/internal/logging"
	"github.com/mikey/mail-digest/internal/utils"
	"github.com/mikey/mail-digest/internal/whitelist"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewMailFactory); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register classifier
	if err := container.Provide(func(f *factory.LLMFactory) (core.Classifier, error) {
		return f.CreateClassifier()
	}); err != nil {
		return nil, err
	}

	// Register analysis cache
	if err := container.Provide(func(f *factory.CacheFactory) (core.AnalysisCache, error) {
		return f.CreateAnalysisCache()
	}); err != nil {
		return nil, err
	}

	// Register mailbox authorizer
	if err := container.Provide(func(f *factory.MailFactory) *gmail.Authorizer {
		return f.CreateAuthorizer()
	}); err != nil {
		return nil, err
	}

	// Register whitelist checker
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *whitelist.Checker {
		return whitelist.NewChecker(cfg.GetPipeline().WhitelistedDomains, logger)
	}); err != nil {
		return nil, err
	}

	// Register classification pipeline
	if err := container.Provide(func(
		classifier core.Classifier,
		cache core.AnalysisCache,
		checker *whitelist.Checker,
		logger *zap.Logger,
		cfg *config.Config,
		cacheFactory *factory.CacheFactory,
	) (*core.Pipeline, error) {
		ttl, err := cacheFactory.GetCacheTTL()
		if err != nil {
			return nil, err
		}
		pipelineCfg := cfg.GetPipeline()
		return core.NewPipeline(
			classifier,
			cache,
			checker,
			logger,
			cacheFactory.IsCacheEnabled(),
			ttl,
			core.PipelineConfig{
				SpamSkipThreshold:    pipelineCfg.SpamSkipThreshold,
				SummaryMinImportance: pipelineCfg.SummaryMinImportance,
			},
		), nil
	}); err != nil {
		return nil, err
	}

	return container, nil
}
