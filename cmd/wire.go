package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/bnema/gmail-checker/internal/adapters/fetch/httpfeed"
	statusadapter "github.com/bnema/gmail-checker/internal/adapters/render/status"
	tomlrepo "github.com/bnema/gmail-checker/internal/adapters/repo/toml"
	"github.com/bnema/gmail-checker/internal/application"
	"github.com/bnema/gmail-checker/internal/domain"
	"github.com/bnema/gmail-checker/internal/logging"
	"github.com/bnema/gmail-checker/internal/ports"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type app struct {
	settings       *tomlrepo.Repository
	fetcher        ports.FeedFetcher
	statusRenderer func(application.Summary, statusadapter.RenderOptions) (string, error)
	logLevel       string
	now            func() time.Time
}

func wireApp() (*app, error) {
	cfg := viper.New()
	repo, err := tomlrepo.NewRepository(cfg)
	if err != nil {
		return nil, fmt.Errorf("wire settings repository: %w", err)
	}

	client := &http.Client{Timeout: cfg.GetDuration(tomlrepo.FeedTimeoutKey)}

	return &app{
		settings:       repo,
		fetcher:        httpfeed.NewFetcher(client, envOrDefault("GMC_FEED_BASE_URL", cfg.GetString(tomlrepo.FeedBaseURLKey))),
		statusRenderer: statusadapter.Render,
		logLevel:       envOrDefault("GMC_LOG_LEVEL", cfg.GetString(tomlrepo.LogLevelKey)),
		now:            time.Now,
	}, nil
}

func (a *app) logger(w io.Writer) zerolog.Logger {
	return logging.New(w, a.logLevel)
}

// loadPredicate compiles the stored email pattern. Missing settings match
// every account; a pattern that does not compile is reported and replaced
// by the match-all pattern.
func (a *app) loadPredicate(ctx context.Context, logger zerolog.Logger) (domain.EmailPredicate, error) {
	settings, err := a.settings.Get(ctx)
	if err != nil && !errors.Is(err, domain.ErrSettingsNotFound) {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	return predicateFor(settings, logger), nil
}

func predicateFor(settings domain.Settings, logger zerolog.Logger) domain.EmailPredicate {
	predicate, err := settings.Predicate()
	if err != nil {
		logger.Warn().Err(err).Msg("Invalid email pattern, counting every account")
	}
	return predicate
}

func (a *app) newChecker(ctx context.Context, logger zerolog.Logger, onUpdate func(application.Summary)) (*application.Checker, error) {
	predicate, err := a.loadPredicate(ctx, logger)
	if err != nil {
		return nil, err
	}

	checker, err := application.NewChecker(predicate, onUpdate, application.Options{
		Fetcher: a.fetcher,
		Logger:  &logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create checker: %w", err)
	}

	return checker, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
