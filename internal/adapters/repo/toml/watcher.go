package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bnema/gmail-checker/internal/domain"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher reports changes to the settings file of a Repository.
type Watcher struct {
	repo *Repository
	log  zerolog.Logger
}

func NewWatcher(repo *Repository, logger zerolog.Logger) *Watcher {
	return &Watcher{repo: repo, log: logger.With().Str("component", "settings_watcher").Logger()}
}

// Watch calls onChange with the new settings every time the stored email
// pattern changes, until ctx is done. The directory is watched rather than
// the file because saves replace the file by rename.
func (w *Watcher) Watch(ctx context.Context, onChange func(domain.Settings)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create settings watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.repo.Path())
	if err := os.MkdirAll(dir, settingsDirMode); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch settings directory: %w", err)
	}

	var last *domain.Settings
	if current, err := w.repo.Get(ctx); err == nil {
		last = &current
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.repo.Path() {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}

			settings, err := w.repo.Get(ctx)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					w.log.Warn().Err(err).Msg("Could not reload settings")
				}
				continue
			}
			if last != nil && *last == settings {
				continue
			}
			last = &settings

			w.log.Info().Str("email_pattern", settings.EmailPattern).Msg("Settings changed")
			onChange(settings)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn().Err(err).Msg("Settings watcher error")
		}
	}
}
