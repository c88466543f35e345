package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	statusadapter "github.com/bnema/gmail-checker/internal/adapters/render/status"
	tomlrepo "github.com/bnema/gmail-checker/internal/adapters/repo/toml"
	"github.com/bnema/gmail-checker/internal/application"
	"github.com/bnema/gmail-checker/internal/domain"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newWatchCmd(app *app) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep polling and print the unread count on every change",
		Long:  "watch keeps every account on its backoff schedule and prints the badge and per-account lines after each check. Changes to the email pattern are picked up without a restart.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			logger := app.logger(zerolog.SyncWriter(cmd.ErrOrStderr()))
			out := cmd.OutOrStdout()

			// Runs on the checker's loop, one call at a time.
			updates := 0
			onUpdate := func(summary application.Summary) {
				writeWatchUpdate(out, app.now(), summary)
				updates++
				if count > 0 && updates >= count {
					cancel()
				}
			}

			checker, err := app.newChecker(ctx, logger, onUpdate)
			if err != nil {
				return err
			}
			defer checker.Stop()

			watchErr := make(chan error, 1)
			go func() {
				watcher := tomlrepo.NewWatcher(app.settings, logger)
				watchErr <- watcher.Watch(ctx, func(settings domain.Settings) {
					checker.UpdatePredicate(predicateFor(settings, logger))
				})
			}()

			checker.Start()

			select {
			case <-ctx.Done():
			case err := <-watchErr:
				if err != nil {
					logger.Warn().Err(err).Msg("Live pattern reload disabled")
				}
				<-ctx.Done()
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 0, "Exit after this many updates (0 runs until interrupted)")

	return cmd
}

func writeWatchUpdate(w io.Writer, now time.Time, summary application.Summary) {
	unread := "?"
	if summary.UnreadCount != nil {
		unread = strconv.Itoa(*summary.UnreadCount)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s unread=%s preferred=%s\n", now.Format(time.TimeOnly), unread, domain.BaseURL(summary.PreferredIndex))
	for _, line := range strings.Split(statusadapter.Tooltip(summary), "\n") {
		fmt.Fprintf(&b, "  %s\n", line)
	}
	_, _ = io.WriteString(w, b.String())
}
