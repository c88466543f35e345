package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	statusadapter "github.com/bnema/gmail-checker/internal/adapters/render/status"
	"github.com/bnema/gmail-checker/internal/application"
	"github.com/bnema/gmail-checker/internal/domain"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const defaultWait = 10 * time.Second

func newStatusCmd(app *app) *cobra.Command {
	var asJSON bool
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check every account once and show unread counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			run, err := startCheckRun(cmd, app)
			if err != nil {
				return err
			}
			defer run.checker.Stop()

			run.checker.Start()
			summary, err := run.waitSettled(cmd, wait, !asJSON)
			if err != nil {
				return err
			}

			return writeSummaryOutput(cmd, app, summary, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	cmd.Flags().DurationVar(&wait, "wait", defaultWait, "How long to wait for every account to answer")

	return cmd
}

// checkRun is a checker owned by a single command invocation.
type checkRun struct {
	checker *application.Checker
	updates chan struct{}
	logger  zerolog.Logger
	// errOut is shared by log lines from the checker loop and the spinner.
	errOut io.Writer
}

func startCheckRun(cmd *cobra.Command, app *app) (*checkRun, error) {
	errOut := zerolog.SyncWriter(cmd.ErrOrStderr())
	run := &checkRun{
		updates: make(chan struct{}, 1),
		logger:  app.logger(errOut),
		errOut:  errOut,
	}

	checker, err := app.newChecker(cmd.Context(), run.logger, run.notify)
	if err != nil {
		return nil, err
	}
	run.checker = checker

	return run, nil
}

// notify never blocks: a waiter always re-reads the latest summary, so a
// dropped wakeup loses nothing.
func (r *checkRun) notify(application.Summary) {
	select {
	case r.updates <- struct{}{}:
	default:
	}
}

func (r *checkRun) waitFor(ctx context.Context, done func(application.Summary) bool) (application.Summary, bool) {
	for {
		summary := r.checker.Summary()
		if done(summary) {
			return summary, true
		}

		select {
		case <-ctx.Done():
			return r.checker.Summary(), false
		case <-r.updates:
		}
	}
}

// waitSettled waits up to timeout for every slot's first outcome. Running
// out of time is not an error; the latest summary is returned.
func (r *checkRun) waitSettled(cmd *cobra.Command, timeout time.Duration, spin bool) (application.Summary, error) {
	var summary application.Summary
	wait := func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		var settled bool
		summary, settled = r.waitFor(ctx, application.Summary.Settled)
		if !settled {
			r.logger.Warn().Dur("wait", timeout).Msg("Not every account answered in time")
		}
		return nil
	}

	if !spin {
		err := wait(cmd.Context())
		return summary, err
	}

	err := runSpinner(cmd.Context(), r.errOut, "Checking Gmail accounts...", wait)
	return summary, err
}

type accountOutput struct {
	Index        int        `json:"index"`
	Email        string     `json:"email,omitempty"`
	UnreadCount  *int       `json:"unread_count"`
	Contributing bool       `json:"contributing"`
	URL          string     `json:"url"`
	Error        string     `json:"error,omitempty"`
	FailureCount int        `json:"failure_count"`
	LastUpdate   *time.Time `json:"last_update,omitempty"`
}

type summaryOutput struct {
	UnreadCount    *int            `json:"unread_count"`
	Badge          string          `json:"badge"`
	PreferredIndex int             `json:"preferred_index"`
	PreferredURL   string          `json:"preferred_url"`
	Accounts       []accountOutput `json:"accounts"`
}

func toSummaryOutput(summary application.Summary) summaryOutput {
	out := summaryOutput{
		UnreadCount:    summary.UnreadCount,
		Badge:          statusadapter.Badge(summary),
		PreferredIndex: summary.PreferredIndex,
		PreferredURL:   domain.BaseURL(summary.PreferredIndex),
		Accounts:       make([]accountOutput, 0, len(summary.Accounts)),
	}

	for _, account := range summary.Accounts {
		entry := accountOutput{
			Index:        account.Index,
			Email:        account.Email,
			UnreadCount:  account.UnreadCount,
			Contributing: account.IsContributing,
			URL:          domain.BaseURL(account.Index),
			FailureCount: account.FailureCount,
		}
		if account.LastError != nil {
			entry.Error = account.LastError.Error()
		}
		if !account.LastUpdateTime.IsZero() {
			at := account.LastUpdateTime
			entry.LastUpdate = &at
		}
		out.Accounts = append(out.Accounts, entry)
	}

	return out
}

func writeSummaryOutput(cmd *cobra.Command, app *app, summary application.Summary, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(toSummaryOutput(summary))
	}

	rendered, err := app.statusRenderer(summary, statusadapter.RenderOptions{Now: app.now()})
	if err != nil {
		return fmt.Errorf("render status: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}
