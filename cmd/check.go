package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	statusadapter "github.com/bnema/gmail-checker/internal/adapters/render/status"
	"github.com/bnema/gmail-checker/internal/application"
	"github.com/bnema/gmail-checker/internal/domain"
	"github.com/spf13/cobra"
)

func newCheckCmd(app *app) *cobra.Command {
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "check <index|url>",
		Short: "Check a single account now",
		Long:  "check fetches the feed of one account slot, given by index or by a Gmail URL such as https://mail.google.com/mail/u/1/#inbox, and prints its line.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := startCheckRun(cmd, app)
			if err != nil {
				return err
			}
			defer run.checker.Stop()

			index, err := forceCheckTarget(run.checker, args[0])
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), wait)
			defer cancel()
			summary, answered := run.waitFor(ctx, func(s application.Summary) bool {
				return !s.Accounts[index].LastUpdateTime.IsZero()
			})
			if !answered {
				return fmt.Errorf("account %d did not answer within %s", index, wait)
			}

			account := summary.Accounts[index]
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), statusadapter.TooltipLine(account)); err != nil {
				return err
			}
			if account.LastError != nil {
				return fmt.Errorf("account %d: %w", index, account.LastError)
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&wait, "wait", defaultWait, "How long to wait for the account to answer")

	return cmd
}

func forceCheckTarget(checker *application.Checker, target string) (int, error) {
	if index, err := strconv.Atoi(target); err == nil {
		if err := checker.ForceCheck(index); err != nil {
			return 0, err
		}
		return index, nil
	}

	index, ok := domain.SlotIndexFromURL(target)
	if !ok || !checker.ForceCheckURL(target) {
		return 0, fmt.Errorf("%q does not point at a Gmail account slot", target)
	}
	return index, nil
}
