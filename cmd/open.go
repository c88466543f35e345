package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newOpenCmd(app *app) *cobra.Command {
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "open [urls...]",
		Short: "Print the URL of the inbox to open",
		Long:  "open checks every account and prints the URL of the preferred inbox: the first matching account with unread mail, else the first matching account. When URLs of already open tabs are given, the first one pointing at that account is printed unchanged.",
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := startCheckRun(cmd, app)
			if err != nil {
				return err
			}
			defer run.checker.Stop()

			run.checker.Start()
			if _, err := run.waitSettled(cmd, wait, false); err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), run.checker.PreferredURL(args))
			return err
		},
	}

	cmd.Flags().DurationVar(&wait, "wait", defaultWait, "How long to wait for every account to answer")

	return cmd
}
