package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "gmc",
		Short:         "Gmail checker (gmc): unread counts across signed-in Gmail accounts",
		Long:          "gmc polls the inbox feed of every Gmail multiple sign-in slot, backs off on failures, and reports the unread count of the accounts matching your email pattern.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newStatusCmd(app),
		newWatchCmd(app),
		newOpenCmd(app),
		newCheckCmd(app),
		newPatternCmd(app),
	)

	return rootCmd
}
