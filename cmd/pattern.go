package cmd

import (
	"errors"
	"fmt"

	"github.com/bnema/gmail-checker/internal/domain"
	"github.com/spf13/cobra"
)

func newPatternCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pattern",
		Short: "Manage the email pattern selecting which accounts are counted",
	}

	cmd.AddCommand(newPatternGetCmd(app), newPatternSetCmd(app))

	return cmd
}

func newPatternGetCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Print the stored email pattern",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := app.settings.Get(cmd.Context())
			if err != nil && !errors.Is(err, domain.ErrSettingsNotFound) {
				return err
			}

			pattern := settings.EmailPattern
			if pattern == "" {
				pattern = domain.MatchAllPattern
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), pattern)
			return err
		},
	}
}

func newPatternSetCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <regexp>",
		Short: "Store the email pattern; accounts whose address matches are counted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := domain.NewRegexpPredicate(args[0]); err != nil {
				return err
			}

			if err := app.settings.Save(cmd.Context(), domain.Settings{EmailPattern: args[0]}); err != nil {
				return fmt.Errorf("save settings: %w", err)
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "email pattern set to %s\n", args[0])
			return err
		},
	}
}
