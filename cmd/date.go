package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/supportbot/internal/dateparse"
)

func newDateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "date",
		Short: "Work with natural-language dates",
	}
	cmd.AddCommand(newDateParseCmd(dateparse.New()))
	return cmd
}

func newDateParseCmd(dates *dateparse.Parser) *cobra.Command {
	var validateFuture, allowPast bool

	cmd := &cobra.Command{
		Use:   "parse <text>",
		Short: "Parse a date expression into YYYY-MM-DD",
		Long: `Parse a date the way customer requests are parsed.

Accepted forms include 2025-06-20, 06/20/2025, '20th June 2025', 'June 20, 2025',
'today', 'tomorrow', 'next month' and 'in 3 weeks'.

Example:
  supportbot date parse "next month" --validate-future`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := dates.Parse(strings.Join(args, " "))
			if err != nil {
				return err
			}

			if validateFuture || allowPast {
				if err := dates.ValidateFuture(parsed.String(), allowPast); err != nil {
					return err
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), parsed.String())
			return nil
		},
	}

	cmd.Flags().BoolVar(&validateFuture, "validate-future", false, "require a date after today and within the allowed horizon")
	cmd.Flags().BoolVar(&allowPast, "allow-past", false, "with validation, accept today and past dates")
	return cmd
}
