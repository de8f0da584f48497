package cli

import (
	"github.com/spf13/cobra"
)

func newResultsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "results",
		Short: "List completed round results",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []RoundResult

			if err := client.Get("/api/results", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
