package cli

import (
	"net/url"

	"github.com/spf13/cobra"
)

func newWordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "word <word>",
		Short: "Check a word against the server dictionary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result WordCheck

			if err := client.Get(cmd.Context(), "/api/v1/words/"+url.PathEscape(args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
