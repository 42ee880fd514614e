package root

import (
	"os"

	"github.com/spf13/cobra"

	"greeting/pkg/app"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Interactive console for trying capabilities",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New(cfg, app.WithOutput(cmd.OutOrStdout()))
		if err != nil {
			return err
		}
		return a.Console(cmd.Context(), os.Stdin)
	},
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}
