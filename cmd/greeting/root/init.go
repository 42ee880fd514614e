package root

import (
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"greeting/internal/config"
)

var (
	initPath  string
	initForce bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a .env template",
	Args:  cobra.NoArgs,
	// Skip config loading; the file may not exist yet.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := filepath.Abs(initPath)
		if err != nil {
			return err
		}
		if err := config.WriteTemplate(path, initForce); err != nil {
			return err
		}
		logrus.WithField("path", path).Info("wrote env template")
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initPath, "path", ".env", "where to write the template")
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing file")
}
