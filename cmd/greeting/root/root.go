package root

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"greeting/internal/config"
	"greeting/pkg/app"
)

var (
	flagEnvFiles []string
	cfg          *config.Config
)

// rootCmd defines the base command for greeting. Without a subcommand it
// serves MCP on stdio.
var rootCmd = &cobra.Command{
	Use:           "greeting",
	Short:         "Greeting MCP server",
	Long:          "greeting serves multilingual greetings, arithmetic, Korean time and image generation over the Model Context Protocol on stdio. Configure it with environment variables or a .env file.",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(flagEnvFiles...)
		if err != nil {
			return err
		}
		cfg = c
		return nil
	},
	RunE: runServe,
}

func newApp() (*app.App, error) {
	return app.New(cfg)
}

// Execute runs the Cobra root command.
func Execute() {
	// Logging must be ready before any subcommand runs, so it uses the
	// environment as loaded here; PersistentPreRunE reloads for commands.
	boot, err := config.Load(envFilesFromArgs(os.Args[1:])...)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	closer := config.SetupLogging(boot)

	err = rootCmd.Execute()
	_ = closer.Close()
	if err != nil {
		logrus.WithError(err).Debug("command failed")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// envFilesFromArgs picks --env-file values out of args before cobra parses
// them.
func envFilesFromArgs(args []string) []string {
	var files []string
	for i := 0; i < len(args); i++ {
		if args[i] == "--env-file" && i+1 < len(args) {
			files = append(files, strings.Split(args[i+1], ",")...)
			i++
		} else if v, ok := strings.CutPrefix(args[i], "--env-file="); ok {
			files = append(files, strings.Split(v, ",")...)
		}
	}
	return files
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&flagEnvFiles, "env-file", nil, "dotenv file(s) to load (default .env)")
}
