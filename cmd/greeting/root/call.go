package root

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	mcp "greeting/internal/mcp"
	"greeting/pkg/app"
)

var (
	callOut    string
	callJSON   bool
	callPrompt bool
	callRead   bool
)

var callCmd = &cobra.Command{
	Use:   "call <name> [json args]",
	Short: "Invoke one capability locally and print the result",
	Example: `  greeting call greeting '{"name":"Ada","language":"english"}'
  greeting call generate-image '{"prompt":"a lighthouse at dusk"}' --out lighthouse.png
  greeting call --prompt code-review '{"code":"package main"}'
  greeting call --read server-spec://info`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		var raw string
		if len(args) > 1 {
			raw = args[1]
		}
		callArgs, err := app.ParseArgs(raw)
		if err != nil {
			return err
		}

		kind := mcp.KindTool
		switch {
		case callPrompt && callRead:
			return fmt.Errorf("--prompt and --read are mutually exclusive")
		case callPrompt:
			kind = mcp.KindPrompt
		case callRead:
			kind = mcp.KindResource
		}

		env := a.Call(cmd.Context(), kind, args[0], callArgs)
		out := cmd.OutOrStdout()
		if callJSON {
			b, err := mcp.MarshalEnvelope(env)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
		} else if env.IsError {
			fmt.Fprintln(out, env.Text())
		} else {
			fmt.Fprint(out, a.Render(env))
		}

		if callOut != "" && !env.IsError {
			if err := app.SaveImage(env, callOut); err != nil {
				return err
			}
			logrus.WithField("path", callOut).Info("wrote image")
		}
		if env.IsError {
			return fmt.Errorf("%s failed: %s", args[0], env.Cause)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(callCmd)
	callCmd.Flags().StringVarP(&callOut, "out", "o", "", "write a returned image to this file")
	callCmd.Flags().BoolVar(&callJSON, "json", false, "print the tools/call result as JSON")
	callCmd.Flags().BoolVar(&callPrompt, "prompt", false, "invoke a prompt instead of a tool")
	callCmd.Flags().BoolVar(&callRead, "read", false, "read a resource by name or URI")
}
