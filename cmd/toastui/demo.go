package main

import (
	"github.com/spf13/cobra"

	"github.com/jmylchreest/toastui/internal/tui"
)

var demoOpts struct {
	script   string
	noScript bool
	exit     bool
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Show toasts in the terminal",
	Long: `Launch the terminal host and play a script of toasts.

Without --script the built-in demo runs. A script is a YAML list of steps:

  - show: {text: "Saved", position: bottom-left, autoClose: 1000}
    as: saved
  - after: 500ms
    target: saved
    action: hover

Key bindings:
  tab/j, shift+tab/k   Move the pointer between toasts
  enter/space          Click the toast under the pointer
  esc                  Move the pointer away
  n                    New toast
  x                    Close all toasts
  v                    Toggle document visibility
  ?                    Show help
  q                    Quit`,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)

	demoCmd.Flags().StringVar(&demoOpts.script, "script", "",
		"Path to a YAML script (default: built-in demo)")
	demoCmd.Flags().BoolVar(&demoOpts.noScript, "no-script", false,
		"Start with no toasts")
	demoCmd.Flags().BoolVar(&demoOpts.exit, "exit", false,
		"Quit once the script has finished and every toast has closed")
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var steps []tui.Step
	switch {
	case demoOpts.noScript:
	case demoOpts.script != "":
		steps, err = tui.LoadScript(demoOpts.script)
	default:
		steps, err = tui.DemoScript()
	}
	if err != nil {
		return err
	}

	return tui.Run(tui.RunOptions{
		Config:       cfg,
		Logger:       screenLogger(),
		Script:       steps,
		ExitWhenIdle: demoOpts.exit,
	})
}
