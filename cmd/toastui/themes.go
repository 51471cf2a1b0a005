package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toastui/internal/theme"
)

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List available colour themes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return listThemes(cmd.OutOrStdout(), theme.NewLoader(logger), cfg.Display.Theme)
	},
}

func init() {
	rootCmd.AddCommand(themesCmd)
}

// listThemes prints one theme per line, marking the active one.
func listThemes(w io.Writer, l *theme.Loader, active string) error {
	for _, name := range l.ListThemes() {
		mark := " "
		if name == active {
			mark = "*"
		}
		source := "bundled"
		if t, err := l.Load(name); err != nil {
			source = "error: " + err.Error()
		} else if t.Path != "" {
			source = t.Path
		}
		if _, err := fmt.Fprintf(w, "%s %-16s %s\n", mark, name, source); err != nil {
			return err
		}
	}
	return nil
}
