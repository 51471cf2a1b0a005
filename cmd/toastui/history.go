package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toastui/internal/config"
	"github.com/jmylchreest/toastui/internal/dbus"
	"github.com/jmylchreest/toastui/internal/history"
)

type historyFlags struct {
	format   string
	template string
	since    string
	app      string
	urgency  string
	reason   string
	limit    int
}

var historyOpts historyFlags

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List closed notifications recorded by toastuid",
	Long: `List closed notifications recorded by toastuid, newest first.

Examples:
  toastui history --since 1h
  toastui history --app firefox --format json
  toastui history --template '{{.Index}} {{urgencyIcon .Urgency}} {{.Summary}} ({{.RelativeTime}})'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer store.Close()
		return printHistory(cmd.OutOrStdout(), store)
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every recorded notification",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		n := store.Count()
		if err := store.Clear(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d notifications\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyClearCmd)

	f := historyCmd.Flags()
	f.StringVarP(&historyOpts.format, "format", "f", "plain", "Output format (plain, json)")
	f.StringVar(&historyOpts.template, "template", "", "Go template for each plain line")
	f.StringVarP(&historyOpts.since, "since", "s", "", "Only notifications closed within this duration (e.g. 30m, 1h)")
	f.StringVarP(&historyOpts.app, "app", "a", "", "Only notifications from this application")
	f.StringVarP(&historyOpts.urgency, "urgency", "u", "", "Only notifications of this urgency (low, normal, critical)")
	f.StringVar(&historyOpts.reason, "reason", "", "Only notifications closed for this reason (expired, dismissed, closed)")
	f.IntVarP(&historyOpts.limit, "limit", "n", 0, "Maximum number of notifications (0 = all)")
}

func openHistory(cfg *config.Config) (*history.Store, error) {
	path := cfg.HistoryPath()
	if path == "" {
		return nil, fmt.Errorf("cannot determine history path")
	}
	p, err := history.NewJSONLPersistence(path)
	if err != nil {
		return nil, err
	}
	store := history.NewStore(p, 0)
	if err := store.Hydrate(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return store, nil
}

// historyFilter builds the filter from the command flags.
func historyFilter() (history.FilterOptions, error) {
	opts := history.FilterOptions{
		AppFilter: historyOpts.app,
		Reason:    historyOpts.reason,
		Limit:     historyOpts.limit,
	}
	if historyOpts.since != "" {
		var d config.Duration
		if err := d.UnmarshalText([]byte(historyOpts.since)); err != nil {
			return opts, fmt.Errorf("invalid --since: %w", err)
		}
		opts.Since = d.Duration()
	}
	if historyOpts.urgency != "" {
		u, err := dbus.ParseUrgency(historyOpts.urgency)
		if err != nil {
			return opts, err
		}
		level := int(u)
		opts.Urgency = &level
	}
	return opts, nil
}

func printHistory(w io.Writer, store *history.Store) error {
	filter, err := historyFilter()
	if err != nil {
		return err
	}

	fopts := history.DefaultFormatterOptions()
	fopts.Template = historyOpts.template
	formatter, err := history.NewFormatter(history.FormatType(historyOpts.format), fopts)
	if err != nil {
		return err
	}
	return formatter.Format(w, store.Filter(filter))
}
