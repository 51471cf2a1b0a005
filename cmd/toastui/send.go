package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	godbus "github.com/godbus/dbus/v5"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/toastui/internal/dbus"
	"github.com/jmylchreest/toastui/internal/toast"
)

const callTimeout = 5 * time.Second

var sendOpts struct {
	appName   string
	urgency   string
	position  string
	expire    time.Duration
	replaces  uint32
	actions   []string
	soundFile string
	fgColor   string
	bgColor   string
	frColor   string
}

var sendCmd = &cobra.Command{
	Use:   "send SUMMARY [BODY]",
	Short: "Send a notification over D-Bus",
	Long: `Send a notification to the running notification daemon and print its ID.

Any org.freedesktop.Notifications daemon accepts the notification; toastuid
also honours --position.

Examples:
  toastui send "Build finished"
  toastui send --urgency critical --position top-left "Disk full" "/ is at 99%"
  toastui send --expire 0 --action default=Open "Review requested"`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSend,
}

var closeCmd = &cobra.Command{
	Use:   "close ID",
	Short: "Close a notification by ID",
	Args:  cobra.ExactArgs(1),
	RunE:  runClose,
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the running notification daemon",
	Args:  cobra.NoArgs,
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(sendCmd, closeCmd, infoCmd)

	f := sendCmd.Flags()
	f.StringVarP(&sendOpts.appName, "app", "a", "toastui", "Application name")
	f.StringVarP(&sendOpts.urgency, "urgency", "u", "normal", "Urgency (low, normal, critical)")
	f.StringVarP(&sendOpts.position, "position", "p", "", "Toast position (top-left ... bottom-right)")
	f.DurationVarP(&sendOpts.expire, "expire", "t", -1, "Time before the toast closes; 0 never, negative uses the daemon default")
	f.Uint32VarP(&sendOpts.replaces, "replaces", "r", 0, "ID of a notification to replace")
	f.StringArrayVar(&sendOpts.actions, "action", nil, "Action as key=label (repeatable)")
	f.StringVar(&sendOpts.soundFile, "sound-file", "", "Sound to play")
	f.StringVar(&sendOpts.fgColor, "fg", "", "Foreground color")
	f.StringVar(&sendOpts.bgColor, "bg", "", "Background color")
	f.StringVar(&sendOpts.frColor, "frame", "", "Border color")
}

func runSend(cmd *cobra.Command, args []string) error {
	n, err := buildNotification(args)
	if err != nil {
		return err
	}

	client, err := dbus.NewClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), callTimeout)
	defer cancel()

	id, err := client.Notify(ctx, n)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), id)
	return nil
}

func buildNotification(args []string) (*dbus.Notification, error) {
	urgency, err := dbus.ParseUrgency(sendOpts.urgency)
	if err != nil {
		return nil, err
	}
	if sendOpts.position != "" && !toast.Position(sendOpts.position).Valid() {
		return nil, fmt.Errorf("invalid position %q", sendOpts.position)
	}
	actions, err := parseActions(sendOpts.actions)
	if err != nil {
		return nil, err
	}

	hints := dbus.NewHints(urgency, sendOpts.position)
	for name, value := range map[string]string{
		"sound-file": sendOpts.soundFile,
		"fgcolor":    sendOpts.fgColor,
		"bgcolor":    sendOpts.bgColor,
		"frcolor":    sendOpts.frColor,
	} {
		if value != "" {
			hints[name] = godbus.MakeVariant(value)
		}
	}

	n := &dbus.Notification{
		AppName:       sendOpts.appName,
		ReplacesID:    sendOpts.replaces,
		Summary:       args[0],
		Actions:       actions,
		Hints:         hints,
		ExpireTimeout: expireTimeout(sendOpts.expire),
	}
	if len(args) > 1 {
		n.Body = args[1]
	}
	return n, nil
}

// parseActions converts key=label flags to the alternating D-Bus form.
func parseActions(flags []string) ([]string, error) {
	actions := make([]string, 0, 2*len(flags))
	for _, f := range flags {
		key, label, ok := strings.Cut(f, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid action %q, expected key=label", f)
		}
		actions = append(actions, key, label)
	}
	return actions, nil
}

func expireTimeout(d time.Duration) int32 {
	if d < 0 {
		return -1
	}
	return int32(d.Milliseconds())
}

func runClose(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid notification ID %q: %w", args[0], err)
	}

	client, err := dbus.NewClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), callTimeout)
	defer cancel()
	return client.CloseNotification(ctx, uint32(id))
}

func runInfo(cmd *cobra.Command, args []string) error {
	client, err := dbus.NewClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), callTimeout)
	defer cancel()

	info, err := client.GetServerInformation(ctx)
	if err != nil {
		return err
	}
	caps, err := client.GetCapabilities(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Name:         %s\n", info.Name)
	fmt.Fprintf(out, "Vendor:       %s\n", info.Vendor)
	fmt.Fprintf(out, "Version:      %s\n", info.Version)
	fmt.Fprintf(out, "Spec version: %s\n", info.SpecVersion)
	fmt.Fprintf(out, "Capabilities: %s\n", strings.Join(caps, ", "))
	return nil
}
