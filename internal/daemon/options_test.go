package daemon

import (
	"testing"
	"time"

	godbus "github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"

	"github.com/jmylchreest/toastui/internal/config"
	"github.com/jmylchreest/toastui/internal/dbus"
	"github.com/jmylchreest/toastui/internal/toast"
)

func TestOptionsFor_AutoClose(t *testing.T) {
	cfg := config.DefaultConfig()

	tests := []struct {
		name    string
		urgency dbus.Urgency
		expire  int32
		want    toast.AutoClose
	}{
		{"default normal", dbus.UrgencyNormal, -1, toast.AutoCloseAfter(10 * time.Second)},
		{"default low", dbus.UrgencyLow, -1, toast.AutoCloseAfter(5 * time.Second)},
		{"default critical never closes", dbus.UrgencyCritical, -1, toast.AutoCloseDisabled},
		{"never", dbus.UrgencyNormal, 0, toast.AutoCloseDisabled},
		{"explicit", dbus.UrgencyNormal, 2500, toast.AutoCloseAfter(2500 * time.Millisecond)},
		{"explicit critical", dbus.UrgencyCritical, 1000, toast.AutoCloseAfter(time.Second)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &dbus.Notification{ExpireTimeout: tt.expire, Hints: dbus.NewHints(tt.urgency, "")}
			opts := OptionsFor(n, cfg)
			assert.Equal(t, tt.want, *opts.AutoClose)
		})
	}
}

func TestOptionsFor_Fields(t *testing.T) {
	cfg := config.DefaultConfig()
	n := &dbus.Notification{
		Summary: "Build failed",
		Hints: map[string]godbus.Variant{
			"urgency":         godbus.MakeVariant(byte(0)),
			dbus.HintPosition: godbus.MakeVariant("bottom-center"),
			"frcolor":         godbus.MakeVariant("#ff0000"),
		},
	}

	opts := OptionsFor(n, cfg)
	assert.Equal(t, "Build failed", *opts.Text)
	assert.Equal(t, toast.PositionBottomCenter, *opts.Position)
	assert.Equal(t, []string{"urgency-low"}, opts.Classes)
	assert.Equal(t, map[string]string{"border-color": "#ff0000"}, opts.Style)
	assert.Nil(t, opts.CanClose)
	assert.Nil(t, opts.PauseOnHover)
}

func TestOptionsFor_UnknownPositionLeftToDefaults(t *testing.T) {
	n := &dbus.Notification{Hints: dbus.NewHints(dbus.UrgencyNormal, "middle")}
	assert.Nil(t, OptionsFor(n, config.DefaultConfig()).Position)
}
