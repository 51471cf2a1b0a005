package daemon

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	godbus "github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toastui/internal/config"
	"github.com/jmylchreest/toastui/internal/dbus"
	"github.com/jmylchreest/toastui/internal/frame"
	"github.com/jmylchreest/toastui/internal/history"
	"github.com/jmylchreest/toastui/internal/toast"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeHost struct {
	m *toast.Manager
}

func (h *fakeHost) Call(fn func(m *toast.Manager)) { fn(h.m) }

type signal struct {
	kind   string
	id     uint32
	reason dbus.CloseReason
	action string
}

type fakeSignals struct {
	sent []signal
}

func (s *fakeSignals) CloseWithReason(id uint32, reason dbus.CloseReason) error {
	s.sent = append(s.sent, signal{kind: "closed", id: id, reason: reason})
	return nil
}

func (s *fakeSignals) InvokeAction(id uint32, key string) error {
	s.sent = append(s.sent, signal{kind: "action", id: id, action: key})
	return nil
}

type fakePlayer struct {
	played []string
	err    error
}

func (p *fakePlayer) Play(path string) error {
	p.played = append(p.played, path)
	return p.err
}

type fixture struct {
	d       *Daemon
	m       *toast.Manager
	q       *frame.Queue
	signals *fakeSignals
}

func newFixture(t *testing.T, cfg *config.Config) *fixture {
	t.Helper()
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	q := frame.NewQueue()
	mc := cfg.ManagerConfig()
	mc.ExitTransition = 0
	m := toast.NewManager(nil, q, mc, discardLogger())

	signals := &fakeSignals{}
	d := New(cfg, &fakeHost{m: m}, signals, discardLogger())
	d.Attach(m)
	return &fixture{d: d, m: m, q: q, signals: signals}
}

func (f *fixture) only(t *testing.T) *toast.Notification {
	t.Helper()
	all := f.m.Notifications()
	require.Len(t, all, 1)
	return all[0]
}

func TestDaemon_NotifyShowsToast(t *testing.T) {
	f := newFixture(t, nil)

	f.d.HandleNotify(&dbus.Notification{
		AppName:       "mail",
		Summary:       "New message",
		Body:          "from bob",
		ExpireTimeout: 1500,
		Hints:         dbus.NewHints(dbus.UrgencyCritical, "bottom-left"),
	}, 7, false)

	n := f.only(t)
	assert.Equal(t, "mail: New message\nfrom bob", n.Text())
	assert.Equal(t, toast.PositionBottomLeft, n.Position())
	assert.Equal(t, toast.AutoCloseAfter(1500*time.Millisecond), n.AutoClose())
	assert.True(t, n.Element().HasClass("urgency-critical"))

	id, ok := f.d.Tracker().ToastID(7)
	require.True(t, ok)
	assert.Equal(t, n.ID(), id)
}

func TestDaemon_ReplaceUpdatesExistingToast(t *testing.T) {
	f := newFixture(t, nil)

	f.d.HandleNotify(&dbus.Notification{Summary: "50%", ExpireTimeout: -1}, 3, false)
	first := f.only(t)

	f.d.HandleNotify(&dbus.Notification{Summary: "75%", ExpireTimeout: -1}, 3, true)
	assert.Same(t, first, f.only(t))
	assert.Equal(t, "75%", first.Text())
	assert.Equal(t, 1, f.d.Tracker().Len())
}

func TestDaemon_ReplaceClosingToastShowsNew(t *testing.T) {
	cfg := config.DefaultConfig()
	f := newFixture(t, cfg)
	f.m.SetExitTransition(100 * time.Millisecond)

	f.d.HandleNotify(&dbus.Notification{Summary: "old"}, 3, false)
	old := f.only(t)
	old.Remove()
	require.True(t, old.Closing())

	f.d.HandleNotify(&dbus.Notification{Summary: "new"}, 3, true)
	require.Len(t, f.m.Notifications(), 2)

	// the old toast finishing its exit must not close the replacement
	f.q.Tick(10 * time.Millisecond)
	f.q.Advance(200*time.Millisecond, 10*time.Millisecond)
	assert.True(t, old.Removed())
	assert.Empty(t, f.signals.sent)

	id, ok := f.d.Tracker().ToastID(3)
	require.True(t, ok)
	assert.NotEqual(t, old.ID(), id)
}

func TestDaemon_ExpiryEmitsClosed(t *testing.T) {
	f := newFixture(t, nil)
	f.d.HandleNotify(&dbus.Notification{Summary: "brief", ExpireTimeout: 100}, 9, false)

	f.q.Tick(10 * time.Millisecond)
	f.q.Advance(100*time.Millisecond, 10*time.Millisecond)

	assert.Equal(t, []signal{{kind: "closed", id: 9, reason: dbus.CloseReasonExpired}}, f.signals.sent)
	assert.Equal(t, 0, f.d.Tracker().Len())
}

func TestDaemon_ClickInvokesDefaultAction(t *testing.T) {
	f := newFixture(t, nil)
	f.d.HandleNotify(&dbus.Notification{
		Summary: "click me",
		Actions: []string{"default", "Open"},
	}, 4, false)

	f.only(t).Click()

	assert.Equal(t, []signal{
		{kind: "action", id: 4, action: "default"},
		{kind: "closed", id: 4, reason: dbus.CloseReasonDismissed},
	}, f.signals.sent)
}

func TestDaemon_ClickWithoutDefaultAction(t *testing.T) {
	f := newFixture(t, nil)
	f.d.HandleNotify(&dbus.Notification{Summary: "plain"}, 4, false)

	f.only(t).Click()
	assert.Equal(t, []signal{{kind: "closed", id: 4, reason: dbus.CloseReasonDismissed}}, f.signals.sent)
}

func TestDaemon_HandleClose(t *testing.T) {
	f := newFixture(t, nil)
	f.d.HandleNotify(&dbus.Notification{Summary: "bye"}, 5, false)

	f.d.HandleClose(5)
	f.d.HandleClose(5)
	f.d.HandleClose(99)

	assert.Equal(t, 0, f.m.Count())
	assert.Equal(t, []signal{{kind: "closed", id: 5, reason: dbus.CloseReasonClosed}}, f.signals.sent)
}

func TestDaemon_ApplyConfig(t *testing.T) {
	f := newFixture(t, nil)

	cfg := config.DefaultConfig()
	cfg.Defaults.Position = "top-center"
	cfg.Defaults.PauseOnHover = false
	cfg.Timeouts.Normal = config.Duration(2 * time.Second)
	f.d.ApplyConfig(cfg)
	assert.Same(t, cfg, f.d.Config())

	f.d.HandleNotify(&dbus.Notification{Summary: "after reload", ExpireTimeout: -1}, 1, false)
	n := f.only(t)
	assert.Equal(t, toast.PositionTopCenter, n.Position())
	assert.Equal(t, toast.AutoCloseAfter(2*time.Second), n.AutoClose())
	assert.False(t, n.Element().HasClass(toast.ClassPauseOnHover))
}

func TestDaemon_PlaysSound(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Audio.Enabled = true
	cfg.Audio.Sounds.Critical = "/sounds/alarm.wav"

	tests := []struct {
		name string
		n    *dbus.Notification
		want []string
	}{
		{
			name: "urgency sound",
			n:    &dbus.Notification{Hints: dbus.NewHints(dbus.UrgencyCritical, "")},
			want: []string{"/sounds/alarm.wav"},
		},
		{
			name: "sound-file hint",
			n: &dbus.Notification{Hints: map[string]godbus.Variant{
				"sound-file": godbus.MakeVariant("/tmp/ding.wav"),
			}},
			want: []string{"/tmp/ding.wav"},
		},
		{
			name: "suppressed",
			n: &dbus.Notification{Hints: map[string]godbus.Variant{
				"urgency":        godbus.MakeVariant(byte(2)),
				"suppress-sound": godbus.MakeVariant(true),
			}},
		},
		{
			name: "no sound configured",
			n:    &dbus.Notification{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, cfg)
			p := &fakePlayer{}
			f.d.SetPlayer(p)

			f.d.HandleNotify(tt.n, 1, false)
			assert.Equal(t, tt.want, p.played)
		})
	}
}

func TestDaemon_AudioErrorRaisesNotification(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Audio.Enabled = true
	cfg.Audio.Sounds.Normal = "/missing.wav"

	f := newFixture(t, cfg)
	f.d.SetPlayer(&fakePlayer{err: errors.New("no such file")})

	var next uint32 = 100
	notifier := NewInternalNotifier(discardLogger())
	notifier.SetNotifyHandler(func(n *dbus.Notification) uint32 {
		next++
		f.d.HandleNotify(n, next, false)
		return next
	})
	f.d.SetNotifier(notifier)

	f.d.HandleNotify(&dbus.Notification{Summary: "ding"}, 1, false)

	require.Equal(t, 2, f.m.Count())
	assert.Contains(t, f.m.Notifications()[1].Text(), "Audio Error")
}

func TestDaemon_NilSignaller(t *testing.T) {
	q := frame.NewQueue()
	m := toast.NewManager(nil, q, toast.ManagerConfig{}, discardLogger())
	d := New(nil, &fakeHost{m: m}, nil, nil)
	d.Attach(m)

	d.HandleNotify(&dbus.Notification{Summary: "mirrored"}, 1, false)
	m.CloseAll(toast.CloseReasonClosed)
	q.Advance(time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, m.Count())
	assert.Equal(t, 0, d.Tracker().Len())
}

type fakeRecorder struct {
	records []history.Record
}

func (r *fakeRecorder) Add(rec history.Record) error {
	r.records = append(r.records, rec)
	return nil
}

func TestDaemon_RecordsHistory(t *testing.T) {
	f := newFixture(t, nil)
	rec := &fakeRecorder{}
	f.d.SetHistory(rec)
	closedAt := time.Unix(1700000100, 0)
	f.d.now = func() time.Time { return closedAt }

	f.d.HandleNotify(&dbus.Notification{
		AppName: "mail",
		Summary: "New message",
		Body:    "from bob",
		Actions: []string{"default", "Open"},
		Hints:   dbus.NewHints(dbus.UrgencyCritical, ""),
	}, 4, false)
	f.only(t).Click()

	require.Len(t, rec.records, 1)
	r := rec.records[0]
	assert.Equal(t, uint32(4), r.DBusID)
	assert.Equal(t, "mail", r.AppName)
	assert.Equal(t, "New message", r.Summary)
	assert.Equal(t, "from bob", r.Body)
	assert.Equal(t, "critical", r.UrgencyName)
	assert.Equal(t, "dismissed", r.Reason)
	assert.Equal(t, "default", r.Action)
	assert.Equal(t, closedAt.Unix(), r.ClosedAt)
	assert.NotZero(t, r.ShownAt)
	assert.NoError(t, r.Validate())
}

func TestDaemon_HistorySkipsTransientAndEmpty(t *testing.T) {
	f := newFixture(t, nil)
	rec := &fakeRecorder{}
	f.d.SetHistory(rec)

	f.d.HandleNotify(&dbus.Notification{
		Summary: "volume 40%",
		Hints:   map[string]godbus.Variant{"transient": godbus.MakeVariant(true)},
	}, 1, false)
	f.d.HandleNotify(&dbus.Notification{AppName: "blank"}, 2, false)
	f.m.CloseAll(toast.CloseReasonClosed)

	assert.Empty(t, rec.records)
	assert.Len(t, f.signals.sent, 2)
}

func TestDaemon_HistoryRecordsReplacedText(t *testing.T) {
	f := newFixture(t, nil)
	rec := &fakeRecorder{}
	f.d.SetHistory(rec)

	f.d.HandleNotify(&dbus.Notification{Summary: "50%"}, 3, false)
	f.d.HandleNotify(&dbus.Notification{Summary: "100%"}, 3, true)
	f.d.HandleClose(3)

	require.Len(t, rec.records, 1)
	assert.Equal(t, "100%", rec.records[0].Summary)
	assert.Equal(t, "closed", rec.records[0].Reason)
	assert.Empty(t, rec.records[0].Action)
}
