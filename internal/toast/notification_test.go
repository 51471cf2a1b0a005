package toast

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toastui/internal/dom"
	"github.com/jmylchreest/toastui/internal/frame"
)

const frameStep = 10 * time.Millisecond

func newTestManager(t *testing.T, exit time.Duration) (*Manager, *frame.Queue) {
	t.Helper()
	q := frame.NewQueue()
	cfg := DefaultManagerConfig()
	cfg.ExitTransition = exit
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewManager(dom.NewDocument(), q, cfg, logger), q
}

// firstFrame runs the frame on which loops only record their start time.
func firstFrame(q *frame.Queue) {
	q.Tick(frameStep)
}

func TestNotification_AutoCloseFiresOnce(t *testing.T) {
	m, q := newTestManager(t, 0)
	var closes, removed int
	m.OnClosed(func(n *Notification, reason CloseReason) {
		removed++
		assert.Equal(t, CloseReasonExpired, reason)
	})

	n := m.Show(Options{
		AutoClose: Ptr(AutoCloseAfter(200 * time.Millisecond)),
		OnClose:   func() { closes++ },
	})
	firstFrame(q)

	q.Advance(190*time.Millisecond, frameStep)
	assert.Equal(t, 0, closes)
	assert.False(t, n.Removed())

	q.Advance(frameStep, frameStep)
	assert.Equal(t, 1, closes)
	assert.Equal(t, 1, removed)
	assert.True(t, n.Removed())
	assert.False(t, n.Element().Connected())

	q.Advance(time.Second, frameStep)
	assert.Equal(t, 1, closes)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 0, q.Len())
}

func TestNotification_AutoCloseDisabled(t *testing.T) {
	m, q := newTestManager(t, 0)
	var closes int
	n := m.Show(Options{
		AutoClose: Ptr(AutoCloseDisabled),
		OnClose:   func() { closes++ },
	})

	q.Advance(time.Minute, 100*time.Millisecond)
	assert.Equal(t, 0, closes)
	assert.False(t, n.Closing())
	assert.Equal(t, time.Duration(0), n.Elapsed())
	assert.Equal(t, 1.0, n.Progress())
}

func TestNotification_HoverPauseDelaysByPausedTime(t *testing.T) {
	m, q := newTestManager(t, 0)
	limit := Ptr(AutoCloseAfter(500 * time.Millisecond))
	var hoveredClosed, plainClosed bool
	hovered := m.Show(Options{AutoClose: limit, OnClose: func() { hoveredClosed = true }})
	plain := m.Show(Options{AutoClose: limit, OnClose: func() { plainClosed = true }})
	firstFrame(q)

	q.Advance(100*time.Millisecond, frameStep)
	hovered.PointerEnter()
	assert.True(t, hovered.Paused())
	assert.True(t, hovered.Element().HasClass(ClassPaused))

	q.Advance(200*time.Millisecond, frameStep)
	hovered.PointerLeave()
	assert.False(t, hovered.Paused())

	q.Advance(200*time.Millisecond, frameStep)
	assert.True(t, plainClosed)
	assert.True(t, plain.Removed())
	assert.False(t, hoveredClosed)
	assert.Equal(t, 300*time.Millisecond, hovered.Elapsed())

	q.Advance(190*time.Millisecond, frameStep)
	assert.False(t, hoveredClosed)
	q.Advance(frameStep, frameStep)
	assert.True(t, hoveredClosed)
}

func TestNotification_HoverIgnoredWhenDisabled(t *testing.T) {
	m, q := newTestManager(t, 0)
	n := m.Show(Options{PauseOnHover: Ptr(false)})
	firstFrame(q)

	n.PointerEnter()
	assert.False(t, n.Paused())
	assert.False(t, n.Element().HasClass(ClassPauseOnHover))
	assert.Equal(t, 0, n.Element().ListenerCount(dom.EventPointerEnter))
}

func TestNotification_DisablingHoverWhilePausedResumes(t *testing.T) {
	m, q := newTestManager(t, 0)
	n := m.Show(Options{})
	firstFrame(q)

	n.PointerEnter()
	require.True(t, n.Paused())
	n.Update(Options{PauseOnHover: Ptr(false)})
	assert.False(t, n.Paused())

	q.Advance(100*time.Millisecond, frameStep)
	assert.Equal(t, 100*time.Millisecond, n.Elapsed())
}

func TestNotification_ProgressRatio(t *testing.T) {
	m, q := newTestManager(t, 0)
	n := m.Show(Options{AutoClose: Ptr(AutoCloseAfter(time.Second))})
	v, ok := n.Element().Property(PropertyProgress)
	require.True(t, ok)
	assert.Equal(t, 1.0, v)
	firstFrame(q)

	for _, elapsed := range []time.Duration{250, 500, 750} {
		q.Advance(250*time.Millisecond, frameStep)
		want := 1 - float64(elapsed)/1000
		assert.InDelta(t, want, n.Progress(), 1e-9, "at %dms", elapsed)

		v, _ := n.Element().Property(PropertyProgress)
		assert.InDelta(t, want, v, 1e-9)
	}
}

func TestNotification_ProgressFrozenWhilePaused(t *testing.T) {
	m, q := newTestManager(t, 0)
	n := m.Show(Options{AutoClose: Ptr(AutoCloseAfter(time.Second))})
	firstFrame(q)
	q.Advance(200*time.Millisecond, frameStep)

	n.PointerEnter()
	q.Advance(300*time.Millisecond, frameStep)
	assert.InDelta(t, 0.8, n.Progress(), 1e-9)
}

func TestNotification_ProgressDisabled(t *testing.T) {
	m, q := newTestManager(t, 0)
	n := m.Show(Options{ShowProgress: Ptr(false)})
	firstFrame(q)
	q.Advance(time.Second, frameStep)

	assert.False(t, n.Element().HasClass(ClassProgress))
	assert.Equal(t, 1.0, n.Progress())
}

func TestNotification_ManualCloseSkipsOnClose(t *testing.T) {
	m, q := newTestManager(t, 0)
	var closes int
	var reasons []CloseReason
	m.OnClosed(func(_ *Notification, r CloseReason) { reasons = append(reasons, r) })

	n := m.Show(Options{OnClose: func() { closes++ }})
	firstFrame(q)
	q.Advance(100*time.Millisecond, frameStep)

	n.Click()
	assert.True(t, n.Removed())
	assert.Equal(t, 0, closes)
	assert.Equal(t, []CloseReason{CloseReasonDismissed}, reasons)

	q.Advance(10*time.Second, frameStep)
	assert.Equal(t, 0, closes)
	assert.Equal(t, 0, q.Len())
}

func TestNotification_ClickIgnoredWhenCanCloseDisabled(t *testing.T) {
	m, q := newTestManager(t, 0)
	n := m.Show(Options{CanClose: Ptr(false)})
	firstFrame(q)

	n.Click()
	assert.False(t, n.Closing())
	assert.False(t, n.Element().HasClass(ClassCanClose))

	n.Update(Options{CanClose: Ptr(true)})
	n.Update(Options{CanClose: Ptr(true)})
	assert.Equal(t, 1, n.Element().ListenerCount(dom.EventClick))

	n.Click()
	assert.True(t, n.Removed())
}

func TestNotification_ReassigningAutoCloseResetsElapsed(t *testing.T) {
	m, q := newTestManager(t, 0)
	var closes int
	n := m.Show(Options{
		AutoClose: Ptr(AutoCloseAfter(500 * time.Millisecond)),
		OnClose:   func() { closes++ },
	})
	firstFrame(q)
	q.Advance(400*time.Millisecond, frameStep)
	require.Equal(t, 400*time.Millisecond, n.Elapsed())

	n.Update(Options{AutoClose: Ptr(AutoCloseAfter(500 * time.Millisecond))})
	assert.Equal(t, time.Duration(0), n.Elapsed())

	firstFrame(q)
	q.Advance(400*time.Millisecond, frameStep)
	assert.Equal(t, 0, closes)
	assert.Equal(t, 400*time.Millisecond, n.Elapsed())

	q.Advance(100*time.Millisecond, frameStep)
	assert.Equal(t, 1, closes)
}

func TestNotification_AtMostOneLoopPerConcern(t *testing.T) {
	m, q := newTestManager(t, 0)
	n := m.Show(Options{})
	firstFrame(q)
	// countdown + progress
	require.Equal(t, 2, q.Len())

	for i := 0; i < 10; i++ {
		n.Update(Options{
			AutoClose:    Ptr(AutoCloseAfter(time.Second)),
			ShowProgress: Ptr(true),
		})
	}
	assert.Equal(t, 2, q.Len())

	n.Update(Options{AutoClose: Ptr(AutoCloseDisabled), ShowProgress: Ptr(false)})
	assert.Equal(t, 0, q.Len())
}

func TestNotification_FocusLossResyncsCountdown(t *testing.T) {
	m, q := newTestManager(t, 0)
	doc := m.Document()
	n := m.Show(Options{AutoClose: Ptr(AutoCloseAfter(time.Second))})
	firstFrame(q)
	q.Advance(300*time.Millisecond, frameStep)

	doc.SetVisibility(dom.VisibilityHidden)
	assert.True(t, q.Suspended())
	q.Tick(30 * time.Second)

	doc.SetVisibility(dom.VisibilityVisible)
	q.Tick(frameStep)
	assert.False(t, n.Closing())
	assert.Equal(t, 300*time.Millisecond, n.Elapsed())

	q.Advance(700*time.Millisecond, frameStep)
	assert.True(t, n.Removed())
}

func TestNotification_FocusLossDisabledCountsHiddenGap(t *testing.T) {
	m, q := newTestManager(t, 0)
	doc := m.Document()
	var closes int
	n := m.Show(Options{
		AutoClose:        Ptr(AutoCloseAfter(time.Second)),
		PauseOnFocusLoss: Ptr(false),
		OnClose:          func() { closes++ },
	})
	assert.False(t, n.Element().HasClass(ClassPauseOnFocusLoss))
	firstFrame(q)
	q.Advance(300*time.Millisecond, frameStep)

	doc.SetVisibility(dom.VisibilityHidden)
	q.Tick(30 * time.Second)
	doc.SetVisibility(dom.VisibilityVisible)
	q.Tick(frameStep)

	assert.Equal(t, 1, closes)
	assert.True(t, n.Removed())
}

func TestNotification_CapabilityClassesAreIndependent(t *testing.T) {
	m, _ := newTestManager(t, 0)
	n := m.Show(Options{
		CanClose:         Ptr(true),
		PauseOnHover:     Ptr(false),
		PauseOnFocusLoss: Ptr(true),
	})
	el := n.Element()

	assert.True(t, el.HasClass(ClassCanClose))
	assert.False(t, el.HasClass(ClassPauseOnHover))
	assert.True(t, el.HasClass(ClassPauseOnFocusLoss))

	n.Update(Options{CanClose: Ptr(false)})
	assert.False(t, el.HasClass(ClassCanClose))
	assert.True(t, el.HasClass(ClassPauseOnFocusLoss))
}

func TestNotification_EntranceAndExitTransition(t *testing.T) {
	m, q := newTestManager(t, 100*time.Millisecond)
	n := m.Show(Options{Text: Ptr("hello")})
	el := n.Element()
	assert.False(t, el.HasClass(ClassShow))

	firstFrame(q)
	assert.True(t, el.HasClass(ClassShow))
	assert.Equal(t, "hello", n.Text())

	n.Remove()
	assert.True(t, n.Closing())
	assert.False(t, el.HasClass(ClassShow))
	assert.True(t, el.Connected())
	assert.Equal(t, 1, m.Count())

	firstFrame(q)
	q.Advance(100*time.Millisecond, frameStep)
	assert.True(t, n.Removed())
	assert.False(t, el.Connected())
	assert.Equal(t, 0, m.Count())
	assert.Equal(t, 0, m.Registry().Len())
}

func TestNotification_RemoveBeforeFirstFrame(t *testing.T) {
	m, q := newTestManager(t, 0)
	n := m.Show(Options{})
	n.Remove()
	n.Remove()

	assert.True(t, n.Removed())
	assert.Equal(t, 0, q.Len())
	assert.False(t, n.Element().HasClass(ClassShow))
}

func TestNotification_UpdateAfterCloseIgnored(t *testing.T) {
	m, q := newTestManager(t, time.Second)
	n := m.Show(Options{})
	n.Remove()
	pending := q.Len()

	n.Update(Options{AutoClose: Ptr(AutoCloseAfter(time.Second)), Text: Ptr("late")})
	assert.Equal(t, pending, q.Len())
	assert.Empty(t, n.Text())
}

func TestNotification_SettersAfterRemoveIgnored(t *testing.T) {
	m, q := newTestManager(t, 0)
	var closes int
	n := m.Show(Options{
		Text:         Ptr("original"),
		ShowProgress: Ptr(false),
		OnClose:      func() { closes++ },
	})
	firstFrame(q)
	n.Remove()
	require.True(t, n.Removed())
	require.Equal(t, 0, m.Registry().Len())
	require.Equal(t, 0, q.Len())

	n.SetShowProgress(true)
	n.SetAutoClose(AutoCloseAfter(100 * time.Millisecond))
	n.SetPosition(PositionTopLeft)
	n.SetCanClose(false)
	n.SetPauseOnHover(false)
	n.SetPauseOnFocusLoss(false)
	n.SetOnClose(func() { closes += 10 })
	n.SetStyle(map[string]string{"color": "red"})
	n.SetClasses([]string{"urgency-critical"})
	n.SetText("late")
	q.Advance(time.Second, frameStep)

	assert.Equal(t, 0, q.Len())
	assert.Equal(t, 0, m.Registry().Len())
	assert.Equal(t, 0, closes)
	assert.False(t, n.Element().Connected())
	assert.False(t, n.Element().HasClass(ClassProgress))
	assert.False(t, n.Element().HasClass("urgency-critical"))
	assert.Equal(t, "original", n.Text())
}

func TestNotification_UpdateMap(t *testing.T) {
	m, q := newTestManager(t, 0)
	n := m.Show(Options{})
	firstFrame(q)

	err := n.UpdateMap(map[string]any{
		"position":     "bottom-left",
		"auto_close":   "2s",
		"can-close":    false,
		"text":         "updated",
		"style":        map[string]any{"color": "red"},
		"classes":      []any{"urgency-critical"},
		"notAnOption":  42,
		"showProgress": "nope",
	})
	require.NoError(t, err)

	assert.Equal(t, PositionBottomLeft, n.Position())
	assert.Equal(t, AutoCloseAfter(2*time.Second), n.AutoClose())
	assert.False(t, n.Element().HasClass(ClassCanClose))
	assert.True(t, n.Element().HasClass(ClassProgress))
	assert.True(t, n.Element().HasClass("urgency-critical"))
	assert.Equal(t, "updated", n.Text())
	color, _ := n.Element().Style("color")
	assert.Equal(t, "red", color)
}

func TestNotification_UpdateMapRejectsNonMapping(t *testing.T) {
	m, q := newTestManager(t, 0)
	n := m.Show(Options{Text: Ptr("original")})
	firstFrame(q)
	q.Advance(100*time.Millisecond, frameStep)

	for _, bad := range []any{"text", 42, []string{"a"}, nil, (*Options)(nil)} {
		err := n.UpdateMap(bad)
		assert.ErrorIs(t, err, ErrInvalidOptions)
	}
	assert.Equal(t, "original", n.Text())
	assert.Equal(t, 100*time.Millisecond, n.Elapsed())
}

func TestNotification_SetClassesReplacesPrevious(t *testing.T) {
	m, _ := newTestManager(t, 0)
	n := m.Show(Options{Classes: []string{"urgency-low"}})
	n.Update(Options{Classes: []string{"urgency-critical"}})

	assert.False(t, n.Element().HasClass("urgency-low"))
	assert.True(t, n.Element().HasClass("urgency-critical"))
	assert.True(t, n.Element().HasClass(ClassNotification))
}

func TestNotification_BottomLeftScenario(t *testing.T) {
	m, q := newTestManager(t, 0)
	var closes int
	n := m.Show(Options{
		AutoClose:    Ptr(AutoCloseAfter(time.Second)),
		Position:     Ptr(PositionBottomLeft),
		ShowProgress: Ptr(true),
		OnClose:      func() { closes++ },
	})
	_, ok := m.Registry().Lookup(PositionBottomLeft)
	require.True(t, ok)
	firstFrame(q)

	q.Advance(500*time.Millisecond, frameStep)
	assert.InDelta(t, 0.5, n.Progress(), 1e-9)
	assert.Equal(t, 0, closes)

	q.Advance(500*time.Millisecond, frameStep)
	assert.Equal(t, 1, closes)
	assert.True(t, n.Removed())
	_, ok = m.Registry().Lookup(PositionBottomLeft)
	assert.False(t, ok)
	assert.Empty(t, m.Document().Body().Children())
}
