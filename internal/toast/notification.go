package toast

import (
	"log/slog"
	"slices"
	"time"

	"github.com/jmylchreest/toastui/internal/dom"
	"github.com/jmylchreest/toastui/internal/frame"
	"github.com/jmylchreest/toastui/internal/timer"
)

// Notification is one on-screen toast. It is created by Manager.Show and
// must only be used from the goroutine driving the manager's scheduler.
type Notification struct {
	id        string
	m         *Manager
	el        *dom.Element
	logger    *slog.Logger
	createdAt time.Time

	position  Position
	autoClose AutoClose
	countdown *timer.Countdown
	progress  *timer.Loop
	ratio     float64
	onClose   func()
	classes   []string

	clickClose *capability
	hoverPause *capability
	focusPause *capability

	paused   bool
	entrance frame.Handle
	exit     *timer.Countdown
	closing  bool
	removed  bool
	reason   CloseReason
}

func newNotification(m *Manager) *Notification {
	el := m.doc.CreateElement("div")
	el.AddClass(ClassNotification)

	n := &Notification{
		id:        el.ID(),
		m:         m,
		el:        el,
		logger:    m.logger.With("toast", el.ID()),
		createdAt: time.Now(),
		ratio:     1,
		onClose:   func() {},
	}

	n.clickClose = newCapability(el, el, ClassCanClose).
		on(dom.EventClick, func(dom.Event) { n.dismiss() })

	n.hoverPause = newCapability(el, el, ClassPauseOnHover).
		on(dom.EventPointerEnter, func(dom.Event) { n.setPaused(true) }).
		on(dom.EventPointerLeave, func(dom.Event) { n.setPaused(false) })
	n.hoverPause.onOff = func(enabled bool) {
		if !enabled {
			n.setPaused(false)
		}
	}

	n.focusPause = newCapability(el, m.doc, ClassPauseOnFocusLoss).
		on(dom.EventVisibilityChange, func(dom.Event) { n.visibilityChanged() })

	n.entrance = m.sched.RequestFrame(func(time.Duration) {
		n.entrance = 0
		el.AddClass(ClassShow)
	})

	return n
}

// Update applies every option set in o.
func (n *Notification) Update(o Options) {
	n.apply(o)
}

// UpdateMap applies a free-form mapping of options. Anything other than a
// mapping is rejected with ErrInvalidOptions and nothing is changed.
func (n *Notification) UpdateMap(v any) error {
	opts, ignored, err := ParseOptions(v)
	if err != nil {
		n.logger.Error("invalid notification update", "error", err)
		return err
	}
	if len(ignored) > 0 {
		n.logger.Debug("ignored notification options", "keys", ignored)
	}
	n.apply(opts)
	return nil
}

// apply runs one setter per provided option. Position goes first so the
// element is parented before anything else, and auto-close precedes
// progress because progress reads the countdown.
func (n *Notification) apply(o Options) {
	if n.inactive() {
		return
	}
	if o.Position != nil {
		n.SetPosition(*o.Position)
	}
	if o.AutoClose != nil {
		n.SetAutoClose(*o.AutoClose)
	}
	if o.CanClose != nil {
		n.SetCanClose(*o.CanClose)
	}
	if o.ShowProgress != nil {
		n.SetShowProgress(*o.ShowProgress)
	}
	if o.PauseOnHover != nil {
		n.SetPauseOnHover(*o.PauseOnHover)
	}
	if o.PauseOnFocusLoss != nil {
		n.SetPauseOnFocusLoss(*o.PauseOnFocusLoss)
	}
	if o.OnClose != nil {
		n.SetOnClose(o.OnClose)
	}
	if o.Style != nil {
		n.SetStyle(o.Style)
	}
	if o.Classes != nil {
		n.SetClasses(o.Classes)
	}
	if o.Text != nil {
		n.SetText(*o.Text)
	}
}

// SetPosition moves the element into the container for p. The previous
// container is destroyed if this leaves it empty.
func (n *Notification) SetPosition(p Position) {
	if n.inactive() {
		return
	}
	if !p.Valid() {
		n.logger.Debug("unknown position, using default", "position", p, "default", DefaultPosition)
		p = DefaultPosition
	}

	prev := n.el.Parent()
	container := n.m.registry.Resolve(p)
	container.Append(n.el)
	n.position = p

	if prev != nil && prev != container {
		n.m.registry.Release(prev)
	}
	n.m.enforceLimit(container, n)
}

// SetAutoClose restarts the countdown from zero with limit a. A disabled
// value stops the countdown.
func (n *Notification) SetAutoClose(a AutoClose) {
	if n.inactive() {
		return
	}
	n.autoClose = a
	if n.countdown != nil {
		n.countdown.Cancel()
		n.countdown = nil
	}
	if !a.Enabled() {
		return
	}

	n.countdown = timer.NewCountdown(n.m.sched, a.Duration(), n.expire)
	if n.paused {
		n.countdown.Pause()
	}
	n.countdown.Start()
}

// SetCanClose toggles click-to-close.
func (n *Notification) SetCanClose(enabled bool) {
	if n.inactive() {
		return
	}
	n.clickClose.Set(enabled)
}

// SetShowProgress toggles the progress indicator and restarts its loop.
func (n *Notification) SetShowProgress(enabled bool) {
	if n.inactive() {
		return
	}
	n.el.ToggleClass(ClassProgress, enabled)
	n.writeProgress(1)

	if n.progress != nil {
		n.progress.Cancel()
		n.progress = nil
	}
	if !enabled {
		return
	}

	n.progress = timer.NewLoop(n.m.sched, func(time.Duration) {
		if n.paused || n.countdown == nil {
			return
		}
		n.writeProgress(n.countdown.Ratio())
	})
	n.progress.Start()
}

// SetPauseOnHover toggles pausing while the pointer is over the element.
func (n *Notification) SetPauseOnHover(enabled bool) {
	if n.inactive() {
		return
	}
	n.hoverPause.Set(enabled)
}

// SetPauseOnFocusLoss toggles resynchronising the countdown when the
// document becomes visible again.
func (n *Notification) SetPauseOnFocusLoss(enabled bool) {
	if n.inactive() {
		return
	}
	n.focusPause.Set(enabled)
}

// SetOnClose sets the callback run when the countdown expires.
func (n *Notification) SetOnClose(fn func()) {
	if n.inactive() {
		return
	}
	if fn == nil {
		fn = func() {}
	}
	n.onClose = fn
}

// SetStyle applies inline style properties as given.
func (n *Notification) SetStyle(styles map[string]string) {
	if n.inactive() {
		return
	}
	for k, v := range styles {
		n.el.SetStyle(k, v)
	}
}

// SetClasses replaces the extra classes applied by a previous call.
func (n *Notification) SetClasses(classes []string) {
	if n.inactive() {
		return
	}
	for _, c := range n.classes {
		n.el.RemoveClass(c)
	}
	n.classes = slices.Clone(classes)
	for _, c := range n.classes {
		n.el.AddClass(c)
	}
}

// SetText replaces the message.
func (n *Notification) SetText(text string) {
	if n.inactive() {
		return
	}
	n.el.SetText(text)
}

// Remove closes the notification as dismissed, without calling onClose.
func (n *Notification) Remove() {
	n.close(CloseReasonDismissed)
}

// Click simulates the user clicking the element.
func (n *Notification) Click() { n.el.Dispatch(dom.EventClick) }

// PointerEnter simulates the pointer entering the element.
func (n *Notification) PointerEnter() { n.el.Dispatch(dom.EventPointerEnter) }

// PointerLeave simulates the pointer leaving the element.
func (n *Notification) PointerLeave() { n.el.Dispatch(dom.EventPointerLeave) }

// inactive reports whether the notification has started closing. Setters
// are no-ops from then on.
func (n *Notification) inactive() bool {
	if n.closing {
		n.logger.Debug("update ignored, notification is closing")
	}
	return n.closing
}

func (n *Notification) expire() {
	n.logger.Debug("notification expired", "auto_close", n.autoClose)
	n.onClose()
	n.close(CloseReasonExpired)
}

func (n *Notification) dismiss() {
	if n.countdown != nil {
		n.countdown.Cancel()
	}
	n.close(CloseReasonDismissed)
}

func (n *Notification) setPaused(paused bool) {
	if n.paused == paused {
		return
	}
	n.paused = paused
	n.el.ToggleClass(ClassPaused, paused)
	if n.countdown == nil {
		return
	}
	if paused {
		n.countdown.Pause()
	} else {
		n.countdown.Resume()
	}
}

func (n *Notification) visibilityChanged() {
	if n.m.doc.Visibility() != dom.VisibilityVisible || n.countdown == nil {
		return
	}
	n.countdown.Resync()
}

func (n *Notification) writeProgress(ratio float64) {
	n.ratio = ratio
	n.el.SetProperty(PropertyProgress, ratio)
}

// close stops all frame work, starts the exit transition and detaches the
// element once it ends.
func (n *Notification) close(reason CloseReason) {
	if n.closing {
		return
	}
	n.closing = true
	n.reason = reason

	if n.countdown != nil {
		n.countdown.Cancel()
	}
	if n.progress != nil {
		n.progress.Cancel()
	}
	if n.entrance != 0 {
		n.m.sched.CancelFrame(n.entrance)
		n.entrance = 0
	}

	n.logger.Debug("closing notification", "reason", reason)
	n.el.RemoveClass(ClassShow)
	n.el.AddEventListenerOnce(dom.EventTransitionEnd, func(dom.Event) { n.detach() })

	if n.m.exitTransition <= 0 {
		n.el.Dispatch(dom.EventTransitionEnd)
		return
	}
	n.exit = timer.NewCountdown(n.m.sched, n.m.exitTransition, func() {
		n.el.Dispatch(dom.EventTransitionEnd)
	})
	n.exit.Start()
}

func (n *Notification) detach() {
	container := n.el.Parent()
	n.el.Remove()
	n.m.registry.Release(container)

	n.focusPause.Disable()
	n.hoverPause.Disable()
	n.clickClose.Disable()

	n.removed = true
	n.m.forget(n)
}

// ID returns the notification's identifier, which is also its element ID.
func (n *Notification) ID() string { return n.id }

// Element returns the notification's element.
func (n *Notification) Element() *dom.Element { return n.el }

// Text returns the message.
func (n *Notification) Text() string { return n.el.Text() }

// Position returns the current position.
func (n *Notification) Position() Position { return n.position }

// AutoClose returns the current auto-close setting.
func (n *Notification) AutoClose() AutoClose { return n.autoClose }

// Elapsed returns the visible time accumulated since auto-close was last
// assigned.
func (n *Notification) Elapsed() time.Duration {
	if n.countdown == nil {
		return 0
	}
	return n.countdown.Elapsed()
}

// Remaining returns the visible time left before auto-close, or zero when
// auto-close is disabled.
func (n *Notification) Remaining() time.Duration {
	if n.countdown == nil {
		return 0
	}
	return n.countdown.Remaining()
}

// Progress returns the last progress ratio written to the element.
func (n *Notification) Progress() float64 { return n.ratio }

// Paused reports whether the countdown is paused by hover.
func (n *Notification) Paused() bool { return n.paused }

// Closing reports whether the notification has started closing.
func (n *Notification) Closing() bool { return n.closing }

// Removed reports whether the element has been detached.
func (n *Notification) Removed() bool { return n.removed }

// Reason returns why the notification closed. It is only meaningful once
// Closing reports true.
func (n *Notification) Reason() CloseReason { return n.reason }

// CreatedAt returns the wall-clock creation time.
func (n *Notification) CreatedAt() time.Time { return n.createdAt }
