package render

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toastui/internal/dom"
	"github.com/jmylchreest/toastui/internal/frame"
	"github.com/jmylchreest/toastui/internal/toast"
)

func newManager(t *testing.T) (*toast.Manager, *frame.Queue) {
	t.Helper()
	q := frame.NewQueue()
	cfg := toast.DefaultManagerConfig()
	cfg.ExitTransition = 0
	return toast.NewManager(nil, q, cfg, nil), q
}

func lineOf(out, text string) (line, col int) {
	for i, l := range strings.Split(out, "\n") {
		if c := strings.Index(l, text); c >= 0 {
			return i, c
		}
	}
	return -1, -1
}

func TestRenderer_PlacesContainersByPosition(t *testing.T) {
	m, q := newManager(t)
	m.Show(toast.Options{Text: toast.Ptr("TL"), Position: toast.Ptr(toast.PositionTopLeft)})
	m.Show(toast.Options{Text: toast.Ptr("TR"), Position: toast.Ptr(toast.PositionTopRight)})
	m.Show(toast.Options{Text: toast.Ptr("BC"), Position: toast.Ptr(toast.PositionBottomCenter)})
	q.Tick(10 * time.Millisecond)

	r := New(20)
	r.SetSize(90, 30)
	out := r.Render(m.Document())

	assert.Equal(t, 30, lipgloss.Height(out))

	tlLine, tlCol := lineOf(out, "TL")
	trLine, trCol := lineOf(out, "TR")
	bcLine, _ := lineOf(out, "BC")
	require.GreaterOrEqual(t, tlLine, 0)
	require.GreaterOrEqual(t, trLine, 0)
	require.GreaterOrEqual(t, bcLine, 0)

	assert.Equal(t, tlLine, trLine)
	assert.Less(t, tlCol, trCol)
	assert.Greater(t, bcLine, 20)
}

func TestRenderer_EmptyDocument(t *testing.T) {
	r := New(0)
	assert.Equal(t, DefaultToastWidth, r.ToastWidth())

	assert.Empty(t, r.Render(dom.NewDocument()))

	r.SetSize(40, 5)
	assert.Equal(t, 5, lipgloss.Height(r.Render(dom.NewDocument())))
}

func TestRenderer_StacksContainerChildren(t *testing.T) {
	m, _ := newManager(t)
	m.Show(toast.Options{Text: toast.Ptr("first")})
	m.Show(toast.Options{Text: toast.Ptr("second")})

	container, ok := m.Registry().Lookup(toast.DefaultPosition)
	require.True(t, ok)

	r := New(24)
	out := r.RenderContainer(container)
	first, _ := lineOf(out, "first")
	second, _ := lineOf(out, "second")
	assert.Less(t, first, second)
}

func TestRenderer_ToastContents(t *testing.T) {
	m, q := newManager(t)
	n := m.Show(toast.Options{
		Text:      toast.Ptr("hello"),
		AutoClose: toast.Ptr(toast.AutoCloseAfter(time.Second)),
	})
	q.Tick(10 * time.Millisecond)

	r := New(30)
	out := r.RenderToast(n.Element())
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "×")
	assert.Equal(t, 30, lipgloss.Width(out))
	// text, progress bar, two border rows
	assert.Equal(t, 4, lipgloss.Height(out))

	n.PointerEnter()
	assert.Contains(t, r.RenderToast(n.Element()), "paused")

	n.Update(toast.Options{ShowProgress: toast.Ptr(false), CanClose: toast.Ptr(false)})
	out = r.RenderToast(n.Element())
	assert.NotContains(t, out, "×")
	assert.Equal(t, 4, lipgloss.Height(out))
}

func TestRenderer_Highlight(t *testing.T) {
	m, _ := newManager(t)
	n := m.Show(toast.Options{Text: toast.Ptr("pick me")})

	r := New(24)
	plain := r.RenderToast(n.Element())
	r.SetHighlight(n.ID())
	highlighted := r.RenderToast(n.Element())

	assert.Contains(t, plain, lipgloss.RoundedBorder().TopLeft)
	assert.Contains(t, highlighted, lipgloss.ThickBorder().TopLeft)
}
