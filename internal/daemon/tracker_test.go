package daemon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker(t *testing.T) {
	tr := NewTracker()
	tr.Register(Entry{DBusID: 1, ToastID: "a", DefaultAction: "default"})
	tr.Register(Entry{DBusID: 2, ToastID: "b"})
	assert.Equal(t, 2, tr.Len())

	id, ok := tr.ToastID(1)
	require.True(t, ok)
	assert.Equal(t, "a", id)

	e, ok := tr.RemoveByToast("a")
	require.True(t, ok)
	assert.Equal(t, uint32(1), e.DBusID)
	assert.Equal(t, "default", e.DefaultAction)
	assert.False(t, e.CreatedAt.IsZero())

	_, ok = tr.ToastID(1)
	assert.False(t, ok)
	_, ok = tr.RemoveByToast("a")
	assert.False(t, ok)
	assert.Equal(t, 1, tr.Len())
}

func TestTracker_ReRegisterForgetsPreviousToast(t *testing.T) {
	tr := NewTracker()
	tr.Register(Entry{DBusID: 1, ToastID: "old"})
	tr.Register(Entry{DBusID: 1, ToastID: "new"})

	_, ok := tr.RemoveByToast("old")
	assert.False(t, ok)

	id, _ := tr.ToastID(1)
	assert.Equal(t, "new", id)
	assert.Equal(t, 1, tr.Len())
}

func TestTracker_ReRegisterSameToastKeepsCreatedAt(t *testing.T) {
	tr := NewTracker()
	created := time.Unix(1700000000, 0)
	tr.Register(Entry{DBusID: 1, ToastID: "a", Summary: "50%", CreatedAt: created})
	tr.Register(Entry{DBusID: 1, ToastID: "a", Summary: "75%"})

	e, ok := tr.RemoveByToast("a")
	require.True(t, ok)
	assert.Equal(t, "75%", e.Summary)
	assert.Equal(t, created, e.CreatedAt)
}
