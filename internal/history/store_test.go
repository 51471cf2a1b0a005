package history

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func summaries(rs []Record) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Summary
	}
	return out
}

func TestStore_Add(t *testing.T) {
	s := NewStore(nil, 0)
	defer s.Close()

	r := testRecord(t, "first", time.Now())
	require.NoError(t, s.Add(r))
	assert.Equal(t, 1, s.Count())

	// duplicate ID is skipped
	require.NoError(t, s.Add(r))
	assert.Equal(t, 1, s.Count())

	got, ok := s.Get(r.ID)
	require.True(t, ok)
	assert.Equal(t, "first", got.Summary)

	invalid := testRecord(t, "", time.Now())
	assert.ErrorIs(t, s.Add(invalid), ErrEmptySummary)
}

type failingPersistence struct {
	*JSONLPersistence
	err error
}

func (p failingPersistence) Append(Record) error { return p.err }

func TestStore_AddKeepsMemoryOnPersistFailure(t *testing.T) {
	p, err := NewJSONLPersistence(filepath.Join(t.TempDir(), "history.jsonl"))
	require.NoError(t, err)
	writeErr := errors.New("disk full")
	s := NewStore(failingPersistence{JSONLPersistence: p, err: writeErr}, 10)

	r := testRecord(t, "first", time.Now())
	assert.ErrorIs(t, s.Add(r), writeErr)
	assert.Equal(t, 0, s.Count())
	_, ok := s.Get(r.ID)
	assert.False(t, ok)

	// A retry is not mistaken for a duplicate.
	assert.ErrorIs(t, s.Add(r), writeErr)
}

func TestStore_AllNewestFirst(t *testing.T) {
	s := NewStore(nil, 0)
	now := time.Now()
	require.NoError(t, s.Add(testRecord(t, "old", now.Add(-time.Minute))))
	require.NoError(t, s.Add(testRecord(t, "new", now)))

	assert.Equal(t, []string{"new", "old"}, summaries(s.All()))
}

func TestStore_PrunesOldest(t *testing.T) {
	s := NewStore(nil, 2)
	now := time.Now()
	for i, name := range []string{"a", "b", "c"} {
		require.NoError(t, s.Add(testRecord(t, name, now.Add(time.Duration(i)*time.Second))))
	}
	assert.Equal(t, []string{"c", "b"}, summaries(s.All()))

	s.SetMaxEntries(1)
	require.NoError(t, s.Add(testRecord(t, "d", now.Add(5*time.Second))))
	assert.Equal(t, []string{"d"}, summaries(s.All()))
}

func TestStore_Filter(t *testing.T) {
	s := NewStore(nil, 0)
	now := time.Now()
	s.now = func() time.Time { return now }

	old := testRecord(t, "old", now.Add(-2*time.Hour))
	mail := testRecord(t, "mail", now.Add(-time.Minute))
	mail.AppName = "Thunderbird"
	alarm := testRecord(t, "alarm", now)
	alarm.SetUrgency(UrgencyCritical)
	alarm.Reason = "dismissed"
	for _, r := range []Record{old, mail, alarm} {
		require.NoError(t, s.Add(r))
	}

	critical := UrgencyCritical
	tests := []struct {
		name string
		opts FilterOptions
		want []string
	}{
		{"all", FilterOptions{}, []string{"alarm", "mail", "old"}},
		{"since", FilterOptions{Since: time.Hour}, []string{"alarm", "mail"}},
		{"app", FilterOptions{AppFilter: "thunderbird"}, []string{"mail"}},
		{"urgency", FilterOptions{Urgency: &critical}, []string{"alarm"}},
		{"reason", FilterOptions{Reason: "expired"}, []string{"mail", "old"}},
		{"limit", FilterOptions{Limit: 2}, []string{"alarm", "mail"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, summaries(s.Filter(tt.opts)))
		})
	}
}

func TestStore_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")
	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)

	s := NewStore(p, 2)
	now := time.Now()
	for i, name := range []string{"a", "b", "c"} {
		require.NoError(t, s.Add(testRecord(t, name, now.Add(time.Duration(i)*time.Second))))
	}
	require.NoError(t, s.Close())

	p2, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	s2 := NewStore(p2, 2)
	require.NoError(t, s2.Hydrate())
	assert.Equal(t, []string{"c", "b"}, summaries(s2.All()))

	require.NoError(t, s2.Clear())
	assert.Equal(t, 0, s2.Count())
	require.NoError(t, s2.Close())
	assert.ErrorIs(t, s2.Add(testRecord(t, "late", now)), ErrStoreClosed)
}

func TestStore_PruneRespectsExternalClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")
	daemonSide, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	cliSide, err := NewJSONLPersistence(path)
	require.NoError(t, err)

	s := NewStore(daemonSide, 2)
	now := time.Now()
	require.NoError(t, s.Add(testRecord(t, "a", now)))
	require.NoError(t, s.Add(testRecord(t, "b", now.Add(time.Second))))

	require.NoError(t, cliSide.Clear())

	// over the limit in memory, but the file only holds c
	require.NoError(t, s.Add(testRecord(t, "c", now.Add(2*time.Second))))
	assert.Equal(t, []string{"c"}, summaries(s.All()))

	require.NoError(t, s.Add(testRecord(t, "d", now.Add(3*time.Second))))
	require.NoError(t, s.Add(testRecord(t, "e", now.Add(4*time.Second))))
	assert.Equal(t, []string{"e", "d"}, summaries(s.All()))

	records, err := cliSide.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "e"}, summaries(records))
}

func TestJSONLPersistence_SkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")
	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	require.NoError(t, p.Append(testRecord(t, "good", time.Now())))

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0600)
	require.NoError(t, err)
	_, err = f.WriteString("{not json\n{\"summary\":\"no id\"}\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	records, err := p.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"good"}, summaries(records))
}

func TestJSONLPersistence_RejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(`{"toastui_history_version":99,"created_at":1}`+"\n"), 0600))

	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	_, err = p.Load()
	assert.ErrorContains(t, err, "unsupported schema version")
}

func TestJSONLPersistence_Closed(t *testing.T) {
	p, err := NewJSONLPersistence(filepath.Join(t.TempDir(), "h.jsonl"))
	require.NoError(t, err)
	require.NoError(t, p.Close())

	_, err = p.Load()
	assert.ErrorIs(t, err, ErrPersistenceClosed)
	assert.ErrorIs(t, p.Append(Record{}), ErrPersistenceClosed)
}
