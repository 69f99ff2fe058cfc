package roster

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doorlist/doorlist/internal/store"
	"github.com/doorlist/doorlist/internal/testutil"
)

func newTestImporter(t *testing.T) (*Importer, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	clk := testutil.NewFixedClock(time.Date(2024, 1, 5, 17, 0, 0, 0, time.UTC))
	return NewImporter(st, clk), st
}

func guestNames(t *testing.T, st *store.Store) []string {
	t.Helper()
	results, err := st.SearchGuests(context.Background(), "", 100)
	require.NoError(t, err)
	names := make([]string, len(results))
	for i, r := range results {
		names[i] = r.DisplayName
	}
	return names
}

func TestRun_SplitsAndInsertsGuests(t *testing.T) {
	imp, st := newTestImporter(t)

	summary, err := imp.Run(context.Background(), []Row{
		{MemberName: "Ann Lee", GuestNames: "Jane Smith and John Doe, Bob Jones & SUE ANN"},
	}, ModeAppend)
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Inserted)
	assert.Equal(t, 1, summary.TotalRows, "total counts input rows, not expanded names")
	assert.Equal(t, []string{"Bob Jones", "Jane Smith", "John Doe", "Sue Ann"}, guestNames(t, st))
}

func TestRun_DeduplicatesAgainstExisting(t *testing.T) {
	imp, st := newTestImporter(t)
	ctx := context.Background()

	first, err := imp.Run(ctx, []Row{{MemberName: "Ann Lee", GuestNames: "Jane Smith"}}, ModeAppend)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Inserted)

	// Same name+host in different case: skipped. Same name, different
	// host: inserted.
	second, err := imp.Run(ctx, []Row{
		{MemberName: "ANN LEE", GuestNames: "JANE SMITH"},
		{MemberName: "Max Stone", GuestNames: "Jane Smith"},
	}, ModeAppend)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Inserted)
	assert.Equal(t, 2, second.TotalRows)

	assert.Len(t, guestNames(t, st), 2)
}

func TestRun_DedupDoesNotTouchExistingGuest(t *testing.T) {
	imp, st := newTestImporter(t)
	ctx := context.Background()

	_, err := imp.Run(ctx, []Row{{GuestNames: "Jane Smith"}}, ModeAppend)
	require.NoError(t, err)

	// Re-import with history signals; the existing guest must stay pristine.
	_, err = imp.Run(ctx, []Row{{GuestNames: "Jane Smith", CheckIn: "y"}}, ModeAppend)
	require.NoError(t, err)

	results, err := st.SearchGuests(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].HasHistory, "deduped guest must not gain history")
}

func TestRun_ReplaceWipesPriorData(t *testing.T) {
	imp, st := newTestImporter(t)
	ctx := context.Background()

	_, err := imp.Run(ctx, []Row{{GuestNames: "Old Guest", CheckIn: "y"}}, ModeAppend)
	require.NoError(t, err)

	summary, err := imp.Run(ctx, []Row{{GuestNames: "New Guest"}}, ModeReplace)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Inserted)

	assert.Equal(t, []string{"New Guest"}, guestNames(t, st))

	stats, err := st.Snapshot(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalCheckIns, "events go with their guests")
}

func TestRun_ReconstructsHistory(t *testing.T) {
	imp, st := newTestImporter(t)
	ctx := context.Background()

	_, err := imp.Run(ctx, []Row{
		{GuestNames: "Still Here", CheckIn: "y", CheckInTime: "2:30 PM"},
		{GuestNames: "Carol Chen", CheckInTime: "1:00 PM", CheckOut: "y", CheckOutTime: "1:45 PM"},
		{GuestNames: "No Signals"},
	}, ModeAppend)
	require.NoError(t, err)

	results, err := st.SearchGuests(ctx, "", 0)
	require.NoError(t, err)
	byName := map[string]store.GuestResult{}
	for _, r := range results {
		byName[r.DisplayName] = r
	}

	assert.True(t, byName["Still Here"].IsCheckedIn)
	assert.True(t, byName["Still Here"].HasHistory)
	assert.False(t, byName["Carol Chen"].IsCheckedIn)
	assert.True(t, byName["Carol Chen"].HasHistory)
	assert.False(t, byName["No Signals"].HasHistory)

	events, err := st.GuestEvents(ctx, byName["Carol Chen"].ID)
	require.NoError(t, err)
	require.Len(t, events, 1, "import fabricates at most one visit per row")
	assert.Equal(t, "01:00:00 PM", events[0].InTS)
	require.NotNil(t, events[0].OutTS)
	assert.Equal(t, "01:45:00 PM", *events[0].OutTS)
	require.NotNil(t, events[0].InBy)
	assert.Equal(t, "import", *events[0].InBy)
	require.NotNil(t, events[0].OutBy)
	assert.Equal(t, "import", *events[0].OutBy)
}

func TestRun_FlagOnlyUsesCurrentTime(t *testing.T) {
	imp, st := newTestImporter(t)
	ctx := context.Background()

	_, err := imp.Run(ctx, []Row{{GuestNames: "Jane Smith", CheckIn: "y"}}, ModeAppend)
	require.NoError(t, err)

	results, err := st.SearchGuests(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	events, err := st.GuestEvents(ctx, results[0].ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "05:00:00 PM", events[0].InTS, "fixed clock time")
	assert.Nil(t, events[0].OutTS)
}

func TestRun_EmptyNamesAreDropped(t *testing.T) {
	imp, st := newTestImporter(t)

	summary, err := imp.Run(context.Background(), []Row{
		{GuestNames: " , and , & "},
		{GuestNames: ""},
	}, ModeAppend)
	require.NoError(t, err)
	assert.Zero(t, summary.Inserted)
	assert.Equal(t, 2, summary.TotalRows)
	assert.Empty(t, guestNames(t, st))
}

func TestParseMode(t *testing.T) {
	for raw, want := range map[string]Mode{"replace": ModeReplace, "APPEND": ModeAppend} {
		got, err := ParseMode(raw)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseMode("merge")
	assert.Error(t, err)
}
