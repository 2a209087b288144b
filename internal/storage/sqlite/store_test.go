package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/sandevgo/lobug/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T, dim int) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "memory.db")
	s, err := Open(context.Background(), path, dim)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestOpen_CreatesBaseMemoryRow(t *testing.T) {
	s, _ := openTestStore(t, 3)

	base, err := s.GetBaseMemory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", base)
}

func TestOpen_DimensionMismatch(t *testing.T) {
	ctx := context.Background()
	s, path := openTestStore(t, 3)
	require.NoError(t, s.Close())

	_, err := Open(ctx, path, 4)
	assert.ErrorIs(t, err, core.ErrDimensionMismatch)
	assert.ErrorIs(t, err, core.ErrStoreUnavailable)

	again, err := Open(ctx, path, 3)
	require.NoError(t, err)
	require.NoError(t, again.Close())
}

func TestOpen_InvalidDimension(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "x.db"), 0)
	assert.ErrorIs(t, err, core.ErrStoreUnavailable)
}

func TestMessages_AppendAndRecent(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t, 3)

	var last int64
	for i := 0; i < 5; i++ {
		role := core.RoleUser
		if i%2 == 1 {
			role = core.RoleAssistant
		}
		id, err := s.AppendMessage(ctx, role, fmt.Sprintf("msg %d", i))
		require.NoError(t, err)
		assert.Greater(t, id, last)
		last = id
	}

	recent, err := s.RecentMessages(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "msg 2", recent[0].Content)
	assert.Equal(t, "msg 4", recent[2].Content)
	assert.Equal(t, core.RoleUser, recent[2].Role)
	assert.False(t, recent[0].CreatedAt.IsZero())

	none, err := s.RecentMessages(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = s.AppendMessage(ctx, core.RoleSystem, "nope")
	assert.Error(t, err)
}

func TestMessages_MarkSummarizedIsMonotonic(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t, 3)

	for i := 1; i <= 31; i++ {
		_, err := s.AppendMessage(ctx, core.RoleUser, fmt.Sprintf("m%d", i))
		require.NoError(t, err)
	}

	require.NoError(t, s.MarkSummarized(ctx, 21))
	n, err := s.UnsummarizedCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	// stale and repeated watermarks change nothing
	require.NoError(t, s.MarkSummarized(ctx, 5))
	require.NoError(t, s.MarkSummarized(ctx, 21))

	pending, err := s.UnsummarizedMessages(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 10)
	assert.Equal(t, int64(22), pending[0].ID)
	assert.Equal(t, int64(31), pending[9].ID)
	for _, m := range pending {
		assert.False(t, m.Summarized)
	}
}

func TestFacts_SearchOrderingAndK(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t, 3)

	_, err := s.InsertFact(ctx, "x axis", []float32{1, 0, 0}, core.SourceExtraction, core.FactKnowledge)
	require.NoError(t, err)
	_, err = s.InsertFact(ctx, "y axis", []float32{0, 1, 0}, core.SourceExtraction, core.FactPersonal)
	require.NoError(t, err)
	_, err = s.InsertFact(ctx, "near x", []float32{0.9, 0.1, 0}, core.SourceManual, core.FactPreference)
	require.NoError(t, err)

	got, err := s.SearchFacts(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "x axis", got[0].Content)
	assert.InDelta(t, 0, got[0].Distance, 1e-6)
	assert.Equal(t, "near x", got[1].Content)
	assert.Equal(t, core.FactPreference, got[1].Type)
	assert.Equal(t, core.SourceManual, got[1].Source)

	all, err := s.SearchFacts(ctx, []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	for _, m := range all {
		assert.GreaterOrEqual(t, m.Distance, 0.0)
		assert.LessOrEqual(t, m.Distance, 2.0)
	}

	empty, err := s.SearchFacts(ctx, []float32{1, 0, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestFacts_DimensionChecked(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t, 3)

	_, err := s.InsertFact(ctx, "bad", []float32{1, 0}, core.SourceExtraction, core.FactKnowledge)
	assert.ErrorIs(t, err, core.ErrDimensionMismatch)

	_, err = s.SearchFacts(ctx, []float32{1}, 3)
	assert.ErrorIs(t, err, core.ErrDimensionMismatch)
}

func TestFacts_ReplaceAndDelete(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t, 3)

	oldID, err := s.InsertFact(ctx, "User likes tea", []float32{1, 0, 0}, core.SourceExtraction, core.FactPreference)
	require.NoError(t, err)

	newID, err := s.ReplaceFact(ctx, oldID, "User loves green tea", []float32{1, 0.01, 0}, core.SourceExtraction, core.FactPreference)
	require.NoError(t, err)
	assert.NotEqual(t, oldID, newID)

	facts, err := s.ListFacts(ctx, 0)
	require.NoError(t, err)
	require.Len(t, facts, 1)
	assert.Equal(t, "User loves green tea", facts[0].Content)

	matches, err := s.SearchFacts(ctx, []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	require.Len(t, matches, 1, "the replaced vector left the index")
	assert.Equal(t, newID, matches[0].ID)

	require.NoError(t, s.DeleteFact(ctx, newID))
	require.NoError(t, s.DeleteFact(ctx, newID))

	facts, err = s.ListFacts(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, facts)

	matches, err = s.SearchFacts(ctx, []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFacts_StoredInVecIndex(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t, 3)

	id, err := s.InsertFact(ctx, "x axis", []float32{1, 0, 0}, core.SourceExtraction, core.FactKnowledge)
	require.NoError(t, err)

	var ddl string
	require.NoError(t, s.db.QueryRowContext(ctx,
		`SELECT sql FROM sqlite_master WHERE name = 'memory_facts_vec'`).Scan(&ddl))
	assert.Contains(t, ddl, "vec0")
	assert.Contains(t, ddl, "float[3]")

	var rowid int64
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT rowid FROM memory_facts_vec`).Scan(&rowid))
	assert.Equal(t, id, rowid)
}

func TestSummaries_Watermark(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t, 3)

	for i := 0; i < 4; i++ {
		_, err := s.InsertSummary(ctx, fmt.Sprintf("summary %d", i), int64(i*10+1), int64(i*10+10))
		require.NoError(t, err)
	}

	n, err := s.UnincorporatedCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	require.NoError(t, s.MarkIncorporated(ctx, 2))
	require.NoError(t, s.MarkIncorporated(ctx, 1))

	pending, err := s.UnincorporatedSummaries(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, int64(3), pending[0].ID)
	assert.Equal(t, int64(21), pending[0].SourceFromID)
	assert.Equal(t, int64(30), pending[0].SourceToID)

	listed, err := s.ListSummaries(ctx, 1)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "summary 3", listed[0].Content)
}

func TestBaseMemory_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, path := openTestStore(t, 3)

	text := "## User Profile\nLikes tea.\n\nÜnïcödé ✓"
	require.NoError(t, s.SetBaseMemory(ctx, text))

	got, err := s.GetBaseMemory(ctx)
	require.NoError(t, err)
	assert.Equal(t, text, got)

	require.NoError(t, s.Close())
	reopened, err := Open(ctx, path, 3)
	require.NoError(t, err)
	defer reopened.Close()

	info, err := reopened.BaseMemoryInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, text, info.Content)
	assert.False(t, info.UpdatedAt.IsZero())
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t, 3)

	_, err := s.AppendMessage(ctx, core.RoleUser, "hi")
	require.NoError(t, err)
	_, err = s.AppendMessage(ctx, core.RoleAssistant, "hello")
	require.NoError(t, err)
	require.NoError(t, s.MarkSummarized(ctx, 1))
	_, err = s.InsertFact(ctx, "f", []float32{0, 0, 1}, core.SourceExtraction, core.FactEvent)
	require.NoError(t, err)
	_, err = s.InsertSummary(ctx, "s", 1, 1)
	require.NoError(t, err)
	require.NoError(t, s.SetBaseMemory(ctx, "abc"))

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.Stats{
		Messages:                2,
		UnsummarizedMessages:    1,
		Facts:                   1,
		Summaries:               1,
		UnincorporatedSummaries: 1,
		BaseMemoryChars:         3,
	}, st)
}
