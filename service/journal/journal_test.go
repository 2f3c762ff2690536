package journal

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

func setupSuite(tb testing.TB) (func(tb testing.TB), *ServiceProvider) {
	svc, err := NewService()
	if err != nil {
		tb.Fatal(err)
	}
	return func(tb testing.TB) { svc.Close() }, svc
}

func float(f float64) *float64 {
	return &f
}

func TestServiceProvider_RecordAndSearch(t *testing.T) {
	teardown, svc := setupSuite(t)
	defer teardown(t)
	ctx := context.Background()

	ts := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	recorded := []*Entry{
		{Session: "a", Kind: Compute, Operator: "+", Left: float(5), Right: float(3), Before: 0, After: 8, Timestamp: ts},
		{Session: "b", Kind: Compute, Operator: "*", Left: float(2), Right: float(2), Before: 0, After: 4, Timestamp: ts},
		{Session: "a", Kind: Compute, Operator: "*", Left: float(8), Right: float(2), Before: 8, After: 16, Timestamp: ts},
		{Session: "a", Kind: Undo, Before: 16, After: 8, Timestamp: ts},
		{Session: "a", Kind: Failure, Operator: "/", Left: float(1), Right: float(0), Before: 8, After: 8, Error: "cannot divide by zero", Timestamp: ts},
	}
	for _, e := range recorded {
		require.NoError(t, svc.Record(ctx, e))
		require.NotEmpty(t, e.ID)
	}

	tests := []struct {
		name     string
		query    Query
		expected []*Entry
	}{
		{"session newest first", Query{Session: "a"}, []*Entry{recorded[4], recorded[3], recorded[2], recorded[0]}},
		{"session and kind", Query{Session: "a", Kind: Compute}, []*Entry{recorded[2], recorded[0]}},
		{"limit", Query{Session: "a", Limit: 2}, []*Entry{recorded[4], recorded[3]}},
		{"kind across sessions", Query{Kind: Compute}, []*Entry{recorded[2], recorded[1], recorded[0]}},
		{"unknown session", Query{Session: "c"}, []*Entry{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := svc.Search(ctx, tt.query)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.expected, entries, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("journal entries do not match (-expected, +received):\n%s", diff)
			}
		})
	}
}

func TestServiceProvider_Forget(t *testing.T) {
	teardown, svc := setupSuite(t)
	defer teardown(t)
	ctx := context.Background()

	for _, session := range []string{"a", "a", "b"} {
		require.NoError(t, svc.Record(ctx, &Entry{Session: session, Kind: Reset}))
	}

	require.NoError(t, svc.Forget(ctx, "a"))
	require.NoError(t, svc.Forget(ctx, "missing"))

	entries, err := svc.Search(ctx, Query{Session: "a"})
	require.NoError(t, err)
	require.Empty(t, entries)

	entries, err = svc.Search(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "b", entries[0].Session)
}
