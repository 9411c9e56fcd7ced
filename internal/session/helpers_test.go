package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"redbull-counter-backend/internal/catalog"
	"redbull-counter-backend/internal/kv"
)

var errDiskFull = errors.New("disk full")

// flakyStore wraps a MemoryStore and fails the next failCommits commits.
type flakyStore struct {
	*kv.MemoryStore
	failCommits int
	commits     int
}

func (f *flakyStore) Commit(ctx context.Context, change kv.Change) error {
	f.commits++
	if f.failCommits != 0 {
		if f.failCommits > 0 {
			f.failCommits--
		}
		return errDiskFull
	}
	return f.MemoryStore.Commit(ctx, change)
}

func intp(v int) *int { return &v }

func fullSubmission(overrides map[catalog.FlavorID]int) Submission {
	stock := make(map[string]*int)
	for _, id := range catalog.IDs() {
		stock[string(id)] = intp(0)
	}
	for id, qty := range overrides {
		stock[string(id)] = intp(qty)
	}
	return Submission{Stock: stock, PaymentAsset: "data:image/png;base64,AAAA"}
}

func newLifecycle(t *testing.T, backend kv.Store) (*Lifecycle, *Store) {
	t.Helper()
	store := NewStore(backend, "redbull")
	lc := NewLifecycle(store, nil, Options{})
	require.NoError(t, lc.Restore(context.Background()))
	return lc, store
}
