package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/sro-service/internal/cache"
)

func newStore() *cache.Store {
	return cache.NewStore(nil, time.Minute, zap.NewNop())
}

func TestInvalidateBumpsVersions(t *testing.T) {
	store := newStore()
	assert.Equal(t, uint64(0), store.Version(cache.KeyCalloutList))

	store.Invalidate(context.Background(), cache.KeyCalloutList, cache.KeySROList)
	assert.Equal(t, uint64(1), store.Version(cache.KeyCalloutList))
	assert.Equal(t, uint64(1), store.Version(cache.KeySROList))
	assert.Equal(t, uint64(0), store.Version(cache.KeyScheduleList))

	store.Invalidate(context.Background(), cache.KeyCalloutList)
	assert.Equal(t, uint64(2), store.Version(cache.KeyCalloutList))
}

func TestInvalidateSignalsSubscribers(t *testing.T) {
	store := newStore()
	ch := store.Subscribe(cache.KeyScheduleList)

	store.Invalidate(context.Background(), cache.KeyScheduleList)
	select {
	case <-ch:
	default:
		t.Fatal("expected an invalidation signal")
	}

	// Signals coalesce instead of blocking the invalidator.
	store.Invalidate(context.Background(), cache.KeyScheduleList)
	store.Invalidate(context.Background(), cache.KeyScheduleList)
	select {
	case <-ch:
	default:
		t.Fatal("expected a coalesced signal")
	}
}

func TestInvalidateDoesNotSignalOtherKeys(t *testing.T) {
	store := newStore()
	ch := store.Subscribe(cache.KeyWells)

	store.Invalidate(context.Background(), cache.KeyCalloutList)
	select {
	case <-ch:
		t.Fatal("unexpected signal for an untouched key")
	default:
	}
}

func TestFetchFallsThroughWithoutValueCache(t *testing.T) {
	store := newStore()
	calls := 0
	load := func(context.Context) ([]string, error) {
		calls++
		return []string{"a", "b"}, nil
	}

	value, err := cache.Fetch(context.Background(), store, cache.KeyRigs, load)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, value)

	_, err = cache.Fetch(context.Background(), store, cache.KeyRigs, load)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestFetchPropagatesLoadErrors(t *testing.T) {
	store := newStore()
	boom := errors.New("store down")
	_, err := cache.Fetch(context.Background(), store, cache.KeyRigs, func(context.Context) ([]string, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}
