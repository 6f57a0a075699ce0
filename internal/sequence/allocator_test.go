package sequence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hubblehq/hubble/internal/clock"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestAllocator(t *testing.T, now time.Time) (*Allocator, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	mr.SetTime(now)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewAllocator(rdb, clock.Fixed(now), zap.NewNop(), time.Second), mr
}

func TestAllocateFirstOfDay(t *testing.T) {
	now := time.Date(2024, 6, 14, 10, 30, 0, 0, time.UTC)
	alloc, _ := newTestAllocator(t, now)

	number, err := alloc.Allocate(context.Background(), "HUB", "owner1")
	require.NoError(t, err)
	assert.Equal(t, "HUB-20240614-0001", number)
}

func TestAllocateStrictlyIncreasing(t *testing.T) {
	now := time.Date(2024, 6, 14, 10, 30, 0, 0, time.UTC)
	alloc, _ := newTestAllocator(t, now)

	var previous string
	for i := 1; i <= 40; i++ {
		number, err := alloc.Allocate(context.Background(), "HUB", "owner1")
		require.NoError(t, err)
		if previous != "" {
			assert.Greater(t, number, previous)
		}
		previous = number
	}
	assert.Equal(t, "HUB-20240614-0014", previous) // 40 in base36
}

func TestAllocateScopeKeysIndependent(t *testing.T) {
	now := time.Date(2024, 6, 14, 10, 30, 0, 0, time.UTC)
	alloc, _ := newTestAllocator(t, now)

	a1, err := alloc.Allocate(context.Background(), "HUB", "owner1")
	require.NoError(t, err)
	b1, err := alloc.Allocate(context.Background(), "HUB", "owner2")
	require.NoError(t, err)

	assert.Equal(t, "HUB-20240614-0001", a1)
	assert.Equal(t, "HUB-20240614-0001", b1)
}

func TestAllocateArmsExpiryOnce(t *testing.T) {
	now := time.Date(2024, 6, 14, 22, 0, 0, 0, time.UTC)
	alloc, mr := newTestAllocator(t, now)

	_, err := alloc.Allocate(context.Background(), "HUB", "owner1")
	require.NoError(t, err)

	key := "invoice_seq:owner1:20240614"
	ttl := mr.TTL(key)
	assert.Equal(t, 2*time.Hour, ttl)

	// Subsequent allocations must not re-arm the TTL.
	mr.FastForward(time.Hour)
	_, err = alloc.Allocate(context.Background(), "HUB", "owner1")
	require.NoError(t, err)
	assert.Equal(t, time.Hour, mr.TTL(key))
}

func TestAllocateRestartsAfterExpiry(t *testing.T) {
	now := time.Date(2024, 6, 14, 23, 59, 0, 0, time.UTC)
	mr := miniredis.RunT(t)
	mr.SetTime(now)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	alloc := NewAllocator(rdb, clock.Fixed(now), zap.NewNop(), time.Second)
	first, err := alloc.Allocate(context.Background(), "HUB", "owner1")
	require.NoError(t, err)
	assert.Equal(t, "HUB-20240614-0001", first)

	// Cross midnight: bucket expires, date string advances, sequence resets.
	mr.FastForward(2 * time.Minute)
	alloc = NewAllocator(rdb, clock.Fixed(now.Add(2*time.Minute)), zap.NewNop(), time.Second)
	second, err := alloc.Allocate(context.Background(), "HUB", "owner1")
	require.NoError(t, err)
	assert.Equal(t, "HUB-20240615-0001", second)
}

func TestAllocateRejectsEmptyInputs(t *testing.T) {
	alloc, _ := newTestAllocator(t, time.Now().UTC())

	_, err := alloc.Allocate(context.Background(), "", "owner1")
	assert.Error(t, err)
	_, err = alloc.Allocate(context.Background(), "HUB", "  ")
	assert.Error(t, err)
}

func TestAllocateSurfacesStoreFailure(t *testing.T) {
	now := time.Date(2024, 6, 14, 10, 0, 0, 0, time.UTC)
	alloc, mr := newTestAllocator(t, now)
	mr.Close()

	_, err := alloc.Allocate(context.Background(), "HUB", "owner1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllocationFailure)
}

// failExpireHook rejects EXPIREAT commands while letting everything else
// through, simulating a store that dies between INCR and arming expiry.
type failExpireHook struct{}

func (failExpireHook) DialHook(next redis.DialHook) redis.DialHook { return next }

func (failExpireHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		if cmd.Name() == "expireat" {
			return fmt.Errorf("expireat rejected")
		}
		return next(ctx, cmd)
	}
}

func (failExpireHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func TestAllocateDropsBucketWhenExpiryArmFails(t *testing.T) {
	now := time.Date(2024, 6, 14, 10, 0, 0, 0, time.UTC)
	mr := miniredis.RunT(t)
	mr.SetTime(now)

	broken := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = broken.Close() })
	broken.AddHook(failExpireHook{})

	alloc := NewAllocator(broken, clock.Fixed(now), zap.NewNop(), time.Second)
	_, err := alloc.Allocate(context.Background(), "HUB", "owner1")
	require.ErrorIs(t, err, ErrAllocationFailure)

	// The half-created bucket must not survive without a TTL.
	key := "invoice_seq:owner1:20240614"
	assert.False(t, mr.Exists(key))

	// Once the store recovers, the bucket restarts cleanly and armed.
	healthy := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = healthy.Close() })

	alloc = NewAllocator(healthy, clock.Fixed(now), zap.NewNop(), time.Second)
	number, err := alloc.Allocate(context.Background(), "HUB", "owner1")
	require.NoError(t, err)
	assert.Equal(t, "HUB-20240614-0001", number)
	assert.Greater(t, mr.TTL(key), time.Duration(0))
}

func TestFormatSequenceBase36(t *testing.T) {
	cases := []struct {
		seq  int64
		want string
	}{
		{1, "0001"},
		{10, "000A"},
		{36, "0010"},
		{1679615, "ZZZZ"},
		{1679616, "10000"}, // width grows past four characters
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%d", tc.seq), func(t *testing.T) {
			assert.Equal(t, tc.want, formatSequence(tc.seq))
		})
	}
}
