// Package sequence allocates human-readable invoice numbers from a day-scoped
// atomic counter. Numbers take the form PREFIX-YYYYMMDD-SSSS where SSSS is the
// day's sequence in upper-case base36, zero-padded to four characters.
package sequence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hubblehq/hubble/internal/clock"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrAllocationFailure indicates the counter store was unreachable or timed
// out. Callers must not create an invoice without a successfully allocated
// number; retry with backoff instead.
var ErrAllocationFailure = errors.New("sequence: allocation failure")

const (
	keyPrefix = "invoice_seq"
	padWidth  = 4
)

type Allocator struct {
	rdb     *redis.Client
	clock   clock.Clock
	log     *zap.Logger
	timeout time.Duration
}

func NewAllocator(rdb *redis.Client, clk clock.Clock, log *zap.Logger, timeout time.Duration) *Allocator {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Allocator{
		rdb:     rdb,
		clock:   clk,
		log:     log.Named("sequence"),
		timeout: timeout,
	}
}

// Allocate atomically draws the next invoice number for scopeKey on the
// current calendar day. The counter bucket is created on first use and
// expires at the next local midnight; expiry is armed only on the transition
// to count 1, so later calls never extend the bucket's life.
func (a *Allocator) Allocate(ctx context.Context, prefix, scopeKey string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	scopeKey = strings.TrimSpace(scopeKey)
	if prefix == "" {
		return "", fmt.Errorf("sequence: prefix is required")
	}
	if scopeKey == "" {
		return "", fmt.Errorf("sequence: scope key is required")
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	now := a.clock.Now(ctx)
	day := now.Format("20060102")
	key := fmt.Sprintf("%s:%s:%s", keyPrefix, scopeKey, day)

	seq, err := a.rdb.Incr(ctx, key).Result()
	if err != nil {
		a.log.Error("counter increment failed", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrAllocationFailure, err)
	}

	if seq == 1 {
		// Bucket just came into existence; expire it at the next local
		// midnight so a new day restarts the sequence.
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
		if err := a.rdb.ExpireAt(ctx, key, midnight).Err(); err != nil {
			a.log.Error("counter expiry arm failed", zap.String("key", key), zap.Error(err))
			// Expiry is armed only on the transition to count 1, so a
			// bucket left behind here would live forever. Drop it so the
			// retry recreates it and arms expiry again.
			if delErr := a.rdb.Del(context.WithoutCancel(ctx), key).Err(); delErr != nil {
				a.log.Error("unarmed counter cleanup failed", zap.String("key", key), zap.Error(delErr))
			}
			return "", fmt.Errorf("%w: %v", ErrAllocationFailure, err)
		}
	}

	return fmt.Sprintf("%s-%s-%s", prefix, day, formatSequence(seq)), nil
}

func formatSequence(seq int64) string {
	s := strings.ToUpper(strconv.FormatInt(seq, 36))
	if len(s) < padWidth {
		s = strings.Repeat("0", padWidth-len(s)) + s
	}
	return s
}
