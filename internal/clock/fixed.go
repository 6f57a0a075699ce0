package clock

import (
	"context"
	"time"
)

// Fixed returns a clock pinned to t. Used by tests that exercise
// time-dependent billing logic.
func Fixed(t time.Time) Clock { return fixedClock{t} }

type fixedClock struct{ t time.Time }

func (f fixedClock) Now(ctx context.Context) time.Time { return f.t }
