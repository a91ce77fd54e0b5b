package ratelimit_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/litebittech/cex/services/dlob/internal/ratelimit"
)

func TestAllowExhaustsAndRefillsBucket(t *testing.T) {
	l := ratelimit.New(2)

	assert.True(t, l.Allow("1.2.3.4"))
	assert.True(t, l.Allow("1.2.3.4"))
	assert.False(t, l.Allow("1.2.3.4"), "third call within the same second must be rejected")

	time.Sleep(1100 * time.Millisecond)
	assert.True(t, l.Allow("1.2.3.4"), "bucket must refill after the interval elapses")
}

// Regression guard for the teacher's fillTokens bug: a bucket reaching
// full capacity must not stop future refills for every other key.
func TestRefillSurvivesAFullBucket(t *testing.T) {
	l := ratelimit.New(1)

	// Drain "a" and let the first refill tick fill it back up; "a" then
	// stays full for every later tick.
	assert.True(t, l.Allow("a"))
	time.Sleep(1100 * time.Millisecond)

	// Drain "b"; the second tick passes over the full "a".
	assert.True(t, l.Allow("b"))
	assert.False(t, l.Allow("b"))
	time.Sleep(1100 * time.Millisecond)
	assert.True(t, l.Allow("b"), "a different key must still refill while an earlier bucket sits full")

	// Drain "b" again; the third tick must still run after passing over full "a".
	assert.False(t, l.Allow("b"))
	time.Sleep(1100 * time.Millisecond)
	assert.True(t, l.Allow("b"), "refills must keep running after a tick has passed over a full bucket")
}

func TestBucketsAreIndependentPerKey(t *testing.T) {
	l := ratelimit.New(1)

	assert.True(t, l.Allow("x"))
	assert.False(t, l.Allow("x"))
	assert.True(t, l.Allow("y"), "a fresh key starts with its own full bucket")
}
