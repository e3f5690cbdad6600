package logger

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogThrottler_Defaults(t *testing.T) {
	// Given: zero interval and no logger
	// When: creating a throttler
	throttler := NewLogThrottler(nil, 0)

	// Then: defaults are applied
	require.NotNil(t, throttler)
	assert.Equal(t, defaultThrottleInterval, throttler.interval)
	assert.NotNil(t, throttler.log)
}

func TestLogThrottler_Warn_DowngradesRepeats(t *testing.T) {
	// Given: a throttler with a long interval
	core, logs := observer.New(zapcore.DebugLevel)
	throttler := NewLogThrottler(zap.New(core), time.Hour)

	// When: logging the same key three times
	for range 3 {
		throttler.Warn("decode", "cannot decode", zap.Int64("fingerprint", 42))
	}

	// Then: only the first entry is a warning
	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, zapcore.DebugLevel, entries[1].Level)
	assert.Equal(t, zapcore.DebugLevel, entries[2].Level)
	assert.Equal(t, int64(42), entries[0].ContextMap()["fingerprint"])
}

func TestLogThrottler_Error_KeysAreIndependent(t *testing.T) {
	// Given: a throttler
	core, logs := observer.New(zapcore.DebugLevel)
	throttler := NewLogThrottler(zap.New(core), time.Hour)

	// When: logging two different keys
	throttler.Error("a", "first")
	throttler.Error("b", "second")
	throttler.Error("a", "first again")

	// Then: each key gets its own full-level entry
	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, zapcore.DebugLevel, entries[2].Level)
}

func TestLogThrottler_AllowsAgainAfterInterval(t *testing.T) {
	// Given: a throttler with a short interval
	core, logs := observer.New(zapcore.DebugLevel)
	throttler := NewLogThrottler(zap.New(core), 20*time.Millisecond)

	// When: logging, waiting past the interval and logging again
	throttler.Warn("k", "msg")
	time.Sleep(50 * time.Millisecond)
	throttler.Warn("k", "msg")

	// Then: both entries are warnings
	entries := logs.FilterLevelExact(zapcore.WarnLevel).All()
	assert.Len(t, entries, 2)
}

func TestLogThrottler_ConcurrentUse(t *testing.T) {
	// Given: a throttler shared by many goroutines
	core, logs := observer.New(zapcore.DebugLevel)
	throttler := NewLogThrottler(zap.New(core), time.Hour)

	// When: every goroutine logs the same keys
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			throttler.Warn(fmt.Sprintf("key-%d", i%5), "msg")
		}()
	}
	wg.Wait()

	// Then: exactly one warning per key
	assert.Equal(t, 50, logs.Len())
	assert.Equal(t, 5, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}
