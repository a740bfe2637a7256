package errors

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingReporter struct {
	mu   sync.Mutex
	errs []error
}

func (r *recordingReporter) Report(err error) {
	r.mu.Lock()
	r.errs = append(r.errs, err)
	r.mu.Unlock()
}

func TestWrapAndReport(t *testing.T) {
	t.Setenv(debugMode, "")
	rec := &recordingReporter{}
	ResetReporters()
	RegisterReporter(rec)
	defer ResetReporters()

	base := New("dial failed")
	err := WrapAndReport(base, "connect bridge")
	require.Error(t, err)
	assert.Equal(t, "connect bridge: dial failed", err.Error())
	assert.True(t, Is(err, base))
	require.Len(t, rec.errs, 1)

	assert.NoError(t, WrapAndReport(nil, "nothing"))
	assert.Len(t, rec.errs, 1)
}

func TestReportSilencedInDebugMode(t *testing.T) {
	t.Setenv(debugMode, "1")
	rec := &recordingReporter{}
	ResetReporters()
	RegisterReporter(rec)
	defer ResetReporters()

	_ = NewWithReport("ignored")
	assert.Empty(t, rec.errs)
}

func TestStackBasedRateLimited(t *testing.T) {
	now := time.Unix(0, 0)
	l := newRateLimiter(time.Minute)
	l.now = func() time.Time { return now }

	limited, stats := l.StackBasedRateLimited("a")
	assert.False(t, limited)
	assert.Nil(t, stats.lastReportTime)

	now = now.Add(10 * time.Second)
	limited, _ = l.StackBasedRateLimited("a")
	assert.True(t, limited)

	limited, _ = l.StackBasedRateLimited("b")
	assert.False(t, limited, "stacks are limited independently")

	now = now.Add(time.Minute)
	limited, stats = l.StackBasedRateLimited("a")
	assert.False(t, limited)
	assert.Equal(t, 1, stats.occurCountSinceLastReport)
	assert.Equal(t, 2, stats.totalOccurCount)
}

func TestFullStackHasLimiterKey(t *testing.T) {
	lines := callers().fullStack()
	require.GreaterOrEqual(t, len(lines), 3)
}
