package concurrent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterBoundsConcurrency(t *testing.T) {
	l := NewLimiter(2)
	require.NoError(t, l.AddContext(context.Background()))
	require.NoError(t, l.AddContext(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.AddContext(ctx), context.DeadlineExceeded)

	l.Done()
	assert.NoError(t, l.AddContext(context.Background()))
}

func TestLimiterNonPositive(t *testing.T) {
	l := NewLimiter(0)
	require.NoError(t, l.AddContext(context.Background()))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, l.AddContext(ctx))
	l.Done()
}
