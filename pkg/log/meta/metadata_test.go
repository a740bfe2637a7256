package meta

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBeginIsIdempotent(t *testing.T) {
	ctx := Begin(context.Background())
	assert.Equal(t, ctx, Begin(ctx))

	WithValue(ctx, RequestIDKey, "req-1")
	assert.Equal(t, "req-1", RequestID(ctx))
}

func TestValueWithoutBegin(t *testing.T) {
	ctx := context.Background()
	WithValue(ctx, RequestIDKey, "lost")
	assert.Nil(t, Value(ctx, RequestIDKey))
	assert.Empty(t, RequestID(ctx))
}
