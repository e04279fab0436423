package sdk

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestLoggerFrom(t *testing.T) {
	t.Parallel()

	custom := zap.NewNop().Sugar()
	ctx := WithLogger(context.Background(), custom)
	assert.Same(t, custom, LoggerFrom(ctx))

	// Falls back to a production logger when none is set.
	assert.NotNil(t, LoggerFrom(context.Background()))
}
