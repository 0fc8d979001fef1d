package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromContextReturnsStoredLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf)
	ctx := WithContext(context.Background(), l)

	got := FromContext(ctx, Nop())
	got.Info().Str("bank", "BCA").Msg("hello")

	assert.Contains(t, buf.String(), `"bank":"BCA"`)
	assert.Contains(t, buf.String(), `"message":"hello"`)
}

func TestFromContextFallback(t *testing.T) {
	var buf bytes.Buffer
	got := FromContext(context.Background(), NewWithWriter(&buf))
	got.Warn().Msg("fallback")
	assert.Contains(t, buf.String(), "fallback")
}
