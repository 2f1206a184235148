package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrap_CodeAndMessage(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("sign up: %w", Wrap(CodeInternal, "Internal Server Error", cause))

	require.True(t, IsCode(err, CodeInternal))
	require.False(t, IsCode(err, CodeUnauthorized))
	require.Equal(t, "Internal Server Error", MessageOf(err))
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "connection refused")
}

func TestCodeOf_PlainError(t *testing.T) {
	require.Empty(t, CodeOf(errors.New("plain")))
	require.Empty(t, MessageOf(errors.New("plain")))
}
