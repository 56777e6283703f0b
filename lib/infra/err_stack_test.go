package infra

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
)

var initPC = caller()

func caller() Frame {
	var PCs [3]uintptr
	n := runtime.Callers(2, PCs[:])
	frames := runtime.CallersFrames(PCs[:n])
	frame, _ := frames.Next()
	return Frame(frame.PC)
}

func TestFrameFormat(t *testing.T) {
	testcases := []struct {
		Frame
		format string
		want   string
	}{
		{initPC, "%s", "err_stack_test.go"},
		{initPC, "%n", "init"},
		{initPC, "%d", "15"},
		{initPC, "%v", "err_stack_test.go:15"},
		{Frame(0), "%s", "unknownFile"},
		{Frame(0), "%n", "unknownFunc"},
		{Frame(0), "%d", "0"},
	}

	for _, tc := range testcases {
		require.Equal(t, tc.want, fmt.Sprintf(tc.format, tc.Frame))
	}

	full := fmt.Sprintf("%+v", initPC)
	require.True(t, strings.HasPrefix(full, "github.com/benz9527/xtree/lib/infra.init\n\t"))
	require.True(t, strings.HasSuffix(full, "err_stack_test.go:15"))
}

func TestFrameMarshalText(t *testing.T) {
	bytes, err := initPC.MarshalText()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(bytes), "github.com/benz9527/xtree/lib/infra.init "))

	bytes, err = Frame(0).MarshalText()
	require.NoError(t, err)
	require.Equal(t, "unknownFrame", string(bytes))
}

func TestNewErrorStack(t *testing.T) {
	err := NewErrorStack("tree is corrupted")
	require.Error(t, err)
	require.Equal(t, "tree is corrupted", err.Error())

	var es ErrorStack
	require.True(t, errors.As(err, &es))
	require.NotEmpty(t, es.Frames())
	require.Equal(t, "TestNewErrorStack", fmt.Sprintf("%n", es.Frames()[0]))
	require.Empty(t, es.Unwrap())
	require.Contains(t, fmt.Sprintf("%+v", err), "err_stack_test.go")
}

func TestWrapErrorStack(t *testing.T) {
	require.Nil(t, WrapErrorStack(nil))
	require.Nil(t, WrapErrorStackWithMessage(nil, "ignored"))

	base := errors.New("red violation")
	err := WrapErrorStack(base)
	require.Equal(t, "red violation", err.Error())
	require.ErrorIs(t, err, base)

	other := errors.New("black violation")
	err = WrapErrorStackWithMessage(multierr.Combine(base, other), "rbtree invalid")
	require.Equal(t, "rbtree invalid: red violation; black violation", err.Error())
	require.ErrorIs(t, err, base)
	require.ErrorIs(t, err, other)
	require.Len(t, err.(ErrorStack).Unwrap(), 2)
}

func TestErrorStackMarshalLogObject(t *testing.T) {
	err := NewErrorStack("marshal me")
	enc := zapcore.NewMapObjectEncoder()
	require.NoError(t, err.(ErrorStack).MarshalLogObject(enc))
	require.Equal(t, "marshal me", enc.Fields["error"])
	frames, ok := enc.Fields["errorStack"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, frames)
}
