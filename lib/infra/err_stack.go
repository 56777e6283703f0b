package infra

import (
	"fmt"
	"io"
	"path"
	"runtime"
	"strconv"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
)

// References:
// https://github.com/pkg/errors/blob/master/stack.go

const (
	unknownFile  = "unknownFile"
	unknownFunc  = "unknownFunc"
	unknownFrame = "unknownFrame"

	maxStackDepth = 32
)

type Frame uintptr

func (frame Frame) pc() uintptr {
	return uintptr(frame) - 1
}

func (frame Frame) fileLine() (string, int) {
	fn := runtime.FuncForPC(frame.pc())
	if fn == nil {
		return unknownFile, 0
	}
	return fn.FileLine(frame.pc())
}

func (frame Frame) name() string {
	fn := runtime.FuncForPC(frame.pc())
	if fn == nil {
		return unknownFunc
	}
	return fn.Name()
}

// Format characters:
// %s - source file
// %d - source line
// %n - function name
// %v - equivalent to %s:%d
// %+s - <function-name>\n\t<full path>
// %+v - equivalent to %+s:%d
func (frame Frame) Format(s fmt.State, verb rune) {
	file, line := frame.fileLine()
	switch verb {
	case 's':
		if s.Flag('+') {
			_, _ = io.WriteString(s, frame.name())
			_, _ = io.WriteString(s, "\n\t")
			_, _ = io.WriteString(s, file)
		} else {
			_, _ = io.WriteString(s, path.Base(file))
		}
	case 'd':
		_, _ = io.WriteString(s, strconv.Itoa(line))
	case 'n':
		_, _ = io.WriteString(s, funcName(frame.name()))
	case 'v':
		frame.Format(s, 's')
		_, _ = io.WriteString(s, ":")
		frame.Format(s, 'd')
	}
}

func (frame Frame) String() string {
	name := frame.name()
	if name == unknownFunc {
		return unknownFrame
	}
	file, line := frame.fileLine()
	builder := strings.Builder{}
	_, _ = builder.WriteString(name)
	_, _ = builder.WriteString(" ")
	_, _ = builder.WriteString(file)
	_, _ = builder.WriteString(":")
	_, _ = builder.WriteString(strconv.Itoa(line))
	return builder.String()
}

func (frame Frame) MarshalText() ([]byte, error) {
	return []byte(frame.String()), nil
}

func funcName(name string) string {
	i := strings.LastIndex(name, "/")
	name = name[i+1:]
	i = strings.Index(name, ".")
	return name[i+1:]
}

// ErrorStack is an error carrying the frames where it was created.
// It is able to be inlined into a zap log entry, so the stack is printed
// as a JSON array instead of zap's plain text stacktrace.
type ErrorStack interface {
	error
	zapcore.ObjectMarshaler
	Unwrap() []error
	Frames() []Frame
}

var _ ErrorStack = (*errorStack)(nil)

type errorStack struct {
	msg    string
	errs   error
	frames []Frame
}

func (es *errorStack) Error() string {
	if es.errs == nil {
		return es.msg
	}
	if len(es.msg) == 0 {
		return es.errs.Error()
	}
	return es.msg + ": " + es.errs.Error()
}

func (es *errorStack) Unwrap() []error {
	return multierr.Errors(es.errs)
}

func (es *errorStack) Frames() []Frame {
	return es.frames
}

func (es *errorStack) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("error", es.Error())
	return enc.AddArray("errorStack", zapcore.ArrayMarshalerFunc(func(arr zapcore.ArrayEncoder) error {
		for _, frame := range es.frames {
			arr.AppendString(frame.String())
		}
		return nil
	}))
}

// Format %+v prints the message followed by every frame.
func (es *errorStack) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		_, _ = io.WriteString(s, es.Error())
		if s.Flag('+') {
			for _, frame := range es.frames {
				_, _ = io.WriteString(s, "\n")
				frame.Format(s, verb)
			}
		}
	case 's':
		_, _ = io.WriteString(s, es.Error())
	case 'q':
		_, _ = fmt.Fprintf(s, "%q", es.Error())
	}
}

func callers(skip int) []Frame {
	var pcs [maxStackDepth]uintptr
	n := runtime.Callers(skip, pcs[:])
	frames := make([]Frame, 0, n)
	for i := 0; i < n; i++ {
		frames = append(frames, Frame(pcs[i]))
	}
	return frames
}

func NewErrorStack(msg string) error {
	return &errorStack{
		msg:    msg,
		frames: callers(3),
	}
}

// WrapErrorStack returns nil if err is nil.
func WrapErrorStack(err error) error {
	if err == nil {
		return nil
	}
	return &errorStack{
		errs:   err,
		frames: callers(3),
	}
}

func WrapErrorStackWithMessage(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &errorStack{
		msg:    msg,
		errs:   err,
		frames: callers(3),
	}
}
