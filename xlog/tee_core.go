package xlog

import (
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ zapcore.Core = (xLogMultiCore)(nil)

// xLogMultiCore fans entries out like zapcore.NewTee, but reports every
// failed core instead of stopping at the first one.
type xLogMultiCore []zapcore.Core

func (mc xLogMultiCore) With(fields []zap.Field) zapcore.Core {
	clone := make(xLogMultiCore, 0, len(mc))
	for _, c := range mc {
		clone = append(clone, c.With(fields))
	}
	return clone
}

func (mc xLogMultiCore) Enabled(lvl zapcore.Level) bool {
	for _, c := range mc {
		if c.Enabled(lvl) {
			return true
		}
	}
	return false
}

func (mc xLogMultiCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	for _, c := range mc {
		ce = c.Check(ent, ce)
	}
	return ce
}

func (mc xLogMultiCore) Write(ent zapcore.Entry, fields []zap.Field) error {
	var err error
	for _, c := range mc {
		err = multierr.Append(err, c.Write(ent, fields))
	}
	return err
}

func (mc xLogMultiCore) Sync() error {
	var err error
	for _, c := range mc {
		err = multierr.Append(err, c.Sync())
	}
	return err
}

// XLogTeeCore drops the nil cores.
func XLogTeeCore(cores ...zapcore.Core) zapcore.Core {
	mc := make(xLogMultiCore, 0, len(cores))
	for _, c := range cores {
		if c != nil {
			mc = append(mc, c)
		}
	}
	return mc
}
