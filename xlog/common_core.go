package xlog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ zapcore.Core = (*commonCore)(nil)

// commonCore gates an encoder core by the logger's dynamic level.
type commonCore struct {
	lvlEnabler zapcore.LevelEnabler
	core       zapcore.Core
}

func newCommonCore(lvlEnabler zapcore.LevelEnabler, enc zapcore.Encoder, ws zapcore.WriteSyncer) *commonCore {
	return &commonCore{
		lvlEnabler: lvlEnabler,
		core:       zapcore.NewCore(enc, ws, lvlEnabler),
	}
}

func (cc *commonCore) Enabled(lvl zapcore.Level) bool {
	return cc.lvlEnabler.Enabled(lvl)
}

func (cc *commonCore) With(fields []zap.Field) zapcore.Core {
	return &commonCore{
		lvlEnabler: cc.lvlEnabler,
		core:       cc.core.With(fields),
	}
}

func (cc *commonCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !cc.Enabled(ent.Level) {
		return ce
	}
	return ce.AddCore(ent, cc)
}

func (cc *commonCore) Write(ent zapcore.Entry, fields []zap.Field) error {
	return cc.core.Write(ent, fields)
}

func (cc *commonCore) Sync() error {
	return cc.core.Sync()
}

func defaultCoreEncoderCfg() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey:    "msg",
		LevelKey:      "lvl",
		TimeKey:       "ts",
		CallerKey:     "callAt",
		EncodeCaller:  zapcore.ShortCallerEncoder,
		FunctionKey:   coreKeyIgnored,
		NameKey:       "component",
		EncodeName:    zapcore.FullNameEncoder,
		StacktraceKey: coreKeyIgnored,
	}
}
