package xlog

import (
	"go.uber.org/zap/zapcore"
)

var _ XLogCoreConstructor = newConsoleCore

// newConsoleCore adds the caller function name to every entry.
func newConsoleCore(
	lvlEnabler zapcore.LevelEnabler,
	encoder logEncoderType,
	ws zapcore.WriteSyncer,
	lvlEnc zapcore.LevelEncoder,
	tsEnc zapcore.TimeEncoder,
) zapcore.Core {
	if ws == nil {
		return nil
	}
	config := defaultCoreEncoderCfg()
	config.EncodeLevel = lvlEnc
	config.EncodeTime = tsEnc
	config.FunctionKey = "fn"
	return newCommonCore(lvlEnabler, getEncoderByType(encoder)(config), ws)
}
