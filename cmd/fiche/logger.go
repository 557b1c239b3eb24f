package main

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger writes to w. Default output is production JSON at warn level,
// --verbose switches to the development console encoder at debug level and
// --quiet keeps errors only.
func newLogger(w io.Writer, f commonFlags) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	enc := zapcore.NewJSONEncoder(encCfg)
	level := zapcore.WarnLevel

	switch {
	case f.quiet:
		level = zapcore.ErrorLevel
	case f.verbose:
		enc = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		level = zapcore.DebugLevel
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(w), level)
	return zap.New(core)
}

// serverLogger logs requests at info level, which the CLI default hides.
func serverLogger(w io.Writer, f commonFlags) *zap.Logger {
	if f.quiet || f.verbose {
		return newLogger(w, f)
	}
	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), zapcore.InfoLevel))
}
