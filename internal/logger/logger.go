// internal/logger/logger.go
//
// Structured logger (Zap + Lumberjack).
//
// Context
// -------
// The option pipeline writes one "<Label>: <value>" line per applied setting
// and one error entry when apply fails.  Those lines are part of the
// server's startup record, so they go to a daily JSON file under
// `<dir>/rocksopts-YYYY-MM-DD.log` with rotation, compression, and retention
// handled by Lumberjack.  In a TTY, or when no directory is configured, the
// same events are teed to stdout through the console encoder.
//
// Usage
// -----
//
//	log, err := logger.New(logger.Options{Dir: cfg.LogDir, Tee: tty})
//	if err != nil { … }
//	log.Infow("settings applied", "options", n)
//
// Notes
// -----
// • Zap core uses ISO-8601 timestamps and lowercase levels.
// • Errors are written to the same sink via `ErrorOutput`.
// • Oxford commas, two spaces after periods.
package logger

import (
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects the sinks.
type Options struct {
	Dir   string        // log directory; empty means console only
	Tee   bool          // also write to stdout when Dir is set
	Level zapcore.Level // minimum level; zero value is Info
}

// New returns a *zap.SugaredLogger and installs it as the process-wide
// default via zap.ReplaceGlobals.
func New(opts Options) (*zap.SugaredLogger, error) {
	encCfg := zapcore.EncoderConfig{
		TimeKey:      "ts",
		LevelKey:     "level",
		MessageKey:   "msg",
		CallerKey:    "caller",
		EncodeTime:   zapcore.ISO8601TimeEncoder,
		EncodeLevel:  zapcore.LowercaseLevelEncoder,
		EncodeCaller: zapcore.ShortCallerEncoder,
	}

	var (
		cores   []zapcore.Core
		errSink = zapcore.Lock(os.Stderr)
	)

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, err
		}
		fileSink := &lumberjack.Logger{
			Filename:   filepath.Join(opts.Dir, "rocksopts-"+time.Now().Format("2006-01-02")+".log"),
			MaxSize:    50, // MB
			MaxBackups: 7,
			MaxAge:     14, // days
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encCfg),
			zapcore.AddSync(fileSink),
			opts.Level,
		))
		errSink = zapcore.AddSync(fileSink)
	}

	if opts.Tee || opts.Dir == "" {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encCfg),
			zapcore.Lock(os.Stdout),
			opts.Level,
		))
	}

	z := zap.New(zapcore.NewTee(cores...), zap.ErrorOutput(errSink)).Sugar()
	zap.ReplaceGlobals(z.Desugar())

	z.Debugw("logger online", "dir", opts.Dir, "tee", opts.Tee)
	return z, nil
}
