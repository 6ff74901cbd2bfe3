// Package logging builds the zap logger the rest of the process hangs
// off of. Subsystems take Named children ("router", "session",
// "memory", "persona", "scrape") so log lines stay attributable.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options control logger construction.
type Options struct {
	// Debug lowers the level to Debug and switches to development
	// encoding (caller info, human timestamps).
	Debug bool

	// File, when set, appends logs there instead of stderr. The
	// interactive REPL owns stdout, so file output keeps the chat
	// surface clean.
	File string
}

// New constructs the process logger.
func New(opts Options) (*zap.Logger, error) {
	var cfg zap.Config
	if opts.Debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	cfg.OutputPaths = []string{"stderr"}
	if opts.File != "" {
		cfg.OutputPaths = []string{opts.File}
	}
	return cfg.Build()
}
