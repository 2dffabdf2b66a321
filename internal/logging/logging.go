// Package logging builds the process logger.
//
// stdout carries the MCP stdio transport, so logs go to stderr and,
// optionally, to a size-rotated file.
package logging

import (
	"io"
	"os"

	"github.com/HendryAvila/planka-mcp/internal/config"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New returns a logger configured from cfg and a function that flushes and
// closes the log file, if any. The closer is always non-nil.
func New(cfg config.LogConfig) (*logrus.Logger, func() error) {
	return newLogger(cfg, os.Stderr)
}

func newLogger(cfg config.LogConfig, console io.Writer) (*logrus.Logger, func() error) {
	log := logrus.New()

	level, levelErr := logrus.ParseLevel(cfg.Level)
	if levelErr != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.JSON {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	closeFn := func() error { return nil }
	if cfg.File != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		log.SetOutput(io.MultiWriter(console, file))
		closeFn = file.Close
		log.Debugf("File logging enabled: %s (max size: %dMB, max backups: %d, max age: %d days)",
			cfg.File, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	} else {
		log.SetOutput(console)
	}

	if levelErr != nil {
		log.Warnf("Invalid log level '%s', using 'info'", cfg.Level)
	}
	return log, closeFn
}
