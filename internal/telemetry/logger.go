// Package telemetry holds the logging and metrics plumbing shared by the
// server and the CLI.
package telemetry

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

type Logger interface {
	Printf(format string, v ...any)
}

const logPrefix = "[todograph] "

// NewLogger creates a Logger writing to w with the prefix "[todograph] " and
// the standard timestamp attributes.
func NewLogger(w io.Writer) *log.Logger {
	return log.New(w, logPrefix, log.LstdFlags|log.Lmsgprefix)
}

// OpenLogWriter returns stderr when path is empty, otherwise a rotating
// file writer. Callers close the returned writer on shutdown.
func OpenLogWriter(path string) io.WriteCloser {
	if path == "" {
		return nopCloser{os.Stderr}
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
