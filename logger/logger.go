// Package logger writes levelled log messages through the standard logger,
// optionally into a rotating log file.
package logger

import (
	"fmt"
	"log"
	"sync/atomic"

	"github.com/natefinch/lumberjack"
)

// Config describes where log messages go.
type Config struct {
	Logfile string `toml:"logfile"`
	MaxSize int    `toml:"max_log_size"`
	MaxAge  int    `toml:"max_log_age"`
}

var (
	verbose atomic.Bool
	rotator *lumberjack.Logger
)

// SetVerbose enables debug messages.
func SetVerbose(v bool) {
	verbose.Store(v)
}

// Verbose reports whether debug messages are written.
func Verbose() bool {
	return verbose.Load()
}

// SetLogger sends log messages to a rotating log file. Without a log file,
// messages go to stderr.
func (c *Config) SetLogger() {
	if c == nil || c.Logfile == "" {
		Infof("Sending log messages to stderr since no log file specified.")
		return
	}
	fmt.Printf("Sending log messages to: %s\n", c.Logfile)
	rotator = &lumberjack.Logger{
		Filename: c.Logfile,
		MaxSize:  c.MaxSize, // megabytes
		MaxAge:   c.MaxAge,  // days
	}
	log.SetOutput(rotator)
}

// Debugf logs at DEBUG level, in verbose mode only.
func Debugf(format string, args ...interface{}) {
	if verbose.Load() {
		log.Printf(" DEBUG "+format, args...)
	}
}

// Infof logs at INFO level.
func Infof(format string, args ...interface{}) {
	log.Printf(" INFO "+format, args...)
}

// Warningf logs at WARNING level.
func Warningf(format string, args ...interface{}) {
	log.Printf(" WARNING "+format, args...)
}

// Errorf logs at ERROR level.
func Errorf(format string, args ...interface{}) {
	log.Printf(" ERROR "+format, args...)
}

// Shutdown closes the log file, if any.
func Shutdown() {
	if rotator != nil {
		log.Printf("Closing log file...\n")
		rotator.Close()
	}
}
