// Package logging is a small leveled console logger: info and below go
// to stdout, warnings and errors to stderr.
package logging

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"
)

type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

var (
	level     Level
	outLogger *log.Logger
	errLogger *log.Logger

	debugTag = color.New(color.FgCyan).Sprint("[DEBUG]")
	infoTag  = color.New(color.FgGreen).Sprint("[INFO]")
	warnTag  = color.New(color.FgYellow).Sprint("[WARN]")
	errorTag = color.New(color.FgRed).Sprint("[ERROR]")
)

func init() {
	level = InfoLevel
	flags := log.Ldate | log.Ltime
	outLogger = log.New(os.Stdout, "", flags)
	errLogger = log.New(os.Stderr, "", flags)
}

func SetLevel(l Level) {
	level = l
}

// SetLevelString sets the level from its configuration spelling.
// Unknown spellings are reported and otherwise ignored.
func SetLevelString(s string) {
	switch strings.ToLower(s) {
	case "debug":
		level = DebugLevel
	case "info":
		level = InfoLevel
	case "warn", "warning":
		level = WarnLevel
	case "error":
		level = ErrorLevel
	case "":
	default:
		Warnf("unknown log level: %s", s)
	}
}

func Debugf(format string, v ...any) {
	if level > DebugLevel {
		return
	}
	outLogger.Printf("%s %s", debugTag, fmt.Sprintf(format, v...))
}

func Infof(format string, v ...any) {
	if level > InfoLevel {
		return
	}
	outLogger.Printf("%s %s", infoTag, fmt.Sprintf(format, v...))
}

func Warnf(format string, v ...any) {
	if level > WarnLevel {
		return
	}
	errLogger.Printf("%s %s", warnTag, fmt.Sprintf(format, v...))
}

func Errorf(format string, v ...any) {
	errLogger.Printf("%s %s", errorTag, fmt.Sprintf(format, v...))
}
