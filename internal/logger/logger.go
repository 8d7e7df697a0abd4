package logger

import (
	"io"
	"log"
	"os"
)

var (
	Info    = log.New(io.Discard, "", 0)
	Warn    = log.New(io.Discard, "", 0)
	Debug   = log.New(io.Discard, "", 0)
	Verbose = log.New(io.Discard, "", 0)
	Error   = log.New(io.Discard, "", 0)
	Always  = log.New(io.Discard, "", 0) // Always logs regardless of log level

	// Current log level for filtering
	currentLogLevel string
)

func Init() error {
	return InitWithLevel("info")
}

func InitWithLevel(logLevel string) error {
	return InitWithConfig(logLevel, "black76.log")
}

func InitWithConfig(logLevel, logFilePath string) error {
	logFile, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return err
	}
	initLoggers(logLevel, logFile, io.MultiWriter(os.Stderr, logFile))
	return nil
}

// InitWithWriter sends every enabled level to w.
func InitWithWriter(logLevel string, w io.Writer) {
	initLoggers(logLevel, w, w)
}

func initLoggers(logLevel string, out, errOut io.Writer) {
	currentLogLevel = logLevel

	Info = log.New(getWriter("info", out, io.Discard), "INFO: ", log.Ldate|log.Ltime)
	Warn = log.New(getWriter("warn", out, io.Discard), "WARN: ", log.Ldate|log.Ltime|log.Lshortfile)
	Debug = log.New(getWriter("debug", out, io.Discard), "DEBUG: ", log.Ldate|log.Ltime|log.Lshortfile)
	Verbose = log.New(getWriter("verbose", out, io.Discard), "VERBOSE: ", log.Ldate|log.Ltime|log.Lshortfile)
	Error = log.New(errOut, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
	Always = log.New(out, "ALWAYS: ", log.Ldate|log.Ltime)
}

// getWriter returns the appropriate writer based on log level
func getWriter(level string, activeWriter, disabledWriter io.Writer) io.Writer {
	if shouldLog(level) {
		return activeWriter
	}
	return disabledWriter
}

// shouldLog determines if a log level should be active
func shouldLog(level string) bool {
	levels := map[string]int{
		"error":   0,
		"warn":    1,
		"info":    2,
		"debug":   3,
		"verbose": 4,
	}

	currentLevel, exists := levels[currentLogLevel]
	if !exists {
		currentLevel = 2 // default to info
	}

	requiredLevel, exists := levels[level]
	if !exists {
		return false
	}

	return currentLevel >= requiredLevel
}
