package main

import "log"

// diagLogger is a tiny per-component wrapper around the standard library
// logger, giving every subsystem a bracketed prefix.
type diagLogger struct {
	*log.Logger
}

func newDiagLogger(component string) *diagLogger {
	return &diagLogger{log.New(log.Writer(), "["+component+"] ", log.LstdFlags)}
}
