/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package log

import (
	"fmt"
	"io"
	"log"
	"os"
)

const (
	logLevelFormatter  = "UTC %s-> %s "
	logPrefixFormatter = " [%s] "
)

// defLog is a standard default logger implementation.
type defLog struct {
	logger *log.Logger
	module string
}

func newDefLog(module string) *defLog {
	logger := log.New(os.Stdout, fmt.Sprintf(logPrefixFormatter, module), log.Ldate|log.Ltime|log.LUTC)

	return &defLog{logger: logger, module: module}
}

// Fatalf is CRITICAL log formatted followed by a call to os.Exit(1).
func (l *defLog) Fatalf(format string, args ...interface{}) {
	l.logf(CRITICAL, format, args...)
	os.Exit(1)
}

// Panicf is CRITICAL log formatted followed by a call to panic().
func (l *defLog) Panicf(format string, args ...interface{}) {
	l.logf(CRITICAL, format, args...)
	panic(fmt.Sprintf(format, args...))
}

// Debugf can be used for logging verbose messages.
func (l *defLog) Debugf(format string, args ...interface{}) {
	l.logf(DEBUG, format, args...)
}

// Infof can be used for logging general information messages.
func (l *defLog) Infof(format string, args ...interface{}) {
	l.logf(INFO, format, args...)
}

// Warnf can be used for logging possible errors.
func (l *defLog) Warnf(format string, args ...interface{}) {
	l.logf(WARNING, format, args...)
}

// Errorf can be used for logging errors.
func (l *defLog) Errorf(format string, args ...interface{}) {
	l.logf(ERROR, format, args...)
}

// ChangeOutput for changing output destination for the logger.
func (l *defLog) ChangeOutput(output io.Writer) {
	l.logger.SetOutput(output)
}

func (l *defLog) logf(level Level, format string, args ...interface{}) {
	customPrefix := fmt.Sprintf(logLevelFormatter, l.module, level)

	err := l.logger.Output(3, customPrefix+fmt.Sprintf(format, args...))
	if err != nil {
		fmt.Printf("error from logger.Output %v\n", err)
	}
}
