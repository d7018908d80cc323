/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package logutil

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogFormat(t *testing.T) {
	r := require.New(t)

	l := &recordingLogger{}

	LogError(l, "sdjwt", "Verify", "bad token", CreateKeyValueString("nonce", "123"))
	LogDebug(l, "sdjwt", "Present", "success")
	LogInfo(l, "sdjwt", "Issue", "decode")

	r.Equal([]string{
		"ERROR command=[sdjwt] action=[Verify] [nonce=[123]] errMsg=[bad token]",
		"DEBUG command=[sdjwt] action=[Present] [] msg=[success]",
		"INFO command=[sdjwt] action=[Issue] [] msg=[decode]",
	}, l.lines)
}

type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) record(level, format string, args ...interface{}) {
	l.lines = append(l.lines, level+" "+fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Fatalf(format string, args ...interface{}) { l.record("FATAL", format, args...) }
func (l *recordingLogger) Panicf(format string, args ...interface{}) { l.record("PANIC", format, args...) }
func (l *recordingLogger) Debugf(format string, args ...interface{}) { l.record("DEBUG", format, args...) }
func (l *recordingLogger) Infof(format string, args ...interface{})  { l.record("INFO", format, args...) }
func (l *recordingLogger) Warnf(format string, args ...interface{})  { l.record("WARN", format, args...) }
func (l *recordingLogger) Errorf(format string, args ...interface{}) { l.record("ERROR", format, args...) }
