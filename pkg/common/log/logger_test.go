/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package log

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for _, name := range []string{"critical", "ERROR", "Warning", "info", "DEBUG"} {
		level, err := ParseLevel(name)
		require.NoError(t, err)
		require.Equal(t, strings.ToUpper(name), level.String())
	}

	_, err := ParseLevel("verbose")
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid log level")

	require.Equal(t, "WARNING", WARNING.String())
	require.Equal(t, "UNKNOWN", Level(42).String())
}

func TestModuleLevels(t *testing.T) {
	const module = "sdjwt/test-levels"

	require.Equal(t, INFO, GetLevel(module))
	require.True(t, IsEnabledFor(module, INFO))
	require.False(t, IsEnabledFor(module, DEBUG))

	SetLevel(module, DEBUG)
	require.Equal(t, DEBUG, GetLevel(module))
	require.True(t, IsEnabledFor(module, DEBUG))

	SetLevel(module, ERROR)
	require.False(t, IsEnabledFor(module, WARNING))
	require.True(t, IsEnabledFor(module, CRITICAL))
}

func TestDefaultLogger(t *testing.T) {
	const module = "sdjwt/test-deflog"

	buf := &bytes.Buffer{}

	logger := newDefLog(module)
	logger.ChangeOutput(buf)

	moduled := &modLog{logger: logger, module: module}

	SetLevel(module, WARNING)

	moduled.Debugf("hidden %d", 1)
	moduled.Infof("hidden %d", 2)
	require.Empty(t, buf.String())

	moduled.Warnf("shown %d", 3)
	require.Contains(t, buf.String(), "shown 3")
	require.Contains(t, buf.String(), "WARNING")
	require.Contains(t, buf.String(), module)

	buf.Reset()

	moduled.Errorf("failure: %s", "boom")
	require.Contains(t, buf.String(), "ERROR")
	require.Contains(t, buf.String(), "failure: boom")

	require.Panics(t, func() {
		moduled.Panicf("panic %s", "now")
	})
}

func TestLogWithDefaultProvider(t *testing.T) {
	logger := New("sdjwt/test-provider")

	require.NotPanics(t, func() {
		logger.Debugf("debug")
		logger.Infof("info")
		logger.Warnf("warn")
		logger.Errorf("error")
	})
}
