package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name      string
		args      []string
		wantPaths []string
		check     func(t *testing.T, level, format string, port int, probe bool)
	}{
		{
			name:      "defaults",
			args:      nil,
			wantPaths: []string{"modules"},
			check: func(t *testing.T, level, format string, port int, probe bool) {
				assert.Equal(t, "info", level)
				assert.Equal(t, "json", format)
				assert.Zero(t, port)
				assert.False(t, probe)
			},
		},
		{
			name:      "catalog flags and positional paths",
			args:      []string{"-catalog", "a.hcl", "-c", "b", "c", "d.hcl"},
			wantPaths: []string{"modules", "a.hcl", "b", "c", "d.hcl"},
		},
		{
			name:      "no modules path",
			args:      []string{"-modules-path", "", "x"},
			wantPaths: []string{"x"},
		},
		{
			name:      "options are normalized",
			args:      []string{"-log-level", "DEBUG", "-log-format", "Text", "-healthcheck-port", "8080", "-probe"},
			wantPaths: []string{"modules"},
			check: func(t *testing.T, level, format string, port int, probe bool) {
				assert.Equal(t, "debug", level)
				assert.Equal(t, "text", format)
				assert.Equal(t, 8080, port)
				assert.True(t, probe)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, shouldExit, err := Parse(tc.args, &bytes.Buffer{})
			require.NoError(t, err)
			require.False(t, shouldExit)
			assert.Equal(t, tc.wantPaths, cfg.CatalogPaths)
			if tc.check != nil {
				tc.check(t, cfg.LogLevel, cfg.LogFormat, cfg.HealthcheckPort, cfg.Probe)
			}
		})
	}
}

func TestParseHelp(t *testing.T) {
	out := &bytes.Buffer{}
	cfg, shouldExit, err := Parse([]string{"-h"}, out)
	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
	assert.Contains(t, out.String(), "-modules-path")
}

func TestParseErrors(t *testing.T) {
	testCases := []struct {
		name string
		args []string
		want string
	}{
		{name: "unknown flag", args: []string{"-nope"}, want: "flag provided but not defined: -nope"},
		{name: "log format", args: []string{"-log-format", "xml"}, want: "invalid log-format"},
		{name: "log level", args: []string{"-log-level", "trace"}, want: "invalid log-level"},
		{name: "no paths", args: []string{"-modules-path", ""}, want: "CatalogPaths is a required configuration field"},
		{name: "port", args: []string{"-healthcheck-port", "-1"}, want: "out of range"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Parse(tc.args, &bytes.Buffer{})
			var exitErr *ExitError
			require.True(t, errors.As(err, &exitErr))
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.want)
		})
	}
}
