package presenter

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	p := New()
	assert.NotNil(t, p)
	assert.Equal(t, os.Stdout, p.output)
	assert.Equal(t, os.Stderr, p.errorOutput)
	assert.False(t, p.quiet)
}

func TestDetectColorMode(t *testing.T) {
	tests := []struct {
		name           string
		noColor        string
		safepilotColor string
		expected       ColorMode
	}{
		{"NO_COLOR set", "1", "", ColorNever},
		{"SAFEPILOT_COLOR always", "", "always", ColorAlways},
		{"SAFEPILOT_COLOR force", "", "force", ColorAlways},
		{"SAFEPILOT_COLOR never", "", "never", ColorNever},
		{"SAFEPILOT_COLOR off", "", "off", ColorNever},
		{"default", "", "", ColorAuto},
		{"invalid value", "", "invalid", ColorAuto},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Unsetenv("NO_COLOR")
			os.Unsetenv("SAFEPILOT_COLOR")

			if tt.noColor != "" {
				os.Setenv("NO_COLOR", tt.noColor)
			}
			if tt.safepilotColor != "" {
				os.Setenv("SAFEPILOT_COLOR", tt.safepilotColor)
			}

			assert.Equal(t, tt.expected, detectColorMode())

			os.Unsetenv("NO_COLOR")
			os.Unsetenv("SAFEPILOT_COLOR")
		})
	}
}

func TestError(t *testing.T) {
	var errorOutput bytes.Buffer
	p := NewWithOptions(nil, &errorOutput, ColorNever)

	err := errors.New("test error")
	p.Error(err, "test context")

	output := errorOutput.String()
	assert.Contains(t, output, "[ERROR]")
	assert.Contains(t, output, "test context")
	assert.Contains(t, output, "test error")

	errorOutput.Reset()
	p.Error(err, "")
	assert.NotContains(t, errorOutput.String(), "test context")

	errorOutput.Reset()
	p.Error(nil, "context")
	assert.Empty(t, errorOutput.String())
}

func TestMessagesRespectQuietMode(t *testing.T) {
	var output bytes.Buffer
	p := NewWithOptions(&output, &output, ColorNever)
	p.SetQuiet(true)
	assert.True(t, p.IsQuiet())

	p.Success("done")
	p.Warning("careful")
	p.Info("note")
	p.Section("header")
	p.Separator()
	assert.Empty(t, output.String())

	// Errors always surface
	p.Error(errors.New("boom"), "")
	assert.Contains(t, output.String(), "boom")
}

func TestSection(t *testing.T) {
	var output bytes.Buffer
	p := NewWithOptions(&output, &output, ColorNever)

	p.Section("Git commands")

	lines := strings.Split(strings.TrimRight(output.String(), "\n"), "\n")
	assert.Equal(t, "Git commands", lines[0])
	assert.Equal(t, strings.Repeat("-", len("Git commands")), lines[1])
}

func TestInfoAndWarning(t *testing.T) {
	var output bytes.Buffer
	p := NewWithOptions(&output, &output, ColorNever)

	p.Info("plain message")
	p.Warning("careful now")
	p.Success("all good")

	out := output.String()
	assert.Contains(t, out, "plain message")
	assert.Contains(t, out, "⚠ careful now")
	assert.Contains(t, out, "✓ all good")
}
