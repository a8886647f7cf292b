package logger

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{name: "info level", cfg: &Config{Level: "info"}},
		{name: "debug level", cfg: &Config{Level: "debug"}},
		{name: "empty level defaults to info", cfg: &Config{}},
		{name: "invalid log level", cfg: &Config{Level: "invalid"}, wantErr: true},
		{name: "file output", cfg: &Config{Level: "info", File: filepath.Join(t.TempDir(), "logs", "run.log")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"DEBUG", zerolog.DebugLevel, false},
		{"info", zerolog.InfoLevel, false},
		{"warn", zerolog.WarnLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"verbose", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			level, err := ParseLevel(tt.level)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseLevel() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if level != tt.expected {
				t.Errorf("ParseLevel() = %v, want %v", level, tt.expected)
			}
		})
	}
}

func newBufferLogger(buf *bytes.Buffer) Logger {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	return NewWithWriter(buf, zerolog.DebugLevel)
}

func TestLoggerMethods(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf)

	l.Debug("debug message")
	l.Info("info message")
	l.Warn("warn message")
	l.Error("error message")

	output := buf.String()
	for _, msg := range []string{"debug message", "info message", "warn message", "error message"} {
		assert.Contains(t, output, msg)
	}
}

func TestFieldChaining(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf)

	l.WithField("service", "steam").
		WithFields(map[string]interface{}{"seq_num": int64(5000), "page": 3}).
		Info("chained fields")

	output := buf.String()
	assert.Contains(t, output, "chained fields")
	assert.Contains(t, output, `"service":"steam"`)
	assert.Contains(t, output, `"seq_num":5000`)
	assert.Contains(t, output, `"page":3`)
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf)

	assert.Equal(t, l, l.WithError(nil))

	l.WithError(errors.New("flush failed")).Error("error occurred")
	assert.Contains(t, buf.String(), "flush failed")
}

func TestFieldTypes(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf)

	l.InfoWithFields("typed fields", map[string]interface{}{
		"duration": 30 * time.Second,
		"at":       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		"ids":      []int{1, 2, 3},
		"ok":       true,
		"ratio":    0.5,
		"custom":   struct{ Name string }{Name: "x"},
	})

	output := buf.String()
	assert.Contains(t, output, `"ok":true`)
	assert.Contains(t, output, `"ids":[1,2,3]`)
	assert.Contains(t, output, `"ratio":0.5`)
}

func TestHelpers(t *testing.T) {
	tl := NewTestLogger()

	LogRemoteCall(tl, "steam", 200, time.Millisecond)
	LogRemoteCall(tl, "opendota", 404, time.Millisecond)
	LogRemoteCall(tl, "steam", 400, time.Millisecond)
	LogRemoteCall(tl, "steam", 500, time.Millisecond)
	LogCooldown(tl, "steam", "status 429", 30*time.Second)
	LogCrawlProgress(tl, 5100, 12.5, 7)

	assert.True(t, tl.HasMessage("remote call completed"))
	assert.True(t, tl.HasMessage("remote call not found"))
	assert.Len(t, tl.GetMessagesByLevel("WARN"), 2)
	assert.True(t, tl.HasError())

	progress, ok := tl.FindMessage("Progress")
	require.True(t, ok)
	assert.Equal(t, int64(5100), progress.Fields["seq_num"])
	assert.Equal(t, "12.5000%", progress.Fields["percentage"])
}

func TestTestLoggerSharesMessages(t *testing.T) {
	tl := NewTestLogger()
	child := tl.WithField("component", "crawler").WithError(errors.New("boom"))

	child.Warn("from child")
	tl.Info("from parent")

	messages := tl.GetMessages()
	require.Len(t, messages, 2)
	assert.Equal(t, "crawler", messages[0].Fields["component"])
	assert.Equal(t, "boom", messages[0].Error)
	assert.True(t, strings.Contains(tl.String(), "[INFO] from parent"))

	tl.Clear()
	assert.Empty(t, tl.GetMessages())
}

func TestGlobalLogger(t *testing.T) {
	require.NoError(t, Initialize(&Config{Level: "debug"}))
	assert.NotNil(t, GetLogger())

	tl := NewTestLogger()
	SetLogger(tl)
	defer SetLogger(nil)

	Info("info message")
	WithField("key", "value").Warn("with field")
	WithError(errors.New("x")).Error("with error")

	assert.Len(t, tl.GetMessages(), 3)
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.WithField("a", 1).WithError(errors.New("x")).InfoWithFields("ignored", nil)
	assert.NotNil(t, l.WithContext(context.Background()))
}
