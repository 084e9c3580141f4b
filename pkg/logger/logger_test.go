package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"syscall"
	"testing"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupReturnsSameInstanceOnSubsequentCalls(t *testing.T) {
	l1 := Setup(Options{Level: 1})
	l2 := Setup(Options{Level: -1, Format: FormatJSON})
	require.NotNil(t, l1)
	assert.Same(t, l1, l2)
}

func TestNewZapLoggerJSONWritesMessageKey(t *testing.T) {
	var buf bytes.Buffer
	zl := newZapLogger(Options{Level: 0, Format: FormatJSON, Writer: &buf})
	log := zapr.NewLogger(zl)

	log.Info("config loaded", "templates", 3)
	require.NoError(t, zl.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "config loaded", entry[MessageKey])
	assert.EqualValues(t, 3, entry["templates"])
	assert.Contains(t, entry, TimeStampKey)
	assert.Contains(t, entry, VersionKey)
}

func TestNewZapLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	zl := newZapLogger(Options{Level: 1, Writer: &buf})
	log := zapr.NewLogger(zl)

	log.Info("hidden at warn level")
	log.V(1).Info("hidden debug")
	require.NoError(t, zl.Sync())
	assert.Empty(t, buf.String())

	log.Error(assert.AnError, "shown")
	require.NoError(t, zl.Sync())
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    int8
		wantErr bool
	}{
		{in: "debug", want: -1},
		{in: "INFO", want: 0},
		{in: "", want: 0},
		{in: "warning", want: 1},
		{in: "error", want: 2},
		{in: "loud", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWithLoggerAndFromContext(t *testing.T) {
	l := logr.Discard()
	ctx := WithLogger(context.Background(), &l)
	assert.Same(t, &l, FromContext(ctx))
	assert.Equal(t, ctx, WithLogger(ctx, &l), "same logger should not wrap the context again")

	other := logr.Discard()
	assert.Same(t, &other, FromContext(WithLogger(ctx, &other)))
}

func TestFromContextFallsBackToNoop(t *testing.T) {
	orig := globalLogrLogger
	globalLogrLogger = nil
	defer func() { globalLogrLogger = orig }()

	assert.Same(t, &defaultNoopLogger, FromContext(context.Background()))
}

func TestSyncDoesNotPanicWhenGlobalZapLoggerIsNil(t *testing.T) {
	orig := globalZapLogger
	globalZapLogger = nil
	defer func() { globalZapLogger = orig }()

	assert.NotPanics(t, Sync)
}

func TestIsIgnorableSyncError(t *testing.T) {
	assert.True(t, isIgnorableSyncError(syscall.ENOTTY))
	assert.True(t, isIgnorableSyncError(syscall.EINVAL))
	assert.False(t, isIgnorableSyncError(assert.AnError))
}
