package monitoring

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var got string
	SetLogger(func(format string, v ...interface{}) {
		got = fmt.Sprintf(format, v...)
	})
	Logf("loaded %d kinds", 6)
	assert.Equal(t, "loaded 6 kinds", got)

	got = ""
	SetLogger(nil)
	Logf("muted")
	assert.Empty(t, got, "no-op logger should not reach the previous callback")
}

func TestDefaultLogfWritesThroughLogrus(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	defer func() { _ = SetLevel("info") }()

	Logf("sensitivities from %s", "/tmp/x.bin")
	assert.Contains(t, buf.String(), "sensitivities from /tmp/x.bin")
	assert.Contains(t, buf.String(), "level=info")

	buf.Reset()
	require.NoError(t, SetLevel("warn"))
	Logf("hidden")
	assert.Empty(t, buf.String())
}

func TestSetLevel(t *testing.T) {
	defer func() { _ = SetLevel("info") }()

	tests := []struct {
		level   string
		want    logrus.Level
		wantErr bool
	}{
		{"debug", logrus.DebugLevel, false},
		{"WARN", logrus.WarnLevel, false},
		{"error", logrus.ErrorLevel, false},
		{"verbose", 0, true},
	}
	for _, tt := range tests {
		t.Run(strings.ToLower(tt.level), func(t *testing.T) {
			err := SetLevel(tt.level)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, Logger().GetLevel())
		})
	}
}
