package logger_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/dancerank/internal/logger"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logger.DEBUG, logger.ParseLevel("debug"))
	assert.Equal(t, logger.WARN, logger.ParseLevel(" warning "))
	assert.Equal(t, logger.ERROR, logger.ParseLevel("ERROR"))
	assert.Equal(t, logger.INFO, logger.ParseLevel("verbose"))
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithLevel(logger.WARN))

	log.Info("hidden")
	log.Warn("shown %d", 1)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "shown 1")
}

func TestLogger_FieldsArePrefixedAndSorted(t *testing.T) {
	var buf bytes.Buffer
	base := logger.New(logger.WithOutput(&buf), logger.WithLevel(logger.DEBUG))
	log := base.WithPrefix("score_repo").WithFields(map[string]any{"user_id": 3, "music_id": 9})

	log.Debug("recorded")

	line := strings.TrimSpace(buf.String())
	assert.Contains(t, line, "[score_repo]")
	assert.True(t, strings.HasSuffix(line, "recorded music_id=9 user_id=3"), line)

	// the parent is untouched
	buf.Reset()
	base.Info("plain")
	assert.NotContains(t, buf.String(), "music_id")
}

func TestContextLogger(t *testing.T) {
	assert.Same(t, logger.Default(), logger.FromContext(context.Background()))

	l := logger.New()
	ctx := logger.NewContext(context.Background(), l)
	assert.Same(t, l, logger.FromContext(ctx))
}
