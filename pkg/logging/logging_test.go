package logging

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordedLine struct {
	level int
	msg   string
}

func TestLoggerRoutesToLevelFuncs(t *testing.T) {
	var lines []recordedLine
	record := func(level int) LogFunc {
		return func(format string, args ...interface{}) {
			lines = append(lines, recordedLine{level: level, msg: fmt.Sprintf(format, args...)})
		}
	}

	logger := NewLogger("core , ", LogFuncs{
		Debugf: record(LogLevelDebug),
		Infof:  record(LogLevelInfo),
		Warnf:  record(LogLevelWarn),
		Errorf: record(LogLevelError),
	})

	logger.Debugf("d %d", 1)
	logger.Infof("i")
	logger.Warnf("w")
	logger.Errorf("e")
	logger.LogLevelf(LogLevelWarn, "via level %s", "arg")

	assert.Equal(t, []recordedLine{
		{level: LogLevelDebug, msg: "core , d 1"},
		{level: LogLevelInfo, msg: "core , i"},
		{level: LogLevelWarn, msg: "core , w"},
		{level: LogLevelError, msg: "core , e"},
		{level: LogLevelWarn, msg: "core , via level arg"},
	}, lines)
}

func TestLoggerPrefersLogLevelf(t *testing.T) {
	var lines []recordedLine
	var fallbackUsed bool

	logger := NewLogger("", LogFuncs{
		LogLevelf: func(level int, format string, args ...interface{}) {
			lines = append(lines, recordedLine{level: level, msg: fmt.Sprintf(format, args...)})
		},
		Infof: func(format string, args ...interface{}) {
			fallbackUsed = true
		},
	})

	logger.Infof("hello")
	logger.LogLevelf(LogLevelError, "boom")

	assert.False(t, fallbackUsed)
	assert.Equal(t, []recordedLine{
		{level: LogLevelInfo, msg: "hello"},
		{level: LogLevelError, msg: "boom"},
	}, lines)
}

func TestLoggerIgnoresMissingFuncs(t *testing.T) {
	logger := NewLogger("x , ", LogFuncs{})

	assert.NotPanics(t, func() {
		logger.Debugf("d")
		logger.Errorf("e")
		logger.LogLevelf(LogLevelInfo, "i")
	})
}
