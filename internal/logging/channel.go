package logging

import (
	"errors"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dshills/simext/internal/identity"
)

// DefaultLevels are enabled on a channel that has no configured levels.
var DefaultLevels = []Level{WarnLevel, ErrorLevel}

// StackTracer is implemented by errors that carry the stack of the fault
// that produced them.
type StackTracer interface {
	StackTrace() string
}

// Channel is a named log owned by one extension.
type Channel struct {
	owner  identity.Identity
	name   string
	levels mapset.Set[Level]
	sink   *fileSink
	logger *zap.Logger
	sugar  *zap.SugaredLogger
}

func newChannel(owner identity.Identity, name string, sink *fileSink, levels []Level) *Channel {
	c := &Channel{
		owner:  owner,
		name:   name,
		levels: mapset.NewSet(levels...),
		sink:   sink,
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig()),
		sink,
		zap.LevelEnablerFunc(func(l zapcore.Level) bool {
			return c.levels.Contains(fromZapLevel(l))
		}),
	)

	c.logger = zap.New(core).
		Named(owner.Name).
		With(zap.String("channel", name))
	c.sugar = c.logger.Sugar()
	return c
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "extension",
		MessageKey:     "msg",
		StacktraceKey:  "traceback",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}
}

// Owner returns the identity that owns the channel.
func (c *Channel) Owner() identity.Identity { return c.owner }

// Name returns the channel name.
func (c *Channel) Name() string { return c.name }

// Debug writes a debug line with key/value context.
func (c *Channel) Debug(msg string, kv ...any) {
	c.sugar.Debugw(msg, kv...)
}

// Info writes an info line with key/value context.
func (c *Channel) Info(msg string, kv ...any) {
	c.sugar.Infow(msg, kv...)
}

// Warn writes a warning line with key/value context.
func (c *Channel) Warn(msg string, kv ...any) {
	c.sugar.Warnw(msg, kv...)
}

// Error writes an error line with key/value context.
func (c *Channel) Error(msg string, kv ...any) {
	c.sugar.Errorw(msg, kv...)
}

// Log writes a line at the given level.
func (c *Channel) Log(level Level, msg string, kv ...any) {
	c.sugar.Logw(level.zapLevel(), msg, kv...)
}

// Exception writes an error line carrying err and its traceback. If err
// implements StackTracer its stack is used, otherwise the caller's.
func (c *Channel) Exception(msg string, err error, kv ...any) {
	if !c.Enabled(ErrorLevel) {
		return
	}
	fields := make([]any, 0, len(kv)+2)
	fields = append(fields, kv...)
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	var st StackTracer
	if errors.As(err, &st) && st.StackTrace() != "" {
		fields = append(fields, zap.String("traceback", st.StackTrace()))
	} else {
		fields = append(fields, zap.StackSkip("traceback", 1))
	}
	c.sugar.Errorw(msg, fields...)
}

// Enable turns on the given levels, keeping the ones already enabled.
func (c *Channel) Enable(levels ...Level) {
	for _, l := range levels {
		c.levels.Add(l)
	}
}

// EnableAll turns on every level.
func (c *Channel) EnableAll() {
	c.Enable(AllLevels...)
}

// Set replaces the enabled levels with exactly levels.
func (c *Channel) Set(levels ...Level) {
	c.levels.Clear()
	c.Enable(levels...)
}

// Disable turns off every level.
func (c *Channel) Disable() {
	c.levels.Clear()
}

// Enabled reports whether level is written.
func (c *Channel) Enabled(level Level) bool {
	return c.levels.Contains(level)
}

// Levels returns the enabled levels, least severe first.
func (c *Channel) Levels() []Level {
	levels := c.levels.ToSlice()
	sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })
	return levels
}

// Sync flushes buffered output.
func (c *Channel) Sync() {
	_ = c.logger.Sync()
}
