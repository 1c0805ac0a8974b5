package logger

import (
	"encoding/json"
	"os"
	"time"

	"github.com/fatih/color"
	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

//nolint:gochecknoglobals // palette is a static lookup shared across encoder instances.
var levelPalette = map[zapcore.Level]*color.Color{
	zapcore.DebugLevel: color.New(color.FgMagenta, color.Bold),
	zapcore.InfoLevel:  color.New(color.FgGreen, color.Bold),
	zapcore.WarnLevel:  color.New(color.FgYellow, color.Bold),
	zapcore.ErrorLevel: color.New(color.FgRed, color.Bold),
	zapcore.FatalLevel: color.New(color.FgHiRed, color.Bold),
}

//nolint:gochecknoglobals // shared text styles for the console encoder.
var (
	timeStyle  = color.New(color.Faint)
	nameStyle  = color.New(color.FgCyan)
	fieldStyle = color.New(color.Faint, color.FgWhite)
)

// consoleEncoder renders log entries as colorized single-line text for terminals.
// Structured fields are appended as a compact JSON object after the message.
type consoleEncoder struct {
	zapcore.Encoder
}

// Clone ensures derived loggers keep the console encoder wrapper.
func (e *consoleEncoder) Clone() zapcore.Encoder {
	return &consoleEncoder{Encoder: e.Encoder.Clone()}
}

// EncodeEntry formats a log entry with colorized level, timestamp and fields.
func (e *consoleEncoder) EncodeEntry(entry zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	jsonBuf, err := e.Encoder.EncodeEntry(entry, fields)
	if err != nil {
		return nil, err
	}

	var payload map[string]any
	raw := append([]byte(nil), jsonBuf.Bytes()...)
	jsonBuf.Reset()

	if err := json.Unmarshal(raw, &payload); err != nil {
		// Fall back to raw JSON output when the payload cannot be decoded.
		_, _ = jsonBuf.Write(raw)
		return jsonBuf, nil
	}
	delete(payload, timeKey)
	delete(payload, levelKey)
	delete(payload, messageKey)
	delete(payload, nameKey)

	_, _ = jsonBuf.WriteString(timeStyle.Sprint(entry.Time.Format(time.DateTime)))
	_, _ = jsonBuf.WriteString(" ")
	_, _ = jsonBuf.WriteString(levelColor(entry.Level).Sprintf("%-5s", entry.Level.CapitalString()))
	if entry.LoggerName != "" {
		_, _ = jsonBuf.WriteString(" ")
		_, _ = jsonBuf.WriteString(nameStyle.Sprint(entry.LoggerName))
	}
	if entry.Message != "" {
		_, _ = jsonBuf.WriteString(" ")
		_, _ = jsonBuf.WriteString(entry.Message)
	}

	if len(payload) > 0 {
		if extra, err := json.Marshal(payload); err == nil {
			_, _ = jsonBuf.WriteString(" ")
			_, _ = jsonBuf.WriteString(fieldStyle.Sprint(string(extra)))
		}
	}

	_ = jsonBuf.WriteByte('\n')
	return jsonBuf, nil
}

func levelColor(lvl zapcore.Level) *color.Color {
	if c, ok := levelPalette[lvl]; ok {
		return c
	}
	return levelPalette[zapcore.InfoLevel]
}

// newConsoleLogger creates a development logger backed by the console encoder.
func newConsoleLogger(cfg *zap.Config) *zap.Logger {
	enc := &consoleEncoder{Encoder: zapcore.NewJSONEncoder(cfg.EncoderConfig)}
	core := zapcore.NewCore(enc, zapcore.AddSync(os.Stdout), cfg.Level)
	return zap.New(core, zap.ErrorOutput(zapcore.AddSync(os.Stderr)))
}
