package logger

import (
	"fmt"

	"go.uber.org/zap/zapcore"
)

// DBCore tees entries at or above minLevel to the DB writer while still
// passing everything to the wrapped core.
type DBCore struct {
	zapcore.Core
	writer   *DBLogWriter
	minLevel zapcore.Level
	fields   []zapcore.Field
}

func NewDBCore(baseCore zapcore.Core, writer *DBLogWriter, minLevel zapcore.Level) zapcore.Core {
	return &DBCore{
		Core:     baseCore,
		writer:   writer,
		minLevel: minLevel,
	}
}

func (c *DBCore) With(fields []zapcore.Field) zapcore.Core {
	return &DBCore{
		Core:     c.Core.With(fields),
		writer:   c.writer,
		minLevel: c.minLevel,
		fields:   append(c.fields[:len(c.fields):len(c.fields)], fields...),
	}
}

// Write is called for every log entry
func (c *DBCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	if entry.Level >= c.minLevel {
		enc := zapcore.NewMapObjectEncoder()
		for _, f := range c.fields {
			f.AddTo(enc)
		}
		for _, f := range fields {
			f.AddTo(enc)
		}

		le := LogEntry{
			Level:   entry.Level,
			Message: entry.Message,
			Caller:  entry.Caller.Function,
			Fields:  make(map[string]string, len(enc.Fields)),
		}
		for k, v := range enc.Fields {
			switch k {
			case "module":
				le.Module = fmt.Sprint(v)
			case "ref":
				le.Ref = fmt.Sprint(v)
			default:
				le.Fields[k] = fmt.Sprint(v)
			}
		}
		c.writer.AddLog(le)
	}

	return c.Core.Write(entry, fields)
}

func (c *DBCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}
