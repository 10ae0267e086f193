package logger

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// CustomField is a key/value pair backed by a prepared zap field.
type CustomField struct {
	key   string
	value any
	zap   zap.Field
}

func (f *CustomField) Key() string         { return f.key }
func (f *CustomField) Value() any          { return f.value }
func (f *CustomField) ZapField() zap.Field { return f.zap }

func newField(key string, value any, zf zap.Field) Field {
	return &CustomField{key: key, value: value, zap: zf}
}

// NewField creates a new field
func NewField(key string, value any) Field {
	return newField(key, value, zap.Any(key, value))
}

func String(key, val string) Field {
	return newField(key, val, zap.String(key, val))
}

func Strings(key string, val []string) Field {
	return newField(key, val, zap.Strings(key, val))
}

func Int(key string, val int) Field {
	return newField(key, val, zap.Int(key, val))
}

func Int64(key string, val int64) Field {
	return newField(key, val, zap.Int64(key, val))
}

func Bool(key string, val bool) Field {
	return newField(key, val, zap.Bool(key, val))
}

func Duration(key string, val time.Duration) Field {
	return newField(key, val, zap.Duration(key, val))
}

func Any(key string, val any) Field {
	return newField(key, val, zap.Any(key, val))
}

// Error creates an "error" field. A nil error yields a skipped field.
func Error(err error) Field {
	return newField("error", err, zap.Error(err))
}

func Stack(key string) Field {
	zf := zap.Stack(key)
	return newField(key, zf.String, zf)
}

// Component tags a log line with the component being compiled.
func Component(id string) Field {
	return String("component", id)
}

// RunID tags a log line with the compile run identifier.
func RunID(id string) Field {
	return String("run_id", id)
}

// ContextFields extracts the fields carried by ctx.
func ContextFields(ctx context.Context) []Field {
	var fields []Field
	if id := RunIDFromContext(ctx); id != "" {
		fields = append(fields, RunID(id))
	}
	return fields
}
