package observability

type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
}

type Field interface {
	Key() string
	Value() interface{}
}

type stringField struct{ key, val string }

func (f stringField) Key() string        { return f.key }
func (f stringField) Value() interface{} { return f.val }

type intField struct {
	key string
	val int
}

func (f intField) Key() string        { return f.key }
func (f intField) Value() interface{} { return f.val }

type boolField struct {
	key string
	val bool
}

func (f boolField) Key() string        { return f.key }
func (f boolField) Value() interface{} { return f.val }

type errorField struct {
	key string
	err error
}

func (f errorField) Key() string { return f.key }

// Value renders the error as text so structured sinks don't marshal it to {}.
func (f errorField) Value() interface{} {
	if f.err == nil {
		return ""
	}
	return f.err.Error()
}

func String(key, value string) Field  { return stringField{key, value} }
func Int(key string, value int) Field { return intField{key, value} }
func Bool(key string, value bool) Field {
	return boolField{key, value}
}
func Error(key string, err error) Field { return errorField{key, err} }

// Rune logs a code point as U+XXXX.
func Rune(key string, r rune) Field {
	return stringField{key, fmtRune(r)}
}

func fmtRune(r rune) string {
	const hex = "0123456789ABCDEF"
	buf := []byte("U+")
	digits := 4
	if r > 0xFFFF {
		digits = 6
	}
	for i := digits - 1; i >= 0; i-- {
		buf = append(buf, hex[(r>>(uint(i)*4))&0xF])
	}
	return string(buf)
}

type NopLogger struct{}

func (NopLogger) Debug(string, ...Field) {}
func (NopLogger) Info(string, ...Field)  {}
func (NopLogger) Warn(string, ...Field)  {}
func (NopLogger) Error(string, ...Field) {}
func (NopLogger) With(...Field) Logger   { return NopLogger{} }

// Recorder keeps log entries in memory. Tests use it to assert on diagnostics.
type Recorder struct {
	Entries *[]Entry
	fields  []Field
}

// Entry is a single recorded log line.
type Entry struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

func NewRecorder() *Recorder {
	return &Recorder{Entries: &[]Entry{}}
}

func (r *Recorder) Debug(msg string, fields ...Field) { r.record("debug", msg, fields) }
func (r *Recorder) Info(msg string, fields ...Field)  { r.record("info", msg, fields) }
func (r *Recorder) Warn(msg string, fields ...Field)  { r.record("warn", msg, fields) }
func (r *Recorder) Error(msg string, fields ...Field) { r.record("error", msg, fields) }

func (r *Recorder) With(fields ...Field) Logger {
	merged := append(append([]Field{}, r.fields...), fields...)
	return &Recorder{Entries: r.Entries, fields: merged}
}

// Messages returns the recorded messages at the given level, or all when level is empty.
func (r *Recorder) Messages(level string) []string {
	var out []string
	for _, e := range *r.Entries {
		if level == "" || e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

func (r *Recorder) record(level, msg string, fields []Field) {
	m := make(map[string]interface{}, len(r.fields)+len(fields))
	for _, f := range r.fields {
		m[f.Key()] = f.Value()
	}
	for _, f := range fields {
		m[f.Key()] = f.Value()
	}
	*r.Entries = append(*r.Entries, Entry{Level: level, Message: msg, Fields: m})
}
