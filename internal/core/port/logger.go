package port

// Fields carries structured key/value pairs into a log record.
type Fields map[string]interface{}

// LoggerPort keeps the core independent of the concrete logging backend.
type LoggerPort interface {
	Info(msg string, fields Fields)
	Warn(msg string, fields Fields)
	// Error logs msg together with the error that caused it.
	Error(msg string, err error, fields Fields)
	Debug(msg string, fields Fields)

	// WithFields returns a child logger that adds fields to every record.
	WithFields(fields Fields) LoggerPort
}
