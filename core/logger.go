package core

// Logger is implemented by the app loggers.
// expected args: error, map[string]interface{} (extras), RequestInfo
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// RequestInfo identifies the HTTP request a log entry belongs to.
type RequestInfo struct {
	ID     string
	Method string
	Path   string
}
