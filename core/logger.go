package core

// Logger is the app-wide logging contract. Implementations may ship logs
// to an external service (see services/logger); handlers only depend on this.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
