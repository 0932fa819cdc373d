package ports

// Logger defines the interface for logging.
//
//go:generate mockgen -source=logger.go -destination=mocks/mock_logger.go -package=mocks
type Logger interface {
	// Info logs a progress notification.
	Info(msg string)
	// Success logs a completed operation.
	Success(msg string)
	// Warn logs a warning.
	Warn(msg string)
	// Error logs a failure, rendering its cause chain.
	Error(err error)
	// Debug logs a diagnostic message. It is dropped unless debug mode is on.
	Debug(msg string)
}

// LevelController is implemented by loggers whose verbosity and colour can
// be changed after construction.
type LevelController interface {
	// SetDebug enables or disables Debug output.
	SetDebug(enabled bool)
	// SetColor enables colour detection or forces plain text.
	SetColor(enabled bool)
}
