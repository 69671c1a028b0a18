package logger

// Log level string values
const (
	LevelDebug   = "debug"
	LevelInfo    = "info"
	LevelWarn    = "warn"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Log format string values
const (
	FormatJSON = "json"
	FormatText = "text"
)

const (
	DefaultServiceName = "sticker-gacha"
	DefaultVersion     = "dev"
	EnvironmentDev     = "dev"
)

// Attribute keys
const (
	AttrService     = "service"
	AttrVersion     = "version"
	AttrEnvironment = "environment"
	AttrRequestID   = "request_id"
	AttrSessionID   = "session_id"
)
