package logger

// ContextKeyRequestID is the context key carrying the request id
const ContextKeyRequestID = "request_id"

const (
	LogFormatJSON = "json"
	LogFormatText = "text"

	// levelWarningAlias is accepted in addition to slog's own level names
	levelWarningAlias = "warning"
)

// Attribute keys attached to every record
const (
	AttrKeyService     = "service"
	AttrKeyVersion     = "version"
	AttrKeyEnvironment = "environment"
	AttrKeyRequestID   = "request_id"
)
