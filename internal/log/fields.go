package log

// Common field names for structured logging.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldUsername   = "username"
	FieldDay        = "day"
	FieldYear       = "year"
	FieldMonth      = "month"
	FieldDirection  = "direction"
	FieldBackend    = "backend"
	FieldAttempt    = "attempt"
	FieldUserCount  = "user_count"
)

// Components defines standard component names.
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentTracker   = "tracker"
	ComponentStorage   = "storage"
	ComponentIdentity  = "identity"
	ComponentSync      = "sync"
	ComponentRemote    = "remote"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentRateLimit = "rate_limit"
)

// Operations defines standard operation names.
const (
	OpSave     = "save"
	OpRead     = "read"
	OpPush     = "push"
	OpPull     = "pull"
	OpExport   = "export"
	OpImport   = "import"
	OpRegister = "register"
	OpLogin    = "login"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
