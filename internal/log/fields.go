package log

// Field names shared across packages so log lines stay greppable.
const (
	FieldComponent    = "component"
	FieldRequestID    = "request_id"
	FieldClientIP     = "client_ip"
	FieldMethod       = "method"
	FieldPath         = "path"
	FieldStatusCode   = "status_code"
	FieldDuration     = "duration_ms"
	FieldError        = "error"
	FieldUserID       = "user_id"
	FieldHabitID      = "habit_id"
	FieldCompletionID = "completion_id"
	FieldDate         = "date"
)

// Component names for WithComponent.
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentWorker  = "worker"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentSheets  = "sheets"
)
