package log

// Canonical field name constants for structured logging.
const (
	FieldService   = "service"
	FieldComponent = "component"

	FieldPath   = "path"
	FieldURL    = "url"
	FieldMethod = "method"
	FieldStatus = "status"
	FieldID     = "id"
)
