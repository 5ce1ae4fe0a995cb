package log

import (
	"sort"
	"time"
)

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldError     = "error"
	FieldOperation = "operation"
	FieldDuration  = "duration_ms"
	FieldSuccess   = "success"
	FieldRecords   = "records"
	FieldVisible   = "visible"
	FieldOrigin    = "origin"
	FieldSelector  = "selector"
	FieldSeq       = "seq"
	FieldPath      = "path"
	FieldQueue     = "queue"
	FieldMessageID = "message_id"
)

// Components defines standard component names
const (
	ComponentApp        = "app"
	ComponentCLI        = "cli"
	ComponentRepository = "repository"
	ComponentViewState  = "viewstate"
	ComponentStorage    = "storage"
	ComponentSources    = "sources"
	ComponentDetails    = "details"
	ComponentCache      = "cache"
	ComponentAMQP       = "amqp"
	ComponentWorker     = "worker"
	ComponentBackend    = "backend"
)

// Operations defines standard operation names
const (
	OpRefresh  = "refresh"
	OpFetch    = "fetch"
	OpReplace  = "replace"
	OpRead     = "read"
	OpFilter   = "filter"
	OpPublish  = "publish"
	OpConsume  = "consume"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds the error text; nil errors are skipped.
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithRefresh adds the outcome of a repository refresh.
func (f LogFields) WithRefresh(selector, origin string, records int) LogFields {
	f[FieldSelector] = selector
	f[FieldOrigin] = origin
	f[FieldRecords] = records
	return f
}

func (f LogFields) WithSeq(seq uint64) LogFields {
	f[FieldSeq] = seq
	return f
}

func (f LogFields) WithDuration(d time.Duration) LogFields {
	f[FieldDuration] = d.Milliseconds()
	return f
}

func (f LogFields) WithSuccess(ok bool) LogFields {
	f[FieldSuccess] = ok
	return f
}

// Args flattens the fields into slog key/value pairs, keys sorted so
// output is stable.
func (f LogFields) Args() []any {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(f)*2)
	for _, k := range keys {
		args = append(args, k, f[k])
	}
	return args
}
