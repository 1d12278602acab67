package publishers

// Logger is the structured logging surface publishers write to. It is the
// same shape as internal/logger.Logger and waapi.Logger, so one zap logger
// serves all of them.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

type discardLogger struct{}

func (discardLogger) InfoObj(string, string, interface{})  {}
func (discardLogger) DebugObj(string, string, interface{}) {}
func (discardLogger) WarnObj(string, string, interface{})  {}
func (discardLogger) ErrorObj(string, string, interface{}) {}

// scopedLogger stamps publisher_id and publisher_type on every entry so fanout
// logs can be told apart when several sinks share a type.
type scopedLogger struct {
	base    Logger
	id, typ string
}

func loggerFor(log Logger, cfg PublisherConfig) Logger {
	if log == nil {
		return discardLogger{}
	}
	return scopedLogger{base: log, id: cfg.ID, typ: cfg.Type}
}

func (s scopedLogger) InfoObj(msg, key string, obj interface{}) {
	s.base.InfoObj(msg, key, s.stamp(obj))
}

func (s scopedLogger) DebugObj(msg, key string, obj interface{}) {
	s.base.DebugObj(msg, key, s.stamp(obj))
}

func (s scopedLogger) WarnObj(msg, key string, obj interface{}) {
	s.base.WarnObj(msg, key, s.stamp(obj))
}

func (s scopedLogger) ErrorObj(msg, key string, obj interface{}) {
	s.base.ErrorObj(msg, key, s.stamp(obj))
}

// stamp copies map payloads before adding the publisher fields; other values
// are nested under "value".
func (s scopedLogger) stamp(obj interface{}) map[string]any {
	out := map[string]any{}
	if m, ok := obj.(map[string]any); ok {
		for k, v := range m {
			out[k] = v
		}
	} else if obj != nil {
		out["value"] = obj
	}
	out["publisher_id"] = s.id
	out["publisher_type"] = s.typ
	return out
}

func ensureLogger(log Logger) Logger {
	if log == nil {
		return discardLogger{}
	}
	return log
}
