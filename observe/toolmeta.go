package observe

import "go.opentelemetry.io/otel/attribute"

// Attribute keys shared by spans, metrics and log lines.
const (
	KeyToolID        = "tool.id"
	KeyToolName      = "tool.name"
	KeyToolNamespace = "tool.namespace"
	KeyToolVersion   = "tool.version"
	KeyToolError     = "tool.error"
	KeyRequestID     = "request_id"
)

const spanPrefix = "tool.exec."

// ToolMeta identifies a tool in telemetry.
type ToolMeta struct {
	ID        string // overrides the derived namespace.name identifier
	Namespace string // e.g. google_cse
	Name      string // required, e.g. search_web
	Version   string
}

// Validate reports whether the metadata can label telemetry.
func (m ToolMeta) Validate() error {
	if m.Name == "" {
		return ErrMissingToolName
	}
	return nil
}

// ToolID returns ID, or namespace.name, or name.
func (m ToolMeta) ToolID() string {
	switch {
	case m.ID != "":
		return m.ID
	case m.Namespace != "":
		return m.Namespace + "." + m.Name
	default:
		return m.Name
	}
}

// SpanName returns tool.exec.<namespace>.<name>, or tool.exec.<name>
// without a namespace.
func (m ToolMeta) SpanName() string {
	if m.Namespace == "" {
		return spanPrefix + m.Name
	}
	return spanPrefix + m.Namespace + "." + m.Name
}

// labels returns the identifying key/value pairs, omitting empty optional ones.
func (m ToolMeta) labels() map[string]string {
	l := map[string]string{KeyToolID: m.ToolID(), KeyToolName: m.Name}
	if m.Namespace != "" {
		l[KeyToolNamespace] = m.Namespace
	}
	if m.Version != "" {
		l[KeyToolVersion] = m.Version
	}
	return l
}

func (m ToolMeta) attributes() []attribute.KeyValue {
	labels := m.labels()
	attrs := make([]attribute.KeyValue, 0, len(labels)+1)
	for k, v := range labels {
		attrs = append(attrs, attribute.String(k, v))
	}
	return attrs
}
